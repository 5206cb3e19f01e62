package models

type AuthStart struct {
	AuthURL     string `json:"auth_url"`
	State       string `json:"state"`
	RedirectURI string `json:"redirect_uri"`
}

type AuthUser struct {
	OpenID    string `json:"open_id"`
	TenantKey string `json:"tenant_key"`
	Name      string `json:"name"`
}

type AuthStatus struct {
	Authorized bool      `json:"authorized"`
	ExpiresAt  *int64    `json:"expires_at"`
	User       *AuthUser `json:"user"`
}

// Identity names the user a bearer token is issued for.
type Identity struct {
	OpenID      string `json:"feishu_user_id"`
	TenantKey   string `json:"tenant_key"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

type UserInit struct {
	UserID    string `json:"user_id"`
	OpenID    string `json:"feishu_user_id"`
	TenantKey string `json:"tenant_key"`
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"` // seconds
}

// AuthMessage is posted by the authorization page once the flow completes.
type AuthMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

// AuthMessageDone is the only message type the handshake acts on.
const AuthMessageDone = "feishu-auth-done"
