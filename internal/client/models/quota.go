package models

// QuotaStatus is the raw /api/quota/status payload. Nullable fields stay
// pointers so the mapping in NewQuotaSnapshot can apply the backend defaults.
type QuotaStatus struct {
	Remaining      *int   `json:"remaining"`
	PlanQuota      *int   `json:"plan_quota"`
	IsUnlimited    bool   `json:"is_unlimited"`
	TotalUsed      int    `json:"total_used"`
	TotalPaid      int    `json:"total_paid"`
	InviteActive   bool   `json:"invite_active"`
	InviteExpireAt *int64 `json:"invite_expire_at"`
	PlanExpiresAt  *int64 `json:"plan_expires_at"`
}

// DefaultPlanQuota is assumed when the backend reports no plan (free trial).
const DefaultPlanQuota = 100

// InitialRemaining is shown before the first successful load.
const InitialRemaining = 20

// QuotaSnapshot is an immutable view of a user's signing allowance.
type QuotaSnapshot struct {
	Remaining      int
	PlanQuota      *int
	IsUnlimited    bool
	TotalUsed      int
	InviteActive   bool
	InviteExpireAt *int64 // unix seconds
	PlanExpiresAt  *int64 // unix seconds
}

func InitialQuotaSnapshot() QuotaSnapshot {
	return QuotaSnapshot{Remaining: InitialRemaining}
}

// NewQuotaSnapshot maps a backend payload: missing remaining becomes 0 and a
// missing or zero plan quota becomes DefaultPlanQuota.
func NewQuotaSnapshot(s QuotaStatus) QuotaSnapshot {
	out := QuotaSnapshot{
		IsUnlimited:  s.IsUnlimited,
		TotalUsed:    s.TotalUsed,
		InviteActive: s.InviteActive,
	}
	if s.Remaining != nil {
		out.Remaining = *s.Remaining
	}
	plan := DefaultPlanQuota
	if s.PlanQuota != nil && *s.PlanQuota != 0 {
		plan = *s.PlanQuota
	}
	out.PlanQuota = &plan
	if s.InviteExpireAt != nil && *s.InviteExpireAt != 0 {
		v := *s.InviteExpireAt
		out.InviteExpireAt = &v
	}
	if s.PlanExpiresAt != nil && *s.PlanExpiresAt != 0 {
		v := *s.PlanExpiresAt
		out.PlanExpiresAt = &v
	}
	return out
}

func (q QuotaSnapshot) CanSign() bool {
	return q.InviteActive || q.IsUnlimited || q.Remaining > 0
}

// QuotaCheck is the /api/quota/check payload.
type QuotaCheck struct {
	CanSign      bool    `json:"can_sign"`
	Reason       *string `json:"reason"`
	ConsumeQuota bool    `json:"consume_quota"`
}

// QuotaConsume holds the query parameters of /api/quota/consume.
type QuotaConsume struct {
	OpenID    string
	TenantKey string
	FileToken string
	FileName  string
}

type InviteValidation struct {
	Valid         bool   `json:"valid"`
	Reason        string `json:"reason,omitempty"`
	Benefit       string `json:"benefit,omitempty"`
	BenefitDays   int    `json:"benefit_days,omitempty"`
	RemainingUses int    `json:"remaining_uses,omitempty"`
}

type InviteRedeemRequest struct {
	Code      string `json:"code"`
	OpenID    string `json:"open_id"`
	TenantKey string `json:"tenant_key"`
}

type InviteRedemption struct {
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
	InviteExpireAt int64  `json:"invite_expire_at,omitempty"`
	BenefitDays    int    `json:"benefit_days,omitempty"`
}

// UploadResult is returned by /api/sign/upload.
type UploadResult struct {
	Success   bool   `json:"success"`
	FileToken string `json:"file_token"`
}

// SignatureUpload describes a multipart signature image upload.
type SignatureUpload struct {
	Image       []byte
	FileName    string
	FolderToken string
	OpenID      string
	TenantKey   string
	HasQuota    bool
}

// DefaultSignatureFileName is used when an upload has no name.
const DefaultSignatureFileName = "signature.png"
