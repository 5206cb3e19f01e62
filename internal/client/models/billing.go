package models

// PricingPlan is one entry of the public plan list.
type PricingPlan struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Count        int     `json:"count"`
	Price        int     `json:"price"` // cents
	Description  *string `json:"description"`
	BillingType  string  `json:"billing_type,omitempty"`
	MonthlyPrice *int    `json:"monthly_price"`
	YearlyPrice  *int    `json:"yearly_price"`
	Unlimited    bool    `json:"unlimited"`
	SavePercent  *int    `json:"save_percent"`
}

type OrderRequest struct {
	PlanID    string `json:"plan_id"`
	OpenID    string `json:"open_id"`
	TenantKey string `json:"tenant_key"`
}

type Order struct {
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	OrderID    string `json:"order_id"`
	Amount     int    `json:"amount"`
	QuotaCount int    `json:"quota_count"`
	PlanName   string `json:"plan_name"`
	ExpiresAt  int64  `json:"expires_at"`
}

type OrderStatus struct {
	Found      bool   `json:"found"`
	OrderID    string `json:"order_id"`
	Status     string `json:"status"`
	Amount     int    `json:"amount"`
	QuotaCount int    `json:"quota_count"`
	CreatedAt  int64  `json:"created_at"`
	PaidAt     *int64 `json:"paid_at"`
}

// PayType selects the Alipay flow.
type PayType string

const (
	PayTypeNative PayType = "native" // QR code
	PayTypeH5     PayType = "h5"     // redirect URL
)

type AlipayOrderRequest struct {
	PlanID    string  `json:"plan_id"`
	OpenID    string  `json:"open_id"`
	TenantKey string  `json:"tenant_key"`
	PayType   PayType `json:"pay_type"`
}

type AlipayOrder struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	OrderID string `json:"order_id"`
	QRCode  string `json:"qr_code,omitempty"`
	PayURL  string `json:"pay_url,omitempty"`
	Amount  int    `json:"amount,omitempty"`
}

type AlipayQuery struct {
	Success    bool   `json:"success"`
	OrderID    string `json:"order_id"`
	Status     string `json:"status"`
	TradeState string `json:"trade_state,omitempty"`
	TradeNo    string `json:"trade_no,omitempty"`
}
