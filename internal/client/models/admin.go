package models

type DashboardStats struct {
	TotalUsers           int `json:"total_users"`
	NewUsersToday        int `json:"new_users_today"`
	TotalSignatures      int `json:"total_signatures"`
	SignaturesToday      int `json:"signatures_today"`
	ActiveForms          int `json:"active_forms"`
	TotalFormSubmissions int `json:"total_form_submissions"`
	TotalInvites         int `json:"total_invites"`
	ActiveInvites        int `json:"active_invites"`
}

type Trends struct {
	Dates      []string `json:"dates"`
	Users      []int    `json:"users"`
	Signatures []int    `json:"signatures"`
}

// Dashboard bundles stats and trends loaded together.
type Dashboard struct {
	Stats  DashboardStats
	Trends Trends
	Period string
}

// Page is the envelope of every paged admin list.
type Page[T any] struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Items    []T `json:"items"`
}

// PageQuery selects a page; zero values fall back to page 1 of 20.
type PageQuery struct {
	Page     int
	PageSize int
	Search   string
}

type AdminUser struct {
	ID             int     `json:"id"`
	OpenID         string  `json:"open_id"`
	TenantKey      string  `json:"tenant_key"`
	RemainingQuota int     `json:"remaining_quota"`
	TotalUsed      int     `json:"total_used"`
	InviteCodeUsed *string `json:"invite_code_used"`
	InviteExpireAt *string `json:"invite_expire_at"`
	TotalPaid      int     `json:"total_paid"`
	CreatedAt      string  `json:"created_at"`
}

type AdminForm struct {
	ID          int     `json:"id"`
	FormID      string  `json:"form_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	SubmitCount int     `json:"submit_count"`
	IsActive    bool    `json:"is_active"`
	CreatedBy   *string `json:"created_by"`
	CreatedAt   string  `json:"created_at"`
}

type AdminInvite struct {
	ID          int     `json:"id"`
	Code        string  `json:"code"`
	MaxUsage    int     `json:"max_usage"`
	UsedCount   int     `json:"used_count"`
	BenefitDays int     `json:"benefit_days"`
	ExpiresAt   *string `json:"expires_at"`
	IsActive    bool    `json:"is_active"`
	CreatedBy   *string `json:"created_by"`
	CreatedAt   string  `json:"created_at"`
}

type CreateInviteRequest struct {
	MaxUsage      int `json:"max_usage"`
	BenefitDays   int `json:"benefit_days"`
	ExpiresInDays int `json:"expires_in_days"`
}

// DefaultCreateInvite mirrors the backend defaults.
func DefaultCreateInvite() CreateInviteRequest {
	return CreateInviteRequest{MaxUsage: 10, BenefitDays: 365, ExpiresInDays: 30}
}

type CreatedInvite struct {
	Success   bool   `json:"success"`
	Code      string `json:"code"`
	ExpiresAt string `json:"expires_at"`
}

type InviteStatusResult struct {
	Success      bool `json:"success"`
	IsActive     bool `json:"is_active"`
	RevokedCount int  `json:"revoked_count"`
}

type UsageLog struct {
	ID            int     `json:"id"`
	UserKey       string  `json:"user_key"`
	FileName      *string `json:"file_name"`
	FileToken     *string `json:"file_token"`
	QuotaConsumed bool    `json:"quota_consumed"`
	CreatedAt     string  `json:"created_at"`
}

// LogFilter narrows the usage log list and export. Dates are YYYY-MM-DD.
type LogFilter struct {
	UserKey   string
	StartDate string
	EndDate   string
}

type AdminOrder struct {
	ID            int     `json:"id"`
	OrderID       string  `json:"order_id"`
	UserKey       string  `json:"user_key"`
	PlanID        string  `json:"plan_id"`
	QuotaCount    int     `json:"quota_count"`
	Amount        int     `json:"amount"`
	Status        string  `json:"status"`
	PaymentMethod *string `json:"payment_method"`
	CreatedAt     string  `json:"created_at"`
	PaidAt        *string `json:"paid_at"`
}

type AdminPlan struct {
	ID          int     `json:"id"`
	PlanID      string  `json:"plan_id"`
	Name        string  `json:"name"`
	QuotaCount  int     `json:"quota_count"`
	Price       int     `json:"price"`
	IsActive    bool    `json:"is_active"`
	SortOrder   int     `json:"sort_order"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   *string `json:"updated_at"`
}

type CreatePlanRequest struct {
	PlanID      string  `json:"plan_id"`
	Name        string  `json:"name"`
	QuotaCount  int     `json:"quota_count"`
	Price       int     `json:"price"`
	SortOrder   int     `json:"sort_order"`
	Description *string `json:"description,omitempty"`
}

// UpdatePlanRequest sends only the fields that are set.
type UpdatePlanRequest struct {
	Name        *string `json:"name,omitempty"`
	QuotaCount  *int    `json:"quota_count,omitempty"`
	Price       *int    `json:"price,omitempty"`
	SortOrder   *int    `json:"sort_order,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ExportKind names an admin spreadsheet export.
type ExportKind string

const (
	ExportUsers   ExportKind = "users"
	ExportInvites ExportKind = "invites"
	ExportLogs    ExportKind = "logs"
)

// Success is the generic {success} acknowledgement.
type Success struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
