package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/signpanel/internal/client/models"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

func pageQuery(p models.PageQuery) url.Values {
	page, size := p.Page, p.PageSize
	if page < 1 {
		page = DefaultPage
	}
	if size < 1 {
		size = DefaultPageSize
	}
	q := url.Values{"page": {strconv.Itoa(page)}, "page_size": {strconv.Itoa(size)}}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}

func idPath(prefix string, id int, suffix string) string {
	return prefix + "/" + strconv.Itoa(id) + suffix
}

func (c *RESTClient) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	var out models.DashboardStats
	if err := c.get(ctx, "/admin/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Trends loads the daily series for period ("week" or "month").
func (c *RESTClient) Trends(ctx context.Context, period string) (*models.Trends, error) {
	if period == "" {
		period = "week"
	}
	var out models.Trends
	if err := c.get(ctx, "/admin/dashboard/trends", url.Values{"period": {period}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) Users(ctx context.Context, p models.PageQuery) (*models.Page[models.AdminUser], error) {
	var out models.Page[models.AdminUser]
	if err := c.get(ctx, "/admin/users", pageQuery(p), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) UpdateUserQuota(ctx context.Context, userID, remaining int) error {
	body := map[string]int{"remaining_quota": remaining}
	return c.put(ctx, idPath("/admin/users", userID, "/quota"), nil, body, nil)
}

func (c *RESTClient) ResetUser(ctx context.Context, userID int) error {
	return c.post(ctx, idPath("/admin/users", userID, "/reset"), nil, nil)
}

func (c *RESTClient) DeleteUser(ctx context.Context, userID int) error {
	return c.delete(ctx, idPath("/admin/users", userID, ""), nil)
}

func (c *RESTClient) AdminForms(ctx context.Context, p models.PageQuery) (*models.Page[models.AdminForm], error) {
	var out models.Page[models.AdminForm]
	if err := c.get(ctx, "/admin/forms", pageQuery(p), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) SetFormActive(ctx context.Context, id int, active bool) error {
	q := url.Values{"is_active": {strconv.FormatBool(active)}}
	return c.put(ctx, idPath("/admin/forms", id, "/status"), q, nil, nil)
}

func (c *RESTClient) AdminDeleteForm(ctx context.Context, id int) error {
	return c.delete(ctx, idPath("/admin/forms", id, ""), nil)
}

// Invites lists invite codes; the backend ignores Search here.
func (c *RESTClient) Invites(ctx context.Context, p models.PageQuery) (*models.Page[models.AdminInvite], error) {
	p.Search = ""
	var out models.Page[models.AdminInvite]
	if err := c.get(ctx, "/admin/invites", pageQuery(p), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) CreateInvite(ctx context.Context, req models.CreateInviteRequest) (*models.CreatedInvite, error) {
	def := models.DefaultCreateInvite()
	if req.MaxUsage == 0 {
		req.MaxUsage = def.MaxUsage
	}
	if req.BenefitDays == 0 {
		req.BenefitDays = def.BenefitDays
	}
	if req.ExpiresInDays == 0 {
		req.ExpiresInDays = def.ExpiresInDays
	}
	var out models.CreatedInvite
	if err := c.post(ctx, "/admin/invites", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetInviteActive toggles an invite code; revokeBenefits also withdraws the
// benefit from users who redeemed it.
func (c *RESTClient) SetInviteActive(ctx context.Context, id int, active, revokeBenefits bool) (*models.InviteStatusResult, error) {
	q := url.Values{
		"is_active":       {strconv.FormatBool(active)},
		"revoke_benefits": {strconv.FormatBool(revokeBenefits)},
	}
	var out models.InviteStatusResult
	if err := c.put(ctx, idPath("/admin/invites", id, "/status"), q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) DeleteInvite(ctx context.Context, id int) error {
	return c.delete(ctx, idPath("/admin/invites", id, ""), nil)
}

func logQuery(f models.LogFilter) url.Values {
	q := url.Values{}
	if f.UserKey != "" {
		q.Set("user_key", f.UserKey)
	}
	if f.StartDate != "" {
		q.Set("start_date", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("end_date", f.EndDate)
	}
	return q
}

func (c *RESTClient) Logs(ctx context.Context, p models.PageQuery, f models.LogFilter) (*models.Page[models.UsageLog], error) {
	p.Search = ""
	q := pageQuery(p)
	for k, v := range logQuery(f) {
		q[k] = v
	}
	var out models.Page[models.UsageLog]
	if err := c.get(ctx, "/admin/logs", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) DeleteLog(ctx context.Context, id int) error {
	return c.delete(ctx, idPath("/admin/logs", id, ""), nil)
}

func (c *RESTClient) ClearLogs(ctx context.Context) error {
	return c.delete(ctx, "/admin/logs/clear", nil)
}

func (c *RESTClient) Orders(ctx context.Context, p models.PageQuery, status string) (*models.Page[models.AdminOrder], error) {
	p.Search = ""
	q := pageQuery(p)
	if status != "" {
		q.Set("status", status)
	}
	var out models.Page[models.AdminOrder]
	if err := c.get(ctx, "/admin/orders", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	req := models.ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}
	return c.put(ctx, "/admin/password", nil, req, nil)
}

func (c *RESTClient) AdminPlans(ctx context.Context, includeInactive bool) ([]models.AdminPlan, error) {
	var out struct {
		Items []models.AdminPlan `json:"items"`
	}
	q := url.Values{"include_inactive": {strconv.FormatBool(includeInactive)}}
	if err := c.get(ctx, "/admin/pricing", q, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *RESTClient) CreatePlan(ctx context.Context, req models.CreatePlanRequest) error {
	return c.post(ctx, "/admin/pricing", req, nil)
}

func (c *RESTClient) UpdatePlan(ctx context.Context, planID string, req models.UpdatePlanRequest) error {
	return c.put(ctx, "/admin/pricing/"+url.PathEscape(planID), nil, req, nil)
}

func (c *RESTClient) DeletePlan(ctx context.Context, planID string) error {
	return c.delete(ctx, "/admin/pricing/"+url.PathEscape(planID), nil)
}

// ExportURL builds the spreadsheet download link for kind. The admin token
// travels as a query parameter because the link is opened without headers.
func (c *RESTClient) ExportURL(kind models.ExportKind, token string, f models.LogFilter) (string, error) {
	switch kind {
	case models.ExportUsers, models.ExportInvites, models.ExportLogs:
	default:
		return "", fmt.Errorf("unknown export %q", kind)
	}

	q := url.Values{"token": {token}}
	if kind == models.ExportLogs {
		for k, v := range logQuery(f) {
			q[k] = v
		}
	}
	return c.baseURL + "/admin/" + string(kind) + "/export?" + q.Encode(), nil
}

