package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/dmitrijs2005/signpanel/internal/client/models"
)

func userQuery(openID, tenantKey string) url.Values {
	return url.Values{"open_id": {openID}, "tenant_key": {tenantKey}}
}

func (c *RESTClient) QuotaStatus(ctx context.Context, openID, tenantKey string) (*models.QuotaStatus, error) {
	var out models.QuotaStatus
	if err := c.get(ctx, "/api/quota/status", userQuery(openID, tenantKey), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) QuotaCheck(ctx context.Context, openID, tenantKey string) (*models.QuotaCheck, error) {
	var out models.QuotaCheck
	if err := c.get(ctx, "/api/quota/check", userQuery(openID, tenantKey), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// QuotaConsume records one signature against the user's quota. The backend
// takes its arguments as query parameters.
func (c *RESTClient) QuotaConsume(ctx context.Context, p models.QuotaConsume) error {
	q := userQuery(p.OpenID, p.TenantKey)
	if p.FileToken != "" {
		q.Set("file_token", p.FileToken)
	}
	if p.FileName != "" {
		q.Set("file_name", p.FileName)
	}
	return c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/quota/consume", Query: q}, nil)
}

func (c *RESTClient) ValidateInvite(ctx context.Context, code string) (*models.InviteValidation, error) {
	var out models.InviteValidation
	if err := c.post(ctx, "/api/invite/validate", map[string]string{"code": code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) RedeemInvite(ctx context.Context, req models.InviteRedeemRequest) (*models.InviteRedemption, error) {
	var out models.InviteRedemption
	if err := c.post(ctx, "/api/invite/redeem", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PricingPlans accepts either {"plans": [...]} or a bare array; any other
// shape yields an empty list.
func (c *RESTClient) PricingPlans(ctx context.Context) ([]models.PricingPlan, error) {
	var raw []byte
	if err := c.get(ctx, "/api/pricing/plans", nil, &raw); err != nil {
		return nil, err
	}
	return parsePlans(raw)
}

func parsePlans(raw []byte) ([]models.PricingPlan, error) {
	plans := []models.PricingPlan{}
	if !gjson.ValidBytes(raw) {
		return plans, nil
	}

	res := gjson.ParseBytes(raw)
	if !res.IsArray() {
		res = res.Get("plans")
	}
	if !res.IsArray() {
		return plans, nil
	}

	if err := json.Unmarshal([]byte(res.Raw), &plans); err != nil {
		return nil, fmt.Errorf("decode pricing plans: %w", err)
	}
	return plans, nil
}

func (c *RESTClient) CreateOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error) {
	var out models.Order
	if err := c.post(ctx, "/api/payment/create", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) OrderStatus(ctx context.Context, orderID string) (*models.OrderStatus, error) {
	var out models.OrderStatus
	if err := c.get(ctx, "/api/payment/status/"+url.PathEscape(orderID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) CreateAlipayOrder(ctx context.Context, req models.AlipayOrderRequest) (*models.AlipayOrder, error) {
	if req.PayType == "" {
		req.PayType = models.PayTypeNative
	}
	var out models.AlipayOrder
	if err := c.post(ctx, "/api/payment/alipay/create", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) QueryAlipayOrder(ctx context.Context, orderID string) (*models.AlipayQuery, error) {
	var out models.AlipayQuery
	if err := c.get(ctx, "/api/payment/alipay/query", url.Values{"order_id": {orderID}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadSignature sends the signature image as multipart form data and
// returns the stored file token.
func (c *RESTClient) UploadSignature(ctx context.Context, u models.SignatureUpload) (string, error) {
	body, contentType, err := signatureForm(u)
	if err != nil {
		return "", err
	}

	var out models.UploadResult
	req := Request{Method: http.MethodPost, Path: "/api/sign/upload", RawBody: body, ContentType: contentType}
	if err := c.Do(ctx, req, &out); err != nil {
		return "", err
	}
	return out.FileToken, nil
}

func signatureForm(u models.SignatureUpload) ([]byte, string, error) {
	name := u.FileName
	if name == "" {
		name = models.DefaultSignatureFileName
	}
	hasQuota := "0"
	if u.HasQuota {
		hasQuota = "1"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(u.Image); err != nil {
		return nil, "", fmt.Errorf("build upload form: %w", err)
	}

	for _, f := range [][2]string{
		{"file_name", name},
		{"folder_token", u.FolderToken},
		{"open_id", u.OpenID},
		{"tenant_key", u.TenantKey},
		{"has_quota", hasQuota},
	} {
		// optional identifiers are omitted rather than sent empty
		if f[1] == "" {
			continue
		}
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("build upload form: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("build upload form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
