package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/signpanel/internal/client/models"
)

// CreateForm publishes a share form. An empty BaseToken is filled from the
// client's credential source when that source carries one.
func (c *RESTClient) CreateForm(ctx context.Context, req models.CreateFormRequest) (*models.CreatedForm, error) {
	if req.BaseToken == "" && c.creds != nil {
		h := http.Header{}
		c.creds.Apply(h)
		req.BaseToken = h.Get(HeaderBaseToken)
	}

	var out models.CreatedForm
	if err := c.post(ctx, "/api/form/create", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) ListForms(ctx context.Context, createdBy string) ([]models.FormSummary, error) {
	var q url.Values
	if createdBy != "" {
		q = url.Values{"created_by": {createdBy}}
	}
	var out models.FormList
	if err := c.get(ctx, "/api/form/list", q, &out); err != nil {
		return nil, err
	}
	return out.Forms, nil
}

func (c *RESTClient) DeleteForm(ctx context.Context, formID string) error {
	return c.delete(ctx, "/api/form/"+url.PathEscape(formID), nil)
}

// ClearForms deletes every form created by createdBy and reports how many
// were removed. It stops at the first failure.
func (c *RESTClient) ClearForms(ctx context.Context, createdBy string) (int, error) {
	forms, err := c.ListForms(ctx, createdBy)
	if err != nil {
		return 0, err
	}
	for i, f := range forms {
		if err := c.DeleteForm(ctx, f.FormID); err != nil {
			return i, err
		}
	}
	return len(forms), nil
}

func (c *RESTClient) TableFields(ctx context.Context, appToken, tableID, baseToken string) ([]models.TableField, error) {
	q := url.Values{"app_token": {appToken}, "table_id": {tableID}}
	if baseToken != "" {
		q.Set("base_token", baseToken)
	}
	var out models.TableFields
	if err := c.get(ctx, "/api/form/table-fields", q, &out); err != nil {
		return nil, err
	}
	return out.Fields, nil
}

func (c *RESTClient) RecordCount(ctx context.Context, appToken, tableID, baseToken string) (int, error) {
	q := url.Values{"app_token": {appToken}, "table_id": {tableID}}
	if baseToken != "" {
		q.Set("base_token", baseToken)
	}
	var out models.RecordCount
	if err := c.get(ctx, "/api/form/record-count", q, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// RecordData fetches the record shown on a public form; it needs no
// credential.
func (c *RESTClient) RecordData(ctx context.Context, formID string) (models.RecordData, error) {
	var out models.RecordData
	req := Request{Path: "/api/form/" + url.PathEscape(formID) + "/record-data", Anonymous: true}
	if err := c.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}
