package models

// TableField is a column of a workspace table as reported by
// /api/form/table-fields.
type TableField struct {
	FieldID     string   `json:"field_id"`
	FieldName   string   `json:"field_name"`
	Label       string   `json:"label"`
	Type        int      `json:"type"`
	InputType   string   `json:"input_type"`
	Options     []string `json:"options"`
	Required    bool     `json:"required"`
	Placeholder string   `json:"placeholder"`
}

// FieldSelection is a field picked for a share form.
type FieldSelection struct {
	FieldID     string   `json:"field_id"`
	FieldName   string   `json:"field_name"`
	Label       string   `json:"label"`
	Type        int      `json:"type"`
	InputType   string   `json:"input_type"`
	Options     []string `json:"options"`
	Required    bool     `json:"required"`
	Placeholder string   `json:"placeholder"`
}

// Selection copies f into a selection with Required cleared.
func (f TableField) Selection() FieldSelection {
	return FieldSelection{
		FieldID:     f.FieldID,
		FieldName:   f.FieldName,
		Label:       f.Label,
		Type:        f.Type,
		InputType:   f.InputType,
		Options:     append([]string(nil), f.Options...),
		Placeholder: f.Placeholder,
	}
}

// InputTypeAttachment marks fields that can hold the signature image.
const InputTypeAttachment = "attachment"

type TableFields struct {
	Success bool         `json:"success"`
	Fields  []TableField `json:"fields"`
}

// CreateFormRequest is the /api/form/create payload. Description is nil
// when blank.
type CreateFormRequest struct {
	Name             string           `json:"name"`
	Description      *string          `json:"description"`
	AppToken         string           `json:"app_token"`
	TableID          string           `json:"table_id"`
	SignatureFieldID *string          `json:"signature_field_id"`
	Fields           []FieldSelection `json:"fields"`
	CreatedBy        string           `json:"created_by,omitempty"`
	SessionID        string           `json:"session_id,omitempty"`
	RecordIndex      int              `json:"record_index"`
	ShowData         bool             `json:"show_data"`
	BaseToken        string           `json:"base_token,omitempty"`
}

type CreatedForm struct {
	Success  bool   `json:"success"`
	FormID   string `json:"form_id"`
	ShareURL string `json:"share_url"`
	HasAuth  bool   `json:"has_auth"`
}

type FormSummary struct {
	FormID      string `json:"form_id"`
	Name        string `json:"name"`
	SubmitCount int    `json:"submit_count"`
	CreatedAt   string `json:"created_at"`
}

type FormList struct {
	Forms []FormSummary `json:"forms"`
}

type RecordCount struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

// RecordData is the anonymous /api/form/{id}/record-data payload; its
// shape depends on the table so values stay raw.
type RecordData map[string]any
