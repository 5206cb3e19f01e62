package services

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/signpanel/internal/client/client"
	"github.com/dmitrijs2005/signpanel/internal/client/models"
	"github.com/dmitrijs2005/signpanel/internal/logging"
)

// DefaultPublicOrigin is used for share links when no public origin is set.
const DefaultPublicOrigin = "http://localhost:5173"

const (
	msgFormNameRequired = "please enter a form name"
	msgFieldsRequired   = "select at least one field"
	msgAuthorizeFirst   = `authorize first with the "auth" command`
	msgTableUnknown     = "cannot determine the table"
	msgFieldsLoadFailed = "failed to load the field list"
	msgFormCreated      = "share form created"
	msgFormAuthMissing  = "form created, but saving the authorization failed"
	msgFormRejected     = "create failed: the form was rejected"
)

type ShareStep int

const (
	StepBasicInfo ShareStep = iota
	StepFieldSelection
)

// FormAPI is the part of the REST client the share-form builder needs.
type FormAPI interface {
	TableFields(ctx context.Context, appToken, tableID, baseToken string) ([]models.TableField, error)
	CreateForm(ctx context.Context, req models.CreateFormRequest) (*models.CreatedForm, error)
}

// BaseTokenSource resolves the manual access token of a table.
type BaseTokenSource interface {
	BaseToken(appToken string) string
}

// SubmitParams identify the table and the creator of a share form. The
// credential check uses Auth when set and falls back to SessionID.
type SubmitParams struct {
	TableID   string
	CreatedBy string
	SessionID string
	Auth      Authorizer
}

func (p SubmitParams) hasCredential() bool {
	if p.Auth != nil {
		return p.Auth.Authorized()
	}
	return p.SessionID != ""
}

// ShareForm builds a share-form draft in two steps: basic info, then
// field selection.
type ShareForm struct {
	api          FormAPI
	tokens       BaseTokenSource
	clip         *Clipboard
	publicOrigin string
	log          logging.Logger

	mu           sync.RWMutex
	name         string
	description  string
	shareURL     string
	available    []models.TableField
	selected     []models.FieldSelection
	loading      bool
	showSelector bool
	appToken     string
	recordIndex  int
	showData     bool
}

func NewShareForm(api FormAPI, tokens BaseTokenSource, clip *Clipboard, publicOrigin string, log logging.Logger) *ShareForm {
	if log == nil {
		log = logging.Nop()
	}
	if publicOrigin == "" {
		publicOrigin = DefaultPublicOrigin
	}
	return &ShareForm{
		api:          api,
		tokens:       tokens,
		clip:         clip,
		publicOrigin: strings.TrimRight(publicOrigin, "/"),
		log:          log,
		recordIndex:  1,
	}
}

func (f *ShareForm) SetName(name string) {
	f.mu.Lock()
	f.name = name
	f.mu.Unlock()
}

func (f *ShareForm) Name() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.name
}

func (f *ShareForm) SetDescription(desc string) {
	f.mu.Lock()
	f.description = desc
	f.mu.Unlock()
}

func (f *ShareForm) Description() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.description
}

// SetRecordIndex picks the 1-based record shown to signers; values below 1
// are ignored.
func (f *ShareForm) SetRecordIndex(i int) {
	if i < 1 {
		return
	}
	f.mu.Lock()
	f.recordIndex = i
	f.mu.Unlock()
}

func (f *ShareForm) RecordIndex() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.recordIndex
}

func (f *ShareForm) SetShowData(show bool) {
	f.mu.Lock()
	f.showData = show
	f.mu.Unlock()
}

func (f *ShareForm) ShowData() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.showData
}

func (f *ShareForm) Step() ShareStep {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.showSelector {
		return StepFieldSelection
	}
	return StepBasicInfo
}

func (f *ShareForm) ShareURL() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.shareURL
}

func (f *ShareForm) AppToken() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.appToken
}

func (f *ShareForm) Loading() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loading
}

func (f *ShareForm) AvailableFields() []models.TableField {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]models.TableField(nil), f.available...)
}

func (f *ShareForm) SelectedFields() []models.FieldSelection {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]models.FieldSelection(nil), f.selected...)
}

// GoToFieldSelector advances to field selection once the form has a name.
func (f *ShareForm) GoToFieldSelector(n Notifier) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.TrimSpace(f.name) == "" {
		notify(n, ToastWarning, msgFormNameRequired)
		return false
	}
	f.showSelector = true
	return true
}

func (f *ShareForm) GoBackToBasicInfo() {
	f.mu.Lock()
	f.showSelector = false
	f.mu.Unlock()
}

// LoadTableFields replaces the available fields with the table's columns.
// The table becomes the draft's app token even when the load fails.
func (f *ShareForm) LoadTableFields(ctx context.Context, appToken, tableID string, n Notifier) {
	f.mu.Lock()
	f.appToken = appToken
	if appToken == "" || tableID == "" {
		f.mu.Unlock()
		notify(n, ToastWarning, msgTableUnknown)
		return
	}
	f.loading = true
	f.mu.Unlock()

	var baseToken string
	if f.tokens != nil {
		baseToken = f.tokens.BaseToken(appToken)
	}
	fields, err := f.api.TableFields(ctx, appToken, tableID, baseToken)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	if err != nil {
		f.log.Error(ctx, "loading table fields", "table", tableID, "error", err)
		notify(n, ToastError, msgFieldsLoadFailed)
		f.available = nil
		return
	}
	f.available = fields
}

func (f *ShareForm) indexOf(fieldID string) int {
	for i, s := range f.selected {
		if s.FieldID == fieldID {
			return i
		}
	}
	return -1
}

// ToggleFieldSelection adds field as optional, or removes it when it is
// already selected.
func (f *ShareForm) ToggleFieldSelection(field models.TableField) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.indexOf(field.FieldID); i >= 0 {
		f.selected = append(f.selected[:i:i], f.selected[i+1:]...)
		return
	}
	f.selected = append(f.selected, field.Selection())
}

func (f *ShareForm) IsFieldSelected(fieldID string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.indexOf(fieldID) >= 0
}

func (f *ShareForm) ToggleRequired(fieldID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.indexOf(fieldID); i >= 0 {
		f.selected[i].Required = !f.selected[i].Required
	}
}

// SignatureField is the first selected attachment field.
func (f *ShareForm) SignatureField() (models.FieldSelection, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.signatureField()
}

func (f *ShareForm) signatureField() (models.FieldSelection, bool) {
	for _, s := range f.selected {
		if s.InputType == models.InputTypeAttachment {
			return s, true
		}
	}
	return models.FieldSelection{}, false
}

// Submit creates the share form. Each unmet precondition produces its own
// warning and the draft is left untouched. After a successful create the
// step state is reset while the name and description are kept.
func (f *ShareForm) Submit(ctx context.Context, p SubmitParams, n Notifier) (bool, error) {
	f.mu.RLock()
	name := strings.TrimSpace(f.name)
	ok := true
	if name == "" {
		notify(n, ToastWarning, msgFormNameRequired)
		ok = false
	}
	if len(f.selected) == 0 {
		notify(n, ToastWarning, msgFieldsRequired)
		ok = false
	}
	if !p.hasCredential() {
		notify(n, ToastWarning, msgAuthorizeFirst)
		ok = false
	}
	if !ok {
		f.mu.RUnlock()
		return false, nil
	}

	req := models.CreateFormRequest{
		Name:        name,
		AppToken:    f.appToken,
		TableID:     p.TableID,
		Fields:      append([]models.FieldSelection(nil), f.selected...),
		CreatedBy:   p.CreatedBy,
		SessionID:   p.SessionID,
		RecordIndex: f.recordIndex,
		ShowData:    f.showData,
	}
	if desc := strings.TrimSpace(f.description); desc != "" {
		req.Description = &desc
	}
	if sig, found := f.signatureField(); found {
		id := sig.FieldID
		req.SignatureFieldID = &id
	}
	f.mu.RUnlock()

	created, err := f.api.CreateForm(ctx, req)
	if err != nil {
		f.log.Error(ctx, "creating share form", "name", name, "error", err)
		notify(n, ToastError, "create failed: "+client.Detail(err))
		return false, err
	}
	if !created.Success {
		notify(n, ToastError, msgFormRejected)
		return false, nil
	}

	f.mu.Lock()
	f.shareURL = f.publicOrigin + "/sign?id=" + created.FormID
	f.showSelector = false
	f.selected = nil
	f.recordIndex = 1
	f.mu.Unlock()

	f.log.Info(ctx, "share form created", "form_id", created.FormID, "has_auth", created.HasAuth)
	if created.HasAuth {
		notify(n, ToastSuccess, msgFormCreated)
	} else {
		notify(n, ToastWarning, msgFormAuthMissing)
	}
	return true, nil
}

// Reset clears the whole draft. Loaded table fields are kept.
func (f *ShareForm) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.name = ""
	f.description = ""
	f.shareURL = ""
	f.selected = nil
	f.showSelector = false
	f.recordIndex = 1
	f.showData = false
}

// CopyShareURL copies the generated link; it does nothing before a form
// was created.
func (f *ShareForm) CopyShareURL(ctx context.Context, n Notifier) bool {
	u := f.ShareURL()
	if u == "" || f.clip == nil {
		return false
	}
	return f.clip.Copy(ctx, u, n)
}

var fieldTypeNames = map[string]string{
	"text":        "Text",
	"number":      "Number",
	"select":      "Single select",
	"multiselect": "Multi select",
	"date":        "Date",
	"checkbox":    "Checkbox",
	"phone":       "Phone",
	"email":       "Email",
	"url":         "Link",
	"attachment":  "Attachment/Signature",
}

// FieldTypeName is the display name of an input type; unknown types are
// returned as is.
func FieldTypeName(inputType string) string {
	if name, ok := fieldTypeNames[inputType]; ok {
		return name
	}
	return inputType
}
