package services

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/signpanel/internal/client/models"
)

var ErrInvalidParams = errors.New("missing required parameters")

// anonymousID is what the workspace reports for users it could not identify.
const anonymousID = "anonymous"

// Parameter names reported in Missing.
const (
	ParamUserInfo    = "userInfo"
	ParamOpenID      = "openId"
	ParamTenantKey   = "tenantKey"
	ParamImage       = "blob"
	ParamFileName    = "fileName"
	ParamFolderToken = "folderToken"
)

var paramLabels = map[string]string{
	ParamOpenID:      "user ID",
	ParamTenantKey:   "tenant key",
	ParamImage:       "signature image",
	ParamFileName:    "file name",
	ParamFolderToken: "folder token",
}

// ValidationResult lists the missing parameters of a call.
type ValidationResult struct {
	Valid   bool
	Missing []string
}

func result(missing []string) ValidationResult {
	return ValidationResult{Valid: len(missing) == 0, Missing: missing}
}

// Err returns nil for a valid result and a *ValidationError otherwise.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Missing: r.Missing}
}

type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string { return MissingFieldsMessage(e.Missing) }

func (e *ValidationError) Unwrap() error { return ErrInvalidParams }

// ValidateUserInfo treats the "anonymous" placeholder as missing.
func ValidateUserInfo(u *models.Identity) ValidationResult {
	if u == nil {
		return result([]string{ParamUserInfo})
	}
	var missing []string
	if u.OpenID == "" || u.OpenID == anonymousID {
		missing = append(missing, ParamOpenID)
	}
	if u.TenantKey == "" || u.TenantKey == anonymousID {
		missing = append(missing, ParamTenantKey)
	}
	return result(missing)
}

func ValidateUploadParams(u models.SignatureUpload) ValidationResult {
	var missing []string
	for _, p := range []struct {
		name string
		ok   bool
	}{
		{ParamImage, len(u.Image) > 0},
		{ParamFileName, u.FileName != ""},
		{ParamFolderToken, u.FolderToken != ""},
		{ParamOpenID, u.OpenID != ""},
		{ParamTenantKey, u.TenantKey != ""},
	} {
		if !p.ok {
			missing = append(missing, p.name)
		}
	}
	return result(missing)
}

func ValidateQuotaParams(openID, tenantKey string) ValidationResult {
	var missing []string
	if openID == "" {
		missing = append(missing, ParamOpenID)
	}
	if tenantKey == "" {
		missing = append(missing, ParamTenantKey)
	}
	return result(missing)
}

// MissingFieldsMessage renders missing parameter names for display.
func MissingFieldsMessage(missing []string) string {
	names := make([]string, 0, len(missing))
	for _, m := range missing {
		if label, ok := paramLabels[m]; ok {
			names = append(names, label)
			continue
		}
		names = append(names, m)
	}
	return "missing required parameters: " + strings.Join(names, ", ")
}
