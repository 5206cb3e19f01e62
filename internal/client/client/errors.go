package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

var (
	ErrUnavailable     = errors.New("server unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrPaymentRequired = errors.New("payment required")
	ErrRateLimited     = errors.New("rate limited")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status int
	Code   string
	Detail string
	Method string
	Path   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Detail)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized, e.Status == http.StatusForbidden:
		return ErrUnauthorized
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusPaymentRequired:
		return ErrPaymentRequired
	case e.Status == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.Status >= 500:
		return ErrUnavailable
	}
	return nil
}

// newAPIError reads the detail the way the backend reports it: a string
// "detail", the first message of a validation "detail" array, a "message",
// and finally the HTTP status text.
func newAPIError(method, path string, status int, body []byte) *APIError {
	e := &APIError{Status: status, Method: method, Path: path}

	if gjson.ValidBytes(body) {
		res := gjson.ParseBytes(body)
		detail := res.Get("detail")
		switch {
		case detail.Type == gjson.String:
			e.Detail = detail.String()
		case detail.IsArray():
			e.Detail = detail.Get("0.msg").String()
		case detail.IsObject():
			e.Detail = detail.Get("message").String()
			e.Code = detail.Get("code").String()
		}
		if e.Detail == "" {
			e.Detail = res.Get("message").String()
		}
		if e.Code == "" {
			e.Code = res.Get("code").String()
		}
	}
	if e.Detail == "" {
		e.Detail = http.StatusText(status)
	}
	return e
}

// Detail returns the backend message carried by err, or err.Error() when
// err did not come from a response.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return err.Error()
}
