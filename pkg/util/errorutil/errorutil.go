package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes rendered to clients. The numeric ErrorCode lets frontends pick
// localized messages; the string Code is used in logs and metrics.
const (
	CodeInvalidParameter = "invalid_parameter"
	CodeEmailExists      = "email_exist"
	CodeFileUpload       = "file_upload_error"
	CodeInvalidToken     = "invalid_token"
	CodeNoUserFound      = "no_user_found"
	CodePermissionDenied = "permission_denied"
	CodeNotFound         = "not_found"
	CodeDBInsert         = "db_insert_error"
	CodeDBQuery          = "db_query_error"
	CodeDBUpdate         = "db_update_error"
)

var numericCodes = map[string]int{
	CodeInvalidParameter: 40000,
	CodeEmailExists:      40001,
	CodeFileUpload:       40002,
	CodeInvalidToken:     40100,
	CodeNoUserFound:      40101,
	CodePermissionDenied: 40302,
	CodeNotFound:         40400,
	CodeDBInsert:         50000,
	CodeDBQuery:          50001,
	CodeDBUpdate:         50002,
}

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	ErrorCode  int
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{
		Code:       code,
		ErrorCode:  numericCodes[code],
		Message:    message,
		HTTPStatus: status,
		Details:    details,
	}
}

func NewInvalidParameter(message string) error {
	return NewDomainError(CodeInvalidParameter, message, http.StatusBadRequest, nil)
}

func NewEmailExists() error {
	return NewDomainError(CodeEmailExists, "Email already registered", http.StatusBadRequest, nil)
}

// NewInvalidCredentials is returned for any login mismatch. It deliberately
// shares code and message for unknown email and wrong password.
func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidParameter, "Invalid email or password", http.StatusBadRequest, nil)
}

func NewFileUploadError(message string, details map[string]any) error {
	return NewDomainError(CodeFileUpload, message, http.StatusBadRequest, details)
}

func NewInvalidToken(message string) error {
	return NewDomainError(CodeInvalidToken, message, http.StatusUnauthorized, nil)
}

func NewNoUserFound() error {
	return NewDomainError(CodeNoUserFound, "User not found", http.StatusUnauthorized, nil)
}

func NewPermissionDenied(message string) error {
	return NewDomainError(CodePermissionDenied, message, http.StatusForbidden, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, details)
}

func NewStoreInsertError(message string, err error) error {
	return newStoreError(CodeDBInsert, message, err)
}

func NewStoreQueryError(message string, err error) error {
	return newStoreError(CodeDBQuery, message, err)
}

func NewStoreUpdateError(message string, err error) error {
	return newStoreError(CodeDBUpdate, message, err)
}

func newStoreError(code, message string, err error) error {
	de := NewDomainError(code, message, http.StatusInternalServerError, nil)
	de.Err = err
	return de
}

// ToDomainError converts generic errors to DomainError. Anything that is not
// already classified becomes an opaque internal failure.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "internal_error",
		ErrorCode:  50099,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// OrElse keeps classified errors and wraps anything else with fallback, which
// receives the raw cause.
func OrElse(err error, fallback func(error) error) error {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return fallback(err)
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
