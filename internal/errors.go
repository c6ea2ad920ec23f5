package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeUnavailable  ErrorType = "UNAVAILABLE"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeRequiredField    ErrorCode = "REQUIRED_FIELD"
	ErrCodeInvalidCPF       ErrorCode = "INVALID_CPF"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodeInvalidPeriod    ErrorCode = "INVALID_PERIOD"
	ErrCodeImmutableField   ErrorCode = "IMMUTABLE_FIELD"
	ErrCodeInvalidPassword  ErrorCode = "INVALID_PASSWORD"
	ErrCodePasswordMismatch ErrorCode = "PASSWORD_MISMATCH"
	ErrCodeInvalidImage     ErrorCode = "INVALID_IMAGE"

	ErrCodeMissingAppraiser ErrorCode = "MISSING_APPRAISER"

	ErrCodeDuplicateCPF         ErrorCode = "DUPLICATE_CPF"
	ErrCodeDuplicatePeriodEntry ErrorCode = "DUPLICATE_PERIOD_ENTRY"
	ErrCodeDuplicateAssociation ErrorCode = "DUPLICATE_ASSOCIATION"

	ErrCodeUserNotFound        ErrorCode = "USER_NOT_FOUND"
	ErrCodeActivityNotFound    ErrorCode = "ACTIVITY_NOT_FOUND"
	ErrCodePeriodNotFound      ErrorCode = "PERIOD_NOT_FOUND"
	ErrCodeAssociationNotFound ErrorCode = "ASSOCIATION_NOT_FOUND"

	ErrCodeReadOnly           ErrorCode = "READ_ONLY"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) fieldMessages() []string {
	ve, ok := e.Details.(ValidationErrors)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		out = append(out, fe.Message)
	}
	return out
}

func (e *AppError) Error() string {
	if msgs := e.fieldMessages(); len(msgs) > 0 {
		return msgs[0]
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// GetDetailedMessage joins the field messages, falling back to Message.
func (e *AppError) GetDetailedMessage() string {
	if msgs := e.fieldMessages(); len(msgs) > 0 {
		return strings.Join(msgs, "; ")
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so that sentinel values can be compared with errors.Is
// even after WithCause/WithDetails copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithCause returns a copy carrying cause. Sentinels are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func newAppError(typ ErrorType, code ErrorCode, status int, message string) *AppError {
	return &AppError{Type: typ, Code: code, Message: message, StatusCode: status}
}

// fieldErrors wraps a single field failure the way forms report it.
func fieldErrors(field, message string, code ErrorCode) ValidationErrors {
	return ValidationErrors{Errors: []ValidationError{{Field: field, Message: message, Code: string(code)}}}
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeValidation, code, http.StatusBadRequest, message)
}

// NewValidationFieldError reports one failing field; code lands on the field, not the error.
func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return NewValidationError("Validation failed", ErrCodeValidationFailed).
		WithDetails(fieldErrors(field, message, code))
}

func NewMissingAppraiserError() *AppError {
	const msg = "an appraiser must be selected for a new appraisee"
	return NewValidationError(msg, ErrCodeMissingAppraiser).
		WithDetails(fieldErrors("appraiser_id", msg, ErrCodeMissingAppraiser))
}

func NewDuplicateError(message string, code ErrorCode) *AppError {
	return NewConflictError(message, code)
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeNotFound, code, http.StatusNotFound, message)
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeUnauthorized, code, http.StatusUnauthorized, message)
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeForbidden, code, http.StatusForbidden, message)
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return newAppError(ErrorTypeConflict, code, http.StatusConflict, message)
}

func NewInternalError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, "INTERNAL_ERROR", http.StatusInternalServerError, message).WithCause(cause)
}

// NewConnectionError marks a failed round-trip to the store.
func NewConnectionError(cause error) *AppError {
	return newAppError(ErrorTypeUnavailable, ErrCodeStoreUnavailable, http.StatusServiceUnavailable, "store is unreachable").
		WithCause(cause)
}

var (
	ErrUserNotFound        = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrActivityNotFound    = NewNotFoundError("Activity not found", ErrCodeActivityNotFound)
	ErrPeriodNotFound      = NewNotFoundError("Evaluation period not found", ErrCodePeriodNotFound)
	ErrAssociationNotFound = NewNotFoundError("Association not found", ErrCodeAssociationNotFound)

	ErrReadOnly = NewForbiddenError("activity belongs to another user and is read-only", ErrCodeReadOnly)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid cpf or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)

	ErrConnection = NewConnectionError(nil)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is, or wraps, an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Code == code
}

func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnection)
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
