package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeUnauthenticated ErrorType = "UNAUTHENTICATED"
	ErrorTypeForbidden       ErrorType = "FORBIDDEN"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeInternal        ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Time entry validation codes. These are the codes surfaced to API
	// clients inside ValidationErrors details.
	ErrCodeProjectInactive    ErrorCode = "PROJECT_INACTIVE"
	ErrCodeInvalidHours       ErrorCode = "INVALID_HOURS"
	ErrCodeTimeMismatch       ErrorCode = "TIME_MISMATCH"
	ErrCodeOverlappingEntry   ErrorCode = "OVERLAPPING_ENTRY"
	ErrCodeDailyLimitExceeded ErrorCode = "DAILY_LIMIT_EXCEEDED"
	ErrCodeFutureDate         ErrorCode = "FUTURE_DATE"

	ErrCodeEntryNotFound   ErrorCode = "ENTRY_NOT_FOUND"
	ErrCodeProjectNotFound ErrorCode = "PROJECT_NOT_FOUND"
	ErrCodeTeamNotFound    ErrorCode = "TEAM_NOT_FOUND"
	ErrCodeHolidayNotFound ErrorCode = "HOLIDAY_NOT_FOUND"
	ErrCodeCompanyNotFound ErrorCode = "COMPANY_NOT_FOUND"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeMissingTenant      ErrorCode = "MISSING_TENANT"
	ErrCodePermissionDenied   ErrorCode = "PERMISSION_DENIED"
	ErrCodeTenantMismatch     ErrorCode = "TENANT_MISMATCH"

	ErrCodeInvalidDate ErrorCode = "INVALID_DATE"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthenticatedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthenticated,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrEntryNotFound   = NewNotFoundError("time entry not found", ErrCodeEntryNotFound)
	ErrProjectNotFound = NewNotFoundError("project not found", ErrCodeProjectNotFound)
	ErrTeamNotFound    = NewNotFoundError("team not found", ErrCodeTeamNotFound)
	ErrHolidayNotFound = NewNotFoundError("holiday not found", ErrCodeHolidayNotFound)
	ErrCompanyNotFound = NewNotFoundError("company not found", ErrCodeCompanyNotFound)

	ErrInvalidCredentials = NewUnauthenticatedError("invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("user account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthenticatedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthenticatedError("token has expired", ErrCodeTokenExpired)

	// ErrMissingTenant guards the fail-closed rule: an identity without a
	// company scope must never fall through to an unscoped query.
	ErrMissingTenant    = NewForbiddenError("identity has no company scope", ErrCodeMissingTenant)
	ErrPermissionDenied = NewForbiddenError("insufficient permissions", ErrCodePermissionDenied)
	ErrTenantMismatch   = NewForbiddenError("resource belongs to another company", ErrCodeTenantMismatch)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
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
