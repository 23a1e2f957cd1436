package errors

import (
	"fmt"
	"net/http"
)

// Kind tags an APIError with its place in the error taxonomy
type Kind string

const (
	KindValidation      Kind = "validation"
	KindUnauthorized    Kind = "unauthorized"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindTooManyRequests Kind = "too_many_requests"
	KindInternal        Kind = "internal"
)

// APIError represents a custom error type for API responses
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Kind    Kind   `json:"kind"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

// Error returns the error message
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on Code so that copies made by WithDetails still compare equal
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails returns a copy of e carrying details
func (e *APIError) WithDetails(details string) *APIError {
	cp := *e
	cp.Details = details
	return &cp
}

func NewAPIError(code, message string, status int, details ...string) *APIError {
	err := &APIError{
		Code:    code,
		Message: message,
		Kind:    kindForStatus(status),
		Status:  status,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindUnauthorized
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusTooManyRequests:
		return KindTooManyRequests
	default:
		return KindInternal
	}
}

var (
	ErrInvalidInput    = NewAPIError("INVALID_INPUT", "Invalid request data", http.StatusBadRequest)
	ErrUnauthorized    = NewAPIError("UNAUTHORIZED", "Not authenticated", http.StatusUnauthorized)
	ErrNotFound        = NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrInternal        = NewAPIError("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
	ErrTooManyRequests = NewAPIError("TOO_MANY_REQUESTS", "Too many requests", http.StatusTooManyRequests)
)

// Domain errors
var (
	ErrDuplicateEmail     = NewAPIError("DUPLICATE_EMAIL", "User already exists", http.StatusConflict)
	ErrInvalidCredentials = NewAPIError("INVALID_CREDENTIALS", "Invalid credentials", http.StatusUnauthorized)
	ErrNotAuthorized      = NewAPIError("NOT_AUTHORIZED", "Not authorized", http.StatusUnauthorized)
	ErrUserNotFound       = NewAPIError("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	ErrTargetNotFound     = NewAPIError("TARGET_NOT_FOUND", "User not found", http.StatusNotFound)
	ErrSelfFriendRequest  = NewAPIError("SELF_FRIEND_REQUEST", "Cannot add yourself as friend", http.StatusConflict)
	ErrDuplicateRequest   = NewAPIError("DUPLICATE_REQUEST", "Friend request already sent", http.StatusConflict)
	ErrAlreadyFriends     = NewAPIError("ALREADY_FRIENDS", "Already friends", http.StatusConflict)
	ErrRequestNotFound    = NewAPIError("REQUEST_NOT_FOUND", "Friend request not found", http.StatusNotFound)
	ErrRequestNotPending  = NewAPIError("REQUEST_NOT_PENDING", "Friend request is no longer pending", http.StatusConflict)
	ErrInvalidAction      = NewAPIError("INVALID_ACTION", "Invalid action", http.StatusBadRequest)
	ErrInvalidCoordinates = NewAPIError("INVALID_COORDINATES", "Invalid coordinates", http.StatusBadRequest)
)

func Wrap(err error, code, message string, status int) *APIError {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}
	return NewAPIError(code, message, status, err.Error())
}

// Internal wraps an unexpected error as a 500
func Internal(err error, message string) *APIError {
	return Wrap(err, ErrInternal.Code, message, http.StatusInternalServerError)
}
