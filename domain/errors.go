package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeRateLimited  ErrorCode = "RATE_LIMITED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrUserNotFound       = NewError(ErrCodeNotFound, "user not found")
	ErrUserExists         = NewError(ErrCodeConflict, "user with this email or login already exists")
	ErrUnauthorized       = NewError(ErrCodeUnauthorized, "you are not logged in")
	ErrInvalidCredentials = NewError(ErrCodeUnauthorized, "incorrect email or password")
	ErrWrongPassword      = NewError(ErrCodeUnauthorized, "current password is incorrect")
	ErrPasswordChanged    = NewError(ErrCodeUnauthorized, "password was changed recently, please log in again")
	ErrUserInactive       = NewError(ErrCodeUnauthorized, "the user belonging to this token no longer exists")
	ErrForbidden          = NewError(ErrCodeForbidden, "you do not have permission to perform this action")
	ErrResetTokenInvalid  = NewError(ErrCodeInvalid, "token is invalid or has expired")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, "invalid payload")
	ErrTooManyRequests    = NewError(ErrCodeRateLimited, "too many requests, please try again later")
)

// Code returns the classification of err, or ErrCodeInternal for foreign errors.
func Code(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ErrCodeInternal
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
