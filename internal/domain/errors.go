package domain

import (
	"errors"
	"fmt"
)

type ErrCode string

const (
	CodeValidation         ErrCode = "validation_error"
	CodeConflict           ErrCode = "conflict"
	CodeUnauthorized       ErrCode = "unauthorized"
	CodeInvalidCredentials ErrCode = "invalid_credentials"
	CodeForbidden          ErrCode = "forbidden"
	CodeAccountInactive    ErrCode = "account_inactive"
	CodeNotFound           ErrCode = "not_found"
	CodePayloadTooLarge    ErrCode = "payload_too_large"
	CodeRateLimited        ErrCode = "rate_limited"
)

type AppError struct {
	Code    ErrCode
	Message string
	Meta    map[string]string
}

func (e *AppError) Error() string {
	if len(e.Meta) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Meta)
}

// Is matches on Code so errors.Is(err, ErrConflict("")) style checks work.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func ErrValidation(msg string) error { return &AppError{Code: CodeValidation, Message: msg} }
func ErrValidationMeta(msg string, meta map[string]string) error {
	return &AppError{Code: CodeValidation, Message: msg, Meta: meta}
}
func ErrConflict(msg string) error     { return &AppError{Code: CodeConflict, Message: msg} }
func ErrUnauthorized(msg string) error { return &AppError{Code: CodeUnauthorized, Message: msg} }
func ErrInvalidCredentials() error {
	return &AppError{Code: CodeInvalidCredentials, Message: "invalid email or password"}
}
func ErrForbidden(msg string) error { return &AppError{Code: CodeForbidden, Message: msg} }
func ErrAccountInactive() error {
	return &AppError{Code: CodeAccountInactive, Message: "account is deactivated"}
}
func ErrNotFound(msg string) error        { return &AppError{Code: CodeNotFound, Message: msg} }
func ErrPayloadTooLarge(msg string) error { return &AppError{Code: CodePayloadTooLarge, Message: msg} }
func ErrRateLimited(msg string) error     { return &AppError{Code: CodeRateLimited, Message: msg} }

// HasCode reports whether err is an *AppError carrying code.
func HasCode(err error, code ErrCode) bool {
	ae, ok := AsAppError(err)
	return ok && ae.Code == code
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
