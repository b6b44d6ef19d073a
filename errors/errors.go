package errors

import (
	"errors"
	"fmt"
)

const (
	ErrNotFound     = "NOT FOUND"
	ErrInvalidInput = "INVALID INPUT"
	ErrAuth         = "UNAUTHORIZED"
	ErrAccessDenied = "ACCESS DENIED"
	ErrConflict     = "CONFLICT"
	ErrUnknownTool  = "UNKNOWN TOOL"
	ErrUpstream     = "UPSTREAM"
	ErrInternal     = "INTERNAL"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ErrorResponse) Error() string {
	return fmt.Sprintf("code: %s, message: %s", e.Code, e.Message)
}

func New(code string, message string) ErrorResponse {
	return ErrorResponse{Code: code, Message: message}
}

func Newf(code string, format string, args ...any) ErrorResponse {
	return ErrorResponse{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the error code from anywhere in the chain,
// falling back to INTERNAL for unrecognized errors.
func CodeOf(err error) string {
	var resp ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code
	}
	return ErrInternal
}

// Is reports whether the error carries the given code.
func Is(err error, code string) bool {
	return CodeOf(err) == code
}
