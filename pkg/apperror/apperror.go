// Package apperror gives every API failure a structured code. Handlers
// return *Error values and the Fiber error handler renders them as
// {"error": ..., "code": ...}; clients branch on the code instead of
// sniffing message substrings.
package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Code string

const (
	CodeValidation        Code = "validation"
	CodeNotFound          Code = "not_found"
	CodeConflict          Code = "conflict"
	CodeUnauthorized      Code = "unauthorized"
	CodeForbidden         Code = "forbidden"
	CodeTransitionBlocked Code = "transition_blocked"
	CodePayment           Code = "payment"
	CodeInternal          Code = "internal"
)

// codeStatus is the single code→HTTP status table.
var codeStatus = map[Code]int{
	CodeValidation:        fiber.StatusBadRequest,
	CodeNotFound:          fiber.StatusNotFound,
	CodeConflict:          fiber.StatusConflict,
	CodeUnauthorized:      fiber.StatusUnauthorized,
	CodeForbidden:         fiber.StatusForbidden,
	CodeTransitionBlocked: fiber.StatusConflict,
	CodePayment:           fiber.StatusBadGateway,
	CodeInternal:          fiber.StatusInternalServerError,
}

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) HTTPStatus() int {
	if status, ok := codeStatus[e.Code]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Respond writes an error response on the context, translating unknown
// errors into internal ones without leaking their details.
func Respond(c *fiber.Ctx, err error) error {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Wrap(CodeInternal, "Something went wrong", err)
	}
	return c.Status(appErr.HTTPStatus()).JSON(fiber.Map{
		"error": appErr.Message,
		"code":  appErr.Code,
	})
}

// ErrorHandler is the Fiber app-level error handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiberErr.Message,
			"code":  CodeInternal,
		})
	}
	return Respond(c, err)
}
