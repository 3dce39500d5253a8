// Package vcerrors defines the closed set of outcome codes shared between the
// VC registry and its gateway callers, plus a code-tagged error type services
// use to classify every fault before it crosses the transport boundary.
//
// Codes carry a fixed numeric family in their wire value: the VC_4xxx family
// is non-retryable client errors, the VC_5xxx family is retryable server
// errors. Retryability is derivable from the code alone.
package vcerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies one outcome of a registry operation.
type Code string

const (
	// 4xxx: non-retryable client errors.
	CodeWalletNotFound      Code = "VC_4001"
	CodeWalletAlreadyExists Code = "VC_4002"
	CodeGuardianNotFound    Code = "VC_4003"
	CodeVCNotFound          Code = "VC_4004"
	CodeInvalidSignature    Code = "VC_4005"
	CodeInvalidRequest      Code = "VC_4006"
	CodeUnauthorized        Code = "VC_4007"

	// 5xxx: retryable server errors.
	CodeDatabaseError      Code = "VC_5001"
	CodeTransactionFailed  Code = "VC_5002"
	CodeGRPCConnection     Code = "VC_5003"
	CodeInternal           Code = "VC_5004"
	CodeServiceUnavailable Code = "VC_5005"
)

// Codes lists every defined code. Tests assert the retryability property over
// the whole enumeration.
func Codes() []Code {
	return []Code{
		CodeWalletNotFound,
		CodeWalletAlreadyExists,
		CodeGuardianNotFound,
		CodeVCNotFound,
		CodeInvalidSignature,
		CodeInvalidRequest,
		CodeUnauthorized,
		CodeDatabaseError,
		CodeTransactionFailed,
		CodeGRPCConnection,
		CodeInternal,
		CodeServiceUnavailable,
	}
}

// Retryable reports whether a caller may safely retry the request. It is a
// pure function of the code's numeric family.
func (c Code) Retryable() bool {
	return strings.HasPrefix(string(c), "VC_5")
}

var defaultMessages = map[Code]string{
	CodeWalletNotFound:      "wallet is not registered",
	CodeWalletAlreadyExists: "wallet is already registered",
	CodeGuardianNotFound:    "guardian profile does not exist",
	CodeVCNotFound:          "credential does not exist",
	CodeInvalidSignature:    "invalid signature",
	CodeInvalidRequest:      "invalid request",
	CodeUnauthorized:        "unauthorized",
	CodeDatabaseError:       "database error",
	CodeTransactionFailed:   "transaction failed",
	CodeGRPCConnection:      "upstream connection failed",
	CodeInternal:            "internal server error",
	CodeServiceUnavailable:  "service temporarily unavailable",
}

// Message returns the default human-readable message for a code.
func (c Code) Message() string {
	if m, ok := defaultMessages[c]; ok {
		return m
	}
	return defaultMessages[CodeInternal]
}

// Error is a code-tagged error. Services return it (possibly wrapping a store
// fault) so the transport layer can build the response envelope without
// inspecting raw errors.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a tagged error with a custom message. An empty message falls back
// to the code's default; overriding the message never changes retryability.
func New(code Code, message string) *Error {
	if message == "" {
		message = code.Message()
	}
	return &Error{Code: code, Message: message}
}

// Wrap tags an underlying fault with a code while keeping the cause reachable
// through errors.Is/As.
func Wrap(err error, code Code, message string) *Error {
	if message == "" {
		message = code.Message()
	}
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the outermost code from an error chain. Untagged errors
// classify as CodeInternal so nothing leaves the system unclassified.
func CodeOf(err error) Code {
	var vcErr *Error
	if errors.As(err, &vcErr) {
		return vcErr.Code
	}
	return CodeInternal
}

// MessageOf returns the tagged message, falling back to the classified code's
// default for untagged errors.
func MessageOf(err error) string {
	var vcErr *Error
	if errors.As(err, &vcErr) {
		return vcErr.Message
	}
	return CodeOf(err).Message()
}

// HasCode reports whether the error chain carries the given code.
func HasCode(err error, code Code) bool {
	var vcErr *Error
	if errors.As(err, &vcErr) {
		return vcErr.Code == code
	}
	return false
}
