package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"vcregistry/pkg/vcerrors"
)

// successEnvelope is the uniform success wrapper. Every operation response
// crosses the boundary inside it.
type successEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// failureEnvelope is the uniform failure wrapper. Retryability is explicit so
// gateways implement backoff only for the server-error family.
type failureEnvelope struct {
	Success      bool   `json:"success"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
	Retryable    bool   `json:"retryable"`
	Timestamp    string `json:"timestamp"`
}

func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(successEnvelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func writeFailure(w http.ResponseWriter, err error) {
	code := vcerrors.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus(code))
	_ = json.NewEncoder(w).Encode(failureEnvelope{
		Success:      false,
		ErrorCode:    string(code),
		ErrorMessage: vcerrors.MessageOf(err),
		Retryable:    code.Retryable(),
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
}

func httpStatus(code vcerrors.Code) int {
	switch code {
	case vcerrors.CodeWalletNotFound, vcerrors.CodeGuardianNotFound, vcerrors.CodeVCNotFound:
		return http.StatusNotFound
	case vcerrors.CodeWalletAlreadyExists:
		return http.StatusConflict
	case vcerrors.CodeInvalidRequest, vcerrors.CodeInvalidSignature:
		return http.StatusBadRequest
	case vcerrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case vcerrors.CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
