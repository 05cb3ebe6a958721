// Package response defines the JSON envelope every API response is wrapped in
// and writers for handlers that sit outside the huma operation table.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/chroniclesapp/chronicles-server/internal/errors"
)

// Version is the envelope format version sent as "v".
const Version = 1

// Envelope is the success shape: {"v":1,"success":true,"data":...}.
type Envelope struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorEnvelope is the failure shape. Error repeats Message so clients that
// only read a single string still get something readable.
type ErrorEnvelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Wrap returns the success envelope for data.
func Wrap(data any) Envelope {
	return Envelope{V: Version, Success: true, Data: data}
}

// WrapError returns the failure envelope for a coded error.
func WrapError(code, message string, details any) ErrorEnvelope {
	return ErrorEnvelope{
		V:       Version,
		Error:   message,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// JSON writes data wrapped in the success envelope.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	write(w, status, Wrap(data), logger)
}

// Error writes a failure envelope with the given status and code.
func Error(w http.ResponseWriter, status int, code domainerrors.Code, message string, logger *slog.Logger) {
	write(w, status, WrapError(string(code), message, nil), logger)
}

// NotFound writes a 404 failure envelope.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, domainerrors.CodeNotFound, message, logger)
}

// TooManyRequests writes a 429 failure envelope.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusTooManyRequests, domainerrors.CodeRateLimited, message, logger)
}

// HandleError writes the envelope matching err. Coded domain errors keep
// their status; anything else is logged and reported as a 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		write(w, domainErr.HTTPStatus(), WrapError(string(domainErr.Code), domainErr.Message, domainErr.Details), logger)
		return
	}

	if logger != nil {
		logger.Error("unhandled error", "error", err)
	}
	Error(w, http.StatusInternalServerError, domainerrors.CodeInternal, "internal server error", logger)
}

func write(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil && logger != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
