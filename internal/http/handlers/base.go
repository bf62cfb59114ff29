// Package handlers contains HTTP handler logic split by domain.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/anita-ai/anita/internal/config"
	"github.com/anita-ai/anita/internal/db/store"
	"github.com/anita-ai/anita/internal/lms/registry"
)

const (
	// ContextKeyRequestID stores the request id (X-Request-ID) for logging and client error references.
	ContextKeyRequestID = "request_id"

	// Stable error codes safe to return to clients.
	InternalErrorCode      = "INTERNAL_ERROR"
	NotFoundCode           = "NOT_FOUND"
	ConflictCode           = "CONFLICT"
	InvalidRequestCode     = "INVALID_REQUEST"
	RequestFailedCode      = "REQUEST_FAILED"
	UnsupportedLMSTypeCode = "UNSUPPORTED_LMS_TYPE"
	ValidationFailedCode   = "VALIDATION_FAILED"
)

// Handlers groups all HTTP handlers and shared dependencies.
type Handlers struct {
	Cfg      config.Config
	Store    *store.Store
	Registry *registry.Registry
}

// payloadValidator checks request struct tags after binding.
var payloadValidator = validator.New()

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

// ErrorEnvelope builds the standard JSON error body.
func ErrorEnvelope(code, message, requestID string) any {
	return errorBody{Error: errorDetail{Code: code, Message: message, RequestID: requestID}}
}

func requestID(c *echo.Context) string {
	if id, ok := c.Get(ContextKeyRequestID).(string); ok && id != "" {
		return id
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// JSONError responds with the standard error envelope.
func (h *Handlers) JSONError(c *echo.Context, status int, code, message string) error {
	return c.JSON(status, ErrorEnvelope(code, message, requestID(c)))
}

// StoreError maps store sentinel errors to HTTP statuses. Unknown errors are
// logged with the request id and reported as a generic 500.
func (h *Handlers) StoreError(c *echo.Context, err error, notFoundMessage string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return h.JSONError(c, http.StatusNotFound, NotFoundCode, notFoundMessage)
	case errors.Is(err, store.ErrConflict):
		return h.JSONError(c, http.StatusConflict, ConflictCode, "resource already exists")
	default:
		slog.Error("store operation failed",
			"request_id", requestID(c),
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
		return h.JSONError(c, http.StatusInternalServerError, InternalErrorCode, "Internal server error")
	}
}

// bindAndValidate decodes the JSON body and applies struct validation tags.
func (h *Handlers) bindAndValidate(c *echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return h.JSONError(c, http.StatusBadRequest, InvalidRequestCode, "malformed request body")
	}
	if err := payloadValidator.Struct(req); err != nil {
		return h.JSONError(c, http.StatusBadRequest, InvalidRequestCode, err.Error())
	}
	return nil
}

// uuidParam parses a path parameter as a UUID. The returned bool reports
// success; on failure the 400 response has already been written.
func (h *Handlers) uuidParam(c *echo.Context, name string) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false, h.JSONError(c, http.StatusBadRequest, InvalidRequestCode, name+" must be a valid UUID")
	}
	return id, true, nil
}
