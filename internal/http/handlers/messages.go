package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/anita-ai/anita/internal/db/store"
	"github.com/anita-ai/anita/internal/metrics"
)

type createMessageRequest struct {
	Role       string  `json:"role" validate:"required,oneof=user assistant system"`
	Content    string  `json:"content" validate:"required"`
	ExternalID *string `json:"external_id"`
}

// HandleCreateMessage appends a message to a thread. A duplicate external_id
// returns 409 so callers can retry idempotently.
func (h *Handlers) HandleCreateMessage(c *echo.Context) error {
	threadID, ok, errResp := h.uuidParam(c, "id")
	if !ok {
		return errResp
	}
	var req createMessageRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	msg, err := h.Store.CreateMessage(c.Request().Context(), store.CreateMessageParams{
		ThreadID:   threadID,
		Role:       req.Role,
		Content:    req.Content,
		ExternalID: req.ExternalID,
	})
	if err != nil {
		return h.StoreError(c, err, "thread not found")
	}

	metrics.MessagesCreatedTotal.WithLabelValues(msg.Role).Inc()
	return c.JSON(http.StatusCreated, msg)
}

// HandleListMessages returns a thread's messages in chronological order.
func (h *Handlers) HandleListMessages(c *echo.Context) error {
	threadID, ok, errResp := h.uuidParam(c, "id")
	if !ok {
		return errResp
	}
	msgs, err := h.Store.ListMessagesByThread(c.Request().Context(), threadID)
	if err != nil {
		return h.StoreError(c, err, "thread not found")
	}
	return c.JSON(http.StatusOK, map[string]any{"messages": msgs})
}

// HandleGetMessageByExternalID looks a message up by its upstream id.
func (h *Handlers) HandleGetMessageByExternalID(c *echo.Context) error {
	externalID := strings.TrimSpace(c.Param("externalID"))
	if externalID == "" {
		return h.JSONError(c, http.StatusBadRequest, InvalidRequestCode, "externalID must not be blank")
	}
	msg, err := h.Store.GetMessageByExternalID(c.Request().Context(), externalID)
	if err != nil {
		return h.StoreError(c, err, "message not found")
	}
	return c.JSON(http.StatusOK, msg)
}
