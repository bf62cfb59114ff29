package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
)

type createThreadRequest struct {
	InstructorID uuid.UUID `json:"instructor_id" validate:"required"`
	Title        string    `json:"title"`
}

type updateThreadRequest struct {
	Title string `json:"title" validate:"required"`
}

// HandleCreateThread starts a conversation. A blank title gets the default.
func (h *Handlers) HandleCreateThread(c *echo.Context) error {
	var req createThreadRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	thread, err := h.Store.CreateThread(c.Request().Context(), req.InstructorID, req.Title)
	if err != nil {
		return h.StoreError(c, err, "instructor not found")
	}
	return c.JSON(http.StatusCreated, thread)
}

func (h *Handlers) HandleGetThread(c *echo.Context) error {
	id, ok, errResp := h.uuidParam(c, "id")
	if !ok {
		return errResp
	}
	thread, err := h.Store.GetThread(c.Request().Context(), id)
	if err != nil {
		return h.StoreError(c, err, "thread not found")
	}
	return c.JSON(http.StatusOK, thread)
}

// HandleListInstructorThreads lists an instructor's threads, most recently
// active first.
func (h *Handlers) HandleListInstructorThreads(c *echo.Context) error {
	id, ok, errResp := h.uuidParam(c, "id")
	if !ok {
		return errResp
	}
	threads, err := h.Store.ListThreadsByInstructor(c.Request().Context(), id)
	if err != nil {
		return h.StoreError(c, err, "instructor not found")
	}
	return c.JSON(http.StatusOK, map[string]any{"threads": threads})
}

func (h *Handlers) HandleUpdateThread(c *echo.Context) error {
	id, ok, errResp := h.uuidParam(c, "id")
	if !ok {
		return errResp
	}
	var req updateThreadRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return h.JSONError(c, http.StatusBadRequest, InvalidRequestCode, "title must not be blank")
	}

	thread, err := h.Store.UpdateThreadTitle(c.Request().Context(), id, title)
	if err != nil {
		return h.StoreError(c, err, "thread not found")
	}
	return c.JSON(http.StatusOK, thread)
}

// HandleDeleteThread removes a thread and, via cascade, its messages.
func (h *Handlers) HandleDeleteThread(c *echo.Context) error {
	id, ok, errResp := h.uuidParam(c, "id")
	if !ok {
		return errResp
	}
	if err := h.Store.DeleteThread(c.Request().Context(), id); err != nil {
		return h.StoreError(c, err, "thread not found")
	}
	return c.NoContent(http.StatusNoContent)
}
