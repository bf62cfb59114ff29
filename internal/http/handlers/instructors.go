package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"
)

type createInstructorRequest struct {
	ClerkUserID string `json:"clerk_user_id" validate:"required"`
}

type updateInstructorRequest struct {
	OnboardingCompleted *bool `json:"onboarding_completed" validate:"required"`
}

// HandleCreateInstructor registers a new instructor account keyed by its
// Clerk user id.
func (h *Handlers) HandleCreateInstructor(c *echo.Context) error {
	var req createInstructorRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}
	clerkUserID := strings.TrimSpace(req.ClerkUserID)
	if clerkUserID == "" {
		return h.JSONError(c, http.StatusBadRequest, InvalidRequestCode, "clerk_user_id must not be blank")
	}

	instructor, err := h.Store.CreateInstructor(c.Request().Context(), clerkUserID)
	if err != nil {
		return h.StoreError(c, err, "instructor not found")
	}
	return c.JSON(http.StatusCreated, instructor)
}

func (h *Handlers) HandleGetInstructor(c *echo.Context) error {
	id, ok, errResp := h.uuidParam(c, "id")
	if !ok {
		return errResp
	}
	instructor, err := h.Store.GetInstructor(c.Request().Context(), id)
	if err != nil {
		return h.StoreError(c, err, "instructor not found")
	}
	return c.JSON(http.StatusOK, instructor)
}

func (h *Handlers) HandleGetInstructorByClerkID(c *echo.Context) error {
	clerkUserID := strings.TrimSpace(c.Param("clerkUserID"))
	if clerkUserID == "" {
		return h.JSONError(c, http.StatusBadRequest, InvalidRequestCode, "clerkUserID must not be blank")
	}
	instructor, err := h.Store.GetInstructorByClerkID(c.Request().Context(), clerkUserID)
	if err != nil {
		return h.StoreError(c, err, "instructor not found")
	}
	return c.JSON(http.StatusOK, instructor)
}

func (h *Handlers) HandleUpdateInstructor(c *echo.Context) error {
	id, ok, errResp := h.uuidParam(c, "id")
	if !ok {
		return errResp
	}
	var req updateInstructorRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	instructor, err := h.Store.SetInstructorOnboarding(c.Request().Context(), id, *req.OnboardingCompleted)
	if err != nil {
		return h.StoreError(c, err, "instructor not found")
	}
	return c.JSON(http.StatusOK, instructor)
}

func (h *Handlers) HandleDeleteInstructor(c *echo.Context) error {
	id, ok, errResp := h.uuidParam(c, "id")
	if !ok {
		return errResp
	}
	if err := h.Store.DeleteInstructor(c.Request().Context(), id); err != nil {
		return h.StoreError(c, err, "instructor not found")
	}
	return c.NoContent(http.StatusNoContent)
}
