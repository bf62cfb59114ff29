package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/anita-ai/anita/internal/db/store"
	"github.com/anita-ai/anita/internal/lms/registry"
	"github.com/anita-ai/anita/internal/metrics"
	"github.com/anita-ai/anita/internal/security"
)

type lmsTypeInfo struct {
	Kind        string `json:"kind"`
	DisplayName string `json:"display_name"`
}

type validateConnectionRequest struct {
	LMSType     string            `json:"lms_type" validate:"required"`
	Credentials map[string]string `json:"credentials" validate:"required"`
}

type createConnectionRequest struct {
	InstructorID uuid.UUID         `json:"instructor_id" validate:"required"`
	LMSType      string            `json:"lms_type" validate:"required"`
	Name         string            `json:"name" validate:"required"`
	Credentials  map[string]string `json:"credentials" validate:"required"`
}

type updateConnectionRequest struct {
	Name        *string           `json:"name"`
	LMSType     *string           `json:"lms_type"`
	Credentials map[string]string `json:"credentials"`
	IsActive    *bool             `json:"is_active"`
}

type connectionWithValidation struct {
	Connection store.LMSConnection       `json:"connection"`
	Validation registry.ValidationResult `json:"validation"`
}

// maskedConnection copies a connection with every credential value masked.
// Raw values never leave the service.
func maskedConnection(conn store.LMSConnection) store.LMSConnection {
	conn.Credentials = security.MaskCredentialMap(conn.Credentials)
	return conn
}

func maskedConnections(conns []store.LMSConnection) []store.LMSConnection {
	out := make([]store.LMSConnection, len(conns))
	for i, conn := range conns {
		out[i] = maskedConnection(conn)
	}
	return out
}

// runValidation builds a validator for the type and runs the full pipeline
// under the configured timeout. The bool reports whether a result was
// produced; false means the type is unsupported and the response is written.
func (h *Handlers) runValidation(c *echo.Context, lmsType string, creds map[string]string) (registry.ValidationResult, bool, error) {
	v, err := h.Registry.Create(lmsType, registry.Credentials(creds))
	if err != nil {
		if registry.IsUnsupportedLMSType(err) {
			return registry.ValidationResult{}, false,
				h.JSONError(c, http.StatusUnprocessableEntity, UnsupportedLMSTypeCode, err.Error())
		}
		return registry.ValidationResult{}, false, h.StoreError(c, err, "")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.Cfg.ValidateTimeout)
	defer cancel()
	return registry.Validate(ctx, v), true, nil
}

// HandleListLMSTypes lists the registered LMS kinds.
func (h *Handlers) HandleListLMSTypes(c *echo.Context) error {
	defs := h.Registry.All()
	types := make([]lmsTypeInfo, 0, len(defs))
	for _, def := range defs {
		types = append(types, lmsTypeInfo{Kind: def.Kind(), DisplayName: def.DisplayName()})
	}
	return c.JSON(http.StatusOK, map[string]any{"types": types})
}

// HandleValidateConnection dry-runs credential validation without persisting
// anything. The result is returned as-is; is_valid carries the outcome.
func (h *Handlers) HandleValidateConnection(c *echo.Context) error {
	var req validateConnectionRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	result, ok, errResp := h.runValidation(c, req.LMSType, req.Credentials)
	if !ok {
		return errResp
	}
	return c.JSON(http.StatusOK, result)
}

// HandleCreateConnection validates credentials and persists the connection
// only when validation passes. A failed run returns 422 with the result so
// the client can show what went wrong.
func (h *Handlers) HandleCreateConnection(c *echo.Context) error {
	var req createConnectionRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	result, ok, errResp := h.runValidation(c, req.LMSType, req.Credentials)
	if !ok {
		return errResp
	}
	if !result.IsValid {
		return c.JSON(http.StatusUnprocessableEntity, result)
	}

	conn, err := h.Store.CreateConnection(c.Request().Context(), store.CreateConnectionParams{
		InstructorID: req.InstructorID,
		LMSType:      strings.ToLower(strings.TrimSpace(req.LMSType)),
		Name:         strings.TrimSpace(req.Name),
		Credentials:  req.Credentials,
	})
	if err != nil {
		return h.StoreError(c, err, "instructor not found")
	}

	metrics.ConnectionsCreatedTotal.WithLabelValues(conn.LMSType).Inc()
	return c.JSON(http.StatusCreated, connectionWithValidation{
		Connection: maskedConnection(conn),
		Validation: result,
	})
}

func (h *Handlers) HandleGetConnection(c *echo.Context) error {
	id, ok, errResp := h.uuidParam(c, "id")
	if !ok {
		return errResp
	}
	conn, err := h.Store.GetConnection(c.Request().Context(), id)
	if err != nil {
		return h.StoreError(c, err, "lms connection not found")
	}
	return c.JSON(http.StatusOK, maskedConnection(conn))
}

// HandleListInstructorConnections lists an instructor's connections;
// ?active_only=true filters out inactive ones.
func (h *Handlers) HandleListInstructorConnections(c *echo.Context) error {
	id, ok, errResp := h.uuidParam(c, "id")
	if !ok {
		return errResp
	}
	activeOnly := parseBoolQuery(c.QueryParam("active_only"))

	conns, err := h.Store.ListConnectionsByInstructor(c.Request().Context(), id, activeOnly)
	if err != nil {
		return h.StoreError(c, err, "instructor not found")
	}
	return c.JSON(http.StatusOK, map[string]any{"connections": maskedConnections(conns)})
}

// HandleUpdateConnection applies a partial update. Changing the credentials
// or the LMS type re-runs validation against the merged values before
// anything is stored.
func (h *Handlers) HandleUpdateConnection(c *echo.Context) error {
	id, ok, errResp := h.uuidParam(c, "id")
	if !ok {
		return errResp
	}
	var req updateConnectionRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	current, err := h.Store.GetConnection(ctx, id)
	if err != nil {
		return h.StoreError(c, err, "lms connection not found")
	}

	if req.Credentials != nil || req.LMSType != nil {
		lmsType := current.LMSType
		if req.LMSType != nil {
			lmsType = *req.LMSType
		}
		creds := current.Credentials
		if req.Credentials != nil {
			creds = req.Credentials
		}
		result, ok, errResp := h.runValidation(c, lmsType, creds)
		if !ok {
			return errResp
		}
		if !result.IsValid {
			return c.JSON(http.StatusUnprocessableEntity, result)
		}
	}

	conn, err := h.Store.UpdateConnection(ctx, id, store.UpdateConnectionParams{
		Name:        req.Name,
		LMSType:     req.LMSType,
		Credentials: req.Credentials,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return h.StoreError(c, err, "lms connection not found")
	}
	return c.JSON(http.StatusOK, maskedConnection(conn))
}

// HandleSyncConnection records a completed sync by bumping last_sync.
func (h *Handlers) HandleSyncConnection(c *echo.Context) error {
	id, ok, errResp := h.uuidParam(c, "id")
	if !ok {
		return errResp
	}
	conn, err := h.Store.TouchConnectionSync(c.Request().Context(), id, time.Now().UTC())
	if err != nil {
		return h.StoreError(c, err, "lms connection not found")
	}
	return c.JSON(http.StatusOK, maskedConnection(conn))
}

func (h *Handlers) HandleDeleteConnection(c *echo.Context) error {
	id, ok, errResp := h.uuidParam(c, "id")
	if !ok {
		return errResp
	}
	if err := h.Store.DeleteConnection(c.Request().Context(), id); err != nil {
		return h.StoreError(c, err, "lms connection not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func parseBoolQuery(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
