package registry

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/anita-ai/anita/internal/metrics"
)

// Credentials is the opaque credential mapping an instructor supplies for an
// LMS connection. It is held only for the duration of a validation call and
// must never reach logs or responses unmasked.
type Credentials map[string]string

// ValidationResult is the standardized validation outcome across all LMS types.
// It is created once per validation run and not mutated afterwards.
type ValidationResult struct {
	IsValid            bool           `json:"is_valid"`
	Message            string         `json:"message"`
	Details            map[string]any `json:"details"`
	MissingPermissions []string       `json:"missing_permissions,omitempty"`
}

// Validator is the per-LMS validation contract. Implementations are
// single-use: bound to one credential set, no cross-call state.
type Validator interface {
	// Kind returns the LMS type identifier this validator serves.
	Kind() string

	// ValidateCredentialsStructure fails fast with *InvalidCredentialsError
	// when required credential fields are absent or malformed. No network.
	ValidateCredentialsStructure() error

	// TestConnection attempts one authenticated call. It never returns an
	// error: every client failure is translated into (false, message).
	TestConnection(ctx context.Context) (bool, string)

	// CheckPermissions probes the fixed set of required read operations.
	// A denied probe lands in missing; any other failure is returned as err
	// and treated as a connectivity problem by the pipeline.
	CheckPermissions(ctx context.Context) (ok bool, missing []string, err error)

	// Metadata collects best-effort connection metadata. Failures inside are
	// swallowed; the returned map is whatever could be gathered.
	Metadata(ctx context.Context) map[string]any
}

// Validate runs the full pipeline: structure check, connection test,
// permission probes, then metadata collection. It short-circuits on the first
// failure and never lets an error escape; callers always get a result.
func Validate(ctx context.Context, v Validator) ValidationResult {
	kind := v.Kind()
	start := time.Now()
	result := validate(ctx, v, kind)
	metrics.ValidationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	metrics.ValidationRunsTotal.WithLabelValues(kind, resultStatus(result)).Inc()
	return result
}

func validate(ctx context.Context, v Validator, kind string) ValidationResult {
	if err := v.ValidateCredentialsStructure(); err != nil {
		slog.Warn("lms credential structure check failed", "lms_type", kind, "error", err)
		return ValidationResult{
			IsValid: false,
			Message: err.Error(),
			Details: map[string]any{"error_type": "invalid_credentials"},
		}
	}

	connected, connMsg := v.TestConnection(ctx)
	if !connected {
		slog.Warn("lms connection test failed", "lms_type", kind, "message", connMsg)
		return ValidationResult{
			IsValid: false,
			Message: connMsg,
			Details: map[string]any{},
		}
	}

	ok, missing, err := v.CheckPermissions(ctx)
	if err != nil {
		slog.Warn("lms permission check errored", "lms_type", kind, "error", err)
		return ValidationResult{
			IsValid: false,
			Message: "Permission check failed: " + err.Error(),
			Details: map[string]any{"error_type": "permission_check_error"},
		}
	}
	if !ok {
		for _, perm := range missing {
			metrics.MissingPermissionsTotal.WithLabelValues(kind, perm).Inc()
		}
		slog.Warn("lms permissions missing", "lms_type", kind, "missing", missing)
		return ValidationResult{
			IsValid:            false,
			Message:            "Missing required permissions: " + strings.Join(missing, ", "),
			Details:            map[string]any{},
			MissingPermissions: missing,
		}
	}

	metadata := v.Metadata(ctx)
	if metadata == nil {
		metadata = map[string]any{}
	}
	slog.Info("lms validation succeeded", "lms_type", kind)
	return ValidationResult{
		IsValid: true,
		Message: "Connection validated successfully",
		Details: metadata,
	}
}

func resultStatus(result ValidationResult) string {
	if result.IsValid {
		return "valid"
	}
	if len(result.MissingPermissions) > 0 {
		return "missing_permissions"
	}
	if errType, ok := result.Details["error_type"].(string); ok && errType != "" {
		return errType
	}
	return "connection_failed"
}

// IsInvalidCredentials reports whether err is a structural credential error.
func IsInvalidCredentials(err error) bool {
	var ice *InvalidCredentialsError
	return errors.As(err, &ice)
}

// IsUnsupportedLMSType reports whether err marks an unknown LMS type.
func IsUnsupportedLMSType(err error) bool {
	var ue *UnsupportedLMSTypeError
	return errors.As(err, &ue)
}
