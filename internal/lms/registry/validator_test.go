package registry

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
)

func TestValidateStructureFailureSkipsNetwork(t *testing.T) {
	v := &fakeValidator{
		kind:         "canvas",
		structureErr: &InvalidCredentialsError{Reason: "Missing 'base_url' in credentials"},
	}

	result := Validate(context.Background(), v)
	if result.IsValid {
		t.Fatal("expected invalid result")
	}
	if result.Message != "Missing 'base_url' in credentials" {
		t.Fatalf("Message = %q", result.Message)
	}
	if v.connectionCalls != 0 || v.permissionCalls != 0 {
		t.Fatalf("expected no network calls, got conn=%d perm=%d", v.connectionCalls, v.permissionCalls)
	}
}

func TestValidateConnectionFailureShortCircuits(t *testing.T) {
	v := &fakeValidator{
		kind:    "canvas",
		connOK:  false,
		connMsg: "Invalid API token",
	}

	result := Validate(context.Background(), v)
	if result.IsValid {
		t.Fatal("expected invalid result")
	}
	if result.Message != "Invalid API token" {
		t.Fatalf("Message = %q", result.Message)
	}
	if v.permissionCalls != 0 {
		t.Fatalf("permission check ran after connection failure")
	}
	if result.MissingPermissions != nil {
		t.Fatalf("MissingPermissions = %v, want nil", result.MissingPermissions)
	}
}

func TestValidateMissingPermissions(t *testing.T) {
	v := &fakeValidator{
		kind:        "canvas",
		connOK:      true,
		permOK:      false,
		permMissing: []string{"read_students"},
	}

	result := Validate(context.Background(), v)
	if result.IsValid {
		t.Fatal("expected invalid result")
	}
	if !reflect.DeepEqual(result.MissingPermissions, []string{"read_students"}) {
		t.Fatalf("MissingPermissions = %v", result.MissingPermissions)
	}
	if result.Message != "Missing required permissions: read_students" {
		t.Fatalf("Message = %q", result.Message)
	}
}

func TestValidatePermissionErrorIsConnectivityFailure(t *testing.T) {
	v := &fakeValidator{
		kind:    "canvas",
		connOK:  true,
		permOK:  false,
		permErr: context.DeadlineExceeded,
	}

	result := Validate(context.Background(), v)
	if result.IsValid {
		t.Fatal("expected invalid result")
	}
	if result.MissingPermissions != nil {
		t.Fatalf("MissingPermissions = %v, want nil", result.MissingPermissions)
	}
	if result.Details["error_type"] != "permission_check_error" {
		t.Fatalf("Details = %v", result.Details)
	}
}

func TestValidateSuccessCollectsMetadata(t *testing.T) {
	v := &fakeValidator{
		kind:     "canvas",
		connOK:   true,
		permOK:   true,
		metadata: map[string]any{"canvas_user_name": "Prof. Xu"},
	}

	result := Validate(context.Background(), v)
	if !result.IsValid {
		t.Fatalf("expected valid result, got message %q", result.Message)
	}
	if result.Message != "Connection validated successfully" {
		t.Fatalf("Message = %q", result.Message)
	}
	if result.Details["canvas_user_name"] != "Prof. Xu" {
		t.Fatalf("Details = %v", result.Details)
	}
	if len(result.MissingPermissions) != 0 {
		t.Fatalf("MissingPermissions = %v", result.MissingPermissions)
	}
}

func TestValidationResultJSONRoundTrip(t *testing.T) {
	in := ValidationResult{
		IsValid:            false,
		Message:            "Missing required permissions: read_students",
		Details:            map[string]any{"canvas_instance": "https://canvas.example.edu"},
		MissingPermissions: []string{"read_students"},
	}

	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var out ValidationResult
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in: %#v\nout: %#v", in, out)
	}
}
