package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/anita-ai/anita/internal/config"
	"github.com/anita-ai/anita/internal/db/store"
	"github.com/anita-ai/anita/internal/lms/registry"
)

// stubDefinition registers a validator with a fixed outcome.
type stubDefinition struct {
	kind         string
	structureErr error
	connOK       bool
	connMsg      string
	permMissing  []string
}

func (d *stubDefinition) Kind() string        { return d.kind }
func (d *stubDefinition) DisplayName() string { return strings.ToUpper(d.kind[:1]) + d.kind[1:] }
func (d *stubDefinition) NewValidator(creds registry.Credentials) (registry.Validator, error) {
	return &stubValidator{def: d}, nil
}

type stubValidator struct {
	def *stubDefinition
}

func (v *stubValidator) Kind() string                        { return v.def.kind }
func (v *stubValidator) ValidateCredentialsStructure() error { return v.def.structureErr }
func (v *stubValidator) TestConnection(ctx context.Context) (bool, string) {
	return v.def.connOK, v.def.connMsg
}
func (v *stubValidator) CheckPermissions(ctx context.Context) (bool, []string, error) {
	return len(v.def.permMissing) == 0, v.def.permMissing, nil
}
func (v *stubValidator) Metadata(ctx context.Context) map[string]any {
	return map[string]any{"stub": true}
}

func newTestHandlers(t *testing.T, defs ...registry.Definition) *Handlers {
	t.Helper()
	reg := registry.New()
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			t.Fatalf("Register error: %v", err)
		}
	}
	return &Handlers{
		Cfg:      config.Config{ValidateTimeout: 5 * time.Second},
		Registry: reg,
	}
}

func jsonContext(t *testing.T, method, target, body string) (*echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e := echo.New()
	c := e.NewContext(req, rec)
	return c, rec
}

func TestHandleListLMSTypes(t *testing.T) {
	h := newTestHandlers(t, &stubDefinition{kind: "canvas", connOK: true})

	c, rec := jsonContext(t, http.MethodGet, "/lms-connections/types", "")
	if err := h.HandleListLMSTypes(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Types []struct {
			Kind        string `json:"kind"`
			DisplayName string `json:"display_name"`
		} `json:"types"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(resp.Types) != 1 || resp.Types[0].Kind != "canvas" || resp.Types[0].DisplayName != "Canvas" {
		t.Fatalf("unexpected types: %#v", resp.Types)
	}
}

func TestHandleValidateConnectionUnsupportedType(t *testing.T) {
	h := newTestHandlers(t, &stubDefinition{kind: "canvas", connOK: true})

	c, rec := jsonContext(t, http.MethodPost, "/lms-connections/validate",
		`{"lms_type":"moodle","credentials":{"base_url":"https://x"}}`)
	if err := h.HandleValidateConnection(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(rec.Body.String(), UnsupportedLMSTypeCode) {
		t.Fatalf("body missing %s: %s", UnsupportedLMSTypeCode, rec.Body.String())
	}
}

func TestHandleValidateConnectionReturnsFailedResult(t *testing.T) {
	h := newTestHandlers(t, &stubDefinition{
		kind:    "canvas",
		connOK:  false,
		connMsg: "Invalid Canvas API token",
	})

	c, rec := jsonContext(t, http.MethodPost, "/lms-connections/validate",
		`{"lms_type":"canvas","credentials":{"base_url":"https://x","api_token":"7~abcdefghij"}}`)
	if err := h.HandleValidateConnection(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusOK)
	}

	var result registry.ValidationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if result.IsValid {
		t.Fatal("expected is_valid=false")
	}
	if result.Message != "Invalid Canvas API token" {
		t.Fatalf("message=%q", result.Message)
	}
}

func TestHandleCreateConnectionRejectsFailedValidation(t *testing.T) {
	// Store is nil: a failed validation must never reach persistence.
	h := newTestHandlers(t, &stubDefinition{
		kind:        "canvas",
		connOK:      true,
		permMissing: []string{"read_students"},
	})

	c, rec := jsonContext(t, http.MethodPost, "/lms-connections",
		`{"instructor_id":"7f9c24e5-1f33-4c8a-9d33-caa3e9f4a9e1","lms_type":"canvas","name":"My Canvas","credentials":{"base_url":"https://x","api_token":"7~abcdefghij"}}`)
	if err := h.HandleCreateConnection(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusUnprocessableEntity)
	}

	var result registry.ValidationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if result.IsValid || len(result.MissingPermissions) != 1 || result.MissingPermissions[0] != "read_students" {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestHandleCreateConnectionMalformedBody(t *testing.T) {
	h := newTestHandlers(t, &stubDefinition{kind: "canvas", connOK: true})

	c, rec := jsonContext(t, http.MethodPost, "/lms-connections", `{"lms_type":`)
	if err := h.HandleCreateConnection(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), InvalidRequestCode) {
		t.Fatalf("body missing %s: %s", InvalidRequestCode, rec.Body.String())
	}
}

func TestMaskedConnectionNeverEchoesRawSecrets(t *testing.T) {
	conn := maskedConnection(store.LMSConnection{
		LMSType: "canvas",
		Name:    "My Canvas",
		Credentials: map[string]string{
			"base_url":  "https://canvas.example.edu",
			"api_token": "7~FqT9mX2vLp8KdRw4aB",
		},
	})
	if got := conn.Credentials["api_token"]; strings.Contains(got, "FqT9mX2vLp8") {
		t.Fatalf("token not masked: %q", got)
	}
	if got := conn.Credentials["api_token"]; got == "" {
		t.Fatal("masked token is empty")
	}
}
