package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/whitecross/server/internal/platform/auth"
)

func TestAudit_RecordsAccess(t *testing.T) {
	userID := uuid.New()
	studentID := uuid.New()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/"+studentID.String(), nil)
	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID)
	ctx = context.WithValue(ctx, auth.UserRoleKey, auth.RoleNurse)
	rec := httptest.NewRecorder()
	c := e.NewContext(req.WithContext(ctx), rec)
	c.Set("request_id", "req-abc")

	var entry AuditEntry
	recorder := AuditRecorderFunc(func(e AuditEntry) error {
		entry = e
		return nil
	})

	h := Audit(zerolog.Nop(), recorder)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.UserID != userID.String() {
		t.Errorf("expected user %s, got %q", userID, entry.UserID)
	}
	if entry.UserRole != "NURSE" {
		t.Errorf("expected role NURSE, got %q", entry.UserRole)
	}
	if entry.ResourceType != "students" {
		t.Errorf("expected resource students, got %q", entry.ResourceType)
	}
	if entry.StudentID != studentID.String() {
		t.Errorf("expected student %s, got %q", studentID, entry.StudentID)
	}
	if entry.Action != "read" {
		t.Errorf("expected action read, got %q", entry.Action)
	}
	if entry.RequestID != "req-abc" {
		t.Errorf("expected request_id 'req-abc', got %q", entry.RequestID)
	}
	if entry.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", entry.StatusCode)
	}
}

// The session guard runs after Audit in the chain and attaches the identity
// via c.SetRequest. Attribution must survive that: the entry is built from
// the request as it stands after the handler, not the one Audit first saw.
func TestAudit_AttributesIdentityAttachedDownstream(t *testing.T) {
	userID := uuid.New()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var entry AuditEntry
	recorder := AuditRecorderFunc(func(e AuditEntry) error {
		entry = e
		return nil
	})

	attachIdentity := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			ctx := context.WithValue(r.Context(), auth.UserIDKey, userID)
			ctx = context.WithValue(ctx, auth.UserRoleKey, auth.RoleNurse)
			c.SetRequest(r.WithContext(ctx))
			return next(c)
		}
	}

	h := Audit(zerolog.Nop(), recorder)(attachIdentity(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.UserID != userID.String() {
		t.Errorf("expected user %s, got %q", userID, entry.UserID)
	}
	if entry.UserRole != "NURSE" {
		t.Errorf("expected role NURSE, got %q", entry.UserRole)
	}
}

func TestAudit_SkipsNonAPIPaths(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	recorded := false
	recorder := AuditRecorderFunc(func(AuditEntry) error {
		recorded = true
		return nil
	})

	h := Audit(zerolog.Nop(), recorder)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recorded {
		t.Error("health checks should not be audited")
	}
}

func TestHTTPMethodToAction(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{http.MethodGet, "read"},
		{http.MethodHead, "read"},
		{http.MethodPost, "create"},
		{http.MethodPut, "update"},
		{http.MethodPatch, "update"},
		{http.MethodDelete, "delete"},
		{"TRACE", "read"},
	}
	for _, tt := range tests {
		if got := httpMethodToAction(tt.method); got != tt.want {
			t.Errorf("httpMethodToAction(%s) = %q, want %q", tt.method, got, tt.want)
		}
	}
}

func TestExtractResourceType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/students", "students"},
		{"/api/v1/students/abc-123", "students"},
		{"/api/v1/medications", "medications"},
		{"/api/v1/", "unknown"},
		{"/other", "unknown"},
	}
	for _, tt := range tests {
		if got := extractResourceType(tt.path); got != tt.want {
			t.Errorf("extractResourceType(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestExtractStudentID_QueryParam(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health-records?student_id=abc-123", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if got := extractStudentID(c); got != "abc-123" {
		t.Errorf("expected abc-123, got %q", got)
	}
}
