package middleware

import (
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"outreach/internal/models"
)

type mapSession map[any]any

func (s mapSession) Get(key any) any    { return s[key] }
func (s mapSession) Set(key, value any) { s[key] = value }

func TestStoreAndLoadUser(t *testing.T) {
	tests := []struct {
		name     string
		user     *models.User
		expected *models.User
	}{
		{
			name:     "full claims",
			user:     &models.User{Sub: "sub-1", Email: "a@example.com", Name: "Alice", Picture: "https://example.com/a.png"},
			expected: &models.User{Sub: "sub-1", Email: "a@example.com", Name: "Alice", Picture: "https://example.com/a.png"},
		},
		{
			name:     "subject only",
			user:     &models.User{Sub: "sub-2"},
			expected: &models.User{Sub: "sub-2"},
		},
		{
			name:     "missing subject is anonymous",
			user:     &models.User{Email: "a@example.com"},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := mapSession{}
			StoreUser(sess, tt.user)
			got := LoadUser(sess)

			if tt.expected == nil {
				if got != nil {
					t.Errorf("LoadUser() = %+v, want nil", got)
				}
				return
			}
			if got == nil || *got != *tt.expected {
				t.Errorf("LoadUser() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestLoadUserEmptySession(t *testing.T) {
	if got := LoadUser(mapSession{}); got != nil {
		t.Errorf("LoadUser() = %+v, want nil", got)
	}
}

func newAuthApp(enabled bool) *fiber.App {
	app := fiber.New()
	sessionMiddleware, _ := session.NewWithStore()
	app.Use(sessionMiddleware)

	auth := NewAuthMiddleware(enabled)
	handler := func(c fiber.Ctx) error {
		user, _ := c.Locals("user").(*models.User)
		if user == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(user.Sub)
	}

	app.Post("/session-login", func(c fiber.Ctx) error {
		StoreUser(session.FromContext(c), &models.User{Sub: "sub-1"})
		return c.SendString("ok")
	})
	app.Get("/dashboard", auth.RequireAuth, handler)
	app.Get("/api/records", auth.RequireAuth, handler)
	app.Get("/optional", auth.OptionalAuth, handler)
	return app
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		enabled    bool
		path       string
		wantStatus int
		wantBody   string
		wantTarget string
	}{
		{"disabled passes through", false, "/dashboard", http.StatusOK, "anonymous", ""},
		{"page redirects to login", true, "/dashboard", http.StatusSeeOther, "", "/login"},
		{"api returns unauthorized", true, "/api/records", http.StatusUnauthorized, "", ""},
		{"optional without session", true, "/optional", http.StatusOK, "anonymous", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newAuthApp(tt.enabled)

			req, _ := http.NewRequest(http.MethodGet, tt.path, nil)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantTarget != "" {
				if got := resp.Header.Get("Location"); got != tt.wantTarget {
					t.Errorf("Location = %q, want %q", got, tt.wantTarget)
				}
			}
			if tt.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				if string(body) != tt.wantBody {
					t.Errorf("body = %q, want %q", body, tt.wantBody)
				}
			}
		})
	}
}

func TestRequireAuthWithSession(t *testing.T) {
	app := newAuthApp(true)

	req, _ := http.NewRequest(http.MethodPost, "/session-login", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		t.Fatal("login request: no cookies returned")
	}

	req2, _ := http.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	resp2, err := app.Test(req2)
	if err != nil {
		t.Fatalf("dashboard request failed: %v", err)
	}
	body, _ := io.ReadAll(resp2.Body)
	if resp2.StatusCode != http.StatusOK || string(body) != "sub-1" {
		t.Errorf("dashboard = %d %q, want 200 %q", resp2.StatusCode, body, "sub-1")
	}
}
