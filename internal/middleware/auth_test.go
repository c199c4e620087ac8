package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func echoRole(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(RoleFrom(r)))
}

func TestAuthMiddleware(t *testing.T) {
	h := AuthMiddleware(http.HandlerFunc(echoRole))

	tests := []struct {
		name   string
		path   string
		cookie string
		status int
		body   string
	}{
		{"login is public", "/auth/login", "", http.StatusOK, ""},
		{"metrics is public", "/metrics", "", http.StatusOK, ""},
		{"no cookie", "/api/cameras", "", http.StatusUnauthorized, ""},
		{"unknown role", "/api/cameras", "admin", http.StatusUnauthorized, ""},
		{"owner", "/api/cameras", "owner", http.StatusOK, "owner"},
		{"authority", "/api/cameras", "authority", http.StatusOK, "authority"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: RoleCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := AuthMiddleware(RequireRole(RoleOwner, echoRole))

	req := httptest.NewRequest(http.MethodPost, "/api/cameras/CAM-001/toggle", nil)
	req.AddCookie(&http.Cookie{Name: RoleCookie, Value: "authority"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/cameras/CAM-001/toggle", nil)
	req.AddCookie(&http.Cookie{Name: RoleCookie, Value: "owner"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
