package handler

import (
	"net/http"
	"strings"

	"camshare/internal/dto"
	"camshare/internal/logger"
	"camshare/internal/middleware"
)

// LoginHandler handles POST /auth/login. Any non-empty credentials are accepted;
// the requested role is issued as a cookie.
func LoginHandler(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.LoginRequest
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			if err := decodeJSON(r, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON body")
				return
			}
		} else {
			req.Username = r.FormValue("username")
			req.Password = r.FormValue("password")
			req.Role = r.FormValue("role")
		}

		if req.Username == "" || req.Password == "" {
			writeError(w, http.StatusUnauthorized, "username and password are required")
			return
		}
		role, ok := middleware.ParseRole(req.Role)
		if !ok {
			writeError(w, http.StatusBadRequest, "role must be owner or authority")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.RoleCookie,
			Value:    string(role),
			Path:     "/",
			MaxAge:   86400,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		logger.Info("%s logged in as %s", req.Username, role)
		writeJSON(w, http.StatusOK, map[string]string{"role": string(role)})
	}
}

// LogoutHandler clears the role cookie.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.RoleCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, dto.StatusResponse{Status: "logged out"})
}
