package middleware

import (
	"context"
	"net/http"
)

// Role is the party a client acts as.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleAuthority Role = "authority"
)

// RoleCookie holds the role issued at login.
const RoleCookie = "role"

type roleKey struct{}

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleOwner, RoleAuthority:
		return Role(s), true
	}
	return "", false
}

// AuthMiddleware lets login and metrics through and requires a valid role
// cookie everywhere else. The role is stored on the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(RoleCookie)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		role, ok := ParseRole(cookie.Value)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), roleKey{}, role)))
	})
}

// RoleFrom returns the role set by AuthMiddleware, or "".
func RoleFrom(r *http.Request) Role {
	role, _ := r.Context().Value(roleKey{}).(Role)
	return role
}

// RequireRole rejects requests from any other role with 403.
func RequireRole(role Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if RoleFrom(r) != role {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}
