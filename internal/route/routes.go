package route

import (
	"net/http"

	"camshare/internal/handler"
	"camshare/internal/logger"
	"camshare/internal/metrics"
	"camshare/internal/middleware"
	"camshare/internal/service"
)

// SetupRoutes registers the API, log and metrics endpoints and wraps the mux
// with the authentication middleware.
func SetupRoutes(manager *service.Manager, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	owner := func(h http.HandlerFunc) http.HandlerFunc { return middleware.RequireRole(middleware.RoleOwner, h) }
	authority := func(h http.HandlerFunc) http.HandlerFunc { return middleware.RequireRole(middleware.RoleAuthority, h) }

	// Auth endpoints
	mux.HandleFunc("POST /auth/login", handler.LoginHandler(logger))
	mux.HandleFunc("POST /auth/logout", handler.LogoutHandler)

	// Cameras
	mux.HandleFunc("GET /api/cameras", handler.ListCamerasHandler(manager, logger))
	mux.HandleFunc("GET /api/cameras/{id}", handler.GetCameraHandler(manager, logger))
	mux.HandleFunc("POST /api/cameras/{id}/request", authority(handler.RequestAccessHandler(manager, logger)))
	mux.HandleFunc("POST /api/cameras/{id}/grant", owner(handler.GrantAccessHandler(manager, logger)))
	mux.HandleFunc("POST /api/cameras/{id}/toggle", owner(handler.ToggleSharingHandler(manager, logger)))
	mux.HandleFunc("POST /api/cameras/{id}/reject", owner(handler.RejectRequestHandler(manager, logger)))
	mux.HandleFunc("POST /api/cameras/{id}/revoke", owner(handler.RevokeAccessHandler(manager, logger)))
	mux.HandleFunc("POST /api/cameras/{id}/auto-approve", owner(handler.ToggleAutoApproveHandler(manager, logger)))
	mux.HandleFunc("POST /api/cameras/{id}/verify", owner(handler.VerifyLocationHandler(manager, logger)))
	mux.HandleFunc("PUT /api/cameras/{id}/privacy", owner(handler.SetPrivacyHandler(manager, logger)))

	// Emergency escalation
	mux.HandleFunc("POST /api/escalations", authority(handler.OpenEscalationHandler(manager, logger)))
	mux.HandleFunc("GET /api/escalations/{id}", authority(handler.GetEscalationHandler(manager, logger)))
	mux.HandleFunc("PUT /api/escalations/{id}/duration", authority(handler.SetEscalationDurationHandler(manager, logger)))
	mux.HandleFunc("POST /api/escalations/{id}/send", authority(handler.SendCodeHandler(manager, logger)))
	mux.HandleFunc("POST /api/escalations/{id}/resend", authority(handler.ResendCodeHandler(manager, logger)))
	mux.HandleFunc("POST /api/escalations/{id}/submit", authority(handler.SubmitCodeHandler(manager, logger)))
	mux.HandleFunc("POST /api/escalations/{id}/cancel", authority(handler.CancelEscalationHandler(manager, logger)))
	mux.HandleFunc("DELETE /api/escalations/{id}", authority(handler.CloseEscalationHandler(manager, logger)))

	// Viewing sessions and scans
	mux.HandleFunc("POST /api/sessions", authority(handler.OpenSessionHandler(manager, logger)))
	mux.HandleFunc("GET /api/sessions", authority(handler.ListSessionsHandler(manager)))
	mux.HandleFunc("DELETE /api/sessions/{id}", authority(handler.CloseSessionHandler(manager, logger)))
	mux.HandleFunc("POST /api/sessions/{id}/scan", authority(handler.ScanHandler(manager, logger)))

	// Incidents and audit trail
	mux.HandleFunc("GET /api/incidents", handler.ListIncidentsHandler(manager))
	mux.HandleFunc("GET /api/incidents/alerts", handler.AlertsHandler(manager))
	mux.HandleFunc("POST /api/incidents/{id}/dismiss", handler.DismissAlertHandler(manager))
	mux.HandleFunc("GET /api/activity", handler.ActivityHandler(manager, logger))

	mux.HandleFunc("GET /api/view", handler.ViewWebsocketHandler(manager, logger))

	// Log endpoints
	mux.HandleFunc("GET /logs", owner(handler.ShowLogsHandler(logger)))
	mux.HandleFunc("POST /logs/clear", owner(handler.ClearLogsHandler(logger)))

	mux.Handle("GET /metrics", metrics.Handler(manager.GetMetrics()))

	// Apply middleware
	return middleware.AuthMiddleware(mux)
}
