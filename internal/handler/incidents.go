package handler

import (
	"net/http"

	"camshare/internal/dto"
	"camshare/internal/service"
)

// ListIncidentsHandler handles GET /api/incidents?camera=.
func ListIncidentsHandler(manager *service.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, manager.Incidents(r.URL.Query().Get("camera")))
	}
}

// AlertsHandler handles GET /api/incidents/alerts.
func AlertsHandler(manager *service.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, manager.Alerts())
	}
}

// DismissAlertHandler handles POST /api/incidents/{id}/dismiss.
func DismissAlertHandler(manager *service.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !manager.DismissAlert(r.PathValue("id")) {
			writeError(w, http.StatusNotFound, "incident not found")
			return
		}
		writeJSON(w, http.StatusOK, dto.StatusResponse{Status: "dismissed"})
	}
}
