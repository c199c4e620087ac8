package handler

import (
	"net/http"

	"camshare/internal/analysis"
	"camshare/internal/dto"
	"camshare/internal/logger"
	"camshare/internal/service"
)

// OpenSessionHandler handles POST /api/sessions with {"cameraId": "..."}.
func OpenSessionHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.OpenSessionRequest
		if err := decodeJSON(r, &req); err != nil || req.CameraID == "" {
			writeError(w, http.StatusBadRequest, "cameraId is required")
			return
		}
		vs, err := manager.OpenSession(req.CameraID, actor(r))
		if err != nil {
			fail(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, vs)
	}
}

// ListSessionsHandler handles GET /api/sessions.
func ListSessionsHandler(manager *service.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, manager.ListSessions())
	}
}

// CloseSessionHandler handles DELETE /api/sessions/{id}.
func CloseSessionHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := manager.CloseSession(r.PathValue("id")); err != nil {
			fail(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ScanHandler handles POST /api/sessions/{id}/scan with {"mode": "...", "target": "..."}.
// It blocks for the capture and the model call.
func ScanHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.ScanRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		mode, err := analysis.ParseMode(req.Mode)
		if err != nil {
			fail(w, logger, err)
			return
		}
		sr, err := manager.Scan(r.Context(), r.PathValue("id"), mode, req.Target)
		if err != nil {
			fail(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, sr)
	}
}
