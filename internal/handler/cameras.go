package handler

import (
	"net/http"
	"strconv"
	"strings"

	"camshare/internal/dto"
	"camshare/internal/logger"
	"camshare/internal/model"
	"camshare/internal/registry"
	"camshare/internal/service"
)

func cameraView(manager *service.Manager, cam model.Camera) dto.CameraView {
	v := dto.CameraView{Camera: cam}
	if deadline, ok := manager.GrantDeadline(cam.ID); ok {
		v.GrantExpiresAt = &deadline
	}
	return v
}

// ListCamerasHandler handles GET /api/cameras?status=&shared=.
func ListCamerasHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := registry.Filter{Status: model.CameraStatus(strings.ToUpper(q.Get("status")))}
		if filter.Status != "" && !filter.Status.Valid() {
			writeError(w, http.StatusBadRequest, "unknown status "+q.Get("status"))
			return
		}
		if s := q.Get("shared"); s != "" {
			shared, err := strconv.ParseBool(s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "shared must be true or false")
				return
			}
			filter.SharedOnly = shared
		}

		cams := manager.ListCameras(filter)
		views := make([]dto.CameraView, 0, len(cams))
		for _, c := range cams {
			views = append(views, cameraView(manager, c))
		}
		writeJSON(w, http.StatusOK, views)
	}
}

// GetCameraHandler handles GET /api/cameras/{id}.
func GetCameraHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cam, err := manager.GetCamera(r.PathValue("id"))
		if err != nil {
			fail(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, cameraView(manager, cam))
	}
}

// RequestAccessHandler handles POST /api/cameras/{id}/request.
func RequestAccessHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, cam, err := manager.RequestAccess(r.PathValue("id"), actor(r))
		if err != nil {
			fail(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, dto.AccessRequestResponse{Decision: d.String(), Camera: cam})
	}
}

// GrantAccessHandler handles POST /api/cameras/{id}/grant with an optional {"minutes": n}.
func GrantAccessHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.GrantRequest
		if err := decodeJSON(r, &req); err != nil || req.Minutes < 0 {
			writeError(w, http.StatusBadRequest, "minutes must be a non-negative integer")
			return
		}
		g, err := manager.GrantAccess(r.PathValue("id"), req.Minutes, actor(r))
		if err != nil {
			fail(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

// cameraTransition adapts a manager transition that returns the updated camera.
func cameraTransition(manager *service.Manager, logger *logger.Logger, fn func(id, actor string) (model.Camera, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cam, err := fn(r.PathValue("id"), actor(r))
		if err != nil {
			fail(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, cameraView(manager, cam))
	}
}

// ToggleSharingHandler handles POST /api/cameras/{id}/toggle.
func ToggleSharingHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return cameraTransition(manager, logger, manager.ToggleSharing)
}

// RejectRequestHandler handles POST /api/cameras/{id}/reject.
func RejectRequestHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return cameraTransition(manager, logger, manager.RejectRequest)
}

// RevokeAccessHandler handles POST /api/cameras/{id}/revoke.
func RevokeAccessHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return cameraTransition(manager, logger, manager.RevokeAccess)
}

// ToggleAutoApproveHandler handles POST /api/cameras/{id}/auto-approve.
func ToggleAutoApproveHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return cameraTransition(manager, logger, manager.ToggleAutoApprove)
}

// SetPrivacyHandler handles PUT /api/cameras/{id}/privacy with {"level": "..."}.
func SetPrivacyHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.PrivacyRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		level := model.PrivacyLevel(strings.ToUpper(string(req.Level)))
		cam, err := manager.SetPrivacy(r.PathValue("id"), level, actor(r))
		if err != nil {
			fail(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, cameraView(manager, cam))
	}
}

// VerifyLocationHandler handles POST /api/cameras/{id}/verify.
func VerifyLocationHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := manager.VerifyLocation(r.Context(), r.PathValue("id"), actor(r))
		if err != nil {
			fail(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}
