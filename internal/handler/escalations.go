package handler

import (
	"net/http"

	"camshare/internal/dto"
	"camshare/internal/logger"
	"camshare/internal/service"
)

// OpenEscalationHandler handles POST /api/escalations with an optional {"durationMinutes": n}.
func OpenEscalationHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.OpenEscalationRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		writeJSON(w, http.StatusCreated, manager.OpenEscalation(req.DurationMinutes))
	}
}

// GetEscalationHandler handles GET /api/escalations/{id}.
func GetEscalationHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := manager.GetEscalation(r.PathValue("id"))
		if err != nil {
			fail(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// SetEscalationDurationHandler handles PUT /api/escalations/{id}/duration.
func SetEscalationDurationHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.DurationRequest
		if err := decodeJSON(r, &req); err != nil || req.DurationMinutes <= 0 {
			writeError(w, http.StatusBadRequest, "durationMinutes must be a positive integer")
			return
		}
		st, err := manager.SetEscalationDuration(r.PathValue("id"), req.DurationMinutes)
		if err != nil {
			fail(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// SendCodeHandler handles POST /api/escalations/{id}/send.
func SendCodeHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := manager.SendEscalationCode(r.Context(), r.PathValue("id"))
		if err != nil {
			fail(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// ResendCodeHandler handles POST /api/escalations/{id}/resend.
func ResendCodeHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := manager.ResendEscalationCode(r.Context(), r.PathValue("id"))
		if err != nil {
			fail(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// SubmitCodeHandler handles POST /api/escalations/{id}/submit with {"code": "1234"}.
// A wrong code is a normal 200 answer with granted=false and the error on the state.
func SubmitCodeHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.SubmitCodeRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		out, err := manager.SubmitEscalationCode(r.PathValue("id"), req.Code, actor(r))
		if err != nil {
			fail(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// CancelEscalationHandler handles POST /api/escalations/{id}/cancel.
func CancelEscalationHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := manager.CancelEscalation(r.PathValue("id"))
		if err != nil {
			fail(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// CloseEscalationHandler handles DELETE /api/escalations/{id}.
func CloseEscalationHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if _, err := manager.GetEscalation(id); err != nil {
			fail(w, logger, err)
			return
		}
		manager.CloseEscalation(id)
		w.WriteHeader(http.StatusNoContent)
	}
}
