package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"camshare/internal/analysis"
	"camshare/internal/capture"
	"camshare/internal/dto"
	"camshare/internal/escalation"
	"camshare/internal/logger"
	"camshare/internal/middleware"
	"camshare/internal/service"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

// decodeJSON reads an optional JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrCameraNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, escalation.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, analysis.ErrMissingQuery),
		errors.Is(err, analysis.ErrInvalidMode),
		errors.Is(err, service.ErrInvalidPrivacy):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrCameraNotShared):
		return http.StatusForbidden
	case errors.Is(err, service.ErrScanInProgress),
		errors.Is(err, escalation.ErrWrongPhase):
		return http.StatusConflict
	case errors.Is(err, escalation.ErrResendCooldown):
		return http.StatusTooManyRequests
	case errors.Is(err, capture.ErrSourceNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status; server-side faults are logged.
func fail(w http.ResponseWriter, logger *logger.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed: %v", err)
		writeError(w, status, "Internal Server Error")
		return
	}
	writeError(w, status, err.Error())
}

func actor(r *http.Request) string {
	return string(middleware.RoleFrom(r))
}

// atoiDefault parses a positive integer or returns def.
func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}
