package handler

import (
	"net/http"
	"os"

	"camshare/internal/dto"
	"camshare/internal/logger"
)

// ShowLogsHandler serves the log file as text/plain.
func ShowLogsHandler(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := logger.Path()
		if path == "" {
			writeError(w, http.StatusNotFound, "log file not configured")
			return
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "log file not found")
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, path)
	}
}

// ClearLogsHandler truncates the log file.
func ClearLogsHandler(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := logger.CleanLogs(); err != nil {
			fail(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, dto.StatusResponse{Status: "cleared"})
	}
}
