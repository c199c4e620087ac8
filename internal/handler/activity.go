package handler

import (
	"net/http"
	"time"

	"camshare/internal/dto"
	"camshare/internal/logger"
	"camshare/internal/model"
	"camshare/internal/service"
)

const defaultActivityLimit = 50

// ActivityHandler handles GET /api/activity?camera=&kind=&since=&limit=.
func ActivityHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := &model.ActivityFilter{
			CameraID: q.Get("camera"),
			Kind:     model.ActivityKind(q.Get("kind")),
			Limit:    atoiDefault(q.Get("limit"), defaultActivityLimit),
		}
		if s := q.Get("since"); s != "" {
			since, err := time.Parse(time.RFC3339, s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "since must be an RFC 3339 timestamp")
				return
			}
			filter.Since = since
		}

		list, err := manager.Activity(filter)
		if err != nil {
			fail(w, logger, err)
			return
		}
		total, err := manager.ActivityCount(filter)
		if err != nil {
			fail(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, dto.ActivityPage{Items: dto.NewActivityInfos(list), Total: total})
	}
}
