package service

import (
	"sync"

	"camshare/internal/model"
)

// IncidentBoard holds the incident feed and the alerts dismissed during this run.
type IncidentBoard struct {
	mu        sync.RWMutex
	incidents []model.Incident
	dismissed map[string]bool
}

func NewIncidentBoard(incidents []model.Incident) *IncidentBoard {
	return &IncidentBoard{
		incidents: append([]model.Incident(nil), incidents...),
		dismissed: make(map[string]bool),
	}
}

// List returns every incident, optionally for one camera.
func (b *IncidentBoard) List(cameraID string) []model.Incident {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]model.Incident, 0, len(b.incidents))
	for _, inc := range b.incidents {
		if cameraID == "" || inc.CameraID == cameraID {
			out = append(out, inc)
		}
	}
	return out
}

// Alerts returns HIGH and CRITICAL incidents that have not been dismissed.
func (b *IncidentBoard) Alerts() []model.Incident {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := []model.Incident{}
	for _, inc := range b.incidents {
		if inc.Severity.Critical() && !b.dismissed[inc.ID] {
			out = append(out, inc)
		}
	}
	return out
}

// Dismiss hides an alert. It reports false for unknown incidents.
func (b *IncidentBoard) Dismiss(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, inc := range b.incidents {
		if inc.ID == id {
			b.dismissed[id] = true
			return true
		}
	}
	return false
}
