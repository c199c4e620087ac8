package service

import (
	"context"
	"sync"
	"time"

	"camshare/internal/analysis"
	"camshare/internal/capture"
)

// ViewingSession describes an open live view of a shared camera.
type ViewingSession struct {
	ID       string    `json:"id"`
	CameraID string    `json:"cameraId"`
	Actor    string    `json:"actor"`
	OpenedAt time.Time `json:"openedAt"`
	Scanning bool      `json:"scanning"`
	Scans    int       `json:"scans"`
}

// ScanResult is one completed capture-and-analyze round.
type ScanResult struct {
	ID         string          `json:"id"`
	SessionID  string          `json:"sessionId"`
	CameraID   string          `json:"cameraId"`
	Mode       analysis.Mode   `json:"mode"`
	Target     string          `json:"target,omitempty"`
	Frames     []capture.Frame `json:"frames"`
	Result     analysis.Result `json:"result"`
	StartedAt  time.Time       `json:"startedAt"`
	DurationMs int64           `json:"durationMs"`
}

type viewingSession struct {
	id       string
	cameraID string
	actor    string
	openedAt time.Time
	source   capture.StreamSource

	// ctx ends when the session closes; scans derive from it.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	scanning bool
	scans    int
}

func (s *viewingSession) info() ViewingSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ViewingSession{
		ID:       s.id,
		CameraID: s.cameraID,
		Actor:    s.actor,
		OpenedAt: s.openedAt,
		Scanning: s.scanning,
		Scans:    s.scans,
	}
}

// begin claims the session for one scan.
func (s *viewingSession) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scanning {
		return false
	}
	s.scanning = true
	return true
}

func (s *viewingSession) end(completed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanning = false
	if completed {
		s.scans++
	}
}

func (s *viewingSession) close() error {
	s.cancel()
	return s.source.Close()
}
