package storage

import (
	"context"
	"sync"
	"time"

	"camshare/internal/config"
	"camshare/internal/logger"
	"camshare/internal/model"
	"camshare/internal/repository"
)

const (
	// DefaultBufferLimit flushes early once this many entries are waiting.
	DefaultBufferLimit = 100
	// DefaultFlushInterval is how often buffered entries are written out.
	DefaultFlushInterval = 5 * time.Second
)

// BufferService buffers activity entries in memory and periodically flushes
// them to the repository.
type BufferService struct {
	entries       []model.Activity
	limit         int
	flushInterval time.Duration
	mu            sync.Mutex
	logger        *logger.Logger
	activityRepo  repository.ActivityRepository
}

func NewBufferService(cfg *config.Config, logger *logger.Logger, activityRepo repository.ActivityRepository) *BufferService {
	limit := cfg.ActivityBufferLimit
	if limit <= 0 {
		limit = DefaultBufferLimit
	}
	interval := cfg.ActivityFlushInterval
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	return &BufferService{
		entries:       make([]model.Activity, 0, limit),
		limit:         limit,
		flushInterval: interval,
		logger:        logger,
		activityRepo:  activityRepo,
	}
}

// Run flushes on a ticker until ctx ends, then flushes once more.
func (s *BufferService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Flush()
			return
		case <-ticker.C:
			s.Flush()
		}
	}
}

// Add queues an entry, flushing immediately when the buffer is full.
func (s *BufferService) Add(a model.Activity) {
	s.mu.Lock()
	s.entries = append(s.entries, a)
	full := len(s.entries) >= s.limit
	s.mu.Unlock()

	if full {
		s.logger.Debug("Activity buffer full (%d), flushing", s.limit)
		s.Flush()
	}
}

// Pending returns the number of entries not yet written.
func (s *BufferService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Flush writes buffered entries. On failure they stay buffered for the next attempt.
func (s *BufferService) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 || s.activityRepo == nil {
		return
	}

	if err := s.activityRepo.InsertBatch(s.entries); err != nil {
		s.logger.Error("Error saving %d activity entries: %v", len(s.entries), err)
		return
	}

	s.logger.Debug("Flushed %d activity entries", len(s.entries))
	s.entries = s.entries[:0]
}

// List flushes pending entries and queries the repository.
func (s *BufferService) List(filter *model.ActivityFilter) ([]model.Activity, error) {
	s.Flush()
	if s.activityRepo == nil {
		return []model.Activity{}, nil
	}
	return s.activityRepo.List(filter)
}

// Count flushes pending entries and counts matches, ignoring the filter's limit.
func (s *BufferService) Count(filter *model.ActivityFilter) (int, error) {
	s.Flush()
	if s.activityRepo == nil {
		return 0, nil
	}
	return s.activityRepo.Count(filter)
}
