package capture

import (
	"context"
	"image"
	"sync/atomic"
)

// StaticSource serves the same still image on every snapshot. It backs camera
// entries whose feed is a plain image and is handy in tests.
type StaticSource struct {
	img       image.Image
	ready     atomic.Bool
	snapshots atomic.Int64
}

func NewStaticSource(img image.Image) *StaticSource {
	s := &StaticSource{img: img}
	s.ready.Store(img != nil)
	return s
}

func (s *StaticSource) Ready() bool {
	return s.ready.Load()
}

// SetReady overrides readiness.
func (s *StaticSource) SetReady(ready bool) {
	s.ready.Store(ready)
}

func (s *StaticSource) Snapshot() (image.Image, error) {
	if !s.ready.Load() {
		return nil, ErrSourceNotReady
	}
	s.snapshots.Add(1)
	return s.img, nil
}

// Snapshots reports how many snapshots were taken.
func (s *StaticSource) Snapshots() int64 {
	return s.snapshots.Load()
}

func (s *StaticSource) Close() error {
	s.ready.Store(false)
	return nil
}

// StaticOpener hands out one StaticSource per Open call.
type StaticOpener struct {
	Image image.Image
}

func (o StaticOpener) Open(_ context.Context, _ string) (StreamSource, error) {
	return NewStaticSource(o.Image), nil
}
