// Package capture samples still frames from a live video source.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"
)

// ErrSourceNotReady is returned when the source has not buffered a frame yet.
// Callers report it; the sampler does not retry.
var ErrSourceNotReady = errors.New("video source not ready")

// Source is a live video feed that can be snapshotted at its current frame.
type Source interface {
	Ready() bool
	Snapshot() (image.Image, error)
}

// StreamSource is a Source holding resources that must be released.
type StreamSource interface {
	Source
	Close() error
}

// Opener connects to the video feed behind a URL.
type Opener interface {
	Open(ctx context.Context, url string) (StreamSource, error)
}

// Frame is one encoded still.
type Frame struct {
	Seq        int       `json:"seq"`
	CapturedAt time.Time `json:"capturedAt"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	JPEG       []byte    `json:"-"`
}

type Config struct {
	Frames   int
	Interval time.Duration
	MaxWidth int
	Quality  int
}

func DefaultConfig() Config {
	return Config{
		Frames:   3,
		Interval: 400 * time.Millisecond,
		MaxWidth: 640,
		Quality:  60,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Frames <= 0 {
		c.Frames = d.Frames
	}
	if c.Interval < 0 {
		c.Interval = d.Interval
	}
	if c.MaxWidth <= 0 {
		c.MaxWidth = d.MaxWidth
	}
	if c.Quality <= 0 || c.Quality > 100 {
		c.Quality = d.Quality
	}
	return c
}

// Sampler captures a fixed number of frames at a fixed cadence.
type Sampler struct {
	cfg Config
	now func() time.Time
}

func NewSampler(cfg Config) *Sampler {
	return &Sampler{cfg: cfg.withDefaults(), now: time.Now}
}

func (s *Sampler) Config() Config {
	return s.cfg
}

// Capture takes cfg.Frames snapshots, waiting cfg.Interval between consecutive ones,
// so it takes about (Frames-1)*Interval. Frames are downscaled to cfg.MaxWidth and
// JPEG encoded. The returned slice is ordered by capture time.
func (s *Sampler) Capture(ctx context.Context, src Source) ([]Frame, error) {
	if !src.Ready() {
		return nil, ErrSourceNotReady
	}

	frames := make([]Frame, 0, s.cfg.Frames)
	for i := 0; i < s.cfg.Frames; i++ {
		if i > 0 {
			if err := sleep(ctx, s.cfg.Interval); err != nil {
				return nil, err
			}
		}

		img, err := src.Snapshot()
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot frame %d: %w", i, err)
		}

		scaled := Downscale(img, s.cfg.MaxWidth)
		data, err := EncodeJPEG(scaled, s.cfg.Quality)
		if err != nil {
			return nil, fmt.Errorf("failed to encode frame %d: %w", i, err)
		}

		b := scaled.Bounds()
		frames = append(frames, Frame{
			Seq:        i,
			CapturedAt: s.now(),
			Width:      b.Dx(),
			Height:     b.Dy(),
			JPEG:       data,
		})
	}
	return frames, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
