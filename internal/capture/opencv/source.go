// Package opencv reads live video through OpenCV and exposes it as a capture.Source.
package opencv

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"camshare/internal/capture"
	"camshare/internal/logger"
)

const (
	// readRetryDelay is how long the reader backs off after a failed read.
	readRetryDelay = 200 * time.Millisecond
	// maxReadFailures ends the reader after this many consecutive failed reads.
	maxReadFailures = 50
)

// Source keeps the most recent decoded frame of a stream. It is ready once the
// first frame has arrived.
type Source struct {
	url    string
	logger *logger.Logger

	mu       sync.RWMutex
	latest   gocv.Mat
	hasFrame bool
	frames   uint64

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Opener opens OpenCV-backed sources.
type Opener struct {
	Logger *logger.Logger
}

func (o Opener) Open(ctx context.Context, url string) (capture.StreamSource, error) {
	return Open(ctx, url, o.Logger)
}

// Open starts reading url (file path, HTTP(S) or RTSP) in the background.
func Open(ctx context.Context, url string, log *logger.Logger) (*Source, error) {
	vc, err := gocv.OpenVideoCapture(url)
	if err != nil {
		return nil, fmt.Errorf("failed to open video capture %s: %w", url, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("video capture %s did not open", url)
	}
	vc.Set(gocv.VideoCaptureBufferSize, 1)

	readCtx, cancel := context.WithCancel(ctx)
	s := &Source{
		url:    url,
		logger: log,
		latest: gocv.NewMat(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run(readCtx, vc)
	return s, nil
}

func (s *Source) run(ctx context.Context, vc *gocv.VideoCapture) {
	defer close(s.done)
	defer vc.Close()

	// Files play back at their own rate instead of as fast as they decode.
	var pace time.Duration
	if fps := vc.Get(gocv.VideoCaptureFPS); fps > 0 {
		pace = time.Duration(float64(time.Second) / fps)
	}

	img := gocv.NewMat()
	defer img.Close()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if ok := vc.Read(&img); !ok || img.Empty() {
			failures++
			if failures >= maxReadFailures {
				s.logger.Warning("Video source %s stopped after %d failed reads", s.url, failures)
				return
			}
			if !wait(ctx, readRetryDelay) {
				return
			}
			continue
		}
		failures = 0

		s.mu.Lock()
		s.latest.Close()
		s.latest = img.Clone()
		if !s.hasFrame {
			s.logger.Info("Video source %s ready (%dx%d)", s.url, img.Cols(), img.Rows())
		}
		s.hasFrame = true
		s.frames++
		s.mu.Unlock()

		if pace > 0 && !wait(ctx, pace) {
			return
		}
	}
}

func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (s *Source) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasFrame
}

// Snapshot converts the current frame to an image.
func (s *Source) Snapshot() (image.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasFrame || s.latest.Empty() {
		return nil, capture.ErrSourceNotReady
	}
	img, err := s.latest.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	return img, nil
}

// Frames returns the number of frames decoded so far.
func (s *Source) Frames() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames
}

// Close stops the reader and releases the capture.
func (s *Source) Close() error {
	s.once.Do(func() {
		s.cancel()
		<-s.done
		s.mu.Lock()
		s.latest.Close()
		s.hasFrame = false
		s.mu.Unlock()
	})
	return nil
}
