// Package metrics exposes camera-sharing state and scan outcomes to Prometheus.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"camshare/internal/model"
)

// Snapshot supplies the current camera and session state on each scrape.
type Snapshot interface {
	Cameras() []model.Camera
	ViewingSessions() int
	EscalationSessions() int
}

var (
	camerasDesc = prometheus.NewDesc(
		"camshare_cameras", "Cameras grouped by sharing state (shared, pending, private).", []string{"state"}, nil,
	)
	cameraStatusDesc = prometheus.NewDesc(
		"camshare_cameras_by_status", "Cameras grouped by operational status.", []string{"status"}, nil,
	)
	cameraSharedDesc = prometheus.NewDesc(
		"camshare_camera_shared", "Whether the authority can view the camera (1) or not (0).", []string{"id", "owner"}, nil,
	)
	viewingSessionsDesc = prometheus.NewDesc(
		"camshare_viewing_sessions", "Open viewing sessions.", nil, nil,
	)
	escalationSessionsDesc = prometheus.NewDesc(
		"camshare_escalation_sessions", "Open escalation sessions.", nil, nil,
	)
	scrapeDurationDesc = prometheus.NewDesc(
		"camshare_scrape_duration_seconds", "Time taken to collect camera state.", nil, nil,
	)
)

// Collector reads registry state at scrape time and counts scan outcomes.
type Collector struct {
	source Snapshot
	mu     sync.Mutex

	scans        *prometheus.CounterVec
	scanDuration *prometheus.HistogramVec
	grants       prometheus.Counter
	otpFailures  prometheus.Counter
}

func NewCollector(source Snapshot) *Collector {
	return &Collector{
		source: source,
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "camshare_scans_total",
			Help: "Analysis scans by mode and outcome (ok, degraded, danger).",
		}, []string{"mode", "outcome"}),
		scanDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "camshare_scan_duration_seconds",
			Help:    "Capture plus analysis time per scan.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"mode"}),
		grants: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "camshare_access_grants_total",
			Help: "Cameras granted through manual approval or escalation.",
		}),
		otpFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "camshare_escalation_code_failures_total",
			Help: "Rejected one-time codes.",
		}),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- camerasDesc
	ch <- cameraStatusDesc
	ch <- cameraSharedDesc
	ch <- viewingSessionsDesc
	ch <- escalationSessionsDesc
	ch <- scrapeDurationDesc
	c.scans.Describe(ch)
	c.scanDuration.Describe(ch)
	c.grants.Describe(ch)
	c.otpFailures.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := time.Now()

	states := map[string]float64{"shared": 0, "pending": 0, "private": 0}
	statuses := make(map[model.CameraStatus]float64)
	for _, cam := range c.source.Cameras() {
		shared := 0.0
		switch {
		case cam.IsShared:
			states["shared"]++
			shared = 1
		case cam.PendingAccessRequest:
			states["pending"]++
		default:
			states["private"]++
		}
		statuses[cam.Status]++
		ch <- prometheus.MustNewConstMetric(cameraSharedDesc, prometheus.GaugeValue, shared, cam.ID, cam.OwnerID)
	}
	for st, n := range states {
		ch <- prometheus.MustNewConstMetric(camerasDesc, prometheus.GaugeValue, n, st)
	}
	for st, n := range statuses {
		ch <- prometheus.MustNewConstMetric(cameraStatusDesc, prometheus.GaugeValue, n, string(st))
	}

	ch <- prometheus.MustNewConstMetric(viewingSessionsDesc, prometheus.GaugeValue, float64(c.source.ViewingSessions()))
	ch <- prometheus.MustNewConstMetric(escalationSessionsDesc, prometheus.GaugeValue, float64(c.source.EscalationSessions()))

	c.scans.Collect(ch)
	c.scanDuration.Collect(ch)
	c.grants.Collect(ch)
	c.otpFailures.Collect(ch)

	ch <- prometheus.MustNewConstMetric(scrapeDurationDesc, prometheus.GaugeValue, time.Since(start).Seconds())
}

// ObserveScan records one finished scan.
func (c *Collector) ObserveScan(mode string, degraded, danger bool, took time.Duration) {
	outcome := "ok"
	switch {
	case degraded:
		outcome = "degraded"
	case danger:
		outcome = "danger"
	}
	c.scans.WithLabelValues(mode, outcome).Inc()
	c.scanDuration.WithLabelValues(mode).Observe(took.Seconds())
}

func (c *Collector) AddGrants(n int) {
	c.grants.Add(float64(n))
}

func (c *Collector) CodeRejected() {
	c.otpFailures.Inc()
}

// Handler serves the collector from its own registry.
func Handler(c *Collector) http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(c)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
