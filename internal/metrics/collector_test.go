package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camshare/internal/model"
)

type staticSnapshot struct {
	cameras []model.Camera
}

func (s staticSnapshot) Cameras() []model.Camera { return s.cameras }
func (s staticSnapshot) ViewingSessions() int     { return 2 }
func (s staticSnapshot) EscalationSessions() int  { return 1 }

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	srv := httptest.NewServer(Handler(c))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollector_CameraStates(t *testing.T) {
	c := NewCollector(staticSnapshot{cameras: []model.Camera{
		{ID: "CAM-001", OwnerID: "Shop", Status: model.StatusActive, IsShared: true},
		{ID: "CAM-002", OwnerID: "RWA", Status: model.StatusActive, PendingAccessRequest: true},
		{ID: "CAM-003", OwnerID: "Jewel", Status: model.StatusOffline},
	}})

	body := scrape(t, c)

	assert.Contains(t, body, `camshare_cameras{state="shared"} 1`)
	assert.Contains(t, body, `camshare_cameras{state="pending"} 1`)
	assert.Contains(t, body, `camshare_cameras{state="private"} 1`)
	assert.Contains(t, body, `camshare_cameras_by_status{status="ACTIVE"} 2`)
	assert.Contains(t, body, `camshare_camera_shared{id="CAM-001",owner="Shop"} 1`)
	assert.Contains(t, body, `camshare_viewing_sessions 2`)
	assert.Contains(t, body, `camshare_escalation_sessions 1`)
}

func TestCollector_ScanOutcomes(t *testing.T) {
	c := NewCollector(staticSnapshot{})

	c.ObserveScan("ANOMALY", false, true, 2*time.Second)
	c.ObserveScan("ANOMALY", true, false, time.Second)
	c.ObserveScan("OBJECTS", false, false, time.Second)
	c.AddGrants(3)
	c.CodeRejected()

	body := scrape(t, c)

	assert.Contains(t, body, `camshare_scans_total{mode="ANOMALY",outcome="danger"} 1`)
	assert.Contains(t, body, `camshare_scans_total{mode="ANOMALY",outcome="degraded"} 1`)
	assert.Contains(t, body, `camshare_scans_total{mode="OBJECTS",outcome="ok"} 1`)
	assert.Contains(t, body, `camshare_scan_duration_seconds_count{mode="ANOMALY"} 2`)
	assert.Contains(t, body, `camshare_access_grants_total 3`)
	assert.Contains(t, body, `camshare_escalation_code_failures_total 1`)
}
