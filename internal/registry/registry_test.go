package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camshare/internal/model"
)

type stubVerifier struct {
	verdict model.Verification
	calls   int
	gotLoc  string
}

func (s *stubVerifier) Verify(_ context.Context, location string, _, _ float64) model.Verification {
	s.calls++
	s.gotLoc = location
	return s.verdict
}

func seed() []model.Camera {
	return []model.Camera{
		{ID: "CAM-001", Name: "Market Entrance", Location: "Raja Park", Status: model.StatusActive, IsShared: true, PrivacySetting: model.PrivacyBlurFaces},
		{ID: "CAM-002", Name: "Residency Gate B", Location: "Civil Lines", Status: model.StatusActive},
		{ID: "CAM-003", Name: "Back Alley", Location: "Transport Nagar", Status: model.StatusOffline, AutoApprove: true},
	}
}

func TestNew_NormalizesSeed(t *testing.T) {
	r := New(append(seed(), model.Camera{ID: "CAM-002", Name: "duplicate"}, model.Camera{}), nil)

	cams := r.List(Filter{})
	require.Len(t, cams, 3)
	assert.Equal(t, "Residency Gate B", cams[1].Name)
	assert.Equal(t, model.PrivacyNone, cams[1].PrivacySetting)
}

func TestRequestAccess_AutoApproveGrantsInOneStep(t *testing.T) {
	r := New(seed(), nil)

	d, cam, ok := r.RequestAccess("CAM-003")

	require.True(t, ok)
	assert.Equal(t, DecisionAutoApproved, d)
	assert.True(t, cam.IsShared)
	assert.False(t, cam.PendingAccessRequest)
}

func TestRequestAccess_ManualLeavesPending(t *testing.T) {
	r := New(seed(), nil)

	d, cam, ok := r.RequestAccess("CAM-002")
	require.True(t, ok)
	assert.Equal(t, DecisionPending, d)
	assert.True(t, cam.PendingAccessRequest)
	assert.False(t, cam.IsShared)

	d, cam, _ = r.RequestAccess("CAM-002")
	assert.Equal(t, DecisionPending, d)
	assert.True(t, cam.PendingAccessRequest)
	assert.Equal(t, []string{"CAM-002"}, r.Pending())
}

func TestRequestAccess_AlreadySharedIsNoop(t *testing.T) {
	r := New(seed(), nil)

	d, cam, ok := r.RequestAccess("CAM-001")

	require.True(t, ok)
	assert.Equal(t, DecisionAlreadyShared, d)
	assert.True(t, cam.IsShared)
	assert.False(t, cam.PendingAccessRequest)
}

func TestGrantThenReject_KeepsShared(t *testing.T) {
	r := New(seed(), nil)
	r.RequestAccess("CAM-002")

	g, ok := r.GrantAccess("CAM-002", 0)
	require.True(t, ok)
	assert.False(t, g.TimeBoxed())

	cam, ok := r.RejectRequest("CAM-002")
	require.True(t, ok)
	assert.True(t, cam.IsShared)
	assert.False(t, cam.PendingAccessRequest)
}

func TestGrantAccess_RecordsDeadline(t *testing.T) {
	r := New(seed(), nil)
	fixed := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	g, ok := r.GrantAccess("CAM-002", 120*time.Minute)

	require.True(t, ok)
	assert.True(t, g.TimeBoxed())
	assert.Equal(t, fixed.Add(2*time.Hour), g.ExpiresAt)
}

func TestToggleSharing_IsInvolution(t *testing.T) {
	for _, cam := range seed() {
		r := New(seed(), nil)
		_, before, _ := r.RequestAccess(cam.ID)

		once, _ := r.ToggleSharing(cam.ID)
		assert.Equal(t, !before.IsShared, once.IsShared, "camera %s", cam.ID)
		assert.False(t, once.PendingAccessRequest)

		twice, _ := r.ToggleSharing(cam.ID)
		assert.False(t, twice.PendingAccessRequest)
		assert.Equal(t, before.IsShared, twice.IsShared, "camera %s", cam.ID)
	}
}

func TestToggleSharing_TwiceRestoresOriginal(t *testing.T) {
	r := New(seed(), nil)
	before, _ := r.Get("CAM-002")

	r.ToggleSharing("CAM-002")
	after, _ := r.ToggleSharing("CAM-002")

	assert.Equal(t, before.IsShared, after.IsShared)
	assert.False(t, after.PendingAccessRequest)
}

func TestRevokeAccess_Idempotent(t *testing.T) {
	r := New(seed(), nil)

	first, _ := r.RevokeAccess("CAM-001")
	second, _ := r.RevokeAccess("CAM-001")

	assert.False(t, first.IsShared)
	assert.False(t, second.IsShared)
}

func TestSetPrivacy_DoesNotTouchSharing(t *testing.T) {
	r := New(seed(), nil)

	cam, ok := r.SetPrivacy("CAM-001", model.PrivacyAnonymized)

	require.True(t, ok)
	assert.Equal(t, model.PrivacyAnonymized, cam.PrivacySetting)
	assert.True(t, cam.IsShared)
}

func TestToggleAutoApprove_NotRetroactive(t *testing.T) {
	r := New(seed(), nil)
	r.RequestAccess("CAM-002")

	cam, _ := r.ToggleAutoApprove("CAM-002")

	assert.True(t, cam.AutoApprove)
	assert.True(t, cam.PendingAccessRequest)
	assert.False(t, cam.IsShared)
}

func TestUnknownCamera_IsNoop(t *testing.T) {
	r := New(seed(), nil)

	_, _, ok := r.RequestAccess("CAM-404")
	assert.False(t, ok)
	_, ok = r.GrantAccess("CAM-404", time.Minute)
	assert.False(t, ok)
	_, ok = r.ToggleSharing("CAM-404")
	assert.False(t, ok)
	_, ok = r.RejectRequest("CAM-404")
	assert.False(t, ok)
	_, ok = r.SetPrivacy("CAM-404", model.PrivacyNone)
	assert.False(t, ok)
	_, ok = r.ToggleAutoApprove("CAM-404")
	assert.False(t, ok)
	_, ok = r.VerifyLocation(context.Background(), "CAM-404")
	assert.False(t, ok)
	assert.Len(t, r.List(Filter{}), 3)
}

func TestVerifyLocation(t *testing.T) {
	t.Run("verified sets flag", func(t *testing.T) {
		v := &stubVerifier{verdict: model.Verification{Verified: true, Summary: "Near Raja Park"}}
		r := New(seed(), v)

		verdict, ok := r.VerifyLocation(context.Background(), "CAM-002")

		require.True(t, ok)
		assert.True(t, verdict.Verified)
		assert.Equal(t, "Civil Lines", v.gotLoc)
		cam, _ := r.Get("CAM-002")
		assert.True(t, cam.LocationVerified)
		require.NotNil(t, cam.LastVerification)
		assert.Equal(t, "Near Raja Park", cam.LastVerification.Summary)
	})

	t.Run("negative verdict is a value", func(t *testing.T) {
		v := &stubVerifier{verdict: model.Verification{Verified: false, Summary: "Could not verify location connectivity."}}
		r := New(seed(), v)

		verdict, ok := r.VerifyLocation(context.Background(), "CAM-002")

		require.True(t, ok)
		assert.False(t, verdict.Verified)
		cam, _ := r.Get("CAM-002")
		assert.False(t, cam.LocationVerified)
	})

	t.Run("no verifier", func(t *testing.T) {
		r := New(seed(), nil)
		verdict, ok := r.VerifyLocation(context.Background(), "CAM-002")
		require.True(t, ok)
		assert.False(t, verdict.Verified)
	})
}

func TestList_Filter(t *testing.T) {
	r := New(seed(), nil)

	assert.Len(t, r.List(Filter{Status: model.StatusOffline}), 1)
	assert.Len(t, r.List(Filter{SharedOnly: true}), 1)
}

func TestConcurrentTransitions_NeverPendingAndShared(t *testing.T) {
	r := New(seed(), nil)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			r.RequestAccess("CAM-002")
		}()
		go func() {
			defer wg.Done()
			r.ToggleSharing("CAM-002")
		}()
		go func() {
			defer wg.Done()
			r.GrantAccess("CAM-002", 0)
		}()
	}
	wg.Wait()

	cam, _ := r.Get("CAM-002")
	assert.False(t, cam.IsShared && cam.PendingAccessRequest)
}

func TestGrantPending_OnlyOutstandingRequests(t *testing.T) {
	r := New(seed(), nil)

	_, ok := r.GrantPending("CAM-002", time.Hour)
	assert.False(t, ok, "no request yet")

	r.RequestAccess("CAM-002")
	r.RejectRequest("CAM-002")
	_, ok = r.GrantPending("CAM-002", time.Hour)
	assert.False(t, ok, "request was rejected")
	cam, _ := r.Get("CAM-002")
	assert.False(t, cam.IsShared)

	r.RequestAccess("CAM-002")
	g, ok := r.GrantPending("CAM-002", time.Hour)
	require.True(t, ok)
	assert.True(t, g.TimeBoxed())
	cam, _ = r.Get("CAM-002")
	assert.True(t, cam.IsShared)
	assert.False(t, cam.PendingAccessRequest)

	_, ok = r.GrantPending("CAM-404", time.Hour)
	assert.False(t, ok)
}
