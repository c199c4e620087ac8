package escalation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camshare/internal/model"
	"camshare/internal/registry"
)

type recordingSender struct {
	mu    sync.Mutex
	codes []string
	err   error
}

func (s *recordingSender) Send(_ context.Context, _ string, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.codes = append(s.codes, code)
	return nil
}

func newRegistry() *registry.Registry {
	return registry.New([]model.Camera{
		{ID: "CAM-001", IsShared: true},
		{ID: "CAM-002"},
		{ID: "CAM-003"},
		{ID: "CAM-004"},
	}, nil)
}

func newFlow(reg *registry.Registry, sender Sender, opts ...Option) *Flow {
	opts = append([]Option{WithCodeGenerator(FixedCode("1234"))}, opts...)
	return NewFlow(reg, sender, opts...)
}

func TestOpen_UsesDefaultDuration(t *testing.T) {
	f := newFlow(newRegistry(), &recordingSender{})

	st := f.Open(0)

	assert.Equal(t, PhaseReview, st.Phase)
	assert.Equal(t, 120, st.DurationMinutes)
	assert.NotEmpty(t, st.ID)
}

func TestSendCode_MovesToChallenge(t *testing.T) {
	sender := &recordingSender{}
	f := newFlow(newRegistry(), sender)
	st := f.Open(60)

	st, err := f.SendCode(context.Background(), st.ID)

	require.NoError(t, err)
	assert.Equal(t, PhaseChallenge, st.Phase)
	assert.Equal(t, []string{"1234"}, sender.codes)
	assert.False(t, st.ResendAvailableAt.IsZero())

	_, err = f.SendCode(context.Background(), st.ID)
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestSendCode_SenderFailureStaysInReview(t *testing.T) {
	sender := &recordingSender{err: errors.New("sms gateway down")}
	f := newFlow(newRegistry(), sender)
	st := f.Open(60)

	st, err := f.SendCode(context.Background(), st.ID)

	require.Error(t, err)
	assert.Equal(t, PhaseReview, st.Phase)
}

func TestSubmit_WrongCodeDoesNotMutateCameras(t *testing.T) {
	reg := newRegistry()
	reg.RequestAccess("CAM-002")
	reg.RequestAccess("CAM-003")
	before := reg.List(registry.Filter{})

	f := newFlow(reg, &recordingSender{})
	st := f.Open(30)
	_, err := f.SendCode(context.Background(), st.ID)
	require.NoError(t, err)

	for i, code := range []string{"0000", "", "12345"} {
		out, err := f.Submit(st.ID, code)
		require.NoError(t, err)
		assert.False(t, out.Granted)
		assert.Equal(t, PhaseChallenge, out.State.Phase)
		assert.Equal(t, InvalidCodeMessage, out.State.LastError)
		assert.Equal(t, i+1, out.State.Failures)
	}

	assert.Equal(t, before, reg.List(registry.Filter{}))
}

func TestSubmit_CorrectCodeGrantsAllPending(t *testing.T) {
	reg := newRegistry()
	reg.RequestAccess("CAM-002")
	reg.RequestAccess("CAM-004")

	f := newFlow(reg, &recordingSender{})
	st := f.Open(45)
	_, err := f.SendCode(context.Background(), st.ID)
	require.NoError(t, err)

	_, err = f.Submit(st.ID, "9999")
	require.NoError(t, err)
	out, err := f.Submit(st.ID, "1234")
	require.NoError(t, err)

	assert.True(t, out.Granted)
	assert.Equal(t, PhaseGranted, out.State.Phase)
	require.Len(t, out.Grants, 2)
	for _, g := range out.Grants {
		assert.Equal(t, 45*time.Minute, g.Duration)
	}

	for _, id := range []string{"CAM-002", "CAM-004"} {
		cam, _ := reg.Get(id)
		assert.True(t, cam.IsShared, id)
		assert.False(t, cam.PendingAccessRequest, id)
	}
	cam, _ := reg.Get("CAM-003")
	assert.False(t, cam.IsShared)
	assert.Empty(t, reg.Pending())

	_, err = f.Get(st.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSubmit_InReviewIsRejected(t *testing.T) {
	reg := newRegistry()
	reg.RequestAccess("CAM-002")
	f := newFlow(reg, &recordingSender{})
	st := f.Open(30)

	_, err := f.Submit(st.ID, "1234")

	assert.ErrorIs(t, err, ErrWrongPhase)
	cam, _ := reg.Get("CAM-002")
	assert.False(t, cam.IsShared)
}

func TestCancel_ReturnsToReviewAndDiscardsCode(t *testing.T) {
	f := newFlow(newRegistry(), &recordingSender{})
	st := f.Open(30)
	_, err := f.SendCode(context.Background(), st.ID)
	require.NoError(t, err)

	st, err = f.Cancel(st.ID)
	require.NoError(t, err)
	assert.Equal(t, PhaseReview, st.Phase)

	_, err = f.Submit(st.ID, "1234")
	assert.ErrorIs(t, err, ErrWrongPhase)

	_, err = f.Cancel(st.ID)
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestResend_HonoursCooldown(t *testing.T) {
	sender := &recordingSender{}
	f := newFlow(newRegistry(), sender, WithCooldown(20*time.Millisecond))
	st := f.Open(30)
	_, err := f.SendCode(context.Background(), st.ID)
	require.NoError(t, err)

	_, err = f.Resend(context.Background(), st.ID)
	assert.ErrorIs(t, err, ErrResendCooldown)

	require.Eventually(t, func() bool {
		_, err := f.Resend(context.Background(), st.ID)
		return err == nil
	}, time.Second, 5*time.Millisecond)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Len(t, sender.codes, 2)
}

func TestSetDuration(t *testing.T) {
	f := newFlow(newRegistry(), &recordingSender{})
	st := f.Open(30)

	st, err := f.SetDuration(st.ID, 90)
	require.NoError(t, err)
	assert.Equal(t, 90, st.DurationMinutes)

	_, err = f.SendCode(context.Background(), st.ID)
	require.NoError(t, err)
	_, err = f.SetDuration(st.ID, 10)
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestClose_RemovesSession(t *testing.T) {
	f := newFlow(newRegistry(), &recordingSender{})
	st := f.Open(30)
	_, err := f.SendCode(context.Background(), st.ID)
	require.NoError(t, err)

	f.Close(st.ID)
	f.Close(st.ID)

	_, err = f.Get(st.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	f.Open(10)
	f.Shutdown()
}

func TestRandomCode_Format(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := RandomCode()
		require.NoError(t, err)
		assert.Len(t, code, CodeLength)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}

// rejectingGranter rejects one camera right after the pending list is read.
type rejectingGranter struct {
	*registry.Registry
	reject string
}

func (g rejectingGranter) Pending() []string {
	ids := g.Registry.Pending()
	g.Registry.RejectRequest(g.reject)
	return ids
}

func TestSubmit_SkipsRequestRejectedMidway(t *testing.T) {
	reg := newRegistry()
	reg.RequestAccess("CAM-002")
	reg.RequestAccess("CAM-003")
	f := NewFlow(rejectingGranter{Registry: reg, reject: "CAM-003"}, &recordingSender{},
		WithCodeGenerator(FixedCode("1234")))
	st := f.Open(30)
	_, err := f.SendCode(context.Background(), st.ID)
	require.NoError(t, err)

	out, err := f.Submit(st.ID, "1234")

	require.NoError(t, err)
	require.True(t, out.Granted)
	require.Len(t, out.Grants, 1)
	assert.Equal(t, "CAM-002", out.Grants[0].CameraID)
	cam, _ := reg.Get("CAM-003")
	assert.False(t, cam.IsShared)
	assert.False(t, cam.PendingAccessRequest)
}
