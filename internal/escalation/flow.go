// Package escalation implements the one-time-code step-up that gates emergency grants.
//
// A session moves REVIEW -> CHALLENGE -> GRANTED; cancel returns CHALLENGE to REVIEW.
// Camera state is only touched on the CHALLENGE -> GRANTED transition.
package escalation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"camshare/internal/registry"
)

type Phase string

const (
	PhaseReview    Phase = "REVIEW"
	PhaseChallenge Phase = "CHALLENGE"
	PhaseGranted   Phase = "GRANTED"
)

// InvalidCodeMessage is recorded on the session after a wrong code.
const InvalidCodeMessage = "Invalid code. Please try again."

var (
	ErrSessionNotFound = errors.New("escalation session not found")
	ErrWrongPhase      = errors.New("operation not allowed in current phase")
	ErrResendCooldown  = errors.New("code was sent recently; wait before resending")
)

// Granter is the part of the registry the flow needs on success.
type Granter interface {
	Pending() []string
	// GrantPending grants id only if its request is still outstanding.
	GrantPending(id string, duration time.Duration) (registry.Grant, bool)
}

// State is a read-only view of a session.
type State struct {
	ID                string    `json:"id"`
	Phase             Phase     `json:"phase"`
	DurationMinutes   int       `json:"durationMinutes"`
	LastError         string    `json:"lastError,omitempty"`
	Failures          int       `json:"failures"`
	ResendAvailableAt time.Time `json:"resendAvailableAt,omitempty"`
}

// Outcome is the result of submitting a code.
type Outcome struct {
	Granted bool             `json:"granted"`
	Grants  []registry.Grant `json:"grants,omitempty"`
	State   State            `json:"state"`
}

type session struct {
	mu        sync.Mutex
	id        string
	phase     Phase
	minutes   int
	code      string
	failures  int
	lastError string

	canResend bool
	resendAt  time.Time
	cooldown  *time.Timer
	issued    int // bumped on every issued code so a stale timer cannot re-enable resend
}

// state must be called with s.mu held.
func (s *session) state() State {
	return State{
		ID:                s.id,
		Phase:             s.phase,
		DurationMinutes:   s.minutes,
		LastError:         s.lastError,
		Failures:          s.failures,
		ResendAvailableAt: s.resendAt,
	}
}

// stopTimer must be called with s.mu held.
func (s *session) stopTimer() {
	if s.cooldown != nil {
		s.cooldown.Stop()
		s.cooldown = nil
	}
}

// Flow owns all open escalation sessions.
type Flow struct {
	mu       sync.Mutex
	sessions map[string]*session

	granter        Granter
	sender         Sender
	generate       CodeGenerator
	cooldown       time.Duration
	defaultMinutes int
	now            func() time.Time
}

type Option func(*Flow)

func WithCodeGenerator(g CodeGenerator) Option {
	return func(f *Flow) { f.generate = g }
}

func WithCooldown(d time.Duration) Option {
	return func(f *Flow) { f.cooldown = d }
}

func WithDefaultMinutes(m int) Option {
	return func(f *Flow) { f.defaultMinutes = m }
}

func NewFlow(granter Granter, sender Sender, opts ...Option) *Flow {
	f := &Flow{
		sessions:       make(map[string]*session),
		granter:        granter,
		sender:         sender,
		generate:       RandomCode,
		cooldown:       30 * time.Second,
		defaultMinutes: 120,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open starts a session in REVIEW. Non-positive minutes use the default duration.
func (f *Flow) Open(minutes int) State {
	if minutes <= 0 {
		minutes = f.defaultMinutes
	}
	s := &session{id: uuid.NewString(), phase: PhaseReview, minutes: minutes}

	f.mu.Lock()
	f.sessions[s.id] = s
	f.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (f *Flow) lookup(id string) (*session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Get returns the current state of a session.
func (f *Flow) Get(id string) (State, error) {
	s, err := f.lookup(id)
	if err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(), nil
}

// SetDuration changes the requested grant duration while still in REVIEW.
func (f *Flow) SetDuration(id string, minutes int) (State, error) {
	s, err := f.lookup(id)
	if err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseReview {
		return s.state(), ErrWrongPhase
	}
	if minutes > 0 {
		s.minutes = minutes
	}
	return s.state(), nil
}

// SendCode moves REVIEW -> CHALLENGE after the code has been handed to the sender.
func (f *Flow) SendCode(ctx context.Context, id string) (State, error) {
	s, err := f.lookup(id)
	if err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseReview {
		return s.state(), ErrWrongPhase
	}
	if err := f.issue(ctx, s); err != nil {
		return s.state(), err
	}
	s.phase = PhaseChallenge
	return s.state(), nil
}

// Resend issues a fresh code once the cooldown has elapsed.
func (f *Flow) Resend(ctx context.Context, id string) (State, error) {
	s, err := f.lookup(id)
	if err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseChallenge {
		return s.state(), ErrWrongPhase
	}
	if !s.canResend {
		return s.state(), ErrResendCooldown
	}
	if err := f.issue(ctx, s); err != nil {
		return s.state(), err
	}
	return s.state(), nil
}

// issue must be called with s.mu held.
func (f *Flow) issue(ctx context.Context, s *session) error {
	code, err := f.generate()
	if err != nil {
		return err
	}
	if err := f.sender.Send(ctx, s.id, code); err != nil {
		return fmt.Errorf("failed to send code: %w", err)
	}
	s.code = code
	s.lastError = ""

	s.stopTimer()
	s.issued++
	issued := s.issued
	s.canResend = false
	s.resendAt = f.now().Add(f.cooldown)
	s.cooldown = time.AfterFunc(f.cooldown, func() {
		s.mu.Lock()
		if s.issued == issued && s.phase == PhaseChallenge {
			s.canResend = true
		}
		s.mu.Unlock()
	})
	return nil
}

// Submit checks a candidate code. A match grants every camera pending at this moment
// for the session's duration and tears the session down. A mismatch keeps the session
// in CHALLENGE with the invalid-code message recorded; nothing else changes.
func (f *Flow) Submit(id, candidate string) (Outcome, error) {
	s, err := f.lookup(id)
	if err != nil {
		return Outcome{}, err
	}

	s.mu.Lock()
	if s.phase != PhaseChallenge {
		st := s.state()
		s.mu.Unlock()
		return Outcome{State: st}, ErrWrongPhase
	}
	if candidate == "" || candidate != s.code {
		s.failures++
		s.lastError = InvalidCodeMessage
		st := s.state()
		s.mu.Unlock()
		return Outcome{State: st}, nil
	}

	s.phase = PhaseGranted
	s.code = ""
	s.lastError = ""
	s.stopTimer()
	duration := time.Duration(s.minutes) * time.Minute
	st := s.state()
	s.mu.Unlock()

	var grants []registry.Grant
	for _, camID := range f.granter.Pending() {
		if g, ok := f.granter.GrantPending(camID, duration); ok {
			grants = append(grants, g)
		}
	}

	f.mu.Lock()
	delete(f.sessions, id)
	f.mu.Unlock()

	return Outcome{Granted: true, Grants: grants, State: st}, nil
}

// Cancel returns a CHALLENGE session to REVIEW and discards the code.
func (f *Flow) Cancel(id string) (State, error) {
	s, err := f.lookup(id)
	if err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseChallenge {
		return s.state(), ErrWrongPhase
	}
	s.phase = PhaseReview
	s.code = ""
	s.lastError = ""
	s.canResend = false
	s.resendAt = time.Time{}
	s.stopTimer()
	return s.state(), nil
}

// Close tears a session down in any phase. Closing an unknown session is a no-op.
func (f *Flow) Close(id string) {
	f.mu.Lock()
	s, ok := f.sessions[id]
	delete(f.sessions, id)
	f.mu.Unlock()
	if !ok {
		return
	}
	s.mu.Lock()
	s.stopTimer()
	s.code = ""
	s.mu.Unlock()
}

// Shutdown closes every open session.
func (f *Flow) Shutdown() {
	f.mu.Lock()
	ids := make([]string, 0, len(f.sessions))
	for id := range f.sessions {
		ids = append(ids, id)
	}
	f.mu.Unlock()
	for _, id := range ids {
		f.Close(id)
	}
}

// Count returns the number of open sessions.
func (f *Flow) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}
