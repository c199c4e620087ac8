// Package service wires the camera registry, escalation flow and analysis
// pipeline together for the HTTP layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"camshare/internal/analysis"
	"camshare/internal/capture"
	"camshare/internal/config"
	"camshare/internal/escalation"
	"camshare/internal/logger"
	"camshare/internal/metrics"
	"camshare/internal/model"
	"camshare/internal/registry"
	"camshare/internal/service/storage"
	"camshare/internal/service/websocket"
)

var (
	ErrCameraNotFound  = errors.New("camera not found")
	ErrCameraNotShared = errors.New("camera is not shared with the authority")
	ErrSessionNotFound = errors.New("viewing session not found")
	ErrScanInProgress  = errors.New("a scan is already running for this session")
	ErrInvalidPrivacy  = errors.New("invalid privacy level")
)

// SystemActor is recorded for transitions nobody asked for, such as grant expiry.
const SystemActor = "system"

// Deps are the collaborators a Manager coordinates.
type Deps struct {
	Registry   *registry.Registry
	Dispatcher *analysis.Dispatcher
	Sampler    *capture.Sampler
	Opener     capture.Opener
	Hub        *websocket.HubService
	Activity   *storage.BufferService
	Incidents  *IncidentBoard
	Sender     escalation.Sender
}

type Manager struct {
	registry   *registry.Registry
	flow       *escalation.Flow
	dispatcher *analysis.Dispatcher
	sampler    *capture.Sampler
	opener     capture.Opener
	hub        *websocket.HubService
	activity   *storage.BufferService
	incidents  *IncidentBoard
	expiry     *ExpiryScheduler
	metrics    *metrics.Collector
	logger     *logger.Logger

	baseCtx  context.Context
	stopBase context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*viewingSession

	now func() time.Time
}

func NewManager(deps Deps, cfg *config.Config, logger *logger.Logger) *Manager {
	opts := []escalation.Option{
		escalation.WithCooldown(cfg.OTPResendCooldown),
		escalation.WithDefaultMinutes(cfg.EscalationDefaultMinutes),
	}
	if cfg.OTPFixedCode != "" {
		logger.Warning("Escalation codes are fixed by configuration; do not use this outside demos")
		opts = append(opts, escalation.WithCodeGenerator(escalation.FixedCode(cfg.OTPFixedCode)))
	}
	sender := deps.Sender
	if sender == nil {
		sender = escalation.LogSender{Logger: logger}
	}
	incidents := deps.Incidents
	if incidents == nil {
		incidents = NewIncidentBoard(nil)
	}

	baseCtx, stopBase := context.WithCancel(context.Background())
	m := &Manager{
		registry:   deps.Registry,
		flow:       escalation.NewFlow(deps.Registry, sender, opts...),
		dispatcher: deps.Dispatcher,
		sampler:    deps.Sampler,
		opener:     deps.Opener,
		hub:        deps.Hub,
		activity:   deps.Activity,
		incidents:  incidents,
		logger:     logger,
		baseCtx:    baseCtx,
		stopBase:   stopBase,
		sessions:   make(map[string]*viewingSession),
		now:        time.Now,
	}
	m.expiry = NewExpiryScheduler(m.expire)
	m.metrics = metrics.NewCollector(m)

	m.logger.Info("Manager started with %d cameras", len(deps.Registry.List(registry.Filter{})))
	return m
}

// Run drives the event hub and activity buffer until ctx ends, then tears
// down sessions and timers.
func (m *Manager) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		m.activity.Run(ctx)
	}()

	<-ctx.Done()
	m.Stop()
	wg.Wait()
	m.logger.Info("Manager stopped")
}

// Stop closes every viewing and escalation session and cancels grant expiry.
func (m *Manager) Stop() {
	m.stopBase()

	m.mu.Lock()
	sessions := make([]*viewingSession, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	for _, s := range sessions {
		if err := s.close(); err != nil {
			m.logger.Warning("Error closing session %s: %v", s.id, err)
		}
	}

	m.flow.Shutdown()
	m.expiry.Stop()
}

func (m *Manager) GetWebsocketService() *websocket.HubService {
	return m.hub
}

func (m *Manager) GetMetrics() *metrics.Collector {
	return m.metrics
}

// notify records an activity entry and pushes it to connected viewers.
func (m *Manager) notify(kind model.ActivityKind, cameraID, actor string, data interface{}, format string, args ...interface{}) {
	detail := fmt.Sprintf(format, args...)
	at := m.now()
	m.activity.Add(model.Activity{
		ID:         uuid.NewString(),
		Kind:       kind,
		CameraID:   cameraID,
		Actor:      actor,
		Detail:     detail,
		OccurredAt: at,
	})
	m.hub.Publish(websocket.Event{Type: string(kind), CameraID: cameraID, Message: detail, Data: data, At: at})
	m.logger.Info("%s %s by %s: %s", kind, cameraID, actor, detail)
}

func (m *Manager) expire(cameraID string) {
	if cam, ok := m.registry.RevokeAccess(cameraID); ok {
		m.notify(model.ActivityAccessRevoked, cameraID, SystemActor, cam, "time-boxed access expired")
	}
}

// Snapshot methods for the metrics collector.

func (m *Manager) Cameras() []model.Camera {
	return m.registry.List(registry.Filter{})
}

func (m *Manager) ViewingSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) EscalationSessions() int {
	return m.flow.Count()
}

// Cameras

func (m *Manager) ListCameras(filter registry.Filter) []model.Camera {
	return m.registry.List(filter)
}

func (m *Manager) GetCamera(id string) (model.Camera, error) {
	cam, ok := m.registry.Get(id)
	if !ok {
		return model.Camera{}, ErrCameraNotFound
	}
	return cam, nil
}

// GrantDeadline returns when a time-boxed grant on the camera runs out.
func (m *Manager) GrantDeadline(id string) (time.Time, bool) {
	return m.expiry.Deadline(id)
}

func (m *Manager) RequestAccess(id, actor string) (registry.Decision, model.Camera, error) {
	d, cam, ok := m.registry.RequestAccess(id)
	if !ok {
		return d, cam, ErrCameraNotFound
	}
	switch d {
	case registry.DecisionAutoApproved:
		m.metrics.AddGrants(1)
		m.notify(model.ActivityAccessAutoApproved, id, actor, cam, "request auto-approved by camera policy")
	case registry.DecisionPending:
		m.notify(model.ActivityAccessRequested, id, actor, cam, "access requested for %s", cam.Name)
	default:
		m.logger.Debug("Access request for %s ignored: already shared", id)
	}
	return d, cam, nil
}

// GrantAccess shares a camera. Positive minutes make the grant expire.
func (m *Manager) GrantAccess(id string, minutes int, actor string) (registry.Grant, error) {
	var duration time.Duration
	if minutes > 0 {
		duration = time.Duration(minutes) * time.Minute
	}
	m.expiry.Cancel(id)
	g, ok := m.registry.GrantAccess(id, duration)
	if !ok {
		return g, ErrCameraNotFound
	}
	m.expiry.Schedule(g)
	m.metrics.AddGrants(1)
	if g.TimeBoxed() {
		m.notify(model.ActivityAccessGranted, id, actor, g, "access granted for %d minutes", minutes)
	} else {
		m.notify(model.ActivityAccessGranted, id, actor, g, "access granted")
	}
	return g, nil
}

func (m *Manager) ToggleSharing(id, actor string) (model.Camera, error) {
	m.expiry.Cancel(id)
	cam, ok := m.registry.ToggleSharing(id)
	if !ok {
		return cam, ErrCameraNotFound
	}
	state := "off"
	if cam.IsShared {
		state = "on"
	}
	m.notify(model.ActivitySharingToggled, id, actor, cam, "sharing turned %s", state)
	return cam, nil
}

func (m *Manager) RejectRequest(id, actor string) (model.Camera, error) {
	cam, ok := m.registry.RejectRequest(id)
	if !ok {
		return cam, ErrCameraNotFound
	}
	m.notify(model.ActivityAccessRejected, id, actor, cam, "pending request rejected")
	return cam, nil
}

func (m *Manager) RevokeAccess(id, actor string) (model.Camera, error) {
	m.expiry.Cancel(id)
	cam, ok := m.registry.RevokeAccess(id)
	if !ok {
		return cam, ErrCameraNotFound
	}
	m.notify(model.ActivityAccessRevoked, id, actor, cam, "access revoked")
	return cam, nil
}

func (m *Manager) SetPrivacy(id string, level model.PrivacyLevel, actor string) (model.Camera, error) {
	if !level.Valid() {
		return model.Camera{}, fmt.Errorf("%w: %q", ErrInvalidPrivacy, level)
	}
	cam, ok := m.registry.SetPrivacy(id, level)
	if !ok {
		return cam, ErrCameraNotFound
	}
	m.notify(model.ActivityPrivacyChanged, id, actor, cam, "privacy set to %s", level)
	return cam, nil
}

func (m *Manager) ToggleAutoApprove(id, actor string) (model.Camera, error) {
	cam, ok := m.registry.ToggleAutoApprove(id)
	if !ok {
		return cam, ErrCameraNotFound
	}
	m.notify(model.ActivityAutoApproveToggled, id, actor, cam, "auto-approve %t", cam.AutoApprove)
	return cam, nil
}

func (m *Manager) VerifyLocation(ctx context.Context, id, actor string) (model.Verification, error) {
	v, ok := m.registry.VerifyLocation(ctx, id)
	if !ok {
		return v, ErrCameraNotFound
	}
	m.notify(model.ActivityLocationVerified, id, actor, v, "verified=%t: %s", v.Verified, v.Summary)
	return v, nil
}

// Escalation

func (m *Manager) OpenEscalation(minutes int) escalation.State {
	return m.flow.Open(minutes)
}

func (m *Manager) GetEscalation(id string) (escalation.State, error) {
	return m.flow.Get(id)
}

func (m *Manager) SetEscalationDuration(id string, minutes int) (escalation.State, error) {
	return m.flow.SetDuration(id, minutes)
}

func (m *Manager) SendEscalationCode(ctx context.Context, id string) (escalation.State, error) {
	return m.flow.SendCode(ctx, id)
}

func (m *Manager) ResendEscalationCode(ctx context.Context, id string) (escalation.State, error) {
	return m.flow.Resend(ctx, id)
}

func (m *Manager) CancelEscalation(id string) (escalation.State, error) {
	return m.flow.Cancel(id)
}

func (m *Manager) CloseEscalation(id string) {
	m.flow.Close(id)
}

// SubmitEscalationCode checks a code; on success every camera pending at that
// moment is granted for the session's duration.
func (m *Manager) SubmitEscalationCode(id, code, actor string) (escalation.Outcome, error) {
	out, err := m.flow.Submit(id, code)
	if err != nil {
		return out, err
	}
	if !out.Granted {
		m.metrics.CodeRejected()
		m.logger.Warning("Escalation %s: wrong code (%d failures)", id, out.State.Failures)
		return out, nil
	}

	m.metrics.AddGrants(len(out.Grants))
	for _, g := range out.Grants {
		m.expiry.Schedule(g)
		m.notify(model.ActivityAccessGranted, g.CameraID, actor, g,
			"access granted via escalation for %d minutes", out.State.DurationMinutes)
	}
	m.logger.Info("Escalation %s granted %d camera(s)", id, len(out.Grants))
	return out, nil
}

// Viewing sessions

// OpenSession starts reading a shared camera's stream.
func (m *Manager) OpenSession(cameraID, actor string) (ViewingSession, error) {
	cam, ok := m.registry.Get(cameraID)
	if !ok {
		return ViewingSession{}, ErrCameraNotFound
	}
	if !cam.IsShared {
		return ViewingSession{}, ErrCameraNotShared
	}

	ctx, cancel := context.WithCancel(m.baseCtx)
	src, err := m.opener.Open(ctx, cam.VideoURL)
	if err != nil {
		cancel()
		return ViewingSession{}, fmt.Errorf("failed to open stream for %s: %w", cameraID, err)
	}

	s := &viewingSession{
		id:       uuid.NewString(),
		cameraID: cameraID,
		actor:    actor,
		openedAt: m.now(),
		source:   src,
		ctx:      ctx,
		cancel:   cancel,
	}
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.logger.Info("Viewing session %s opened for %s by %s", s.id, cameraID, actor)
	return s.info(), nil
}

func (m *Manager) lookupSession(id string) (*viewingSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) GetSession(id string) (ViewingSession, error) {
	s, err := m.lookupSession(id)
	if err != nil {
		return ViewingSession{}, err
	}
	return s.info(), nil
}

func (m *Manager) ListSessions() []ViewingSession {
	m.mu.Lock()
	list := make([]ViewingSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s.info())
	}
	m.mu.Unlock()
	sort.Slice(list, func(i, j int) bool { return list[i].OpenedAt.Before(list[j].OpenedAt) })
	return list
}

// CloseSession stops the stream and cancels any scan in flight.
func (m *Manager) CloseSession(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	if err := s.close(); err != nil {
		m.logger.Warning("Error closing stream for session %s: %v", id, err)
	}
	m.logger.Info("Viewing session %s closed", id)
	return nil
}

// Scan captures frames from the session's stream and analyzes them. Only one
// scan runs per session; it ends early when ctx ends or the session closes.
func (m *Manager) Scan(ctx context.Context, sessionID string, mode analysis.Mode, target string) (ScanResult, error) {
	if _, err := analysis.ParseMode(string(mode)); err != nil {
		return ScanResult{}, err
	}
	target = strings.TrimSpace(target)
	if mode == analysis.ModeSearch && target == "" {
		return ScanResult{}, analysis.ErrMissingQuery
	}

	s, err := m.lookupSession(sessionID)
	if err != nil {
		return ScanResult{}, err
	}
	cam, ok := m.registry.Get(s.cameraID)
	if !ok {
		return ScanResult{}, ErrCameraNotFound
	}
	if !cam.IsShared {
		return ScanResult{}, ErrCameraNotShared
	}

	if !s.begin() {
		return ScanResult{}, ErrScanInProgress
	}
	completed := false
	defer func() { s.end(completed) }()

	scanCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	start := m.now()
	frames, err := m.sampler.Capture(scanCtx, s.source)
	switch {
	case scanCtx.Err() != nil:
		return ScanResult{}, scanCtx.Err()
	case errors.Is(err, capture.ErrSourceNotReady):
		return ScanResult{}, err
	case err != nil:
		m.logger.Warning("Capture for session %s failed: %v", sessionID, err)
		frames = nil
	}

	images := make([][]byte, len(frames))
	for i, f := range frames {
		images[i] = f.JPEG
	}
	res, err := m.dispatcher.Analyze(scanCtx, images, mode, target)
	if err != nil {
		return ScanResult{}, err
	}
	if scanCtx.Err() != nil {
		return ScanResult{}, scanCtx.Err()
	}

	took := m.now().Sub(start)
	if frames == nil {
		frames = []capture.Frame{}
	}
	sr := ScanResult{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		CameraID:   s.cameraID,
		Mode:       mode,
		Target:     target,
		Frames:     frames,
		Result:     res,
		StartedAt:  start,
		DurationMs: took.Milliseconds(),
	}
	completed = true

	m.metrics.ObserveScan(string(mode), res.Degraded, res.Danger(), took)
	m.notify(model.ActivityScanCompleted, s.cameraID, s.actor, sr,
		"%s scan: safety score %d, %d label(s)", mode, res.SafetyScore, len(res.DetectedObjects))
	if res.Danger() {
		m.logger.Warning("Danger detected on %s during %s scan", s.cameraID, mode)
	}
	return sr, nil
}

// Incidents

func (m *Manager) Incidents(cameraID string) []model.Incident {
	return m.incidents.List(cameraID)
}

func (m *Manager) Alerts() []model.Incident {
	return m.incidents.Alerts()
}

func (m *Manager) DismissAlert(id string) bool {
	return m.incidents.Dismiss(id)
}

// Activity

func (m *Manager) Activity(filter *model.ActivityFilter) ([]model.Activity, error) {
	return m.activity.List(filter)
}

// ActivityCount counts matching entries regardless of the filter's limit.
func (m *Manager) ActivityCount(filter *model.ActivityFilter) (int, error) {
	return m.activity.Count(filter)
}
