// Package registry owns the canonical access-control state of every camera.
//
// All mutation goes through the named transition methods. Each camera carries its
// own lock, so a transition never exposes a partially updated set of flags, while
// operations on different cameras run in parallel. Unknown identifiers are reported
// with found=false and never treated as faults.
package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"camshare/internal/model"
)

// LocationVerifier checks that a location label matches its coordinates.
// Implementations must not fail: problems are reported as an unverified verdict.
type LocationVerifier interface {
	Verify(ctx context.Context, location string, lat, lng float64) model.Verification
}

// Grant records an access grant. The registry does not schedule revocation;
// ExpiresAt is for a surrounding scheduler to act on.
type Grant struct {
	CameraID  string        `json:"cameraId"`
	Duration  time.Duration `json:"duration"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// TimeBoxed reports whether the grant carries a deadline.
func (g Grant) TimeBoxed() bool {
	return g.Duration > 0
}

// Filter narrows List results. Zero value matches every camera.
type Filter struct {
	Status     model.CameraStatus
	SharedOnly bool
}

func (f Filter) match(c model.Camera) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.SharedOnly && !c.IsShared {
		return false
	}
	return true
}

type entry struct {
	mu  sync.Mutex
	cam model.Camera
}

// snapshot must be called with e.mu held.
func (e *entry) snapshot() model.Camera {
	c := e.cam
	if c.LastVerification != nil {
		v := *c.LastVerification
		c.LastVerification = &v
	}
	return c
}

type Registry struct {
	// entries is built once in New and never modified, so lookups need no lock.
	entries  map[string]*entry
	order    []string
	verifier LocationVerifier
	now      func() time.Time
}

// New builds a registry from the seed set. Later duplicates of an id are ignored.
func New(seed []model.Camera, verifier LocationVerifier) *Registry {
	r := &Registry{
		entries:  make(map[string]*entry, len(seed)),
		order:    make([]string, 0, len(seed)),
		verifier: verifier,
		now:      time.Now,
	}
	for _, cam := range seed {
		if cam.ID == "" {
			continue
		}
		if _, exists := r.entries[cam.ID]; exists {
			continue
		}
		if cam.PrivacySetting == "" {
			cam.PrivacySetting = model.PrivacyNone
		}
		if cam.Status == "" {
			cam.Status = model.StatusActive
		}
		if cam.IsShared {
			cam.PendingAccessRequest = false
		}
		r.entries[cam.ID] = &entry{cam: cam}
		r.order = append(r.order, cam.ID)
	}
	return r
}

func (r *Registry) update(id string, fn func(c *model.Camera)) (model.Camera, bool) {
	e, ok := r.entries[id]
	if !ok {
		return model.Camera{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.cam)
	return e.snapshot(), true
}

// Get returns a snapshot of one camera.
func (r *Registry) Get(id string) (model.Camera, bool) {
	return r.update(id, func(*model.Camera) {})
}

// List returns snapshots in seed order.
func (r *Registry) List(filter Filter) []model.Camera {
	cams := make([]model.Camera, 0, len(r.order))
	for _, id := range r.order {
		c, _ := r.Get(id)
		if filter.match(c) {
			cams = append(cams, c)
		}
	}
	return cams
}

// Pending returns the ids of cameras with an outstanding, ungranted request.
func (r *Registry) Pending() []string {
	var ids []string
	for _, c := range r.List(Filter{}) {
		if c.PendingAccessRequest && !c.IsShared {
			ids = append(ids, c.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// RequestAccess records an authority request. With auto-approve on, the camera
// becomes shared in the same step; otherwise the request is left pending.
func (r *Registry) RequestAccess(id string) (Decision, model.Camera, bool) {
	var d Decision
	cam, ok := r.update(id, func(c *model.Camera) {
		d = Decide(*c)
		d.apply(c)
	})
	return d, cam, ok
}

// GrantAccess shares the camera and clears its pending request. A positive
// duration makes the grant time-boxed.
func (r *Registry) GrantAccess(id string, duration time.Duration) (Grant, bool) {
	now := r.now()
	_, ok := r.update(id, func(c *model.Camera) {
		c.IsShared = true
		c.PendingAccessRequest = false
	})
	if !ok {
		return Grant{}, false
	}
	g := Grant{CameraID: id}
	if duration > 0 {
		g.Duration = duration
		g.ExpiresAt = now.Add(duration)
	}
	return g, true
}

// GrantPending grants access like GrantAccess, but only while the camera still
// has an outstanding request. The check and the grant happen under one lock.
func (r *Registry) GrantPending(id string, duration time.Duration) (Grant, bool) {
	now := r.now()
	granted := false
	_, ok := r.update(id, func(c *model.Camera) {
		if !c.PendingAccessRequest || c.IsShared {
			return
		}
		c.IsShared = true
		c.PendingAccessRequest = false
		granted = true
	})
	if !ok || !granted {
		return Grant{}, false
	}
	g := Grant{CameraID: id}
	if duration > 0 {
		g.Duration = duration
		g.ExpiresAt = now.Add(duration)
	}
	return g, true
}

// ToggleSharing flips the shared flag and always clears the pending request.
func (r *Registry) ToggleSharing(id string) (model.Camera, bool) {
	return r.update(id, func(c *model.Camera) {
		c.IsShared = !c.IsShared
		c.PendingAccessRequest = false
	})
}

// RejectRequest clears the pending request; an existing grant stays.
func (r *Registry) RejectRequest(id string) (model.Camera, bool) {
	return r.update(id, func(c *model.Camera) {
		c.PendingAccessRequest = false
	})
}

// RevokeAccess unshares the camera. Unlike ToggleSharing it is idempotent, which
// makes it safe as an expiry callback.
func (r *Registry) RevokeAccess(id string) (model.Camera, bool) {
	return r.update(id, func(c *model.Camera) {
		c.IsShared = false
		c.PendingAccessRequest = false
	})
}

func (r *Registry) SetPrivacy(id string, level model.PrivacyLevel) (model.Camera, bool) {
	return r.update(id, func(c *model.Camera) {
		c.PrivacySetting = level
	})
}

// ToggleAutoApprove flips the policy. A request that is already pending stays pending.
func (r *Registry) ToggleAutoApprove(id string) (model.Camera, bool) {
	return r.update(id, func(c *model.Camera) {
		c.AutoApprove = !c.AutoApprove
	})
}

// VerifyLocation asks the verifier about the camera's location. A negative verdict
// leaves the flag untouched and is returned as a normal value. The camera lock is
// not held during the verifier call.
func (r *Registry) VerifyLocation(ctx context.Context, id string) (model.Verification, bool) {
	cam, ok := r.Get(id)
	if !ok {
		return model.Verification{}, false
	}

	verdict := model.Verification{Summary: "No location verifier configured."}
	if r.verifier != nil {
		verdict = r.verifier.Verify(ctx, cam.Location, cam.Lat, cam.Lng)
	}

	r.update(id, func(c *model.Camera) {
		if verdict.Verified {
			c.LocationVerified = true
		}
		v := verdict
		c.LastVerification = &v
	})
	return verdict, true
}
