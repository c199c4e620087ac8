package registry

import "camshare/internal/model"

// Decision is the outcome of an access request against a camera's policy flags.
type Decision int

const (
	// DecisionPending leaves the request for the owner to approve or reject.
	DecisionPending Decision = iota
	// DecisionAutoApproved grants access immediately.
	DecisionAutoApproved
	// DecisionAlreadyShared means the feed is already visible; nothing changes.
	DecisionAlreadyShared
)

func (d Decision) String() string {
	switch d {
	case DecisionAutoApproved:
		return "auto_approved"
	case DecisionAlreadyShared:
		return "already_shared"
	default:
		return "pending"
	}
}

// Decide evaluates an access request without mutating anything.
func Decide(cam model.Camera) Decision {
	switch {
	case cam.IsShared:
		return DecisionAlreadyShared
	case cam.AutoApprove:
		return DecisionAutoApproved
	default:
		return DecisionPending
	}
}

// apply performs the flag changes for d on cam.
func (d Decision) apply(cam *model.Camera) {
	switch d {
	case DecisionAutoApproved:
		cam.IsShared = true
		cam.PendingAccessRequest = false
	case DecisionPending:
		cam.PendingAccessRequest = true
	}
}
