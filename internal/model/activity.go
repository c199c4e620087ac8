package model

import "time"

// ActivityKind names a recorded access-control or analysis event.
type ActivityKind string

const (
	ActivityAccessRequested    ActivityKind = "access_requested"
	ActivityAccessAutoApproved ActivityKind = "access_auto_approved"
	ActivityAccessGranted      ActivityKind = "access_granted"
	ActivityAccessRejected     ActivityKind = "access_rejected"
	ActivityAccessRevoked      ActivityKind = "access_revoked"
	ActivitySharingToggled     ActivityKind = "sharing_toggled"
	ActivityPrivacyChanged     ActivityKind = "privacy_changed"
	ActivityAutoApproveToggled ActivityKind = "auto_approve_toggled"
	ActivityLocationVerified   ActivityKind = "location_verified"
	ActivityScanCompleted      ActivityKind = "scan_completed"
)

// Activity is one entry of the audit trail.
type Activity struct {
	ID         string       `json:"id"`
	Kind       ActivityKind `json:"kind"`
	CameraID   string       `json:"cameraId"`
	Actor      string       `json:"actor"`
	Detail     string       `json:"detail"`
	OccurredAt time.Time    `json:"occurredAt"`
}

// ActivityFilter narrows activity queries.
type ActivityFilter struct {
	CameraID string
	Kind     ActivityKind
	Since    time.Time
	Limit    int
}
