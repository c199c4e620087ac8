package model

// CameraStatus is the operational state reported for a camera.
type CameraStatus string

const (
	StatusActive      CameraStatus = "ACTIVE"
	StatusOffline     CameraStatus = "OFFLINE"
	StatusMaintenance CameraStatus = "MAINTENANCE"
)

// Valid reports whether s is one of the known statuses.
func (s CameraStatus) Valid() bool {
	switch s {
	case StatusActive, StatusOffline, StatusMaintenance:
		return true
	}
	return false
}

// PrivacyLevel controls how much of a shared feed the authority may see.
type PrivacyLevel string

const (
	PrivacyNone       PrivacyLevel = "NONE"
	PrivacyBlurFaces  PrivacyLevel = "BLUR_FACES"
	PrivacyAnonymized PrivacyLevel = "ANONYMIZED"
)

func (p PrivacyLevel) Valid() bool {
	switch p {
	case PrivacyNone, PrivacyBlurFaces, PrivacyAnonymized:
		return true
	}
	return false
}

// Camera is a snapshot of one camera's identity and access-control flags.
type Camera struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Location     string       `json:"location" yaml:"location"`
	Lat          float64      `json:"lat" yaml:"lat"`
	Lng          float64      `json:"lng" yaml:"lng"`
	OwnerID      string       `json:"ownerId" yaml:"owner_id"`
	Status       CameraStatus `json:"status" yaml:"status"`
	VideoURL     string       `json:"videoUrl" yaml:"video_url"`
	ThumbnailURL string       `json:"thumbnailUrl" yaml:"thumbnail_url"`

	IsShared             bool         `json:"isShared" yaml:"is_shared"`
	PrivacySetting       PrivacyLevel `json:"privacySetting" yaml:"privacy_setting"`
	PendingAccessRequest bool         `json:"pendingAccessRequest" yaml:"pending_access_request"`
	AutoApprove          bool         `json:"autoApprove" yaml:"auto_approve"`
	LocationVerified     bool         `json:"locationVerified" yaml:"location_verified"`

	// LastVerification is the most recent verifier verdict, kept for display.
	LastVerification *Verification `json:"lastVerification,omitempty" yaml:"-"`
}

// Verification is the outcome of a location check.
type Verification struct {
	Verified bool   `json:"verified"`
	Summary  string `json:"summary"`
}
