package dto

import (
	"time"

	"camshare/internal/model"
)

// CameraView is a camera plus the deadline of its time-boxed grant, if any.
type CameraView struct {
	model.Camera
	GrantExpiresAt *time.Time `json:"grantExpiresAt,omitempty"`
}

type AccessRequestResponse struct {
	Decision string       `json:"decision"`
	Camera   model.Camera `json:"camera"`
}

// GrantRequest carries an optional grant length; zero or absent means indefinite.
type GrantRequest struct {
	Minutes int `json:"minutes"`
}

type PrivacyRequest struct {
	Level model.PrivacyLevel `json:"level"`
}
