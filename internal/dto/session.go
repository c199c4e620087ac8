package dto

type OpenSessionRequest struct {
	CameraID string `json:"cameraId"`
}

// ScanRequest selects the analysis mode; Target is required for SEARCH.
type ScanRequest struct {
	Mode   string `json:"mode"`
	Target string `json:"target"`
}
