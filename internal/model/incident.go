package model

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Critical reports whether the severity should raise an alert.
func (s Severity) Critical() bool {
	return s == SeverityHigh || s == SeverityCritical
}

// Incident is an externally produced event tied to a camera.
type Incident struct {
	ID          string   `json:"id" yaml:"id"`
	Type        string   `json:"type" yaml:"type"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Location    string   `json:"location" yaml:"location"`
	Timestamp   string   `json:"timestamp" yaml:"timestamp"`
	CameraID    string   `json:"cameraId" yaml:"camera_id"`
	Description string   `json:"description" yaml:"description"`
	Resolved    bool     `json:"resolved" yaml:"resolved"`
}
