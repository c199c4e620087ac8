package analysis

// Result is the normalized outcome of one analysis call. It is built once and
// not modified afterwards.
type Result struct {
	Mode            Mode     `json:"mode"`
	Text            string   `json:"text"`
	DetectedObjects []string `json:"detectedObjects"`
	SafetyScore     int      `json:"safetyScore"`
	PlateCandidates []string `json:"anprCandidates,omitempty"`

	// PrivacyRecommendation is set in PRIVACY mode only.
	PrivacyRecommendation *bool `json:"privacyRecommendation,omitempty"`
	// MatchFound and Confidence are set in SEARCH mode only.
	MatchFound *bool  `json:"matchFound,omitempty"`
	Confidence string `json:"confidence,omitempty"`

	// Degraded marks results produced by a failure path (capture, transport or parse).
	Degraded bool `json:"degraded,omitempty"`
}

// Danger reports whether the safety score signals a hazard.
func (r Result) Danger() bool {
	return !r.Degraded && r.SafetyScore <= DangerScore
}

func boolPtr(b bool) *bool {
	return &b
}
