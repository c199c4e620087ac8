package dto

type OpenEscalationRequest struct {
	DurationMinutes int `json:"durationMinutes"`
}

type DurationRequest struct {
	DurationMinutes int `json:"durationMinutes"`
}

type SubmitCodeRequest struct {
	Code string `json:"code"`
}
