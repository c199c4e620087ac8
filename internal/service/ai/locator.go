package ai

import (
	"context"
	"fmt"

	"camshare/internal/analysis"
	"camshare/internal/model"
)

const (
	verifyParseFailed  = "Verification result parsing failed."
	verifyUnavailable  = "Could not verify location connectivity."
	verifyInstructions = "Verify whether the location %q plausibly exists near latitude %f, longitude %f. " +
		"Use Google Maps data about nearby landmarks. " +
		`Reply with a JSON object only: {"verified": boolean, "summary": string}.`
)

// Locator checks camera locations against Google Maps grounded answers.
type Locator struct {
	client *GeminiClient
}

func NewLocator(client *GeminiClient) *Locator {
	return &Locator{client: client}
}

// Verify never fails; problems are reported in the returned summary.
func (l *Locator) Verify(ctx context.Context, location string, lat, lng float64) model.Verification {
	body := generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: fmt.Sprintf(verifyInstructions, location, lat, lng)}},
		}},
		// JSON response mode cannot be combined with the Maps tool, so the
		// reply is parsed out of free text.
		Tools:      []tool{{GoogleMaps: &struct{}{}}},
		ToolConfig: &toolConfig{},
	}
	body.ToolConfig.RetrievalConfig.LatLng = latLng{Latitude: lat, Longitude: lng}

	text, err := l.client.generate(ctx, l.client.model, body)
	if err != nil {
		l.client.logger.Error("Location verification for %q failed: %v", location, err)
		return model.Verification{Verified: false, Summary: verifyUnavailable}
	}

	var v struct {
		Verified bool   `json:"verified"`
		Summary  string `json:"summary"`
	}
	if err := analysis.DecodeStructured(text, &v); err != nil {
		l.client.logger.Warning("Location verification reply for %q unreadable: %v", location, err)
		return model.Verification{Verified: false, Summary: verifyParseFailed}
	}
	return model.Verification{Verified: v.Verified, Summary: v.Summary}
}
