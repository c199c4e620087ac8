// Package ai talks to the Gemini generateContent REST API.
package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"camshare/internal/analysis"
	"camshare/internal/config"
	"camshare/internal/logger"
)

var (
	ErrNoAPIKey      = errors.New("gemini API key is not configured")
	ErrEmptyResponse = errors.New("gemini returned no text")
)

const jpegMimeType = "image/jpeg"

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type tool struct {
	GoogleMaps *struct{} `json:"googleMaps,omitempty"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type toolConfig struct {
	RetrievalConfig struct {
		LatLng latLng `json:"latLng"`
	} `json:"retrievalConfig"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
	Tools            []tool            `json:"tools,omitempty"`
	ToolConfig       *toolConfig       `json:"toolConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GeminiClient implements analysis.Model over HTTP.
type GeminiClient struct {
	http            *resty.Client
	apiKey          string
	model           string
	structuredModel string
	logger          *logger.Logger
}

func NewGeminiClient(cfg *config.Config, log *logger.Logger) *GeminiClient {
	r := resty.New()
	r.SetBaseURL(strings.TrimRight(cfg.GeminiBaseURL, "/"))
	r.SetHeader("Content-Type", "application/json")
	r.SetHeader("Accept", "application/json")
	r.SetHeader("x-goog-api-key", cfg.GeminiAPIKey)
	if cfg.GeminiTimeout > 0 {
		r.SetTimeout(cfg.GeminiTimeout)
	}

	structured := cfg.GeminiStructuredModel
	if structured == "" {
		structured = cfg.GeminiModel
	}
	return &GeminiClient{
		http:            r,
		apiKey:          cfg.GeminiAPIKey,
		model:           cfg.GeminiModel,
		structuredModel: structured,
		logger:          log,
	}
}

// Generate sends the instruction followed by the frames as one user turn.
// Structured requests go to the structured model and ask for a JSON reply.
func (c *GeminiClient) Generate(ctx context.Context, req analysis.Request) (string, error) {
	parts := make([]part, 0, len(req.Images)+1)
	for _, img := range req.Images {
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: jpegMimeType,
			Data:     base64.StdEncoding.EncodeToString(img),
		}})
	}
	parts = append(parts, part{Text: req.Instruction})

	body := generateRequest{Contents: []content{{Role: "user", Parts: parts}}}
	model := c.model
	if req.Structured {
		model = c.structuredModel
		body.GenerationConfig = &generationConfig{ResponseMimeType: "application/json"}
	}

	c.logger.Debug("Gemini %s request: mode=%s frames=%d", model, req.Mode, len(req.Images))
	return c.generate(ctx, model, body)
}

func (c *GeminiClient) generate(ctx context.Context, model string, body generateRequest) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("model", model).
		SetBody(body).
		SetResult(&generateResponse{}).
		SetError(&apiError{}).
		Post("/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if resp.IsError() {
		if e, ok := resp.Error().(*apiError); ok && e.Error.Message != "" {
			return "", fmt.Errorf("gemini returned %d: %s", resp.StatusCode(), e.Error.Message)
		}
		return "", fmt.Errorf("gemini returned %d: %s", resp.StatusCode(), resp.String())
	}

	result, ok := resp.Result().(*generateResponse)
	if !ok {
		return "", errors.New("failed to parse gemini response")
	}
	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked the prompt: %s", result.PromptFeedback.BlockReason)
	}
	if len(result.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}
