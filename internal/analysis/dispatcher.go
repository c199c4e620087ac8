// Package analysis turns captured frames and an analysis mode into a
// normalized Result by way of a multimodal language model.
package analysis

import (
	"context"
	"strings"

	"camshare/internal/logger"
)

const (
	emptyFramesText = "Error: Video frame capture failed. Data is empty."
	offlineText     = "System offline or analysis failed."
	parseErrorText  = "Error parsing AI report."
)

// Request is one model invocation.
type Request struct {
	Mode        Mode
	Instruction string
	// Images are JPEG encoded frames in capture order.
	Images [][]byte
	// Structured asks the model for a JSON reply.
	Structured bool
}

// Model is a multimodal text generator.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Dispatcher runs analysis requests against a Model.
type Dispatcher struct {
	model  Model
	logger *logger.Logger
}

func NewDispatcher(model Model, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewNop()
	}
	return &Dispatcher{model: model, logger: log}
}

// Analyze sends frames to the model under the instruction for mode and
// normalizes the reply. Only input violations return an error: empty capture,
// transport faults and unreadable replies all come back as degraded results.
func (d *Dispatcher) Analyze(ctx context.Context, frames [][]byte, mode Mode, target string) (Result, error) {
	entry, ok := modeTable[mode]
	if !ok {
		return Result{}, ErrInvalidMode
	}
	target = strings.TrimSpace(target)
	if mode == ModeSearch && target == "" {
		return Result{}, ErrMissingQuery
	}

	images := make([][]byte, 0, len(frames))
	for _, f := range frames {
		if len(f) > 0 {
			images = append(images, f)
		}
	}
	if len(images) == 0 {
		d.logger.Warning("Analysis %s skipped: no frame data", mode)
		return failure(mode, emptyFramesText), nil
	}

	reply, err := d.model.Generate(ctx, Request{
		Mode:        mode,
		Instruction: entry.prompt(target),
		Images:      images,
		Structured:  entry.structured,
	})
	if err != nil {
		d.logger.Error("Analysis %s failed: %v", mode, err)
		return failure(mode, offlineText), nil
	}

	in, err := entry.interpret(reply)
	if err != nil {
		d.logger.Warning("Analysis %s reply could not be parsed: %v", mode, err)
		res := finish(mode, interpretation{text: parseErrorText})
		res.Degraded = true
		return res, nil
	}
	return finish(mode, in), nil
}

func finish(mode Mode, in interpretation) Result {
	labels := NormalizeLabels(in.labels)
	if mode == ModeObjects && len(labels) > maxObjectLabels {
		labels = labels[:maxObjectLabels]
	}
	return Result{
		Mode:                  mode,
		Text:                  in.text,
		DetectedObjects:       labels,
		SafetyScore:           SafetyScore(in.text),
		PlateCandidates:       PlateCandidates(in.text),
		PrivacyRecommendation: in.blur,
		MatchFound:            in.matchFound,
		Confidence:            in.confidence,
	}
}

func failure(mode Mode, text string) Result {
	return Result{
		Mode:            mode,
		Text:            text,
		DetectedObjects: []string{},
		SafetyScore:     FailureScore,
		Degraded:        true,
	}
}
