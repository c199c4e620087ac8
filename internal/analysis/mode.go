package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects the instruction sent to the model and how its reply is read.
type Mode string

const (
	ModeObjects Mode = "OBJECTS"
	ModeAnomaly Mode = "ANOMALY"
	ModeFace    Mode = "FACE"
	ModeANPR    Mode = "ANPR"
	ModePrivacy Mode = "PRIVACY"
	ModeSearch  Mode = "SEARCH"
)

var (
	ErrInvalidMode  = errors.New("invalid analysis mode")
	ErrMissingQuery = errors.New("search mode requires a target description")
)

// Modes lists every mode in display order.
func Modes() []Mode {
	return []Mode{ModeObjects, ModeAnomaly, ModeFace, ModeANPR, ModePrivacy, ModeSearch}
}

// ParseMode accepts a mode name in any case.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := modeTable[m]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

// Structured reports whether the mode expects a JSON reply.
func (m Mode) Structured() bool {
	return modeTable[m].structured
}

// modeEntry is one row of the dispatch table.
type modeEntry struct {
	structured bool
	prompt     func(target string) string
	interpret  func(reply string) (interpretation, error)
}

// interpretation is the mode-specific part of a Result.
type interpretation struct {
	text       string
	labels     []string
	blur       *bool
	matchFound *bool
	confidence string
}

const (
	privacyFallbackText = "Privacy Audit Completed."
	matchText           = "Target matched in video feed."
	noMatchText         = "Target not found."
	matchLabel          = "target match"
)

var confidenceLevels = map[string]struct{}{"HIGH": {}, "MEDIUM": {}, "LOW": {}, "NONE": {}}

var modeTable = map[Mode]modeEntry{
	ModeObjects: {
		prompt: func(string) string {
			return "Identify the distinct objects visible across these CCTV frames. " +
				"Reply only with a comma-separated list of object names, no sentences."
		},
		interpret: func(reply string) (interpretation, error) {
			return interpretation{text: reply, labels: objectList(reply)}, nil
		},
	},
	ModeAnomaly: {
		prompt: func(string) string {
			return "You are reviewing sequential CCTV frames for anomalies. Compare the frames and report " +
				"sudden speed drops, vehicle accidents, fire or smoke, visible weapons, fighting, or people running. " +
				"Describe what happened and where in the scene."
		},
		interpret: freeText,
	},
	ModeFace: {
		prompt: func(string) string {
			return "Describe the people visible in these CCTV frames: approximate age range, gender presentation, " +
				"clothing and accessories. Do not identify anyone by name. Finish with the overall mood of the crowd."
		},
		interpret: freeText,
	},
	ModeANPR: {
		prompt: func(string) string {
			return "Act as an automatic number plate recognition system. List every vehicle in these CCTV frames " +
				"with its type and colour, and transcribe any readable licence plate exactly as shown."
		},
		interpret: freeText,
	},
	ModePrivacy: {
		structured: true,
		prompt: func(string) string {
			return "Audit these CCTV frames for privacy exposure: visible faces, licence plates, screens, documents " +
				"or windows into private homes. Reply with a JSON object only: " +
				`{"summary": string, "risks": [string], "recommendBlur": boolean}.`
		},
		interpret: func(reply string) (interpretation, error) {
			var report privacyReport
			if err := DecodeStructured(reply, &report); err != nil {
				return interpretation{}, err
			}
			text := strings.TrimSpace(report.Summary)
			if text == "" {
				text = privacyFallbackText
			}
			return interpretation{
				text:   text,
				labels: []string(report.Risks),
				blur:   boolPtr(bool(report.RecommendBlur)),
			}, nil
		},
	},
	ModeSearch: {
		structured: true,
		prompt: func(target string) string {
			return fmt.Sprintf("Search these sequential CCTV frames for the following target: %q. "+
				"Reply with a JSON object only: "+
				`{"matchFound": boolean, "confidence": "HIGH"|"MEDIUM"|"LOW"|"NONE", "description": string, "timestamp": string}. `+
				"Use the timestamp field to say in which frame the target appears.", target)
		},
		interpret: func(reply string) (interpretation, error) {
			var report searchReport
			if err := DecodeStructured(reply, &report); err != nil {
				return interpretation{}, err
			}
			found := bool(report.MatchFound)
			text := strings.TrimSpace(report.Description)
			if text == "" {
				text = noMatchText
				if found {
					text = matchText
				}
			}
			confidence := strings.ToUpper(strings.TrimSpace(report.Confidence))
			if _, ok := confidenceLevels[confidence]; !ok {
				confidence = "NONE"
			}
			var labels []string
			if found {
				labels = []string{matchLabel}
			}
			return interpretation{
				text:       text,
				labels:     labels,
				matchFound: boolPtr(found),
				confidence: confidence,
			}, nil
		},
	},
}

func freeText(reply string) (interpretation, error) {
	return interpretation{text: reply, labels: vocabularyScan(reply)}, nil
}
