package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// DangerScore is assigned when the narrative mentions a danger keyword.
	DangerScore = 30
	// SafeScore is assigned otherwise.
	SafeScore = 95
	// FailureScore is assigned when the model could not be reached.
	FailureScore = 0

	maxObjectLabels = 10
	minLabelLength  = 3
)

var dangerKeywords = []string{"fire", "accident", "weapon", "fighting", "blood", "crash", "robbery", "gun", "knife"}

var (
	vocabularyPattern = regexp.MustCompile(`(?i)\b(car|person|truck|bus|fire|smoke|weapon|dog|cat|bag|backpack)\b`)
	platePattern      = regexp.MustCompile(`[A-Z]{2}[ -]?[0-9]{2}[ -]?[A-Z]{1,2}[ -]?[0-9]{4}`)
	listSeparators    = regexp.MustCompile(`[,:\n]`)
)

// SafetyScore scans text case-insensitively for danger keywords.
func SafetyScore(text string) int {
	lower := strings.ToLower(text)
	for _, k := range dangerKeywords {
		if strings.Contains(lower, k) {
			return DangerScore
		}
	}
	return SafeScore
}

// PlateCandidates returns licence-plate shaped substrings of text in order of
// appearance, without duplicates.
func PlateCandidates(text string) []string {
	return uniqueInOrder(platePattern.FindAllString(text, -1))
}

// objectList splits a comma/colon/newline separated reply into labels,
// dropping short noise tokens.
func objectList(text string) []string {
	var labels []string
	for _, token := range listSeparators.Split(text, -1) {
		token = strings.Trim(strings.TrimSpace(token), "-*•. ")
		if utf8.RuneCountInString(token) < minLabelLength {
			continue
		}
		labels = append(labels, token)
	}
	return labels
}

// vocabularyScan picks known object and hazard nouns out of free text.
func vocabularyScan(text string) []string {
	return vocabularyPattern.FindAllString(text, -1)
}

// NormalizeLabels lower-cases and de-duplicates labels, keeping first occurrences.
func NormalizeLabels(labels []string) []string {
	lowered := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" {
			lowered = append(lowered, l)
		}
	}
	return uniqueInOrder(lowered)
}

func uniqueInOrder(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
