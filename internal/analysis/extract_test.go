package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafetyScore(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"Smoke and fire near the gate", DangerScore},
		{"Man holding a KNIFE", DangerScore},
		{"Traffic flows normally", SafeScore},
		{"", SafeScore},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafetyScore(tt.text), tt.text)
	}
}

func TestPlateCandidates(t *testing.T) {
	assert.Equal(t, []string{"RJ14AB1234"}, PlateCandidates("plate RJ14AB1234 seen twice: RJ14AB1234"))
	assert.Equal(t, []string{"DL-01-C-9999"}, PlateCandidates("truck DL-01-C-9999"))
	assert.Empty(t, PlateCandidates("rj14ab1234 lower case is ignored"))
}

func TestNormalizeLabels(t *testing.T) {
	assert.Equal(t, []string{"car", "person"}, NormalizeLabels([]string{"Car", " CAR ", "person", ""}))
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", `Result: {"a":{"b":2}} trailing {"c":3}`, `{"a":{"b":2}}`},
		{"braces in strings", `{"s":"}{"}`, `{"s":"}{"}`},
		{"escaped quote", `{"s":"say \"}\""}`, `{"s":"say \"}\""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ExtractJSONObject("no json here")
	assert.Error(t, err)
	_, err = ExtractJSONObject(`{"open": true`)
	assert.Error(t, err)
}

func TestDecodeStructured_LooseFields(t *testing.T) {
	var p privacyReport
	require.NoError(t, DecodeStructured(`{"summary":"x","risks":"faces","recommendBlur":"yes"}`, &p))
	assert.Equal(t, looseStrings{"faces"}, p.Risks)
	assert.True(t, bool(p.RecommendBlur))

	var s searchReport
	require.NoError(t, DecodeStructured(`{"matchFound":null}`, &s))
	assert.False(t, bool(s.MatchFound))

	require.NoError(t, DecodeStructured(`{"matchFound":"no"}`, &s))
	assert.False(t, bool(s.MatchFound))
}

func TestDecodeStructured_NumericBool(t *testing.T) {
	var p privacyReport
	require.NoError(t, DecodeStructured(`{"summary":"faces visible","recommendBlur":1}`, &p))
	assert.True(t, bool(p.RecommendBlur))

	require.NoError(t, DecodeStructured(`{"recommendBlur":0}`, &p))
	assert.False(t, bool(p.RecommendBlur))
}
