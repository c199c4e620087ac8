package ai

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_ParsesGroundedReply(t *testing.T) {
	f := &fakeGemini{reply: "Sure.\n```json\n{\"verified\": true, \"summary\": \"Near the City Palace.\"}\n```"}
	l := NewLocator(newTestClient(t, f, "secret"))

	v := l.Verify(context.Background(), "Tripolia Bazaar", 26.92, 75.82)

	assert.True(t, v.Verified)
	assert.Equal(t, "Near the City Palace.", v.Summary)

	require.Len(t, f.calls, 1)
	body := f.calls[0].body
	require.Len(t, body.Tools, 1)
	assert.NotNil(t, body.Tools[0].GoogleMaps)
	assert.Nil(t, body.GenerationConfig)
	assert.InDelta(t, 26.92, body.ToolConfig.RetrievalConfig.LatLng.Latitude, 1e-9)
	assert.Contains(t, body.Contents[0].Parts[0].Text, "Tripolia Bazaar")
}

func TestVerify_UnreadableReply(t *testing.T) {
	f := &fakeGemini{reply: "I could not find it."}
	l := NewLocator(newTestClient(t, f, "secret"))

	v := l.Verify(context.Background(), "Nowhere", 0, 0)

	assert.False(t, v.Verified)
	assert.Equal(t, verifyParseFailed, v.Summary)
}

func TestVerify_TransportFailure(t *testing.T) {
	f := &fakeGemini{status: http.StatusServiceUnavailable}
	l := NewLocator(newTestClient(t, f, "secret"))

	v := l.Verify(context.Background(), "Anywhere", 1, 2)

	assert.False(t, v.Verified)
	assert.Equal(t, verifyUnavailable, v.Summary)
}
