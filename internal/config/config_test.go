package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, InMemoryDB, cfg.DBPath)
	assert.Equal(t, 3, cfg.CaptureFrames)
	assert.Equal(t, 400*time.Millisecond, cfg.CaptureInterval)
	assert.Equal(t, 640, cfg.CaptureMaxWidth)
	assert.Equal(t, 120, cfg.EscalationDefaultMinutes)
	assert.Empty(t, cfg.OTPFixedCode)
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	content := "CAPTURE_FRAMES=5\nCAPTURE_INTERVAL=250\nOTP_RESEND_COOLDOWN=2s\nOTP_FIXED_CODE=1234\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	for _, key := range []string{"CAPTURE_FRAMES", "CAPTURE_INTERVAL", "OTP_RESEND_COOLDOWN", "OTP_FIXED_CODE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load(envFile)

	assert.Equal(t, 5, cfg.CaptureFrames)
	assert.Equal(t, 250*time.Millisecond, cfg.CaptureInterval)
	assert.Equal(t, 2*time.Second, cfg.OTPResendCooldown)
	assert.Equal(t, "1234", cfg.OTPFixedCode)
}

func TestGetEnvAsInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("CAMSHARE_TEST_INT", "12abc")
	assert.Equal(t, 7, getEnvAsInt("CAMSHARE_TEST_INT", 7))
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		value    string
		expected time.Duration
	}{
		{"", time.Second},
		{"1500ms", 1500 * time.Millisecond},
		{"20", 20 * time.Millisecond},
		{"soon", time.Second},
	}

	for _, tt := range tests {
		t.Setenv("CAMSHARE_TEST_DURATION", tt.value)
		assert.Equal(t, tt.expected, getEnvAsDuration("CAMSHARE_TEST_DURATION", time.Second), "value %q", tt.value)
	}
}
