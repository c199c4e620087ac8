package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// InMemoryDB keeps the activity log for the lifetime of the process only.
const InMemoryDB = "file:camshare?mode=memory&cache=shared"

type Config struct {
	Port         int
	LogDirectory string
	LogLevel     string
	DBPath       string
	SeedFile     string // optional YAML catalog overriding the embedded seed

	GeminiAPIKey          string
	GeminiBaseURL         string
	GeminiModel           string
	GeminiStructuredModel string // used for PRIVACY and SEARCH
	GeminiTimeout         time.Duration

	CaptureFrames      int
	CaptureInterval    time.Duration
	CaptureMaxWidth    int
	CaptureJPEGQuality int

	OTPFixedCode             string // demo only; empty means a random code per session
	OTPResendCooldown        time.Duration
	EscalationDefaultMinutes int

	ActivityFlushInterval time.Duration
	ActivityBufferLimit   int
}

// Load reads an optional env file and builds the config from the environment.
// A missing env file is not an error.
func Load(envFile string) *Config {
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	return &Config{
		Port:         getEnvAsInt("PORT", 8080),
		LogDirectory: getEnv("LOG_DIR", filepath.Join(".", "logs")),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DBPath:       getEnv("DB_PATH", InMemoryDB),
		SeedFile:     getEnv("SEED_FILE", ""),

		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:         getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiStructuredModel: getEnv("GEMINI_STRUCTURED_MODEL", "gemini-2.5-pro"),
		GeminiTimeout:         getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),

		CaptureFrames:      getEnvAsInt("CAPTURE_FRAMES", 3),
		CaptureInterval:    getEnvAsDuration("CAPTURE_INTERVAL", 400*time.Millisecond),
		CaptureMaxWidth:    getEnvAsInt("CAPTURE_MAX_WIDTH", 640),
		CaptureJPEGQuality: getEnvAsInt("CAPTURE_JPEG_QUALITY", 60),

		OTPFixedCode:             getEnv("OTP_FIXED_CODE", ""),
		OTPResendCooldown:        getEnvAsDuration("OTP_RESEND_COOLDOWN", 30*time.Second),
		EscalationDefaultMinutes: getEnvAsInt("ESCALATION_DEFAULT_MINUTES", 120),

		ActivityFlushInterval: getEnvAsDuration("ACTIVITY_FLUSH_INTERVAL", 5*time.Second),
		ActivityBufferLimit:   getEnvAsInt("ACTIVITY_BUFFER_LIMIT", 100),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("400ms") or plain milliseconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
