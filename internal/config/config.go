package config

import (
	"os"
	"strconv"
	"time"
)

type Provider string

const (
	ProviderMock      Provider = "mock"
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

type Config struct {
	Host string
	Port string

	// LLM settings. BaseURL only applies to the OpenAI-compatible provider;
	// the default points at Groq, which serves the same wire format.
	Provider   Provider
	ModelName  string
	APIKey     string
	BaseURL    string
	UseMockLLM bool

	// Calendar MCP server. CredentialsPath is handed to the server process
	// via GOOGLE_OAUTH_CREDENTIALS at connection time.
	CalendarCommand  string
	CalendarArgs     []string
	CredentialsPath  string
	DiscoveryTimeout time.Duration

	// Applied to meeting timestamps that arrive without a UTC offset.
	DefaultUTCOffset string

	StorageBackend string // "memory" or "firestore"
	GCPProjectID   string

	SessionTTL  time.Duration
	MaxSessions int

	AllowedOrigin string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Load reads all env vars and builds the config.
func Load() *Config {
	provider := Provider(getEnv("PORTFOLIO_LLM_PROVIDER", "openai"))

	apiKey := getEnv("PORTFOLIO_API_KEY", "")
	if apiKey == "" {
		// The original deployment ran against Groq.
		apiKey = getEnv("GROQ_API_KEY", "")
	}

	return &Config{
		Host: getEnv("PORTFOLIO_HOST", "0.0.0.0"),
		Port: getEnv("PORTFOLIO_PORT", "8000"),

		Provider:   provider,
		ModelName:  getEnv("PORTFOLIO_MODEL_NAME", "llama-3.3-70b-versatile"),
		APIKey:     apiKey,
		BaseURL:    getEnv("PORTFOLIO_LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		UseMockLLM: getBoolEnv("PORTFOLIO_USE_MOCK_LLM", false),

		CalendarCommand:  getEnv("PORTFOLIO_MCP_COMMAND", "npx"),
		CalendarArgs:     []string{"-y", "@cocal/google-calendar-mcp"},
		CredentialsPath:  getEnv("PORTFOLIO_CALENDAR_CREDENTIALS", "credentials.json"),
		DiscoveryTimeout: getDurationEnv("PORTFOLIO_MCP_TIMEOUT", 60*time.Second),

		DefaultUTCOffset: getEnv("PORTFOLIO_DEFAULT_UTC_OFFSET", "+05:00"),

		StorageBackend: getEnv("PORTFOLIO_STORAGE_BACKEND", "memory"),
		GCPProjectID:   getEnv("PORTFOLIO_GCP_PROJECT", ""),

		SessionTTL:  getDurationEnv("PORTFOLIO_SESSION_TTL", time.Hour),
		MaxSessions: getIntEnv("PORTFOLIO_MAX_SESSIONS", 1024),

		AllowedOrigin: getEnv("PORTFOLIO_ALLOWED_ORIGIN", "http://localhost:3000"),
	}
}
