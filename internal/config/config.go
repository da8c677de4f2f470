package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr    string
	DBPath        string
	VisionBackend string
	GeminiAPIKey  string
	GeminiModel   string
	ClaudeAPIKey  string
	ClaudeModel   string
	OllamaHost    string
	OllamaModel   string

	USDAAPIKey         string
	USDABaseURL        string
	NutritionCacheSize int
	NutritionCacheTTL  time.Duration

	PhotoBackend  string
	PhotoPath     string
	PhotoS3Bucket string
	PhotoS3Region string

	// AuthJWTSecret verifies bearer tokens. Empty disables authenticated routes.
	AuthJWTSecret     string
	ScanRatePerMinute int

	LogLevel  string
	LogFormat string
	LogFile   string
}

// Load reads the configuration from the environment. Variables from a .env
// file in the working directory are applied first without overriding the
// real environment; a missing file is ignored.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		DBPath:        getEnv("DB_PATH", "/data/snapcal.db"),
		VisionBackend: getEnv("VISION_BACKEND", "gemini"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		ClaudeAPIKey:  getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:   getEnv("CLAUDE_MODEL", "claude-sonnet-4-5"),
		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llava"),

		USDAAPIKey:         getEnv("USDA_API_KEY", "DEMO_KEY"),
		USDABaseURL:        getEnv("USDA_BASE_URL", "https://api.nal.usda.gov/fdc/v1"),
		NutritionCacheSize: getEnvInt("NUTRITION_CACHE_SIZE", 512),
		NutritionCacheTTL:  getEnvDuration("NUTRITION_CACHE_TTL", 24*time.Hour),

		PhotoBackend:  getEnv("PHOTO_BACKEND", "local"),
		PhotoPath:     getEnv("PHOTO_LOCAL_PATH", "/data/photos"),
		PhotoS3Bucket: getEnv("PHOTO_S3_BUCKET", ""),
		PhotoS3Region: getEnv("PHOTO_S3_REGION", ""),

		AuthJWTSecret:     getEnv("AUTH_JWT_SECRET", ""),
		ScanRatePerMinute: getEnvInt("SCAN_RATE_PER_MINUTE", 10),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogFile:   getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

// getEnvInt falls back to defaultVal when the variable is unset or not an integer.
func getEnvInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return d
}
