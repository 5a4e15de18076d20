package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Server settings
	ServerPort   string        `json:"server_port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Debug        bool          `json:"debug"`

	// Application paths
	LogDir    string `json:"log_dir"`
	TempDir   string `json:"temp_dir"`
	StaticDir string `json:"static_dir"`

	Middleware MiddlewareConfig `json:"middleware"`
	CORS       CORSConfig       `json:"cors"`
	RateLimit  RateLimitConfig  `json:"rate_limit"`

	YouTube  YouTubeConfig  `json:"youtube"`
	RapidAPI RapidAPIConfig `json:"rapid_api"`
	LLM      LLMConfig      `json:"llm"`
	TTS      TTSConfig      `json:"tts"`
	Storage  StorageConfig  `json:"storage"`

	Version string `json:"version"`

	// Request and shutdown timeouts
	RequestTimeout  time.Duration `json:"request_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	// MaxBodyBytes caps JSON request bodies. Transcripts can be long.
	MaxBodyBytes int64 `json:"max_body_bytes"`
}

type MiddlewareConfig struct {
	EnableRecover   bool `json:"enable_recover"`
	EnableRequestID bool `json:"enable_request_id"`
	EnableLogger    bool `json:"enable_logger"`
	EnableTimeout   bool `json:"enable_timeout"`
	EnableCORS      bool `json:"enable_cors"`
	EnableRateLimit bool `json:"enable_rate_limit"`
}

type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

// RateLimitConfig limits each client per route group. Summary generation is
// the expensive call and gets its own budget.
type RateLimitConfig struct {
	Enabled           bool `json:"enabled"`
	RequestsPerMinute int  `json:"requests_per_minute"`
	SummaryPerMinute  int  `json:"summary_per_minute"`
	BurstSize         int  `json:"burst_size"`
}

type YouTubeConfig struct {
	APIKey string `json:"-"`
	// MetadataAPIEnabled turns on the Data API lookup between the page
	// provider and the synthesized record. Off while the API is blocked.
	MetadataAPIEnabled  bool          `json:"metadata_api_enabled"`
	ThumbnailBase       string        `json:"thumbnail_base"`
	ProviderTimeout     time.Duration `json:"provider_timeout"`
	DefaultLanguage     string        `json:"default_language"`
	MetadataCacheSize   int           `json:"metadata_cache_size"`
	TranscriptCacheSize int           `json:"transcript_cache_size"`
}

type RapidAPIConfig struct {
	Key     string `json:"-"`
	Host    string `json:"host"`
	BaseURL string `json:"base_url"`
}

type LLMConfig struct {
	APIKey  string        `json:"-"`
	BaseURL string        `json:"base_url"`
	Model   string        `json:"model"`
	Timeout time.Duration `json:"timeout"`
}

type TTSConfig struct {
	APIKey  string        `json:"-"`
	BaseURL string        `json:"base_url"`
	Model   string        `json:"model"`
	Voice   string        `json:"voice"`
	Timeout time.Duration `json:"timeout"`
}

type StorageConfig struct {
	Backend  string `json:"backend"`
	AudioDir string `json:"audio_dir"`

	// S3-compatible bucket (DigitalOcean Spaces, MinIO, AWS)
	Endpoint  string `json:"endpoint"`
	Region    string `json:"region"`
	Bucket    string `json:"bucket"`
	Prefix    string `json:"prefix"`
	AccessKey string `json:"-"`
	SecretKey string `json:"-"`
}

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Default configurations
func defaultDevConfig() MiddlewareConfig {
	return MiddlewareConfig{
		EnableRecover:   true,
		EnableRequestID: true,
		EnableLogger:    true,
		EnableTimeout:   false, // Disabled for easier debugging
		EnableCORS:      true,
		EnableRateLimit: true,
	}
}

func defaultProdConfig() MiddlewareConfig {
	return MiddlewareConfig{
		EnableRecover:   true,
		EnableRequestID: true,
		EnableLogger:    true,
		EnableTimeout:   true,
		EnableCORS:      true,
		EnableRateLimit: true,
	}
}

// Load reads configuration from the environment, after merging a .env file
// from the working directory if one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("Failed to load .env file")
	}

	cfg := FromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := ensureDirs(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv builds a Config from environment variables without touching the
// filesystem.
func FromEnv() *Config {
	tempDir := getEnv("TEMP_DIR", filepath.Join(os.TempDir(), "yt-summarizer"))

	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "5001"),
		ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 2*time.Minute),
		IdleTimeout:  getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		Debug:        getEnvAsBool("DEBUG", false),

		LogDir:    getEnv("LOG_DIR", filepath.Join(tempDir, "logs")),
		TempDir:   tempDir,
		StaticDir: getEnv("STATIC_DIR", "./static"),

		Version: getEnv("VERSION", "1.0.0"),

		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 2*time.Minute),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		MaxBodyBytes:    int64(getEnvAsInt("MAX_BODY_BYTES", 10<<20)),

		CORS: CORSConfig{
			Enabled:        getEnvAsBool("CORS_ENABLED", true),
			AllowedOrigins: getEnvAsStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsStringSlice(
				"CORS_ALLOWED_METHODS",
				[]string{"GET", "POST", "OPTIONS"},
			),
			AllowedHeaders:   getEnvAsStringSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type"}),
			ExposedHeaders:   getEnvAsStringSlice("CORS_EXPOSED_HEADERS", []string{"X-Request-ID"}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 86400),
		},

		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 30),
			SummaryPerMinute:  getEnvAsInt("RATE_LIMIT_SUMMARY_RPM", 20),
			BurstSize:         getEnvAsInt("RATE_LIMIT_BURST", 5),
		},

		YouTube: YouTubeConfig{
			APIKey:              getEnv("YOUTUBE_API_KEY", ""),
			MetadataAPIEnabled:  getEnvAsBool("METADATA_API_ENABLED", false),
			ThumbnailBase:       getEnv("THUMBNAIL_BASE", "https://img.youtube.com/vi"),
			ProviderTimeout:     getEnvAsDuration("PROVIDER_TIMEOUT", 10*time.Second),
			DefaultLanguage:     getEnv("DEFAULT_LANGUAGE", "en"),
			MetadataCacheSize:   getEnvAsInt("METADATA_CACHE_SIZE", 100),
			TranscriptCacheSize: getEnvAsInt("TRANSCRIPT_CACHE_SIZE", 100),
		},

		RapidAPI: RapidAPIConfig{
			Key:     getEnv("RAPID_API_KEY", ""),
			Host:    getEnv("RAPID_API_HOST", "youtube-transcriptor.p.rapidapi.com"),
			BaseURL: getEnv("RAPID_API_BASE_URL", "https://youtube-transcriptor.p.rapidapi.com"),
		},

		LLM: LLMConfig{
			APIKey:  getEnv("GOOGLE_API_KEY", ""),
			BaseURL: getEnv("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
			Model:   getEnv("LLM_MODEL", "gemini-2.0-flash"),
			Timeout: getEnvAsDuration("LLM_TIMEOUT", 90*time.Second),
		},

		TTS: TTSConfig{
			APIKey:  getEnv("TTS_API_KEY", ""),
			BaseURL: getEnv("TTS_BASE_URL", "https://api.openai.com/v1"),
			Model:   getEnv("TTS_MODEL", "tts-1"),
			Voice:   getEnv("TTS_VOICE", "alloy"),
			Timeout: getEnvAsDuration("TTS_TIMEOUT", 60*time.Second),
		},

		Storage: StorageConfig{
			Backend:   strings.ToLower(getEnv("STORAGE_BACKEND", StorageLocal)),
			AudioDir:  getEnv("AUDIO_DIR", filepath.Join(tempDir, "audio")),
			Endpoint:  getEnv("SPACES_ENDPOINT", ""),
			Region:    getEnv("SPACES_REGION", "us-east-1"),
			Bucket:    getEnv("SPACES_BUCKET", ""),
			Prefix:    getEnv("SPACES_PREFIX", "audio/"),
			AccessKey: getEnv("SPACES_ACCESS_KEY", ""),
			SecretKey: getEnv("SPACES_SECRET_KEY", ""),
		},

		Middleware: defaultDevConfig(),
	}

	if os.Getenv("ENV") == "production" {
		cfg.Middleware = defaultProdConfig()
	}

	return cfg
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("server port is required")
	}

	if err := validateTimeouts(c); err != nil {
		return err
	}

	if err := validateServices(c); err != nil {
		return err
	}

	return nil
}

func validateTimeouts(c *Config) error {
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.YouTube.ProviderTimeout <= 0 {
		return fmt.Errorf("provider timeout must be positive")
	}
	return nil
}

func validateServices(c *Config) error {
	if c.YouTube.MetadataCacheSize <= 0 || c.YouTube.TranscriptCacheSize <= 0 {
		return fmt.Errorf("cache sizes must be positive")
	}
	if c.YouTube.MetadataAPIEnabled && c.YouTube.APIKey == "" {
		return fmt.Errorf("YOUTUBE_API_KEY is required when METADATA_API_ENABLED is set")
	}

	switch c.Storage.Backend {
	case StorageLocal:
	case StorageS3:
		if c.Storage.Bucket == "" || c.Storage.Endpoint == "" {
			return fmt.Errorf("s3 storage requires SPACES_ENDPOINT and SPACES_BUCKET")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerMinute <= 0 || c.RateLimit.SummaryPerMinute <= 0) {
		return fmt.Errorf("rate limits must be positive")
	}
	return nil
}

func ensureDirs(c *Config) error {
	paths := []struct {
		path string
		name string
	}{
		{c.LogDir, "log directory"},
		{c.TempDir, "temp directory"},
	}
	if c.Storage.Backend == StorageLocal {
		paths = append(paths, struct {
			path string
			name string
		}{c.Storage.AudioDir, "audio directory"})
	}

	for _, p := range paths {
		if err := os.MkdirAll(p.path, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", p.name, err)
		}
	}

	return nil
}

// Helper functions for reading environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid boolean, using default")
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.WithFields(logrus.Fields{
			"key":          key,
			"value":        value,
			"defaultValue": defaultValue,
		}).Warn("Invalid duration, using default")
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		if value = strings.TrimSpace(value); value != "" {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return parts
		}
	}
	return defaultValue
}
