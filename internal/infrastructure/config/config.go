package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Session   SessionConfig
	Providers ProvidersConfig
	Layout    LayoutConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string   `envconfig:"PORT" default:"8000"`
	Host        string   `envconfig:"HOST" default:"0.0.0.0"`
	Gzip        bool     `envconfig:"GZIP_ENABLED" default:"true"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// SessionConfig holds session store and cookie configuration.
type SessionConfig struct {
	// Backend is "redis" (local store) or "remote" (another deployment's endpoints)
	Backend         string        `envconfig:"SESSION_BACKEND" default:"redis"`
	RedisAddr       string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisUsername   string        `envconfig:"REDIS_USERNAME" default:"default"`
	RedisPassword   string        `envconfig:"REDIS_USER_PASS" default:""`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0"`
	RemoteURL       string        `envconfig:"SESSION_REMOTE_URL" default:"http://localhost:8000"`
	TTL             time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	CookieName      string        `envconfig:"SESSION_COOKIE" default:"session_id"`
	CookieSecure    bool          `envconfig:"SESSION_COOKIE_SECURE" default:"false"`
	Staleness       time.Duration `envconfig:"SESSION_STALENESS" default:"0s"`
	Required        bool          `envconfig:"SESSION_REQUIRED" default:"true"`
	ValidateTimeout time.Duration `envconfig:"SESSION_VALIDATE_TIMEOUT" default:"2s"`
}

// ProvidersConfig holds upstream endpoints, credentials and timeouts.
type ProvidersConfig struct {
	Email string `envconfig:"EMAIL" default:""`

	LocalModelURL     string        `envconfig:"LOCAL_MODEL_URL" default:"http://localhost:11434"`
	LocalModelName    string        `envconfig:"LOCAL_MODEL_NAME" default:"gemma3:4b"`
	LocalModelTimeout time.Duration `envconfig:"LOCAL_MODEL_TIMEOUT" default:"20s"`

	BraveURL        string        `envconfig:"BRAVE_URL" default:"https://api.search.brave.com/res/v1"`
	BraveSearchKey  string        `envconfig:"BRAVE_SEARCH_API_KEY" default:""`
	BraveSuggestKey string        `envconfig:"BRAVE_SUGGEST_API_KEY" default:""`
	Safesearch      string        `envconfig:"SAFESEARCH" default:"moderate"`
	WebTimeout      time.Duration `envconfig:"WEB_TIMEOUT" default:"5s"`
	ImageTimeout    time.Duration `envconfig:"IMAGE_TIMEOUT" default:"5s"`
	NewsTimeout     time.Duration `envconfig:"NEWS_TIMEOUT" default:"8s"`

	WikiURL          string        `envconfig:"WIKI_URL" default:"https://en.wikipedia.org"`
	WikiLimit        int           `envconfig:"WIKI_LIMIT" default:"2"`
	UniversalTimeout time.Duration `envconfig:"UNIVERSAL_TIMEOUT" default:"6s"`

	TMDBURL string `envconfig:"TMDB_URL" default:"https://api.themoviedb.org/3"`
	TMDBKey string `envconfig:"TMDB_API_KEY" default:""`

	SpotifyURL          string `envconfig:"SPOTIFY_URL" default:"https://api.spotify.com/v1"`
	SpotifyAuthURL      string `envconfig:"SPOTIFY_AUTH_URL" default:"https://accounts.spotify.com/api/token"`
	SpotifyClientID     string `envconfig:"SPOTIFY_CLIENT_ID" default:""`
	SpotifyClientSecret string `envconfig:"SPOTIFY_CLIENT_SECRET" default:""`
	SpotifyLimit        int    `envconfig:"SPOTIFY_LIMIT" default:"1"`

	TripAdvisorURL   string `envconfig:"TRIPADVISOR_URL" default:"https://api.content.tripadvisor.com/api/v1"`
	TripAdvisorKey   string `envconfig:"TRIPADVISOR_API_KEY" default:""`
	TripAdvisorLimit int    `envconfig:"TRIPADVISOR_LIMIT" default:"3"`

	NYTURL string `envconfig:"NYT_URL" default:"https://api.nytimes.com/svc"`
	NYTKey string `envconfig:"NEW_YORK_TIMES_API_KEY" default:""`

	// RateLimit caps outbound requests per second per provider; 0 is unlimited
	RateLimit float64 `envconfig:"PROVIDER_RATE_LIMIT" default:"0"`
}

// LayoutConfig holds layout policy constants.
type LayoutConfig struct {
	ImageCap     int    `envconfig:"IMAGE_CAP" default:"14"`
	ImagesPerRow int    `envconfig:"IMAGES_PER_ROW" default:"2"`
	SourcesFile  string `envconfig:"SOURCES_FILE" default:""`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects configurations the layout and session code cannot honour.
func (c *Config) Validate() error {
	if c.Layout.ImageCap < 0 {
		return fmt.Errorf("IMAGE_CAP must not be negative")
	}
	if c.Layout.ImagesPerRow < 1 {
		return fmt.Errorf("IMAGES_PER_ROW must be at least 1")
	}
	switch c.Session.Backend {
	case "redis", "remote":
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	if c.Session.Staleness < 0 {
		return fmt.Errorf("SESSION_STALENESS must not be negative")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			Gzip:        true,
			CORSOrigins: []string{"*"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Session: SessionConfig{
			Backend:         "redis",
			RedisAddr:       "localhost:6379",
			RedisUsername:   "default",
			RemoteURL:       "http://localhost:8000",
			TTL:             24 * time.Hour,
			CookieName:      "session_id",
			Required:        true,
			ValidateTimeout: 2 * time.Second,
		},
		Providers: ProvidersConfig{
			LocalModelURL:     "http://localhost:11434",
			LocalModelName:    "gemma3:4b",
			LocalModelTimeout: 20 * time.Second,
			BraveURL:          "https://api.search.brave.com/res/v1",
			Safesearch:        "moderate",
			WebTimeout:        5 * time.Second,
			ImageTimeout:      5 * time.Second,
			NewsTimeout:       8 * time.Second,
			WikiURL:           "https://en.wikipedia.org",
			WikiLimit:         2,
			UniversalTimeout:  6 * time.Second,
			TMDBURL:           "https://api.themoviedb.org/3",
			SpotifyURL:        "https://api.spotify.com/v1",
			SpotifyAuthURL:    "https://accounts.spotify.com/api/token",
			SpotifyLimit:      1,
			TripAdvisorURL:    "https://api.content.tripadvisor.com/api/v1",
			TripAdvisorLimit:  3,
			NYTURL:            "https://api.nytimes.com/svc",
		},
		Layout: LayoutConfig{
			ImageCap:     14,
			ImagesPerRow: 2,
		},
	}
}
