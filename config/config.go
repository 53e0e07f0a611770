package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration. DBDriver is "postgres" or "sqlite".
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration. RedisURL wins over host/port when set.
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	LogLevel string
	// CORSOrigins lists the allowed browser origins; empty means the local frontend.
	CORSOrigins   []string
	MigrationsDir string

	Similarity SimilarityConfig
	Feed       FeedConfig
}

// SimilarityConfig tunes the similarity graph maintenance.
type SimilarityConfig struct {
	// PositiveThreshold is the minimum rating that counts as a positive review.
	PositiveThreshold int
	// CandidateCap bounds how many of the reviewer's recent positive reviews are
	// paired with a new one. It is the per-event work limit.
	CandidateCap int
	// StalenessWindow is how long an edge survives without reinforcement.
	StalenessWindow time.Duration
	// UpdateTimeout is the time budget of one inline update.
	UpdateTimeout  time.Duration
	PruneInterval  time.Duration
	PruneBatchSize int
	CacheTTL       time.Duration
	// Consecutive failures before the updater stops calling the store, and how
	// long it waits before probing again.
	BreakerFailureThreshold uint32
	BreakerCooldown         time.Duration
}

// FeedConfig sizes the inputs of the personalised feed.
type FeedConfig struct {
	SeedSample     int
	RelatedPerSeed int
	ReviewLimit    int
	FollowedLimit  int
	Columns        int
}

// DefaultSimilarityConfig returns the production defaults.
func DefaultSimilarityConfig() SimilarityConfig {
	return SimilarityConfig{
		PositiveThreshold:       4,
		CandidateCap:            10,
		StalenessWindow:         60 * 24 * time.Hour,
		UpdateTimeout:           2 * time.Second,
		PruneInterval:           time.Hour,
		PruneBatchSize:          500,
		CacheTTL:                10 * time.Minute,
		BreakerFailureThreshold: 5,
		BreakerCooldown:         30 * time.Second,
	}
}

// DefaultFeedConfig returns the production defaults.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		SeedSample:     10,
		RelatedPerSeed: 10,
		ReviewLimit:    50,
		FollowedLimit:  200,
		Columns:        3,
	}
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case CI:
		if err := loadCIConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load CI configuration: %w", err)
		}
	case Development, Test, Production:
		loadSecretBackedConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := loadTuning(cfg); err != nil {
		return nil, fmt.Errorf("failed to load tuning parameters: %w", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig loads configuration for CI using only environment variables
func loadCIConfig(cfg *Config) error {
	loadCommon(cfg)

	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	if cfg.DBPassword == "" && cfg.DBDriver == "postgres" {
		return fmt.Errorf("DB_PASSWORD environment variable is required in CI environment")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	return nil
}

// loadSecretBackedConfig reads plain settings from the environment and
// sensitive values from the environment or Docker secrets.
func loadSecretBackedConfig(cfg *Config) {
	loadCommon(cfg)

	cfg.DBPassword = lookup("DB_PASSWORD", "db_password")
	cfg.JWTSecret = lookup("JWT_SECRET", "jwt_secret")
	cfg.RedisPassword = lookup("REDIS_PASSWORD", "redis_password")
}

func loadCommon(cfg *Config) {
	cfg.ServerPort = envOrDefault("SERVER_PORT", "8080")
	cfg.ServerHost = envOrDefault("SERVER_HOST", "0.0.0.0")
	cfg.DBDriver = strings.ToLower(envOrDefault("DB_DRIVER", "postgres"))
	cfg.DBHost = lookupOrDefault("DB_HOST", "db_host", "localhost")
	cfg.DBPort = lookupOrDefault("DB_PORT", "db_port", "5432")
	cfg.DBUser = lookupOrDefault("DB_USER", "db_user", "postgres")
	cfg.DBName = lookupOrDefault("DB_NAME", "db_name", "recipify")
	cfg.DBSSLMode = lookupOrDefault("DB_SSL_MODE", "db_ssl_mode", "disable")
	cfg.SQLitePath = envOrDefault("SQLITE_PATH", "recipify.db")
	cfg.RedisHost = lookupOrDefault("REDIS_HOST", "redis_host", "")
	cfg.RedisPort = lookupOrDefault("REDIS_PORT", "redis_port", "6379")
	cfg.RedisURL = lookup("REDIS_URL", "redis_url")
	cfg.RedisDB = 0 // This is a constant, not a secret
	cfg.LogLevel = envOrDefault("LOG_LEVEL", "info")
	cfg.CORSOrigins = splitList(os.Getenv("CORS_ORIGINS"))
	cfg.MigrationsDir = envOrDefault("MIGRATIONS_DIR", "migrations")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func loadTuning(cfg *Config) error {
	cfg.Similarity = DefaultSimilarityConfig()
	cfg.Feed = DefaultFeedConfig()

	var err error
	s := &cfg.Similarity
	if s.PositiveThreshold, err = envInt("SIMILARITY_POSITIVE_THRESHOLD", s.PositiveThreshold); err != nil {
		return err
	}
	if s.CandidateCap, err = envInt("SIMILARITY_CANDIDATE_CAP", s.CandidateCap); err != nil {
		return err
	}
	if s.StalenessWindow, err = envDuration("SIMILARITY_STALENESS_WINDOW", s.StalenessWindow); err != nil {
		return err
	}
	if s.UpdateTimeout, err = envDuration("SIMILARITY_UPDATE_TIMEOUT", s.UpdateTimeout); err != nil {
		return err
	}
	if s.PruneInterval, err = envDuration("SIMILARITY_PRUNE_INTERVAL", s.PruneInterval); err != nil {
		return err
	}
	if s.PruneBatchSize, err = envInt("SIMILARITY_PRUNE_BATCH_SIZE", s.PruneBatchSize); err != nil {
		return err
	}
	if s.CacheTTL, err = envDuration("SIMILARITY_CACHE_TTL", s.CacheTTL); err != nil {
		return err
	}

	f := &cfg.Feed
	if f.SeedSample, err = envInt("FEED_SEED_SAMPLE", f.SeedSample); err != nil {
		return err
	}
	if f.ReviewLimit, err = envInt("FEED_REVIEW_LIMIT", f.ReviewLimit); err != nil {
		return err
	}
	if f.FollowedLimit, err = envInt("FEED_FOLLOWED_LIMIT", f.FollowedLimit); err != nil {
		return err
	}

	return nil
}

// RedisEnabled reports whether a Redis endpoint is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// lookup returns the environment variable if set, otherwise the Docker secret.
func lookup(envName, secretName string) string {
	if v := os.Getenv(envName); v != "" {
		return v
	}
	return readSecret(secretName)
}

func lookupOrDefault(envName, secretName, def string) string {
	if v := lookup(envName, secretName); v != "" {
		return v
	}
	return def
}

func envOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	return v, nil
}

func envDuration(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", name, err)
	}
	return v, nil
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
