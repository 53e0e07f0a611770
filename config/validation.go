package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var errs []ValidationError

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port < 1 || port > 65535 {
		errs = append(errs, ValidationError{"SERVER_PORT", "must be an integer between 1 and 65535"})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			errs = append(errs, ValidationError{"DB_HOST", "is required"})
		}
		if cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_NAME", "is required"})
		}
		if cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"db_password", passwordSource(env)})
		}
	case "sqlite":
		if env == Production {
			errs = append(errs, ValidationError{"DB_DRIVER", "sqlite is not allowed in production"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"jwt_secret", passwordSource(env)})
	}

	if env == Production && !cfg.RedisEnabled() {
		errs = append(errs, ValidationError{"REDIS_URL", "is required in production"})
	}

	s := cfg.Similarity
	if s.PositiveThreshold < 1 || s.PositiveThreshold > 5 {
		errs = append(errs, ValidationError{"SIMILARITY_POSITIVE_THRESHOLD", "must be between 1 and 5"})
	}
	if s.CandidateCap < 1 {
		errs = append(errs, ValidationError{"SIMILARITY_CANDIDATE_CAP", "must be at least 1"})
	}
	if s.StalenessWindow <= 0 {
		errs = append(errs, ValidationError{"SIMILARITY_STALENESS_WINDOW", "must be positive"})
	}
	if s.UpdateTimeout <= 0 {
		errs = append(errs, ValidationError{"SIMILARITY_UPDATE_TIMEOUT", "must be positive"})
	}
	if s.PruneInterval <= 0 {
		errs = append(errs, ValidationError{"SIMILARITY_PRUNE_INTERVAL", "must be positive"})
	}
	if s.PruneBatchSize < 1 {
		errs = append(errs, ValidationError{"SIMILARITY_PRUNE_BATCH_SIZE", "must be at least 1"})
	}

	if cfg.Feed.SeedSample < 0 || cfg.Feed.ReviewLimit < 0 || cfg.Feed.FollowedLimit < 0 {
		errs = append(errs, ValidationError{"FEED_*", "limits must not be negative"})
	}

	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(msgs, "\n"))
	}

	return nil
}

func passwordSource(env Environment) string {
	if env == CI {
		return "environment variable is required in CI environment"
	}
	return "secret or environment variable is required"
}
