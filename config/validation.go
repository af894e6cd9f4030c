package config

import (
	"fmt"
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

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	switch cfg.ImageStorage {
	case "local":
		if cfg.ImageDir == "" {
			errs = append(errs, ValidationError{"IMAGE_DIR", "is required for local image storage"})
		}
	case "s3":
		if cfg.S3Bucket == "" {
			errs = append(errs, ValidationError{"S3_BUCKET_NAME", "is required for s3 image storage"})
		}
	default:
		errs = append(errs, ValidationError{"IMAGE_STORAGE", fmt.Sprintf("unknown storage %q, expected local or s3", cfg.ImageStorage)})
	}

	if cfg.UploadMaxBytes <= 0 {
		errs = append(errs, ValidationError{"UPLOAD_MAX_BYTES", "must be positive"})
	}
	if cfg.SessionTTL <= 0 {
		errs = append(errs, ValidationError{"SESSION_TTL", "must be a positive duration"})
	}

	if cfg.Env == Production {
		if cfg.SessionSecret == "" || cfg.SessionSecret == DevSessionSecret {
			errs = append(errs, ValidationError{"SESSION_SECRET", "a non-default secret is required in production"})
		}
		if cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"DB_PASSWORD", "is required in production"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
