package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateRemote(); err != nil {
		return err
	}
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateImages(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case StorageBackendJSON, StorageBackendSQLite:
		return nil
	default:
		return fmt.Errorf("storage.backend: unsupported value %q (want %q or %q)", c.Storage.Backend, StorageBackendJSON, StorageBackendSQLite)
	}
}

func (c *Config) validateRemote() error {
	parsed, err := url.Parse(c.Remote.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("remote.base_url: invalid url %q", c.Remote.BaseURL)
	}
	if c.Remote.TimeoutSeconds < 0 {
		return errors.New("remote.timeout_seconds must be positive")
	}
	if c.Remote.PageSize < 1 || c.Remote.PageSize > 100 {
		return errors.New("remote.page_size must be between 1 and 100")
	}
	if c.Remote.MemoTTLSeconds < 0 {
		return errors.New("remote.memo_ttl_seconds must be zero or positive")
	}
	return nil
}

func (c *Config) validateDetection() error {
	if c.Detection.TimeoutSeconds < 0 {
		return errors.New("detection.timeout_seconds must be positive")
	}
	if c.Detection.MaxLabels < 1 {
		return errors.New("detection.max_labels must be at least 1")
	}
	switch c.Detection.Backend {
	case DetectorNone:
		return nil
	case DetectorHTTP:
		if c.Detection.URL == "" {
			return errors.New("detection.url is required for the http backend (or set NUTRISCAN_DETECTOR_URL)")
		}
		parsed, err := url.Parse(c.Detection.URL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("detection.url: invalid url %q", c.Detection.URL)
		}
		return nil
	case DetectorRekognition:
		if c.Detection.AWSRegion == "" {
			return errors.New("detection.aws_region is required for the rekognition backend (or set AWS_REGION)")
		}
		return nil
	case DetectorGemini:
		if c.Detection.GeminiProject == "" {
			return errors.New("detection.gemini_project is required for the gemini backend (or set GOOGLE_CLOUD_PROJECT)")
		}
		return nil
	default:
		return fmt.Errorf("detection.backend: unsupported value %q", c.Detection.Backend)
	}
}

func (c *Config) validateImages() error {
	switch c.Images.Backend {
	case ImageBackendDir:
	case ImageBackendS3:
		if c.Images.S3Bucket == "" {
			return errors.New("images.s3_bucket is required for the s3 backend (or set NUTRISCAN_S3_BUCKET)")
		}
		if c.Images.S3Region == "" {
			return errors.New("images.s3_region is required for the s3 backend")
		}
	default:
		return fmt.Errorf("images.backend: unsupported value %q", c.Images.Backend)
	}
	if c.Images.MaxHashed < 0 {
		return errors.New("images.max_hashed must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
