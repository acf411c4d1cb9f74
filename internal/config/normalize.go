package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStorage()
	c.normalizeRemote()
	c.normalizeDetection()
	c.normalizeImages()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}

	derived := []struct {
		key   string
		value *string
		name  string
	}{
		{"paths.result_cache", &c.Paths.ResultCache, defaultResultCacheName},
		{"paths.nutrition_store", &c.Paths.NutritionStore, defaultNutritionName},
		{"paths.database", &c.Paths.Database, defaultDatabaseName},
		{"paths.image_dir", &c.Paths.ImageDir, defaultImageDirName},
	}
	for _, field := range derived {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = filepath.Join(c.Paths.DataDir, field.name)
			continue
		}
		if *field.value, err = expandPath(strings.TrimSpace(*field.value)); err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
	}

	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStorage() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = StorageBackendJSON
	}
}

func (c *Config) normalizeRemote() {
	c.Remote.BaseURL = strings.TrimRight(strings.TrimSpace(c.Remote.BaseURL), "/")
	if c.Remote.BaseURL == "" {
		c.Remote.BaseURL = defaultRemoteBaseURL
	}
	c.Remote.UserAgent = strings.TrimSpace(c.Remote.UserAgent)
	if c.Remote.UserAgent == "" {
		c.Remote.UserAgent = defaultRemoteUserAgent
	}
	if c.Remote.TimeoutSeconds == 0 {
		c.Remote.TimeoutSeconds = defaultRemoteTimeout
	}
	if c.Remote.PageSize == 0 {
		c.Remote.PageSize = defaultRemotePageSize
	}
}

func (c *Config) normalizeDetection() {
	c.Detection.Backend = strings.ToLower(strings.TrimSpace(c.Detection.Backend))
	if c.Detection.Backend == "" {
		c.Detection.Backend = DetectorNone
	}
	c.Detection.URL = strings.TrimRight(strings.TrimSpace(c.Detection.URL), "/")
	if c.Detection.URL == "" {
		if value, ok := os.LookupEnv("NUTRISCAN_DETECTOR_URL"); ok {
			c.Detection.URL = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
	if c.Detection.TimeoutSeconds == 0 {
		c.Detection.TimeoutSeconds = defaultDetectionTimeout
	}
	if c.Detection.MaxLabels == 0 {
		c.Detection.MaxLabels = defaultMaxLabels
	}
	c.Detection.AWSRegion = strings.TrimSpace(c.Detection.AWSRegion)
	if c.Detection.AWSRegion == "" {
		c.Detection.AWSRegion = strings.TrimSpace(os.Getenv("AWS_REGION"))
	}
	c.Detection.GeminiProject = strings.TrimSpace(c.Detection.GeminiProject)
	if c.Detection.GeminiProject == "" {
		c.Detection.GeminiProject = strings.TrimSpace(os.Getenv("GOOGLE_CLOUD_PROJECT"))
	}
	if strings.TrimSpace(c.Detection.GeminiLocation) == "" {
		c.Detection.GeminiLocation = defaultGeminiLocation
	}
	if strings.TrimSpace(c.Detection.GeminiModel) == "" {
		c.Detection.GeminiModel = defaultGeminiModel
	}
	if path := strings.TrimSpace(c.Detection.GeminiCredentialsFile); path != "" {
		if expanded, err := expandPath(path); err == nil {
			c.Detection.GeminiCredentialsFile = expanded
		}
	}
}

func (c *Config) normalizeImages() {
	c.Images.Backend = strings.ToLower(strings.TrimSpace(c.Images.Backend))
	if c.Images.Backend == "" {
		c.Images.Backend = ImageBackendDir
	}
	c.Images.S3Bucket = strings.TrimSpace(c.Images.S3Bucket)
	if c.Images.S3Bucket == "" {
		c.Images.S3Bucket = strings.TrimSpace(os.Getenv("NUTRISCAN_S3_BUCKET"))
	}
	c.Images.S3Prefix = strings.TrimLeft(strings.TrimSpace(c.Images.S3Prefix), "/")
	c.Images.S3Region = strings.TrimSpace(c.Images.S3Region)
	if c.Images.S3Region == "" {
		c.Images.S3Region = c.Detection.AWSRegion
	}
	if c.Images.MaxHashed == 0 {
		c.Images.MaxHashed = defaultMaxHashed
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
