package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	DataDir        string `toml:"data_dir"`
	ResultCache    string `toml:"result_cache"`
	NutritionStore string `toml:"nutrition_store"`
	Database       string `toml:"database"`
	ImageDir       string `toml:"image_dir"`
	LogDir         string `toml:"log_dir"`
}

// Storage selects the persistence backend for the result cache and the local
// nutrition store.
type Storage struct {
	Backend string `toml:"backend"`
}

// Remote contains configuration for the OpenFoodFacts API.
type Remote struct {
	BaseURL        string `toml:"base_url"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	PageSize       int    `toml:"page_size"`
	// MemoTTLSeconds enables in-process memoization of successful lookups
	// when positive.
	MemoTTLSeconds int `toml:"memo_ttl_seconds"`
}

// Barcode contains configuration for barcode scanning of photos.
type Barcode struct {
	Enabled          bool `toml:"enabled"`
	RegionDetection  bool `toml:"region_detection"`
	AllowManualEntry bool `toml:"allow_manual_entry"`
}

// Detection contains configuration for the product classifier.
type Detection struct {
	Backend        string `toml:"backend"`
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxLabels      int    `toml:"max_labels"`

	AWSRegion string `toml:"aws_region"`

	GeminiProject         string `toml:"gemini_project"`
	GeminiLocation        string `toml:"gemini_location"`
	GeminiModel           string `toml:"gemini_model"`
	GeminiCredentialsFile string `toml:"gemini_credentials_file"`
}

// Images contains configuration for storage of learned images.
type Images struct {
	Backend   string `toml:"backend"`
	S3Bucket  string `toml:"s3_bucket"`
	S3Prefix  string `toml:"s3_prefix"`
	S3Region  string `toml:"s3_region"`
	MaxHashed int    `toml:"max_hashed"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for nutriscan.
//
// Configuration sections by subsystem:
//   - Paths: data directory and derived file locations
//   - Storage: json or sqlite persistence
//   - Remote: OpenFoodFacts connection settings
//   - Barcode: photo barcode scanning
//   - Detection: classifier backend selection and credentials
//   - Images: learned image storage (local directory or S3)
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Storage   Storage   `toml:"storage"`
	Remote    Remote    `toml:"remote"`
	Barcode   Barcode   `toml:"barcode"`
	Detection Detection `toml:"detection"`
	Images    Images    `toml:"images"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/nutriscan/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("nutriscan.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data directory and, for the local image
// backend, the learned image directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir}
	if c.Images.Backend == ImageBackendDir {
		dirs = append(dirs, c.Paths.ImageDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RemoteTimeout returns the per-request timeout for the remote source.
func (c *Config) RemoteTimeout() time.Duration {
	return time.Duration(c.Remote.TimeoutSeconds) * time.Second
}

// RemoteMemoTTL returns the memoization TTL, zero when disabled.
func (c *Config) RemoteMemoTTL() time.Duration {
	if c.Remote.MemoTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Remote.MemoTTLSeconds) * time.Second
}

// DetectionTimeout returns the per-request timeout for the classifier.
func (c *Config) DetectionTimeout() time.Duration {
	return time.Duration(c.Detection.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
