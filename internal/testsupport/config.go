package testsupport

import (
	"path/filepath"
	"testing"

	"nutriscan/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.ResultCache = filepath.Join(base, "data", "image_cache.json")
	cfgVal.Paths.NutritionStore = filepath.Join(base, "data", "nutrition.json")
	cfgVal.Paths.Database = filepath.Join(base, "data", "nutriscan.db")
	cfgVal.Paths.ImageDir = filepath.Join(base, "data", "images")
	cfgVal.Paths.LogDir = ""
	cfgVal.Remote.BaseURL = "http://127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithStorageBackend selects json or sqlite storage.
func WithStorageBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.Backend = backend
	}
}

// WithRemoteURL points the nutrition client at a test server.
func WithRemoteURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Remote.BaseURL = url
	}
}

// WithHTTPDetector enables the HTTP detection backend at url.
func WithHTTPDetector(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Detection.Backend = config.DetectorHTTP
		b.cfg.Detection.URL = url
	}
}

// WithBarcodes toggles barcode scanning.
func WithBarcodes(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Barcode.Enabled = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
