package config

const (
	StorageBackendJSON   = "json"
	StorageBackendSQLite = "sqlite"

	DetectorNone        = "none"
	DetectorHTTP        = "http"
	DetectorRekognition = "rekognition"
	DetectorGemini      = "gemini"

	ImageBackendDir = "dir"
	ImageBackendS3  = "s3"
)

const (
	defaultDataDir          = "~/.local/share/nutriscan"
	defaultResultCacheName  = "image_cache.json"
	defaultNutritionName    = "nutrition.json"
	defaultDatabaseName     = "nutriscan.db"
	defaultImageDirName     = "images"
	defaultRemoteBaseURL    = "https://world.openfoodfacts.org"
	defaultRemoteUserAgent  = "nutriscan/1.0 (offline nutrition lookup)"
	defaultRemoteTimeout    = 15
	defaultRemotePageSize   = 5
	defaultDetectionTimeout = 30
	defaultMaxLabels        = 10
	defaultGeminiLocation   = "us-central1"
	defaultGeminiModel      = "gemini-1.5-flash-002"
	defaultS3Prefix         = "learned/"
	defaultMaxHashed        = 2000
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Storage: Storage{
			Backend: StorageBackendJSON,
		},
		Remote: Remote{
			BaseURL:        defaultRemoteBaseURL,
			UserAgent:      defaultRemoteUserAgent,
			TimeoutSeconds: defaultRemoteTimeout,
			PageSize:       defaultRemotePageSize,
		},
		Barcode: Barcode{
			Enabled:          true,
			RegionDetection:  true,
			AllowManualEntry: true,
		},
		Detection: Detection{
			Backend:        DetectorNone,
			TimeoutSeconds: defaultDetectionTimeout,
			MaxLabels:      defaultMaxLabels,
			GeminiLocation: defaultGeminiLocation,
			GeminiModel:    defaultGeminiModel,
		},
		Images: Images{
			Backend:   ImageBackendDir,
			S3Prefix:  defaultS3Prefix,
			MaxHashed: defaultMaxHashed,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
