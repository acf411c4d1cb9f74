package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"nutriscan/internal/config"
	"nutriscan/internal/detection"
	"nutriscan/internal/fileutil"
	"nutriscan/internal/openfoodfacts"
	"nutriscan/internal/sqlstore"
)

const checkTimeout = 5 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckImageBucket verifies the S3 image backend is addressable. It does not
// contact AWS.
func CheckImageBucket(cfg config.Images) Result {
	const name = "Image bucket"
	if strings.TrimSpace(cfg.S3Bucket) == "" {
		return Result{Name: name, Detail: "missing images.s3_bucket"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("s3://%s/%s", cfg.S3Bucket, cfg.S3Prefix)}
}

// CheckStorage opens the configured storage backend.
func CheckStorage(ctx context.Context, cfg *config.Config) Result {
	const name = "Storage"
	switch cfg.Storage.Backend {
	case config.StorageBackendSQLite:
		store, err := sqlstore.Open(ctx, cfg.Paths.Database)
		if err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("sqlite %s (error: %v)", cfg.Paths.Database, err)}
		}
		_ = store.Close()
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("sqlite %s (schema ok)", cfg.Paths.Database)}
	default:
		for _, path := range []string{cfg.Paths.ResultCache, cfg.Paths.NutritionStore} {
			var doc map[string]any
			if _, err := fileutil.ReadJSON(path, &doc); err != nil {
				return Result{Name: name, Detail: fmt.Sprintf("json %s (error: %v)", path, err)}
			}
		}
		return Result{Name: name, Passed: true, Detail: "json files readable"}
	}
}

// CheckRemote verifies the nutrition API answers.
func CheckRemote(ctx context.Context, baseURL, userAgent string) Result {
	const name = "OpenFoodFacts"
	client, err := openfoodfacts.New(baseURL,
		openfoodfacts.WithUserAgent(userAgent),
		openfoodfacts.WithTimeout(checkTimeout),
	)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if err := client.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckDetector verifies the detection backend is configured, and reachable
// when it is a local HTTP sidecar. Cloud backends are not called.
func CheckDetector(ctx context.Context, cfg *config.Config) Result {
	const name = "Detector"
	d := cfg.Detection
	switch d.Backend {
	case "", config.DetectorNone:
		return Result{Name: name, Passed: true, Detail: "Disabled (manual labels only)"}
	case config.DetectorHTTP:
		if strings.TrimSpace(d.URL) == "" {
			return Result{Name: name, Detail: "missing detection.url"}
		}
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		defer cancel()
		if err := detection.NewHTTPClassifier(d.URL, checkTimeout).Ping(checkCtx); err != nil {
			return Result{Name: name, Detail: summarizeNetError(err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("http %s reachable", d.URL)}
	case config.DetectorRekognition:
		if strings.TrimSpace(d.AWSRegion) == "" {
			return Result{Name: name, Detail: "missing detection.aws_region"}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("rekognition (%s)", d.AWSRegion)}
	case config.DetectorGemini:
		if strings.TrimSpace(d.GeminiProject) == "" {
			return Result{Name: name, Detail: "missing detection.gemini_project"}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("gemini %s (%s/%s)", d.GeminiModel, d.GeminiProject, d.GeminiLocation)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("unknown backend %q", d.Backend)}
	}
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (service unreachable)"
	}
	return err.Error()
}
