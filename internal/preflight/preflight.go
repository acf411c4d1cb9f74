package preflight

import (
	"context"

	"nutriscan/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Failed counts the results that did not pass.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Data directory (always checked)
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))

	// Learned images
	if cfg.Images.Backend == config.ImageBackendDir {
		results = append(results, CheckDirectoryAccess("Image directory", cfg.Paths.ImageDir))
	} else {
		results = append(results, CheckImageBucket(cfg.Images))
	}

	results = append(results, CheckStorage(ctx, cfg))
	results = append(results, CheckRemote(ctx, cfg.Remote.BaseURL, cfg.Remote.UserAgent))
	results = append(results, CheckDetector(ctx, cfg))

	return results
}
