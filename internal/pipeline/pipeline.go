package pipeline

import (
	"context"
	"errors"
	"image"
	"log/slog"

	"nutriscan/internal/imagestore"
	"nutriscan/internal/logging"
	"nutriscan/internal/nutrition"
	"nutriscan/internal/resultcache"
)

// BarcodeScanner finds a retail barcode in a decoded image.
type BarcodeScanner interface {
	Resolve(ctx context.Context, img image.Image) (string, bool)
}

// Detector names the product in encoded image bytes.
type Detector interface {
	Detect(ctx context.Context, image []byte) (string, float64, bool)
}

// NutritionSource is the lookup surface the pipeline needs; *nutrition.Source
// satisfies it.
type NutritionSource interface {
	GetInfo(ctx context.Context, label string) (nutrition.Record, error)
	GetInfoByBarcode(ctx context.Context, code string) nutrition.Record
	FetchRemote(ctx context.Context, label string) nutrition.Record
	Remember(ctx context.Context, label string, rec nutrition.Record) error
}

var _ NutritionSource = (*nutrition.Source)(nil)

// Deps are the collaborators of a Pipeline. Barcodes and Detector may be nil
// to disable those strategies.
type Deps struct {
	Barcodes BarcodeScanner
	Detector Detector
	Source   NutritionSource
	Cache    resultcache.Store
	Images   imagestore.Store
}

// Options tune the flow.
type Options struct {
	// AllowManualBarcode adds the manual barcode prompt after automatic
	// scanning. It only applies to requests with ScanBarcode set.
	AllowManualBarcode bool
}

// Pipeline creates resolution sessions.
type Pipeline struct {
	deps   Deps
	opts   Options
	logger *slog.Logger
}

// New validates deps and returns a Pipeline.
func New(deps Deps, opts Options, logger *slog.Logger) (*Pipeline, error) {
	if deps.Source == nil {
		return nil, errors.New("pipeline: nutrition source is required")
	}
	if deps.Cache == nil {
		return nil, errors.New("pipeline: result cache is required")
	}
	if deps.Images == nil {
		return nil, errors.New("pipeline: image store is required")
	}
	return &Pipeline{
		deps:   deps,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}, nil
}
