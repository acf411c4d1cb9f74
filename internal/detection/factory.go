package detection

import (
	"context"
	"fmt"

	"nutriscan/internal/config"
	"nutriscan/internal/services"
)

// New builds the classifier selected by cfg.Detection.Backend.
func New(ctx context.Context, cfg *config.Config) (Classifier, error) {
	if cfg == nil {
		return Disabled{}, nil
	}
	d := cfg.Detection
	switch d.Backend {
	case "", config.DetectorNone:
		return Disabled{}, nil
	case config.DetectorHTTP:
		return NewHTTPClassifier(d.URL, cfg.DetectionTimeout()), nil
	case config.DetectorRekognition:
		return NewRekognition(ctx, d.AWSRegion, d.MaxLabels)
	case config.DetectorGemini:
		return NewGemini(ctx, GeminiConfig{
			Project:         d.GeminiProject,
			Location:        d.GeminiLocation,
			Model:           d.GeminiModel,
			CredentialsFile: d.GeminiCredentialsFile,
		})
	default:
		return nil, services.Wrap(services.ErrConfiguration, "detection", "new",
			fmt.Sprintf("unknown detection backend %q", d.Backend), nil)
	}
}
