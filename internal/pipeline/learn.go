package pipeline

import (
	"context"

	"nutriscan/internal/logging"
	"nutriscan/internal/nutrition"
	"nutriscan/internal/photo"
	"nutriscan/internal/services"
	"nutriscan/internal/textutil"
)

// LearnResult is what Learn-and-Fetch produced.
type LearnResult struct {
	Record    nutrition.Record
	ImagePath string
}

// learnAndFetch records a user-supplied label for the photo: the image is
// saved for the dataset when its fingerprint is new, the fingerprint is mapped
// to the label, and nutrition is fetched remotely and remembered when found.
func (p *Pipeline) learnAndFetch(ctx context.Context, ph *photo.Photo, label string) (LearnResult, error) {
	fp := ph.Fingerprint().String()
	key := textutil.CanonicalLabel(label)
	if key == "" {
		return LearnResult{}, services.Wrap(services.ErrValidation, "pipeline", "learn", "label is required", nil)
	}
	logger := logging.WithContext(ctx, p.logger)

	var result LearnResult
	_, cached, err := p.deps.Cache.Lookup(ctx, fp)
	if err != nil {
		return result, err
	}
	if !cached {
		location, err := p.deps.Images.Save(ctx, label, ph.Bytes())
		if err != nil {
			return result, err
		}
		result.ImagePath = location
	}
	if err := p.deps.Cache.Put(ctx, fp, key); err != nil {
		return result, err
	}

	result.Record = p.deps.Source.FetchRemote(ctx, label)
	if !result.Record.IsError() {
		if err := p.deps.Source.Remember(ctx, label, result.Record); err != nil {
			return result, err
		}
	}
	logger.Info("label learned",
		logging.String(logging.FieldEventType, "label_learned"),
		logging.String("label", key),
		logging.Bool("image_saved", result.ImagePath != ""),
		logging.Bool("has_nutrition", !result.Record.IsError()),
	)
	return result, nil
}

// Learn runs Learn-and-Fetch outside a session, for callers that already know
// the label of a photo.
func (p *Pipeline) Learn(ctx context.Context, ph *photo.Photo, label string) (LearnResult, error) {
	if ph == nil {
		return LearnResult{}, services.Wrap(services.ErrValidation, "pipeline", "learn", "photo is required", nil)
	}
	ctx = services.WithFingerprint(ctx, ph.Fingerprint().String())
	return p.learnAndFetch(ctx, ph, label)
}
