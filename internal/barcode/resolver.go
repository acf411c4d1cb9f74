package barcode

import (
	"context"
	"image"
	"log/slog"
	"strings"

	"nutriscan/internal/logging"
)

var accepted = map[Symbology]bool{
	EAN13:   true,
	EAN8:    true,
	UPCA:    true,
	Code128: true,
}

// Accepted reports whether s is one of the retail symbologies the resolver returns.
func Accepted(s Symbology) bool { return accepted[s] }

// Resolver finds the first accepted barcode in an image.
type Resolver struct {
	decoder         Decoder
	regionDetection bool
	logger          *slog.Logger
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithRegionDetection toggles the band crop tried before the full frame.
func WithRegionDetection(enabled bool) Option {
	return func(r *Resolver) { r.regionDetection = enabled }
}

// NewResolver wraps decoder. A nil decoder uses ZXing.
func NewResolver(decoder Decoder, logger *slog.Logger, opts ...Option) *Resolver {
	if decoder == nil {
		decoder = NewZXing()
	}
	r := &Resolver{
		decoder:         decoder,
		regionDetection: true,
		logger:          logging.NewComponentLogger(logger, "barcode"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the text of the first accepted symbol. Decoder failures are
// never returned; they read as "no barcode".
func (r *Resolver) Resolve(ctx context.Context, img image.Image) (string, bool) {
	if img == nil {
		return "", false
	}
	logger := logging.WithContext(ctx, r.logger)

	candidates := make([]image.Image, 0, 2)
	if r.regionDetection {
		if rect, ok := CandidateRegion(img); ok {
			candidates = append(candidates, Crop(img, rect))
		}
	}
	candidates = append(candidates, img)

	for i, candidate := range candidates {
		if ctx.Err() != nil {
			return "", false
		}
		symbols, err := r.decoder.Decode(candidate)
		if err != nil {
			logger.Debug("barcode decode failed",
				logging.String(logging.FieldEventType, "barcode_decode_failed"),
				logging.Int("attempt", i+1),
				logging.Error(err),
			)
			continue
		}
		for _, sym := range symbols {
			text := strings.TrimSpace(sym.Text)
			if !Accepted(sym.Type) || text == "" {
				logger.Debug("barcode symbology ignored", logging.String("type", string(sym.Type)))
				continue
			}
			logger.Info("barcode decoded",
				logging.String(logging.FieldEventType, "barcode_decoded"),
				logging.String("type", string(sym.Type)),
				logging.String("code", text),
			)
			return text, true
		}
	}
	return "", false
}
