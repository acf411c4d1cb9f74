package detection

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"nutriscan/internal/logging"
)

// MinConfidence is the detection threshold. It is intentionally not configurable.
const MinConfidence = 0.4

// Detection is one labelled box, confidence in 0..1.
type Detection struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifier runs the external detection model. Implementations should drop
// detections below minConfidence but the Resolver filters again regardless.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, image []byte, minConfidence float64) ([]Detection, error)
}

// Resolver turns classifier output into at most one label.
type Resolver struct {
	classifier Classifier
	logger     *slog.Logger
}

// NewResolver wraps classifier. A nil classifier behaves like Disabled.
func NewResolver(classifier Classifier, logger *slog.Logger) *Resolver {
	if classifier == nil {
		classifier = Disabled{}
	}
	return &Resolver{
		classifier: classifier,
		logger:     logging.NewComponentLogger(logger, "detection"),
	}
}

// Backend reports the classifier name.
func (r *Resolver) Backend() string { return r.classifier.Name() }

// Detect returns the highest-confidence label at or above MinConfidence.
// Classifier errors are logged and yield ok=false.
func (r *Resolver) Detect(ctx context.Context, image []byte) (string, float64, bool) {
	logger := logging.WithContext(ctx, r.logger)
	if len(image) == 0 {
		return "", 0, false
	}

	detections, err := r.classifier.Classify(ctx, image, MinConfidence)
	if err != nil {
		logging.WarnWithContext(logger, "detection failed", "detection_failed",
			logging.String("backend", r.classifier.Name()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the detection backend settings or run nutriscan doctor"),
			logging.String(logging.FieldImpact, "falling back to manual label entry"),
		)
		return "", 0, false
	}

	best, ok := Best(detections, MinConfidence)
	if !ok {
		logger.Info("no confident detection",
			logging.String("backend", r.classifier.Name()),
			logging.Int("candidates", len(detections)),
		)
		return "", 0, false
	}
	logger.Info("product detected",
		logging.String(logging.FieldEventType, "product_detected"),
		logging.String("label", best.Label),
		logging.Float64("confidence", best.Confidence),
	)
	return best.Label, best.Confidence, true
}

// Best picks the highest-confidence detection with a non-empty label at or
// above threshold. Ties keep the classifier's order.
func Best(detections []Detection, threshold float64) (Detection, bool) {
	kept := make([]Detection, 0, len(detections))
	for _, d := range detections {
		d.Label = strings.TrimSpace(d.Label)
		if d.Label == "" || d.Confidence < threshold {
			continue
		}
		kept = append(kept, d)
	}
	if len(kept) == 0 {
		return Detection{}, false
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Confidence > kept[j].Confidence })
	return kept[0], true
}

// Disabled is the "none" backend.
type Disabled struct{}

func (Disabled) Name() string { return "none" }

func (Disabled) Classify(context.Context, []byte, float64) ([]Detection, error) { return nil, nil }
