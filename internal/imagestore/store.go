package imagestore

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"nutriscan/internal/config"
	"nutriscan/internal/fileutil"
	"nutriscan/internal/logging"
	"nutriscan/internal/services"
	"nutriscan/internal/textutil"
)

// Store saves learned images. Save returns where the image ended up.
type Store interface {
	Save(ctx context.Context, label string, data []byte) (string, error)
}

// Name builds "{label_with_underscores}_{6 hex}.jpg".
func Name(label string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return textutil.ImageStem(label) + "_" + suffix + ".jpg"
}

// LabelFromName recovers the underscored label stem from a generated name.
func LabelFromName(name string) string {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if i := strings.LastIndex(stem, "_"); i > 0 && len(stem)-i-1 == 6 {
		stem = stem[:i]
	}
	return strings.ReplaceAll(stem, "_", " ")
}

// Dir writes images into a local directory.
type Dir struct {
	dir    string
	logger *slog.Logger
}

// NewDir stores images under dir, creating it on first save.
func NewDir(dir string, logger *slog.Logger) *Dir {
	return &Dir{dir: dir, logger: logging.NewComponentLogger(logger, "imagestore")}
}

// Path returns the backing directory.
func (d *Dir) Path() string { return d.dir }

func (d *Dir) Save(ctx context.Context, label string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", services.Wrap(services.ErrValidation, "imagestore", "save", "image data is empty", nil)
	}
	target := filepath.Join(d.dir, Name(label))
	if err := fileutil.WriteFileAtomic(target, data); err != nil {
		return "", services.Wrap(services.ErrStorage, "imagestore", "save", target, err)
	}
	logging.WithContext(ctx, d.logger).Info("learned image saved",
		logging.String(logging.FieldEventType, "image_saved"),
		logging.String("path", target),
		logging.Int("bytes", len(data)),
	)
	return target, nil
}

// New builds the backend selected by cfg.Images.Backend.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.Images.Backend {
	case "", config.ImageBackendDir:
		return NewDir(cfg.Paths.ImageDir, logger), nil
	case config.ImageBackendS3:
		return NewS3(ctx, S3Config{
			Bucket: cfg.Images.S3Bucket,
			Prefix: cfg.Images.S3Prefix,
			Region: cfg.Images.S3Region,
		}, logger)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "imagestore", "new",
			fmt.Sprintf("unknown image backend %q", cfg.Images.Backend), nil)
	}
}
