package resultcache

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"nutriscan/internal/fileutil"
	"nutriscan/internal/logging"
	"nutriscan/internal/services"
	"nutriscan/internal/textutil"
)

// Store maps image fingerprints to canonical product labels.
type Store interface {
	Lookup(ctx context.Context, fingerprint string) (string, bool, error)
	Put(ctx context.Context, fingerprint, label string) error
	Entries(ctx context.Context) (map[string]string, error)
	Labels(ctx context.Context) ([]string, error)
}

// JSONCache is the file-backed Store. The file holds a single object of
// fingerprint keys to label values.
type JSONCache struct {
	path   string
	logger *slog.Logger
}

var _ Store = (*JSONCache)(nil)

// NewJSONCache creates a cache backed by path. The file is created lazily on
// the first Put; a missing file reads as an empty cache.
func NewJSONCache(path string, logger *slog.Logger) *JSONCache {
	return &JSONCache{
		path:   path,
		logger: logging.NewComponentLogger(logger, "resultcache"),
	}
}

// Path returns the backing file.
func (c *JSONCache) Path() string { return c.path }

// Entries loads the whole mapping.
func (c *JSONCache) Entries(context.Context) (map[string]string, error) {
	entries := map[string]string{}
	if _, err := fileutil.ReadJSON(c.path, &entries); err != nil {
		return nil, services.Wrap(services.ErrStorage, "resultcache", "load", c.path, err)
	}
	return entries, nil
}

// Lookup returns the label cached for fingerprint.
func (c *JSONCache) Lookup(ctx context.Context, fingerprint string) (string, bool, error) {
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return "", false, nil
	}
	entries, err := c.Entries(ctx)
	if err != nil {
		return "", false, err
	}
	label, ok := entries[fingerprint]
	return label, ok, nil
}

// Put records fingerprint -> canonical(label) and persists immediately.
func (c *JSONCache) Put(ctx context.Context, fingerprint, label string) error {
	fingerprint = strings.TrimSpace(fingerprint)
	label = textutil.CanonicalLabel(label)
	if fingerprint == "" || label == "" {
		return services.Wrap(services.ErrValidation, "resultcache", "put", "fingerprint and label are required", nil)
	}

	err := fileutil.UpdateJSON(ctx, c.path, func(doc *map[string]string) (bool, error) {
		if *doc == nil {
			*doc = map[string]string{}
		}
		if (*doc)[fingerprint] == label {
			return false, nil
		}
		(*doc)[fingerprint] = label
		return true, nil
	})
	if err != nil {
		return services.Wrap(services.ErrStorage, "resultcache", "put", c.path, err)
	}

	logging.WithContext(ctx, c.logger).Debug("cached image label",
		logging.String("fingerprint", fingerprint),
		logging.String("label", label),
	)
	return nil
}

// Labels returns the distinct cached labels in sorted order.
func (c *JSONCache) Labels(ctx context.Context) ([]string, error) {
	entries, err := c.Entries(ctx)
	if err != nil {
		return nil, err
	}
	return DistinctLabels(entries), nil
}

// DistinctLabels returns the sorted unique values of entries.
func DistinctLabels(entries map[string]string) []string {
	seen := make(map[string]struct{}, len(entries))
	labels := make([]string, 0, len(entries))
	for _, label := range entries {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
