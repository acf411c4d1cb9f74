package nutrition

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"

	"nutriscan/internal/fileutil"
	"nutriscan/internal/logging"
	"nutriscan/internal/services"
)

// Store persists populated records keyed by canonical label.
type Store interface {
	Get(ctx context.Context, label string) (Record, bool, error)
	Put(ctx context.Context, label string, rec Record) error
	All(ctx context.Context) (map[string]Record, error)
}

// JSONStore keeps the local nutrition store in a single indented JSON object
// file. The file is re-read on every call so concurrent CLI invocations
// observe each other's writes; writes hold a file lock for the whole
// read-modify-write.
type JSONStore struct {
	path   string
	logger *slog.Logger
}

var _ Store = (*JSONStore)(nil)

// NewJSONStore creates a store backed by path. A missing file is an empty store.
func NewJSONStore(path string, logger *slog.Logger) *JSONStore {
	return &JSONStore{
		path:   path,
		logger: logging.NewComponentLogger(logger, "nutrition-store"),
	}
}

// Path returns the backing file.
func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) Get(ctx context.Context, label string) (Record, bool, error) {
	all, err := s.All(ctx)
	if err != nil {
		return Record{}, false, err
	}
	rec, ok := all[label]
	return rec, ok, nil
}

func (s *JSONStore) All(context.Context) (map[string]Record, error) {
	records := map[string]Record{}
	if _, err := fileutil.ReadJSON(s.path, &records); err != nil {
		return nil, services.Wrap(services.ErrStorage, "nutrition-store", "read", s.path, err)
	}
	return records, nil
}

func (s *JSONStore) Put(ctx context.Context, label string, rec Record) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return services.Wrap(services.ErrValidation, "nutrition-store", "put", "label must not be empty", nil)
	}
	if rec.IsError() {
		return services.Wrap(services.ErrValidation, "nutrition-store", "put", "error records are not stored", nil)
	}
	err := fileutil.UpdateJSON(ctx, s.path, func(doc *map[string]Record) (bool, error) {
		if *doc == nil {
			*doc = map[string]Record{}
		}
		if existing, ok := (*doc)[label]; ok && sameRecord(existing, rec) {
			return false, nil
		}
		(*doc)[label] = rec
		return true, nil
	})
	if err != nil {
		return services.Wrap(services.ErrStorage, "nutrition-store", "put", s.path, err)
	}
	s.logger.Debug("stored nutrition record", logging.String("label", label))
	return nil
}

// Labels returns the stored labels in sorted order.
func Labels(records map[string]Record) []string {
	labels := make([]string, 0, len(records))
	for label := range records {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

func sameRecord(a, b Record) bool {
	left, err := json.Marshal(a)
	if err != nil {
		return false
	}
	right, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(left) == string(right)
}
