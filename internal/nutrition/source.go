package nutrition

import (
	"context"
	"log/slog"
	"strings"

	"nutriscan/internal/logging"
	"nutriscan/internal/textutil"
)

// Source answers nutrition lookups from the local store first and the remote
// database second.
type Source struct {
	store  Store
	remote Remote
	logger *slog.Logger
}

// NewSource wires a store and a remote.
func NewSource(store Store, remote Remote, logger *slog.Logger) *Source {
	return &Source{
		store:  store,
		remote: remote,
		logger: logging.NewComponentLogger(logger, "nutrition"),
	}
}

// GetInfo resolves a label. A local hit returns the stored record tagged
// "local" without any network call. Otherwise the remote is searched and a
// populated result is persisted under its canonical product name (or the
// canonical query when the product has no name). The returned error is
// non-nil only for storage failures.
func (s *Source) GetInfo(ctx context.Context, label string) (Record, error) {
	key := textutil.CanonicalLabel(label)
	logger := logging.WithContext(ctx, s.logger)

	if key != "" {
		rec, ok, err := s.store.Get(ctx, key)
		if err != nil {
			return Record{}, err
		}
		if ok {
			logger.Debug("local nutrition hit", logging.String("label", key))
			return rec.WithSource(OriginLocal), nil
		}
	}

	rec := s.remote.Search(ctx, strings.TrimSpace(label))
	if rec.IsError() {
		logger.Info("remote nutrition lookup returned no data",
			logging.String("label", key),
			logging.String("reason", rec.Reason()),
		)
		return rec, nil
	}

	persistKey := textutil.CanonicalLabel(textutil.FirstNonEmpty(rec.ProductName, label))
	if err := s.store.Put(ctx, persistKey, rec); err != nil {
		return rec, err
	}
	logger.Info("remote nutrition stored",
		logging.String("label", key),
		logging.String("stored_as", persistKey),
	)
	return rec, nil
}

// GetInfoByBarcode resolves a barcode remotely. The local store is neither
// read nor written.
func (s *Source) GetInfoByBarcode(ctx context.Context, code string) Record {
	return s.remote.LookupBarcode(ctx, strings.TrimSpace(code))
}

// FetchRemote searches the remote for label without consulting the store.
func (s *Source) FetchRemote(ctx context.Context, label string) Record {
	return s.remote.Search(ctx, strings.TrimSpace(label))
}

// Remember stores a populated record under the canonical form of label.
// Error records are ignored.
func (s *Source) Remember(ctx context.Context, label string, rec Record) error {
	if rec.IsError() {
		return nil
	}
	key := textutil.CanonicalLabel(label)
	if key == "" {
		return nil
	}
	return s.store.Put(ctx, key, rec)
}

// Records lists every stored record.
func (s *Source) Records(ctx context.Context) (map[string]Record, error) {
	return s.store.All(ctx)
}
