package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"nutriscan/internal/resultcache"
	"nutriscan/internal/services"
	"nutriscan/internal/textutil"
)

// ResultCache is the SQLite implementation of resultcache.Store.
type ResultCache struct {
	store *Store
}

var _ resultcache.Store = (*ResultCache)(nil)

// ResultCache returns the fingerprint to label view of the database.
func (s *Store) ResultCache() *ResultCache {
	return &ResultCache{store: s}
}

func (c *ResultCache) Lookup(ctx context.Context, fingerprint string) (string, bool, error) {
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return "", false, nil
	}
	var label string
	err := c.store.db.QueryRowContext(ctx,
		"SELECT label FROM result_cache WHERE fingerprint = ?", fingerprint,
	).Scan(&label)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, services.Wrap(services.ErrStorage, "sqlstore", "lookup fingerprint", "", err)
	}
	return label, true, nil
}

func (c *ResultCache) Put(ctx context.Context, fingerprint, label string) error {
	fingerprint = strings.TrimSpace(fingerprint)
	label = textutil.CanonicalLabel(label)
	if fingerprint == "" || label == "" {
		return services.Wrap(services.ErrValidation, "sqlstore", "put fingerprint", "fingerprint and label are required", nil)
	}
	err := c.store.exec(ctx, `
INSERT INTO result_cache (fingerprint, label, updated_at) VALUES (?, ?, ?)
ON CONFLICT(fingerprint) DO UPDATE SET label = excluded.label, updated_at = excluded.updated_at
WHERE result_cache.label <> excluded.label`,
		fingerprint, label, now())
	if err != nil {
		return services.Wrap(services.ErrStorage, "sqlstore", "put fingerprint", "", err)
	}
	return nil
}

func (c *ResultCache) Entries(ctx context.Context) (map[string]string, error) {
	rows, err := c.store.db.QueryContext(ctx, "SELECT fingerprint, label FROM result_cache")
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "sqlstore", "list fingerprints", "", err)
	}
	defer rows.Close()

	entries := map[string]string{}
	for rows.Next() {
		var fp, label string
		if err := rows.Scan(&fp, &label); err != nil {
			return nil, services.Wrap(services.ErrStorage, "sqlstore", "scan fingerprint", "", err)
		}
		entries[fp] = label
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "sqlstore", "list fingerprints", "", err)
	}
	return entries, nil
}

func (c *ResultCache) Labels(ctx context.Context) ([]string, error) {
	rows, err := c.store.db.QueryContext(ctx, "SELECT DISTINCT label FROM result_cache ORDER BY label")
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "sqlstore", "list labels", "", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, services.Wrap(services.ErrStorage, "sqlstore", "scan label", "", err)
		}
		labels = append(labels, label)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "sqlstore", "list labels", "", err)
	}
	return labels, nil
}
