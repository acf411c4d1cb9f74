package sqlstore

import (
	"context"
	"fmt"

	"nutriscan/internal/nutrition"
	"nutriscan/internal/resultcache"
)

// ImportStats counts rows copied by Import.
type ImportStats struct {
	Fingerprints int
	Records      int
}

// Import copies every entry from the given stores into the database. Existing
// rows with the same key are overwritten.
func (s *Store) Import(ctx context.Context, cache resultcache.Store, records nutrition.Store) (ImportStats, error) {
	var stats ImportStats
	if cache != nil {
		entries, err := cache.Entries(ctx)
		if err != nil {
			return stats, fmt.Errorf("read result cache: %w", err)
		}
		target := s.ResultCache()
		for fp, label := range entries {
			if err := target.Put(ctx, fp, label); err != nil {
				return stats, err
			}
			stats.Fingerprints++
		}
	}
	if records != nil {
		all, err := records.All(ctx)
		if err != nil {
			return stats, fmt.Errorf("read nutrition store: %w", err)
		}
		target := s.Nutrition()
		for label, rec := range all {
			if rec.IsError() {
				continue
			}
			if err := target.Put(ctx, label, rec); err != nil {
				return stats, err
			}
			stats.Records++
		}
	}
	return stats, nil
}
