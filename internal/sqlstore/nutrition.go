package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"nutriscan/internal/nutrition"
	"nutriscan/internal/services"
)

// NutritionStore is the SQLite implementation of nutrition.Store. Records are
// kept as their JSON document so textual amounts survive unchanged.
type NutritionStore struct {
	store *Store
}

var _ nutrition.Store = (*NutritionStore)(nil)

// Nutrition returns the label to record view of the database.
func (s *Store) Nutrition() *NutritionStore {
	return &NutritionStore{store: s}
}

func (n *NutritionStore) Get(ctx context.Context, label string) (nutrition.Record, bool, error) {
	var doc string
	err := n.store.db.QueryRowContext(ctx,
		"SELECT record_json FROM nutrition_records WHERE label = ?", label,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nutrition.Record{}, false, nil
	}
	if err != nil {
		return nutrition.Record{}, false, services.Wrap(services.ErrStorage, "sqlstore", "get record", label, err)
	}
	var rec nutrition.Record
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nutrition.Record{}, false, services.Wrap(services.ErrStorage, "sqlstore", "decode record", label, err)
	}
	return rec, true, nil
}

func (n *NutritionStore) Put(ctx context.Context, label string, rec nutrition.Record) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return services.Wrap(services.ErrValidation, "sqlstore", "put record", "label must not be empty", nil)
	}
	if rec.IsError() {
		return services.Wrap(services.ErrValidation, "sqlstore", "put record", "error records are not stored", nil)
	}
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	err = n.store.exec(ctx, `
INSERT INTO nutrition_records (label, record_json, updated_at) VALUES (?, ?, ?)
ON CONFLICT(label) DO UPDATE SET record_json = excluded.record_json, updated_at = excluded.updated_at
WHERE nutrition_records.record_json <> excluded.record_json`,
		label, string(doc), now())
	if err != nil {
		return services.Wrap(services.ErrStorage, "sqlstore", "put record", label, err)
	}
	return nil
}

func (n *NutritionStore) All(ctx context.Context) (map[string]nutrition.Record, error) {
	rows, err := n.store.db.QueryContext(ctx, "SELECT label, record_json FROM nutrition_records")
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "sqlstore", "list records", "", err)
	}
	defer rows.Close()

	records := map[string]nutrition.Record{}
	for rows.Next() {
		var label, doc string
		if err := rows.Scan(&label, &doc); err != nil {
			return nil, services.Wrap(services.ErrStorage, "sqlstore", "scan record", "", err)
		}
		var rec nutrition.Record
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, services.Wrap(services.ErrStorage, "sqlstore", "decode record", label, err)
		}
		records[label] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "sqlstore", "list records", "", err)
	}
	return records, nil
}
