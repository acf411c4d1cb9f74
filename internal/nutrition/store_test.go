package nutrition

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"nutriscan/internal/services"
)

func TestJSONStoreMissingFileIsEmpty(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "absent", "nutrition.json"), nil)
	records, err := store.All(context.Background())
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty store, got %v", records)
	}
}

func TestJSONStoreRoundTripAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nutrition.json")

	first := NewJSONStore(path, nil)
	if err := first.Put(ctx, "maggi 2-minute noodles", maggi()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	second := NewJSONStore(path, nil)
	rec, ok, err := second.Get(ctx, "maggi 2-minute noodles")
	if err != nil || !ok {
		t.Fatalf("expected record after reopen, ok=%v err=%v", ok, err)
	}
	if got, _ := rec.Calories.Float(); got != 427 {
		t.Fatalf("unexpected calories %v", rec.Calories)
	}
}

func TestJSONStoreIdempotentPut(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nutrition.json")
	store := NewJSONStore(path, nil)

	if err := store.Put(ctx, "sting", maggi()); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, "sting", maggi()); err != nil {
		t.Fatal(err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Fatalf("expected identical bytes, got\n%s\nvs\n%s", before, after)
	}
}

func TestJSONStoreRejectsInvalidPuts(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "nutrition.json"), nil)
	if err := store.Put(context.Background(), " ", maggi()); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for blank label, got %v", err)
	}
	if err := store.Put(context.Background(), "x", Failure(KindNotFound, "no")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for error record, got %v", err)
	}
}

func TestJSONStoreReadsLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nutrition.json")
	legacy := `{
    "sting": {
        "calories": "44",
        "fat": 0,
        "carbs": 11,
        "protein": "N/A",
        "source": "OpenFoodFacts",
        "actual_product_name": "Sting"
    }
}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}
	rec, ok, err := NewJSONStore(path, nil).Get(context.Background(), "sting")
	if err != nil || !ok {
		t.Fatalf("expected legacy record, ok=%v err=%v", ok, err)
	}
	if rec.Calories.String() != "44" || rec.Protein.Known() {
		t.Fatalf("unexpected amounts %+v", rec.Facts)
	}
}
