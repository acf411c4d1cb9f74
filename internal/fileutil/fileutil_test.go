package fileutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestReadJSONMissingFile(t *testing.T) {
	var doc map[string]string
	found, err := ReadJSON(filepath.Join(t.TempDir(), "missing.json"), &doc)
	if err != nil {
		t.Fatalf("ReadJSON returned error: %v", err)
	}
	if found {
		t.Fatal("expected missing file to report not found")
	}
}

func TestReadJSONCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	var doc map[string]string
	if _, err := ReadJSON(path, &doc); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestWriteJSONAtomicIndentsAndSortsKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.json")
	doc := map[string]string{"zeta": "z", "alpha": "a&b"}
	if err := WriteJSONAtomic(path, doc); err != nil {
		t.Fatalf("WriteJSONAtomic returned error: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"alpha\": \"a&b\",\n  \"zeta\": \"z\"\n}\n"
	if string(got) != want {
		t.Fatalf("unexpected content:\n%s\nwant:\n%s", got, want)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestUpdateJSONSkipsUnchangedDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	ctx := context.Background()

	err := UpdateJSON(ctx, path, func(doc *map[string]int) (bool, error) {
		if *doc == nil {
			*doc = map[string]int{}
		}
		(*doc)["count"] = 1
		return true, nil
	})
	if err != nil {
		t.Fatalf("UpdateJSON returned error: %v", err)
	}
	before, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	err = UpdateJSON(ctx, path, func(doc *map[string]int) (bool, error) {
		return false, nil
	})
	if err != nil {
		t.Fatalf("UpdateJSON returned error: %v", err)
	}
	after, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !before.ModTime().Equal(after.ModTime()) {
		t.Fatal("expected unchanged document to be left alone")
	}
}

func TestUpdateJSONSerializesWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter.json")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := UpdateJSON(ctx, path, func(doc *map[string]int) (bool, error) {
				if *doc == nil {
					*doc = map[string]int{}
				}
				(*doc)["count"]++
				return true, nil
			})
			if err != nil {
				t.Errorf("UpdateJSON returned error: %v", err)
			}
		}()
	}
	wg.Wait()

	var doc map[string]int
	if _, err := ReadJSON(path, &doc); err != nil {
		t.Fatal(err)
	}
	if doc["count"] != 16 {
		t.Fatalf("expected 16 serialized increments, got %d", doc["count"])
	}
}
