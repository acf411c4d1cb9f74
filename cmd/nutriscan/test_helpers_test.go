package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"nutriscan/internal/config"
	"nutriscan/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	off        *fakeOpenFoodFacts
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	homeDir := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	off := newFakeOpenFoodFacts(t)
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{
		testsupport.WithRemoteURL(off.URL()),
		testsupport.WithBarcodes(false),
	}, opts...)...)
	cfg.Logging.Level = "error"

	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		off:        off,
	}
}

// photo writes a fixture image under the env's base directory.
func (e *cliTestEnv) photo(t *testing.T, name string, seed uint8) string {
	t.Helper()
	path := filepath.Join(e.baseDir, "photos", name)
	testsupport.WritePNG(t, path, seed)
	return path
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, args, e.configPath)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}

// fakeOpenFoodFacts serves the search, barcode and ping endpoints from
// in-memory product tables.
type fakeOpenFoodFacts struct {
	server *httptest.Server

	mu       sync.Mutex
	products map[string]string
	barcodes map[string]string
	searches int
}

func newFakeOpenFoodFacts(t *testing.T) *fakeOpenFoodFacts {
	t.Helper()
	f := &fakeOpenFoodFacts{
		products: map[string]string{},
		barcodes: map[string]string{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeOpenFoodFacts) URL() string { return f.server.URL }

// addProduct registers name as the single search hit for query.
func (f *fakeOpenFoodFacts) addProduct(query, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[strings.ToLower(query)] = name
}

func (f *fakeOpenFoodFacts) addBarcode(code, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.barcodes[code] = name
}

func (f *fakeOpenFoodFacts) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searches
}

func (f *fakeOpenFoodFacts) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case r.URL.Path == "/cgi/search.pl":
		f.searches++
		name, ok := f.products[strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search_terms")))]
		if !ok {
			_, _ = w.Write([]byte(`{"count":0,"products":[]}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"count":1,"products":[%s]}`, productJSON("", name))
	case strings.HasPrefix(r.URL.Path, "/api/v0/product/"):
		code := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v0/product/"), ".json")
		name, ok := f.barcodes[code]
		if !ok {
			_, _ = fmt.Fprintf(w, `{"code":%q,"status":0,"status_verbose":"product not found"}`, code)
			return
		}
		_, _ = fmt.Fprintf(w, `{"code":%q,"status":1,"product":%s}`, code, productJSON(code, name))
	default:
		http.NotFound(w, r)
	}
}

func productJSON(code, name string) string {
	data, _ := json.Marshal(map[string]any{
		"code":         code,
		"product_name": name,
		"nutriments": map[string]any{
			"energy-kcal_100g":   384,
			"fat_100g":           14.2,
			"carbohydrates_100g": "55.1",
			"proteins_100g":      8.5,
		},
	})
	return string(data)
}

// newFakeDetector serves the detection sidecar /predict endpoint with a
// fixed answer.
func newFakeDetector(t *testing.T, label string, confidence float64) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"detections": []map[string]any{{"label": label, "confidence": confidence}},
		})
	}))
	t.Cleanup(server.Close)
	return server.URL
}
