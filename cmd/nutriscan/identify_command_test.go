package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"nutriscan/internal/fingerprint"
	"nutriscan/internal/pipeline"
	"nutriscan/internal/resultcache"
	"nutriscan/internal/services"
	"nutriscan/internal/testsupport"
)

func TestIdentifyManualLabelThenCacheHit(t *testing.T) {
	env := setupCLITestEnv(t)
	env.off.addProduct("maggi 2-minute noodles", "Maggi 2-Minute Noodles")
	img := env.photo(t, "noodles.png", 7)

	out, _, err := env.run(t, "identify", "--no-barcode", "--label", "Maggi 2-Minute Noodles", img)
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	requireContains(t, out, "Resolved by manual label: maggi 2-minute noodles")
	requireContains(t, out, "Product: Maggi 2-Minute Noodles")
	requireContains(t, out, "Saved image:")
	requireContains(t, out, "384")
	requireContains(t, out, "55.1")

	digest, err := fingerprint.File(img)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	cache := resultcache.NewJSONCache(env.cfg.Paths.ResultCache, nil)
	label, ok, err := cache.Lookup(t.Context(), digest.String())
	if err != nil || !ok || label != "maggi 2-minute noodles" {
		t.Fatalf("cache lookup = %q, %v, %v", label, ok, err)
	}

	searches := env.off.searchCount()
	out, _, err = env.run(t, "identify", "--no-barcode", "--non-interactive", img)
	if err != nil {
		t.Fatalf("second identify: %v", err)
	}
	requireContains(t, out, "Resolved by cache: maggi 2-minute noodles")
	requireContains(t, out, "Source:  local")
	if got := env.off.searchCount(); got != searches {
		t.Fatalf("cache hit contacted remote: searches %d -> %d", searches, got)
	}
}

func TestIdentifyDetectionJSON(t *testing.T) {
	detector := newFakeDetector(t, "sting", 0.91)
	env := setupCLITestEnv(t, testsupport.WithHTTPDetector(detector))
	env.off.addProduct("sting", "Sting Energy Drink")
	img := env.photo(t, "drink.png", 11)

	out, _, err := env.run(t, "--json", "identify", "--no-barcode", img)
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	var step pipeline.Step
	if err := json.Unmarshal([]byte(out), &step); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if !step.Done() || step.Outcome == nil {
		t.Fatalf("expected finished step, got %+v", step)
	}
	if step.Outcome.Resolution != pipeline.ResolvedByDetection {
		t.Fatalf("resolution = %s", step.Outcome.Resolution)
	}
	if step.DetectedLabel != "sting" || step.Outcome.Label != "sting energy drink" {
		t.Fatalf("unexpected labels: detected %q, outcome %q", step.DetectedLabel, step.Outcome.Label)
	}
	requireContains(t, out, `"actual_product_name": "Sting Energy Drink"`)
}

func TestIdentifyDetectionText(t *testing.T) {
	detector := newFakeDetector(t, "sting", 0.91)
	env := setupCLITestEnv(t, testsupport.WithHTTPDetector(detector))
	env.off.addProduct("sting", "Sting Energy Drink")

	out, _, err := env.run(t, "identify", "--no-barcode", env.photo(t, "drink.png", 12))
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	requireContains(t, out, "Detected: sting (91%)")
	requireContains(t, out, "Resolved by detection: sting energy drink")
}

func TestIdentifyNonInteractiveNeedsLabel(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := env.run(t, "identify", "--no-barcode", "--non-interactive", env.photo(t, "mystery.png", 3))
	if err == nil {
		t.Fatal("expected error without a label")
	}
	if !errors.Is(err, errInputRequired) || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("unexpected error: %v", err)
	}
	requireContains(t, err.Error(), "--label")

	cache := resultcache.NewJSONCache(env.cfg.Paths.ResultCache, nil)
	entries, err := cache.Entries(t.Context())
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("nothing should be cached, got %v", entries)
	}
}

func TestIdentifySuggestion(t *testing.T) {
	env := setupCLITestEnv(t)
	env.off.addProduct("sting energy drink", "Sting Energy Drink")
	if _, _, err := env.run(t, "learn", env.photo(t, "first.png", 20), "sting", "energy", "drink"); err != nil {
		t.Fatalf("learn: %v", err)
	}

	img := env.photo(t, "second.png", 21)
	_, _, err := env.run(t, "identify", "--no-barcode", "--label", "sting", img)
	if err == nil {
		t.Fatal("expected the pending suggestion to need an answer")
	}
	requireContains(t, err.Error(), `suggested "sting energy drink"`)

	out, _, err := env.run(t, "identify", "--no-barcode", "--label", "sting", "--accept-suggestion", img)
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	requireContains(t, out, "Resolved by suggestion: sting energy drink")
}

func TestIdentifyRejectedSuggestionLearnsTypedText(t *testing.T) {
	env := setupCLITestEnv(t)
	env.off.addProduct("sting energy drink", "Sting Energy Drink")
	if _, _, err := env.run(t, "learn", env.photo(t, "first.png", 30), "sting energy drink"); err != nil {
		t.Fatalf("learn: %v", err)
	}

	out, _, err := env.run(t, "identify", "--no-barcode", "--label", "sting", "--reject-suggestion", env.photo(t, "second.png", 31))
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	requireContains(t, out, "Resolved by manual label: sting")
	requireContains(t, out, "Error: No products found on OpenFoodFacts.")
}

func TestIdentifySuggestionFlagsAreExclusive(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := env.run(t, "identify", "--accept-suggestion", "--reject-suggestion", env.photo(t, "x.png", 1))
	if err == nil {
		t.Fatal("expected flag conflict")
	}
}

func TestIdentifyManualBarcode(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithBarcodes(true))
	env.off.addBarcode("5901234123457", "Nutella")

	out, _, err := env.run(t, "identify", "--barcode", "5901234123457", "--non-interactive", env.photo(t, "jar.png", 40))
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	requireContains(t, out, "Resolved by manual barcode: nutella")
	requireContains(t, out, "Product: Nutella")
}

func TestIdentifyMissingImage(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := env.run(t, "identify", "--no-barcode", env.baseDir+"/nope.png")
	if err == nil {
		t.Fatal("expected error for missing image")
	}
}

func TestDriverPromptsOnTerminal(t *testing.T) {
	var prompts bytes.Buffer
	d := &driver{
		interactive: true,
		in:          bufio.NewReader(strings.NewReader("Yes\n")),
		prompts:     &prompts,
	}
	accept, err := d.confirm(pipeline.Step{State: pipeline.StateAwaitConfirm, Prompt: `Did you mean "sting energy drink"?`})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !accept {
		t.Fatal("expected yes to accept")
	}
	requireContains(t, prompts.String(), `Did you mean "sting energy drink"? [y/N]: `)

	// End of input answers no.
	accept, err = d.confirm(pipeline.Step{State: pipeline.StateAwaitConfirm})
	if err != nil || accept {
		t.Fatalf("confirm at EOF = %v, %v", accept, err)
	}
}

func TestDriverFlagsOverrideTerminal(t *testing.T) {
	d := &driver{
		opts:        identifyOptions{rejectSuggestion: true},
		interactive: true,
		in:          bufio.NewReader(strings.NewReader("y\n")),
		prompts:     &bytes.Buffer{},
	}
	accept, err := d.confirm(pipeline.Step{State: pipeline.StateAwaitConfirm})
	if err != nil || accept {
		t.Fatalf("confirm = %v, %v; want flag to decline", accept, err)
	}
}

func TestDriverReportPrintsNewWarningsOnce(t *testing.T) {
	var out bytes.Buffer
	d := &driver{progress: &out}
	d.report(pipeline.Step{Warnings: []string{"no barcode"}})
	d.report(pipeline.Step{Warnings: []string{"no barcode", "lookup failed"}, DetectedLabel: "maggi", Confidence: 0.5})

	got := out.String()
	if strings.Count(got, "Warning: no barcode") != 1 {
		t.Fatalf("warning repeated:\n%s", got)
	}
	requireContains(t, got, "Warning: lookup failed")
	requireContains(t, got, "Detected: maggi (50%)")
}

func TestIdentifyBarcodeFlagNeedsManualEntry(t *testing.T) {
	env := setupCLITestEnv(t)
	img := env.photo(t, "jar.png", 41)

	_, _, err := env.run(t, "identify", "--barcode", "5901234123457", img)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error with scanning disabled, got %v", err)
	}
	requireContains(t, err.Error(), "allow_manual_entry")

	if _, _, err := env.run(t, "identify", "--no-barcode", "--barcode", "5901234123457", img); err == nil {
		t.Fatal("expected --barcode and --no-barcode to conflict")
	}
}

func TestJSONErrorCarriesKind(t *testing.T) {
	env := setupCLITestEnv(t)
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{"--config", env.configPath, "--json", "store", "show", "unknown", "snack"})
	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected store show to fail")
	}

	var out bytes.Buffer
	reportError(cmd, &out, err)
	var payload errorOutput
	if decodeErr := json.Unmarshal(out.Bytes(), &payload); decodeErr != nil {
		t.Fatalf("decode error output: %v\n%s", decodeErr, out.String())
	}
	if payload.Kind != "not_found" || payload.Error != err.Error() {
		t.Fatalf("unexpected payload %+v", payload)
	}

	plain := newRootCommand()
	out.Reset()
	reportError(plain, &out, err)
	if strings.HasPrefix(out.String(), "{") {
		t.Fatalf("expected plain text without --json, got %s", out.String())
	}
}
