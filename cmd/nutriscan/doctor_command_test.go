package main

import (
	"encoding/json"
	"testing"

	"nutriscan/internal/preflight"
	"nutriscan/internal/testsupport"
)

func TestDoctorPasses(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "doctor")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Data directory")
	requireContains(t, out, "OpenFoodFacts")
	requireContains(t, out, "OK")
	requireNotContains(t, out, "FAIL")
}

func TestDoctorReportsFailures(t *testing.T) {
	detector := newFakeDetector(t, "unused", 1)
	env := setupCLITestEnv(t, testsupport.WithHTTPDetector(detector))
	env.cfg.Remote.BaseURL = "http://127.0.0.1:1"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := env.run(t, "--json", "doctor")
	if err == nil {
		t.Fatal("expected doctor to fail with unreachable remote")
	}
	requireContains(t, err.Error(), "1 of 5 checks failed")

	var results []preflight.Result
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, r := range results {
		if r.Name == "OpenFoodFacts" && r.Passed {
			t.Fatalf("remote check should fail: %+v", r)
		}
		if r.Name == "Detector" && !r.Passed {
			t.Fatalf("detector check should pass: %+v", r)
		}
	}
}
