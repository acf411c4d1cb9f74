package main

import (
	"bytes"
	"strings"
	"testing"

	"nutriscan/internal/nutrition"
	"nutriscan/internal/pipeline"
)

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B", "C"}, [][]string{{"1"}, {"2", "3", "4", "5"}}, []columnAlignment{alignLeft, alignRight})
	requireContains(t, out, "A")
	requireNotContains(t, out, "5")
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("expected empty table without headers")
	}
}

func TestRenderRecord(t *testing.T) {
	var buf bytes.Buffer
	rec := nutrition.Populated(nutrition.Facts{
		Calories: nutrition.Number(44),
		Fat:      nutrition.Number(0),
		Carbs:    nutrition.Number(11),
		Protein:  nutrition.Missing(),
	}, nutrition.OriginLocal, "")
	renderRecord(&buf, rec)
	out := buf.String()
	requireContains(t, out, "Product: -")
	requireContains(t, out, "Source:  local")
	requireContains(t, out, "N/A")

	buf.Reset()
	renderRecord(&buf, nutrition.Failure(nutrition.KindNotFound, "No products found on OpenFoodFacts."))
	if strings.TrimSpace(buf.String()) != "Error: No products found on OpenFoodFacts." {
		t.Fatalf("unexpected error rendering %q", buf.String())
	}
}

func TestRenderOutcomeSkipsUnfinishedSteps(t *testing.T) {
	var buf bytes.Buffer
	renderOutcome(&buf, pipeline.Step{State: pipeline.StateAwaitLabel})
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
	renderOutcome(&buf, pipeline.Step{State: pipeline.StateDone, Outcome: &pipeline.Outcome{
		Resolution: pipeline.ResolvedByManualBarcode,
		Label:      "nutella",
		Record:     nutrition.Failure(nutrition.KindRemoteFailure, "boom"),
	}})
	requireContains(t, buf.String(), "Resolved by manual barcode: nutella")
}

func TestStatusText(t *testing.T) {
	if statusText(true, false) != "OK" || statusText(false, false) != "FAIL" {
		t.Fatal("unexpected plain status text")
	}
	requireContains(t, statusText(false, true), "FAIL")
}
