package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"nutriscan/internal/nutrition"
	"nutriscan/internal/pipeline"
)

// isTerminal reports whether v is a file attached to a terminal.
func isTerminal(v any) bool {
	file, ok := v.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func renderRecord(out io.Writer, rec nutrition.Record) {
	if rec.IsError() {
		fmt.Fprintf(out, "Error: %s\n", rec.Reason())
		return
	}
	fmt.Fprintf(out, "Product: %s\n", displayOrDash(rec.ProductName))
	fmt.Fprintf(out, "Source:  %s\n", rec.Source)
	rows := [][]string{
		{"Calories (kcal)", rec.Calories.String()},
		{"Fat (g)", rec.Fat.String()},
		{"Carbs (g)", rec.Carbs.String()},
		{"Protein (g)", rec.Protein.String()},
	}
	fmt.Fprintln(out, renderTable([]string{"Per 100g", "Amount"}, rows, []columnAlignment{alignLeft, alignRight}))
}

func renderOutcome(out io.Writer, step pipeline.Step) {
	if step.Outcome == nil {
		return
	}
	outcome := step.Outcome
	fmt.Fprintf(out, "Resolved by %s: %s\n", resolutionLabel(outcome.Resolution), outcome.Label)
	if outcome.ImagePath != "" {
		fmt.Fprintf(out, "Saved image: %s\n", outcome.ImagePath)
	}
	renderRecord(out, outcome.Record)
}

func resolutionLabel(r pipeline.Resolution) string {
	return strings.ReplaceAll(string(r), "_", " ")
}

func displayOrDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func statusText(passed, colorize bool) string {
	label, color := "FAIL", text.FgRed
	if passed {
		label, color = "OK", text.FgGreen
	}
	if colorize {
		return color.Sprint(label)
	}
	return label
}
