package pipeline

import (
	"errors"
	"fmt"

	"nutriscan/internal/nutrition"
	"nutriscan/internal/services"
)

// State is the position of a Session in the resolution flow.
type State string

const (
	StateBarcodeScan     State = "barcode_scan"
	StateAwaitBarcode    State = "await_barcode"
	StateCacheLookup     State = "cache_lookup"
	StateDetection       State = "detection"
	StateAwaitCorrection State = "await_correction"
	StateAwaitLabel      State = "await_label"
	StateAwaitConfirm    State = "await_confirm"
	StateDone            State = "done"
)

// Waiting reports whether the state is a suspension point.
func (s State) Waiting() bool {
	switch s {
	case StateAwaitBarcode, StateAwaitCorrection, StateAwaitLabel, StateAwaitConfirm:
		return true
	}
	return false
}

// Resolution records which strategy produced the final record.
type Resolution string

const (
	ResolvedByBarcode       Resolution = "barcode"
	ResolvedByManualBarcode Resolution = "manual_barcode"
	ResolvedFromCache       Resolution = "cache"
	ResolvedByDetection     Resolution = "detection"
	ResolvedByCorrection    Resolution = "correction"
	ResolvedBySuggestion    Resolution = "suggestion"
	ResolvedByManualLabel   Resolution = "manual_label"
)

// Outcome is the terminal result of a session. Record may be an error record.
type Outcome struct {
	Record     nutrition.Record `json:"record"`
	Resolution Resolution       `json:"resolution"`
	Label      string           `json:"label"`
	ImagePath  string           `json:"image_path,omitempty"`
}

// Step is the view of a session after each transition.
type Step struct {
	State         State    `json:"state"`
	Prompt        string   `json:"prompt,omitempty"`
	Fingerprint   string   `json:"fingerprint"`
	Barcode       string   `json:"barcode,omitempty"`
	CachedLabel   string   `json:"cached_label,omitempty"`
	DetectedLabel string   `json:"detected_label,omitempty"`
	Confidence    float64  `json:"confidence,omitempty"`
	Suggestion    string   `json:"suggestion,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
	Outcome       *Outcome `json:"outcome,omitempty"`
}

// Done reports whether the session has finished.
func (s Step) Done() bool { return s.State == StateDone }

const (
	promptBarcode    = "Enter barcode manually (optional)"
	promptCorrection = "Enter correct product name"
	promptLabel      = "What do you think the product is?"
)

// ErrInvalidTransition is returned when an event does not fit the current state.
var ErrInvalidTransition = fmt.Errorf("%w: invalid pipeline transition", services.ErrValidation)

func invalidTransition(event string, state State) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, event, state)
}

// IsInvalidTransition reports whether err came from an out-of-order event.
func IsInvalidTransition(err error) bool { return errors.Is(err, ErrInvalidTransition) }
