package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"nutriscan/internal/fuzzy"
	"nutriscan/internal/logging"
	"nutriscan/internal/photo"
	"nutriscan/internal/services"
	"nutriscan/internal/textutil"
)

// Request is one photo submitted for resolution.
type Request struct {
	Photo       *photo.Photo
	ScanBarcode bool
}

// Session is a single resolution in progress. It is not safe for concurrent use.
type Session struct {
	p      *Pipeline
	req    Request
	fp     string
	logger *slog.Logger
	step   Step

	// typed holds the free text behind a pending suggestion.
	typed string
}

// Begin starts a session and runs it until it finishes or needs input.
func (p *Pipeline) Begin(ctx context.Context, req Request) (*Session, Step, error) {
	if req.Photo == nil {
		return nil, Step{}, services.Wrap(services.ErrValidation, "pipeline", "begin", "photo is required", nil)
	}
	fp := req.Photo.Fingerprint().String()
	s := &Session{
		p:      p,
		req:    req,
		fp:     fp,
		logger: p.logger,
		step:   Step{Fingerprint: fp},
	}
	ctx = services.WithFingerprint(ctx, fp)
	logging.WithContext(ctx, s.logger).Info("resolution started",
		logging.String(logging.FieldEventType, "resolution_started"),
		logging.String("photo", req.Photo.Name()),
		logging.Bool("scan_barcode", req.ScanBarcode),
	)

	first := StateCacheLookup
	if req.ScanBarcode {
		first = StateBarcodeScan
	}
	if err := s.advance(ctx, first); err != nil {
		return s, s.Step(), err
	}
	return s, s.Step(), nil
}

// Step returns a snapshot of the current state.
func (s *Session) Step() Step {
	step := s.step
	step.Warnings = append([]string(nil), s.step.Warnings...)
	return step
}

// SubmitBarcode answers the manual barcode prompt. An empty code skips it.
func (s *Session) SubmitBarcode(ctx context.Context, code string) (Step, error) {
	if s.step.State != StateAwaitBarcode {
		return s.Step(), invalidTransition("barcode submitted", s.step.State)
	}
	code = strings.TrimSpace(code)
	if code != "" {
		ctx = s.stageContext(ctx, StateAwaitBarcode)
		done, err := s.tryBarcode(ctx, code, ResolvedByManualBarcode)
		if err != nil || done {
			return s.Step(), err
		}
	}
	err := s.advance(ctx, StateCacheLookup)
	return s.Step(), err
}

// SubmitLabel answers the correction prompt after a failed detection lookup,
// or the free-text prompt when nothing was detected.
func (s *Session) SubmitLabel(ctx context.Context, text string) (Step, error) {
	text = strings.TrimSpace(text)
	state := s.step.State
	if state != StateAwaitCorrection && state != StateAwaitLabel {
		return s.Step(), invalidTransition("label submitted", state)
	}
	if text == "" {
		return s.Step(), services.Wrap(services.ErrValidation, "pipeline", "submit label", "product name is required", nil)
	}
	ctx = s.stageContext(ctx, state)
	var err error
	if state == StateAwaitCorrection {
		err = s.learnAndFinish(ctx, text, ResolvedByCorrection)
	} else {
		err = s.suggestOrLearn(ctx, text)
	}
	return s.Step(), err
}

// Confirm answers the "did you mean" prompt. Accepting learns the suggested
// label; declining learns the text the user typed.
func (s *Session) Confirm(ctx context.Context, accept bool) (Step, error) {
	if s.step.State != StateAwaitConfirm {
		return s.Step(), invalidTransition("confirmation", s.step.State)
	}
	ctx = s.stageContext(ctx, StateAwaitConfirm)
	label, how := s.typed, ResolvedByManualLabel
	if accept {
		label, how = s.step.Suggestion, ResolvedBySuggestion
	}
	err := s.learnAndFinish(ctx, label, how)
	return s.Step(), err
}

// advance runs automatic states starting at from until a suspension point or
// the end.
func (s *Session) advance(ctx context.Context, from State) error {
	state := from
	for {
		s.step.State = state
		s.step.Prompt = ""
		stageCtx := s.stageContext(ctx, state)

		var (
			next State
			err  error
		)
		switch state {
		case StateBarcodeScan:
			next, err = s.runBarcodeScan(stageCtx)
		case StateCacheLookup:
			next, err = s.runCacheLookup(stageCtx)
		case StateDetection:
			next, err = s.runDetection(stageCtx)
		default:
			return fmt.Errorf("pipeline: no automatic handler for state %s", state)
		}
		if err != nil {
			return err
		}
		if next == StateDone || next.Waiting() {
			if next.Waiting() {
				s.suspend(next)
			}
			return nil
		}
		state = next
	}
}

func (s *Session) runBarcodeScan(ctx context.Context) (State, error) {
	afterScan := StateCacheLookup
	if s.p.opts.AllowManualBarcode {
		afterScan = StateAwaitBarcode
	}
	if s.p.deps.Barcodes == nil {
		return afterScan, nil
	}

	img, err := s.req.Photo.Image()
	if err != nil {
		s.warn(ctx, "image could not be decoded for barcode scanning", "barcode_image_decode_failed", err)
		return afterScan, nil
	}
	code, ok := s.p.deps.Barcodes.Resolve(ctx, img)
	if !ok {
		s.note("no barcode detected")
		return afterScan, nil
	}
	done, err := s.tryBarcode(ctx, code, ResolvedByBarcode)
	if err != nil || done {
		return StateDone, err
	}
	return afterScan, nil
}

// tryBarcode looks a code up remotely. It reports true when the session finished.
func (s *Session) tryBarcode(ctx context.Context, code string, how Resolution) (bool, error) {
	s.step.Barcode = code
	rec := s.p.deps.Source.GetInfoByBarcode(ctx, code)
	if rec.IsError() {
		s.warn(ctx, fmt.Sprintf("barcode %s: %s", code, rec.Reason()), "barcode_lookup_failed", nil)
		return false, nil
	}
	label := textutil.CanonicalLabel(textutil.FirstNonEmpty(rec.ProductName, code))
	if err := s.p.deps.Cache.Put(ctx, s.fp, label); err != nil {
		return false, err
	}
	s.finish(ctx, Outcome{Record: rec, Resolution: how, Label: label})
	return true, nil
}

func (s *Session) runCacheLookup(ctx context.Context) (State, error) {
	label, ok, err := s.p.deps.Cache.Lookup(ctx, s.fp)
	if err != nil {
		return StateDone, err
	}
	if !ok {
		return StateDetection, nil
	}
	s.step.CachedLabel = label
	rec, err := s.p.deps.Source.GetInfo(ctx, label)
	if err != nil {
		return StateDone, err
	}
	if rec.IsError() {
		s.warn(ctx, rec.Reason(), "cached_label_lookup_failed", nil)
	}
	s.finish(ctx, Outcome{Record: rec, Resolution: ResolvedFromCache, Label: label})
	return StateDone, nil
}

func (s *Session) runDetection(ctx context.Context) (State, error) {
	if s.p.deps.Detector == nil {
		s.note("no product detected from image")
		return StateAwaitLabel, nil
	}
	label, confidence, ok := s.p.deps.Detector.Detect(ctx, s.req.Photo.Bytes())
	if !ok {
		s.note("no product detected from image")
		return StateAwaitLabel, nil
	}
	s.step.DetectedLabel = label
	s.step.Confidence = confidence

	rec, err := s.p.deps.Source.GetInfo(ctx, label)
	if err != nil {
		return StateDone, err
	}
	if rec.IsError() {
		s.warn(ctx, fmt.Sprintf("nutrition info not found for %q: %s", label, rec.Reason()), "detected_label_lookup_failed", nil)
		return StateAwaitCorrection, nil
	}
	canonical := textutil.CanonicalLabel(textutil.FirstNonEmpty(rec.ProductName, label))
	if err := s.p.deps.Cache.Put(ctx, s.fp, canonical); err != nil {
		return StateDone, err
	}
	s.finish(ctx, Outcome{Record: rec, Resolution: ResolvedByDetection, Label: canonical})
	return StateDone, nil
}

func (s *Session) suggestOrLearn(ctx context.Context, text string) error {
	labels, err := s.p.deps.Cache.Labels(ctx)
	if err != nil {
		return err
	}
	match, ok := fuzzy.Closest(textutil.CanonicalLabel(text), labels, fuzzy.SuggestionCutoff)
	if !ok {
		return s.learnAndFinish(ctx, text, ResolvedByManualLabel)
	}
	logging.WithContext(ctx, s.logger).Info("suggesting cached label",
		logging.String("input", text),
		logging.String("suggestion", match.Value),
		logging.Float64("score", match.Score),
	)
	s.typed = text
	s.step.Suggestion = match.Value
	s.step.State = StateAwaitConfirm
	s.step.Prompt = fmt.Sprintf("Did you mean %q?", match.Value)
	return nil
}

func (s *Session) learnAndFinish(ctx context.Context, label string, how Resolution) error {
	res, err := s.p.learnAndFetch(ctx, s.req.Photo, label)
	if err != nil {
		return err
	}
	cacheLabel := textutil.CanonicalLabel(label)
	if how != ResolvedBySuggestion && !res.Record.IsError() {
		cacheLabel = textutil.CanonicalLabel(textutil.FirstNonEmpty(res.Record.ProductName, label))
		if cacheLabel != textutil.CanonicalLabel(label) {
			if err := s.p.deps.Cache.Put(ctx, s.fp, cacheLabel); err != nil {
				return err
			}
		}
	}
	if res.Record.IsError() {
		s.warn(ctx, res.Record.Reason(), "learned_label_lookup_failed", nil)
	}
	s.finish(ctx, Outcome{Record: res.Record, Resolution: how, Label: cacheLabel, ImagePath: res.ImagePath})
	return nil
}

func (s *Session) suspend(state State) {
	s.step.State = state
	switch state {
	case StateAwaitBarcode:
		s.step.Prompt = promptBarcode
	case StateAwaitCorrection:
		s.step.Prompt = promptCorrection
	case StateAwaitLabel:
		s.step.Prompt = promptLabel
	}
}

func (s *Session) finish(ctx context.Context, outcome Outcome) {
	s.step.State = StateDone
	s.step.Prompt = ""
	s.step.Outcome = &outcome
	logging.WithContext(ctx, s.logger).Info("resolution finished",
		logging.String(logging.FieldEventType, "resolution_finished"),
		logging.String("resolution", string(outcome.Resolution)),
		logging.String("label", outcome.Label),
		logging.Bool("has_nutrition", !outcome.Record.IsError()),
	)
}

func (s *Session) note(message string) {
	s.step.Warnings = append(s.step.Warnings, message)
}

func (s *Session) warn(ctx context.Context, message, eventType string, err error) {
	s.note(message)
	attrs := []logging.Attr{logging.String("detail", message)}
	if err != nil {
		attrs = append(attrs, logging.Error(err))
	}
	logging.WarnWithContext(logging.WithContext(ctx, s.logger), "resolution strategy failed", eventType, attrs...)
}

func (s *Session) stageContext(ctx context.Context, state State) context.Context {
	ctx = services.WithFingerprint(ctx, s.fp)
	return services.WithStage(ctx, string(state))
}
