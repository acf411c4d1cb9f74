package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"nutriscan/internal/photo"
	"nutriscan/internal/pipeline"
	"nutriscan/internal/services"
)

type identifyOptions struct {
	noBarcode        bool
	barcode          string
	label            string
	acceptSuggestion bool
	rejectSuggestion bool
	nonInteractive   bool
}

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var opts identifyOptions

	cmd := &cobra.Command{
		Use:   "identify <image>",
		Short: "Resolve a product photo to a nutrition record",
		Long: `Resolve a product photo to a nutrition record.

Strategies run in order: barcode scan, result cache, product detection, and
finally a typed product name matched against previously learned labels.
When a strategy needs input the command prompts on a terminal; the flags
below answer those prompts up front for scripted use.

Examples:
  nutriscan identify noodles.jpg
  nutriscan identify --no-barcode --label "maggi 2-minute noodles" noodles.jpg
  nutriscan identify --barcode 5901234123457 --non-interactive can.png
  nutriscan --json identify --label sting --accept-suggestion drink.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ph, err := photo.Load(args[0])
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			runCtx = services.WithRequestID(runCtx, uuid.NewString())

			env, err := ctx.openEnv(runCtx)
			if err != nil {
				return err
			}
			defer env.Close()

			if opts.barcode != "" && (!env.cfg.Barcode.Enabled || !env.cfg.Barcode.AllowManualEntry) {
				return services.Wrap(services.ErrValidation, "identify", "barcode flag",
					"--barcode needs barcode.enabled and barcode.allow_manual_entry", nil)
			}

			pipe, err := env.pipeline(runCtx)
			if err != nil {
				return err
			}

			d := &driver{
				opts:        opts,
				interactive: !opts.nonInteractive && isTerminal(cmd.InOrStdin()),
				in:          bufio.NewReader(cmd.InOrStdin()),
				prompts:     cmd.ErrOrStderr(),
			}
			if !ctx.jsonOutput() {
				d.progress = cmd.OutOrStdout()
			}

			session, step, err := pipe.Begin(runCtx, pipeline.Request{
				Photo:       ph,
				ScanBarcode: env.cfg.Barcode.Enabled && !opts.noBarcode,
			})
			if err != nil {
				return err
			}
			step, err = d.run(runCtx, session, step)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, step)
			}
			d.report(step)
			renderOutcome(cmd.OutOrStdout(), step)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.noBarcode, "no-barcode", false, "Skip barcode scanning")
	cmd.Flags().StringVar(&opts.barcode, "barcode", "", "Barcode to use if scanning finds none (needs barcode.enabled and barcode.allow_manual_entry)")
	cmd.Flags().StringVar(&opts.label, "label", "", "Product name to use if detection cannot resolve the photo")
	cmd.Flags().BoolVar(&opts.acceptSuggestion, "accept-suggestion", false, "Accept a suggested label without prompting")
	cmd.Flags().BoolVar(&opts.rejectSuggestion, "reject-suggestion", false, "Reject a suggested label without prompting")
	cmd.Flags().BoolVar(&opts.nonInteractive, "non-interactive", false, "Never prompt; fail when input is needed and no flag supplies it")
	cmd.MarkFlagsMutuallyExclusive("accept-suggestion", "reject-suggestion")
	cmd.MarkFlagsMutuallyExclusive("barcode", "no-barcode")

	return cmd
}

// errInputRequired is returned when a session needs input that neither a
// flag nor a terminal can provide.
var errInputRequired = errors.New("input required")

// driver answers session prompts from flags first and the terminal second.
type driver struct {
	opts        identifyOptions
	interactive bool
	in          *bufio.Reader
	prompts     io.Writer

	// progress receives detection and warning lines as they happen; nil
	// suppresses them.
	progress io.Writer
	warned   int
	shown    bool
}

func (d *driver) run(ctx context.Context, session *pipeline.Session, step pipeline.Step) (pipeline.Step, error) {
	var err error
	for !step.Done() {
		d.report(step)
		switch step.State {
		case pipeline.StateAwaitBarcode:
			code := d.opts.barcode
			d.opts.barcode = ""
			if code == "" && d.interactive {
				if code, err = d.ask(step.Prompt + ": "); err != nil {
					return step, err
				}
			}
			step, err = session.SubmitBarcode(ctx, code)
		case pipeline.StateAwaitCorrection, pipeline.StateAwaitLabel:
			label := d.opts.label
			d.opts.label = ""
			if label == "" && d.interactive {
				if label, err = d.ask(step.Prompt + ": "); err != nil {
					return step, err
				}
			}
			if strings.TrimSpace(label) == "" {
				return step, services.Wrap(services.ErrValidation, "identify", string(step.State),
					"product name needed; pass --label or run on a terminal", errInputRequired)
			}
			step, err = session.SubmitLabel(ctx, label)
		case pipeline.StateAwaitConfirm:
			accept, cerr := d.confirm(step)
			if cerr != nil {
				return step, cerr
			}
			step, err = session.Confirm(ctx, accept)
		default:
			return step, fmt.Errorf("identify: session stopped in state %s", step.State)
		}
		if err != nil {
			return step, err
		}
	}
	return step, nil
}

func (d *driver) confirm(step pipeline.Step) (bool, error) {
	switch {
	case d.opts.acceptSuggestion:
		return true, nil
	case d.opts.rejectSuggestion:
		return false, nil
	case !d.interactive:
		return false, services.Wrap(services.ErrValidation, "identify", string(step.State),
			fmt.Sprintf("suggested %q; pass --accept-suggestion or --reject-suggestion", step.Suggestion), errInputRequired)
	}
	answer, err := d.ask(step.Prompt + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// ask prints prompt and reads one trimmed line. End of input reads as an
// empty answer.
func (d *driver) ask(prompt string) (string, error) {
	fmt.Fprint(d.prompts, prompt)
	line, err := d.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// report prints what the session learned since the last call.
func (d *driver) report(step pipeline.Step) {
	if d.progress == nil {
		return
	}
	if !d.shown && step.DetectedLabel != "" {
		fmt.Fprintf(d.progress, "Detected: %s (%.0f%%)\n", step.DetectedLabel, step.Confidence*100)
		d.shown = true
	}
	for ; d.warned < len(step.Warnings); d.warned++ {
		fmt.Fprintf(d.progress, "Warning: %s\n", step.Warnings[d.warned])
	}
}
