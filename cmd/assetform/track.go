package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-assetform/pkg/form"
	"github.com/goliatone/go-assetform/pkg/orchestrator"
	"github.com/goliatone/go-assetform/pkg/payload"
	"github.com/goliatone/go-assetform/pkg/render"
	"github.com/goliatone/go-assetform/pkg/renderers/tui"
	"github.com/goliatone/go-assetform/pkg/transaction"
)

func newTrackCommand(c *cli) *cobra.Command {
	var (
		fromFile string
		dryRun   bool
	)
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Fill in the asset form in the terminal and submit it",
		Long: "Prompts for every asset field and the reporters to authorise, then sends " +
			"the record and proposals to the ledger as one batch. With --from the " +
			"answers are read from a JSON snapshot instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return c.track(ctx, cmd.OutOrStdout(), fromFile, dryRun)
		},
	}
	cmd.Flags().StringVar(&fromFile, "from", "", "read field values from a JSON snapshot file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the payloads instead of submitting them")
	return cmd
}

func (c *cli) track(ctx context.Context, out io.Writer, fromFile string, dryRun bool) error {
	o, err := c.orchestrator(orchestrator.WithPromptDriver(tui.NewSurveyDriver(os.Stderr)))
	if err != nil {
		return err
	}
	state, err := o.NewState(ctx)
	if err != nil {
		return err
	}

	if fromFile != "" {
		snap, err := readSnapshot(fromFile)
		if err != nil {
			return err
		}
		state.Restore(snap)
	}

	interactive := fromFile == ""
	var errs map[string][]string
	for {
		if interactive {
			if err := o.Fill(ctx, state, errs); err != nil {
				if errors.Is(err, tui.ErrAborted) {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
				return err
			}
		}

		if dryRun {
			return printPayloads(out, state)
		}

		route, err := o.Track(ctx, state)
		if err == nil {
			fmt.Fprintf(out, "Asset submitted: %s\n", route)
			return nil
		}
		if !interactive {
			return err
		}
		errs = feedback(o.Layout(), err)
		if errs == nil {
			return err
		}
		c.logger.Warn("submission failed, re-prompting", "error", err)
	}
}

// feedback turns a build or ledger failure into per-field messages for the
// next prompt round. It returns nil for errors the user cannot fix.
func feedback(layout form.Layout, err error) map[string][]string {
	var fieldErr *payload.FieldError
	if errors.As(err, &fieldErr) {
		return map[string][]string{fieldErr.Field: {"Enter a valid number"}}
	}
	var rejection *transaction.RejectionError
	if errors.As(err, &rejection) {
		mapped := render.MapErrorPayload(layout, rejection.Errors)
		errs := mapped.Fields
		if errs == nil {
			errs = make(map[string][]string)
		}
		// Form-level messages are shown before the first prompt.
		messages := render.MergeFormErrors(mapped.Form, rejection.Message)
		if len(messages) > 0 {
			errs[form.FieldSerialNumber] = append(messages, errs[form.FieldSerialNumber]...)
		}
		return errs
	}
	return nil
}

func readSnapshot(path string) (form.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return form.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap form.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return form.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return snap, nil
}

func printPayloads(out io.Writer, state *form.State) error {
	record, proposals, err := payload.NewBuilder().Build(state)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"record": record, "proposals": proposals})
}
