package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/hitwire/internal/harness"
	"github.com/roach88/hitwire/internal/trace"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string
}

// ReplayReport is the replay command's result payload.
type ReplayReport struct {
	Scenario      string   `json:"scenario"`
	Session       string   `json:"session"`
	Recorded      int      `json:"recorded"`
	Replayed      int      `json:"replayed"`
	Deterministic bool     `json:"deterministic"`
	Divergences   []string `json:"divergences,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>",
		Short: "Re-run a scenario and verify it against a recorded session",
		Long: `Re-run a scenario and compare its firings against a recorded
session, position by position.

Each comparison goes through the content-addressed firing id, so a
divergence means the replay produced a different rule, pair, action, or
cause at that point in the dispatch order. Measurement drift alone
cannot cause a divergence.

Examples:
  hitwire replay demo/bounce.yaml --db ./traces.db --session 0190...`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trace database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session token to verify against (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		_ = formatter.Error(ErrCodeBadScript, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	store, err := trace.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeBadDB, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open trace database", err)
	}
	defer store.Close()

	session, err := store.ReadSessionInfo(ctx, opts.Session)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			msg := fmt.Sprintf("session not found: %s", opts.Session)
			_ = formatter.Error(ErrCodeNoSession, msg, nil)
			return NewExitError(ExitCommandError, msg)
		}
		_ = formatter.Error(ErrCodeBadDB, err.Error(), nil)
		return WrapExitError(ExitCommandError, "session lookup failed", err)
	}

	// A hash mismatch means the script changed since the recording; the
	// verdict is still computed, it just is not comparing like with like.
	if source, readErr := os.ReadFile(path); readErr == nil {
		if hash := trace.RuleSetHash(source); hash != session.RuleSet {
			slog.Warn("scenario source differs from the recorded session", "session", session.Token)
		}
	}

	result, err := harness.Run(scenario)
	if err != nil {
		_ = formatter.Error(ErrCodeBadScript, err.Error(), nil)
		return WrapExitError(ExitCommandError, "scenario run failed", err)
	}

	recorded, err := store.CountFirings(ctx, session.Token)
	if err != nil {
		_ = formatter.Error(ErrCodeBadDB, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to count firings", err)
	}

	divergences, err := store.Verify(ctx, session.Token, result.Firings)
	if err != nil {
		_ = formatter.Error(ErrCodeBadDB, err.Error(), nil)
		return WrapExitError(ExitCommandError, "verification failed", err)
	}

	report := ReplayReport{
		Scenario:      scenario.Name,
		Session:       session.Token,
		Recorded:      recorded,
		Replayed:      len(result.Firings),
		Deterministic: len(divergences) == 0,
	}
	for _, d := range divergences {
		report.Divergences = append(report.Divergences, d.String())
	}

	if err := outputReplayReport(formatter, report); err != nil {
		return err
	}
	if !report.Deterministic {
		return NewExitError(ExitFailure, fmt.Sprintf("replay diverged at %d position(s)", len(report.Divergences)))
	}
	return nil
}

func outputReplayReport(formatter *OutputFormatter, report ReplayReport) error {
	if formatter.Format == "json" {
		if report.Deterministic {
			return formatter.Success(report)
		}
		return formatter.Error(ErrCodeGeneric, "replay diverged from recording", report)
	}

	w := formatter.Writer
	if report.Deterministic {
		fmt.Fprintf(w, "✓ %s replayed deterministically (%d firing(s))\n", report.Scenario, report.Replayed)
		return nil
	}
	fmt.Fprintf(w, "✗ %s diverged from session %s\n", report.Scenario, report.Session)
	fmt.Fprintf(w, "  recorded=%d replayed=%d\n", report.Recorded, report.Replayed)
	for _, d := range report.Divergences {
		fmt.Fprintf(w, "  %s\n", d)
	}
	return nil
}
