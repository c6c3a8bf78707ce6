package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/hitwire/internal/harness"
	"github.com/roach88/hitwire/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
}

// RunReport is the run command's result payload.
type RunReport struct {
	Scenario string   `json:"scenario"`
	Pass     bool     `json:"pass"`
	Firings  int      `json:"firings"`
	Errors   []string `json:"errors,omitempty"`
	Lives    int      `json:"lives"`
	Score    int      `json:"score"`
	State    string   `json:"state"`
	Session  string   `json:"session,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scripted scenario",
		Long: `Run a scenario script against a fresh engine and evaluate its
expectations.

The scenario carries its rules inline, so a run is fully
self-contained. With --db, every firing is also written to a trace
database under a new session token, content-addressed so a re-run of
the same session is idempotent.

Examples:
  hitwire run demo/bounce.yaml
  hitwire run demo/bounce.yaml --db ./traces.db --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record firings to this SQLite trace database")

	return cmd
}

func runScenario(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		_ = formatter.Error(ErrCodeBadScript, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	formatter.VerboseLog("Running scenario %q (%d frame(s))", scenario.Name, len(scenario.Frames))

	result, err := harness.Run(scenario)
	if err != nil {
		_ = formatter.Error(ErrCodeBadScript, err.Error(), nil)
		return WrapExitError(ExitCommandError, "scenario run failed", err)
	}

	report := RunReport{
		Scenario: scenario.Name,
		Pass:     result.Pass,
		Firings:  len(result.Firings),
		Errors:   result.Errors,
		Lives:    result.Game.Lives,
		Score:    result.Game.Score,
		State:    string(result.Game.State),
	}

	if opts.Database != "" {
		token, err := recordTrace(cmd.Context(), opts.Database, path, scenario.Name, result)
		if err != nil {
			_ = formatter.Error(ErrCodeBadDB, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to record trace", err)
		}
		report.Session = token
		slog.Info("trace recorded", "db", opts.Database, "session", token, "firings", report.Firings)
	}

	if err := outputRunReport(formatter, report); err != nil {
		return err
	}
	if !report.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario failed with %d unmet expectation(s)", len(report.Errors)))
	}
	return nil
}

// recordTrace writes the run's firings to the trace database under a
// new session. The session's ruleset hash covers the scenario source
// bytes, rules included, so a later replay can tell whether it is
// verifying against the same script.
func recordTrace(ctx context.Context, dbPath, scenarioPath, name string, result *harness.Result) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	source, err := os.ReadFile(scenarioPath)
	if err != nil {
		return "", err
	}

	store, err := trace.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer store.Close()

	token, err := store.BeginSession(ctx, name, trace.RuleSetHash(source))
	if err != nil {
		return "", err
	}
	for _, f := range result.Firings {
		if _, err := store.WriteFiring(ctx, token, f); err != nil {
			return "", fmt.Errorf("firing seq %d: %w", f.Seq, err)
		}
	}
	return token, nil
}

func outputRunReport(formatter *OutputFormatter, report RunReport) error {
	if formatter.Format == "json" {
		if report.Pass {
			return formatter.Success(report)
		}
		return formatter.Error(ErrCodeGeneric, "scenario expectations failed", report)
	}

	w := formatter.Writer
	if report.Pass {
		fmt.Fprintf(w, "✓ %s passed (%d firing(s))\n", report.Scenario, report.Firings)
	} else {
		fmt.Fprintf(w, "✗ %s failed\n", report.Scenario)
		for _, msg := range report.Errors {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}
	fmt.Fprintf(w, "  game: lives=%d score=%d state=%s\n", report.Lives, report.Score, report.State)
	if report.Session != "" {
		fmt.Fprintf(w, "  session: %s\n", report.Session)
	}
	return nil
}
