package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/hitwire/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Rule     string
	Action   string
	Source   string
	Target   string
	Cause    string
	MinSeq   int64
	MaxSeq   int64
}

// SessionList is the trace command's payload when no session is named.
type SessionList struct {
	Sessions []SessionSummary `json:"sessions"`
}

// SessionSummary is one recorded session with its firing count.
type SessionSummary struct {
	Token     string `json:"token"`
	Level     string `json:"level"`
	RuleSet   string `json:"ruleset"`
	StartedAt string `json:"started_at"`
	Firings   int    `json:"firings"`
}

// SessionDump is the trace command's payload for a single session.
type SessionDump struct {
	Session string        `json:"session"`
	Firings []TraceFiring `json:"firings"`
}

// TraceFiring is one stored firing, flattened for display.
type TraceFiring struct {
	Seq      int64          `json:"seq"`
	ID       string         `json:"id"`
	Rule     string         `json:"rule"`
	SourceID string         `json:"source_id"`
	TargetID string         `json:"target_id"`
	Action   string         `json:"action"`
	Trigger  string         `json:"trigger"`
	Distance float64        `json:"distance"`
	Angle    float64        `json:"angle"`
	Cause    string         `json:"cause,omitempty"`
	Modifier map[string]any `json:"modifier,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded firing traces",
		Long: `Inspect the firing log in a trace database.

Without --session, lists every recorded session. With --session, dumps
that session's firings in dispatch order; the filter flags narrow the
dump to one rule, action, pair member, cause, or seq window.

Examples:
  hitwire trace --db ./traces.db
  hitwire trace --db ./traces.db --session 0190... --action bounce
  hitwire trace --db ./traces.db --session 0190... --min-seq 10 --max-seq 20 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trace database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session token to dump")
	cmd.Flags().StringVar(&opts.Rule, "rule", "", "filter to one rule id")
	cmd.Flags().StringVar(&opts.Action, "action", "", "filter to one action")
	cmd.Flags().StringVar(&opts.Source, "source", "", "filter to one source object id")
	cmd.Flags().StringVar(&opts.Target, "target", "", "filter to one target object id")
	cmd.Flags().StringVar(&opts.Cause, "cause", "", "filter to one lifecycle cause")
	cmd.Flags().Int64Var(&opts.MinSeq, "min-seq", 0, "lowest seq to include")
	cmd.Flags().Int64Var(&opts.MaxSeq, "max-seq", 0, "seq upper bound, exclusive (0 = unbounded)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
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

	store, err := trace.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeBadDB, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open trace database", err)
	}
	defer store.Close()

	if opts.Session == "" {
		return listSessions(ctx, store, formatter)
	}
	return dumpSession(ctx, store, opts, formatter)
}

func listSessions(ctx context.Context, store *trace.Store, formatter *OutputFormatter) error {
	sessions, err := store.ListSessions(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeBadDB, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	list := SessionList{Sessions: make([]SessionSummary, 0, len(sessions))}
	for _, s := range sessions {
		count, err := store.CountFirings(ctx, s.Token)
		if err != nil {
			_ = formatter.Error(ErrCodeBadDB, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to count firings", err)
		}
		list.Sessions = append(list.Sessions, SessionSummary{
			Token:     s.Token,
			Level:     s.Level,
			RuleSet:   s.RuleSet,
			StartedAt: s.StartedAt,
			Firings:   count,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(list)
	}

	if len(list.Sessions) == 0 {
		fmt.Fprintln(formatter.Writer, "No sessions recorded.")
		return nil
	}
	for _, s := range list.Sessions {
		fmt.Fprintf(formatter.Writer, "%s  %-20s  %4d firing(s)  %s\n", s.Token, s.Level, s.Firings, s.StartedAt)
	}
	return nil
}

func dumpSession(ctx context.Context, store *trace.Store, opts *TraceOptions, formatter *OutputFormatter) error {
	records, err := store.QueryFirings(ctx, opts.Session, trace.Filter{
		Rule:     opts.Rule,
		Action:   opts.Action,
		SourceID: opts.Source,
		TargetID: opts.Target,
		Cause:    opts.Cause,
		MinSeq:   opts.MinSeq,
		MaxSeq:   opts.MaxSeq,
	})
	if err != nil {
		_ = formatter.Error(ErrCodeBadDB, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	dump := SessionDump{Session: opts.Session, Firings: make([]TraceFiring, 0, len(records))}
	for _, r := range records {
		dump.Firings = append(dump.Firings, TraceFiring{
			Seq:      r.Seq,
			ID:       r.ID,
			Rule:     r.Rule,
			SourceID: r.SourceID,
			TargetID: r.TargetID,
			Action:   r.Action,
			Trigger:  r.Trigger,
			Distance: r.Distance,
			Angle:    r.Angle,
			Cause:    r.Cause,
			Modifier: r.Modifier,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(dump)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Session: %s\n", dump.Session)
	if len(dump.Firings) == 0 {
		fmt.Fprintln(w, "  (no firings)")
		return nil
	}
	for _, f := range dump.Firings {
		line := fmt.Sprintf("  [%d] %s %s -> %s (%s, %s", f.Seq, f.Action, f.SourceID, f.TargetID, f.Rule, f.Trigger)
		if f.Cause != "" {
			line += ", cause=" + f.Cause
		}
		line += ")"
		fmt.Fprintln(w, line)
		if formatter.Verbose {
			fmt.Fprintf(w, "       id=%s distance=%s angle=%s\n",
				truncateID(f.ID),
				strconv.FormatFloat(f.Distance, 'g', 9, 64),
				strconv.FormatFloat(f.Angle, 'g', 9, 64))
		}
	}
	fmt.Fprintf(w, "Total: %d firing(s)\n", len(dump.Firings))
	return nil
}

// truncateID shortens a content-addressed id for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
