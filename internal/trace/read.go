package trace

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// Record is one stored firing row.
type Record struct {
	ID       string
	Session  string
	Seq      int64
	Rule     string
	SourceID string
	TargetID string
	Action   string
	Trigger  string
	Distance float64
	Angle    float64
	Cause    string
	Modifier map[string]any
}

// Session describes one recorded session.
type Session struct {
	Token     string
	Level     string
	RuleSet   string
	StartedAt string
}

// Filter narrows a session read. Zero-valued members impose no
// constraint.
type Filter struct {
	Rule     string
	Action   string
	SourceID string
	TargetID string
	Cause    string
	MinSeq   int64
	MaxSeq   int64 // exclusive; 0 means unbounded
}

const recordColumns = `id, session_token, seq, rule, source_id, target_id, action, trigger_mode, distance, angle, cause, modifier`

// ReadSession returns every firing of a session in dispatch order.
// Ordering is seq ASC with the binary-collated ID as tiebreaker, so two
// reads of the same log always agree. Returns an empty slice, not nil,
// for an unknown or empty session.
func (s *Store) ReadSession(ctx context.Context, token string) ([]Record, error) {
	return s.QueryFirings(ctx, token, Filter{})
}

// QueryFirings returns a session's firings matching the filter, in
// dispatch order. Every predicate is parameterized; values are never
// interpolated into the SQL text.
func (s *Store) QueryFirings(ctx context.Context, token string, f Filter) ([]Record, error) {
	where := []string{"session_token = ?"}
	args := []any{token}

	add := func(clause string, v any) {
		where = append(where, clause)
		args = append(args, v)
	}
	if f.Rule != "" {
		add("rule = ?", f.Rule)
	}
	if f.Action != "" {
		add("action = ?", f.Action)
	}
	if f.SourceID != "" {
		add("source_id = ?", f.SourceID)
	}
	if f.TargetID != "" {
		add("target_id = ?", f.TargetID)
	}
	if f.Cause != "" {
		add("cause = ?", f.Cause)
	}
	if f.MinSeq > 0 {
		add("seq >= ?", f.MinSeq)
	}
	if f.MaxSeq > 0 {
		add("seq < ?", f.MaxSeq)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM firings
		WHERE %s
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, recordColumns, strings.Join(where, " AND "))

	rows, err := s.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query firings: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate firings: %w", err)
	}
	return records, nil
}

// ReadFiring retrieves one firing by its content-addressed ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadFiring(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM firings WHERE id = ?
	`, recordColumns), id)

	var rec Record
	var modifier string
	if err := row.Scan(
		&rec.ID, &rec.Session, &rec.Seq, &rec.Rule, &rec.SourceID, &rec.TargetID,
		&rec.Action, &rec.Trigger, &rec.Distance, &rec.Angle, &rec.Cause, &modifier,
	); err != nil {
		return Record{}, err
	}
	if err := unmarshalModifier(modifier, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ReadSessionInfo retrieves one session row by its token.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSessionInfo(ctx context.Context, token string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token, level, ruleset, started_at FROM sessions WHERE token = ?
	`, token)

	var sess Session
	if err := row.Scan(&sess.Token, &sess.Level, &sess.RuleSet, &sess.StartedAt); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// ListSessions returns every recorded session. UUIDv7 tokens sort by
// creation time, so token order is play order.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, level, ruleset, started_at FROM sessions
		ORDER BY token
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.Token, &sess.Level, &sess.RuleSet, &sess.StartedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// CountFirings returns the number of firings in a session.
func (s *Store) CountFirings(ctx context.Context, token string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM firings WHERE session_token = ?
	`, token).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count firings: %w", err)
	}
	return n, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var rec Record
	var modifier string
	if err := rows.Scan(
		&rec.ID, &rec.Session, &rec.Seq, &rec.Rule, &rec.SourceID, &rec.TargetID,
		&rec.Action, &rec.Trigger, &rec.Distance, &rec.Angle, &rec.Cause, &modifier,
	); err != nil {
		return Record{}, fmt.Errorf("scan firing: %w", err)
	}
	if err := unmarshalModifier(modifier, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func unmarshalModifier(raw string, rec *Record) error {
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), &rec.Modifier); err != nil {
		return fmt.Errorf("unmarshal modifier for %s: %w", rec.ID, err)
	}
	return nil
}
