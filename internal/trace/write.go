package trace

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/hitwire/internal/engine"
)

// BeginSession opens a new trace session and returns its token. UUIDv7
// tokens sort by creation time, so a directory of sessions lists in
// play order.
func (s *Store) BeginSession(ctx context.Context, level, rulesetHash string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("begin session: %w", err)
	}
	token := id.String()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, level, ruleset, started_at)
		VALUES (?, ?, ?, ?)
	`, token, level, rulesetHash, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("begin session: %w", err)
	}
	return token, nil
}

// WriteFiring appends one firing to a session. The row ID is the
// content-addressed FiringID; ON CONFLICT DO NOTHING makes the write
// idempotent, so re-recording a replayed session is a no-op rather
// than an error. Returns whether a new row was inserted.
func (s *Store) WriteFiring(ctx context.Context, sessionToken string, f engine.Firing) (bool, error) {
	id, err := FiringID(sessionToken, f)
	if err != nil {
		return false, fmt.Errorf("write firing: %w", err)
	}

	modifier := ""
	if f.Modifier != nil {
		raw, err := json.Marshal(f.Modifier)
		if err != nil {
			return false, fmt.Errorf("write firing: marshal modifier: %w", err)
		}
		modifier = string(raw)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO firings
		(id, session_token, seq, rule, source_id, target_id, action, trigger_mode, distance, angle, cause, modifier)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		sessionToken,
		f.Seq,
		f.Rule,
		f.SourceID,
		f.TargetID,
		f.Action,
		string(f.Trigger),
		f.Distance,
		f.Angle,
		f.Cause,
		modifier,
	)
	if err != nil {
		return false, fmt.Errorf("write firing: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write firing: rows affected: %w", err)
	}
	return affected > 0, nil
}
