package trace

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hitwire/internal/engine"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestSession(t *testing.T, s *Store) string {
	t.Helper()
	token, err := s.BeginSession(context.Background(), "level-1", "abc123")
	require.NoError(t, err)
	return token
}

func recordedFiring(seq int64, rule, src, tgt, action string) engine.Firing {
	f := engine.Firing{Seq: seq, Rule: rule, SourceID: src, TargetID: tgt}
	f.Action = action
	f.Trigger = "enter"
	return f
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	var mode string
	require.NoError(t, s2.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestWriteFiring_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	token := createTestSession(t, s)

	f := recordedFiring(1, "ball/brick#0", "ball-1", "brick-3", "bounce")
	f.Distance = 0
	f.Angle = 90
	f.Modifier = map[string]any{"strength": 2}

	inserted, err := s.WriteFiring(ctx, token, f)
	require.NoError(t, err)
	assert.True(t, inserted)

	records, err := s.ReadSession(ctx, token)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, MustFiringID(token, f), rec.ID)
	assert.Equal(t, "ball/brick#0", rec.Rule)
	assert.Equal(t, "ball-1", rec.SourceID)
	assert.Equal(t, "bounce", rec.Action)
	assert.Equal(t, "enter", rec.Trigger)
	assert.InDelta(t, 90, rec.Angle, 1e-9)
	assert.Equal(t, map[string]any{"strength": float64(2)}, rec.Modifier)
}

func TestWriteFiring_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	token := createTestSession(t, s)

	f := recordedFiring(1, "ball/brick#0", "a", "b", "bounce")

	inserted, err := s.WriteFiring(ctx, token, f)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.WriteFiring(ctx, token, f)
	require.NoError(t, err)
	assert.False(t, inserted, "duplicate write is a silent no-op")

	n, err := s.CountFirings(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReadSession_OrderAndEmpty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	token := createTestSession(t, s)

	// Write out of order; reads come back in seq order.
	for _, seq := range []int64{3, 1, 2} {
		_, err := s.WriteFiring(ctx, token, recordedFiring(seq, "r#0", "a", "b", "x"))
		require.NoError(t, err)
	}

	records, err := s.ReadSession(ctx, token)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, int64(1), records[0].Seq)
	assert.Equal(t, int64(3), records[2].Seq)

	empty, err := s.ReadSession(ctx, "no-such-session")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestQueryFirings_Filters(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	token := createTestSession(t, s)

	_, err := s.WriteFiring(ctx, token, recordedFiring(1, "ball/brick#0", "ball-1", "brick-1", "bounce"))
	require.NoError(t, err)
	_, err = s.WriteFiring(ctx, token, recordedFiring(2, "ball/pointer#0", "ball-1", "pointer", "hit"))
	require.NoError(t, err)
	_, err = s.WriteFiring(ctx, token, recordedFiring(3, "ball/brick#0", "ball-2", "brick-1", "bounce"))
	require.NoError(t, err)

	byRule, err := s.QueryFirings(ctx, token, Filter{Rule: "ball/brick#0"})
	require.NoError(t, err)
	assert.Len(t, byRule, 2)

	bySource, err := s.QueryFirings(ctx, token, Filter{SourceID: "ball-1", Action: "hit"})
	require.NoError(t, err)
	require.Len(t, bySource, 1)
	assert.Equal(t, int64(2), bySource[0].Seq)

	window, err := s.QueryFirings(ctx, token, Filter{MinSeq: 2, MaxSeq: 3})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, int64(2), window[0].Seq)
}

func TestReadFiring_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadFiring(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListSessions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := createTestSession(t, s)
	second := createTestSession(t, s)

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	// UUIDv7 tokens are time-ordered.
	assert.Equal(t, first, sessions[0].Token)
	assert.Equal(t, second, sessions[1].Token)
	assert.Equal(t, "level-1", sessions[0].Level)
	assert.Equal(t, "abc123", sessions[0].RuleSet)
}

func TestReadSessionInfo(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	token := createTestSession(t, s)

	sess, err := s.ReadSessionInfo(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, token, sess.Token)
	assert.Equal(t, "level-1", sess.Level)
	assert.Equal(t, "abc123", sess.RuleSet)
	assert.NotEmpty(t, sess.StartedAt)

	_, err = s.ReadSessionInfo(ctx, "no-such-token")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestQuery_AdHocRead(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	token := createTestSession(t, s)

	for seq := int64(1); seq <= 3; seq++ {
		action := "bounce"
		if seq == 3 {
			action = "hit"
		}
		_, err := s.WriteFiring(ctx, token, recordedFiring(seq, "ball/brick#0", "ball-1", "brick-1", action))
		require.NoError(t, err)
	}

	rows, err := s.Query(ctx, `
		SELECT action, COUNT(*) FROM firings
		WHERE session_token = ?
		GROUP BY action ORDER BY action
	`, token)
	require.NoError(t, err)
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var action string
		var n int
		require.NoError(t, rows.Scan(&action, &n))
		counts[action] = n
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, map[string]int{"bounce": 2, "hit": 1}, counts)
}

func TestRecorder_StreamsEngineFirings(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec, err := NewRecorder(ctx, s, "level-1", "abc123")
	require.NoError(t, err)

	rec.ObserveFiring(recordedFiring(1, "r#0", "a", "b", "x"))
	rec.ObserveFiring(recordedFiring(2, "r#0", "a", "b", "x"))
	require.NoError(t, rec.Err())

	n, err := s.CountFirings(ctx, rec.Session())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestVerify_ReportsDivergence(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	token := createTestSession(t, s)

	f1 := recordedFiring(1, "r#0", "a", "b", "x")
	f2 := recordedFiring(2, "r#0", "a", "c", "x")
	for _, f := range []engine.Firing{f1, f2} {
		_, err := s.WriteFiring(ctx, token, f)
		require.NoError(t, err)
	}

	// Faithful replay, including differently-rounded measurements.
	replayed := []engine.Firing{f1, f2}
	replayed[0].Distance = 1e-13
	divs, err := s.Verify(ctx, token, replayed)
	require.NoError(t, err)
	assert.Empty(t, divs)

	// A replay that swaps the target diverges at seq 2.
	bad := recordedFiring(2, "r#0", "a", "zzz", "x")
	divs, err = s.Verify(ctx, token, []engine.Firing{f1, bad})
	require.NoError(t, err)
	require.Len(t, divs, 1)
	assert.Equal(t, int64(2), divs[0].Seq)

	// A truncated replay reports the missing tail.
	divs, err = s.Verify(ctx, token, []engine.Firing{f1})
	require.NoError(t, err)
	require.Len(t, divs, 1)
	assert.Empty(t, divs[0].Replayed)
}
