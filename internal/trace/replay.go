package trace

import (
	"context"
	"fmt"

	"github.com/roach88/hitwire/internal/engine"
)

// Recorder streams engine firings into a session. It implements
// engine.FiringObserver; attach it with engine.WithObserver or
// AddObserver before the first Evaluate.
//
// The observer interface cannot return errors, so the recorder latches
// the first write failure; check Err after the run. Later writes are
// skipped once a write has failed - a trace with a hole in it is worse
// than no trace.
type Recorder struct {
	store   *Store
	session string
	err     error
}

// NewRecorder opens a session on the store and returns a recorder
// feeding it.
func NewRecorder(ctx context.Context, store *Store, level, rulesetHash string) (*Recorder, error) {
	token, err := store.BeginSession(ctx, level, rulesetHash)
	if err != nil {
		return nil, err
	}
	return &Recorder{store: store, session: token}, nil
}

// Session returns the recorder's session token.
func (r *Recorder) Session() string {
	return r.session
}

// ObserveFiring implements engine.FiringObserver.
func (r *Recorder) ObserveFiring(f engine.Firing) {
	if r.err != nil {
		return
	}
	if _, err := r.store.WriteFiring(context.Background(), r.session, f); err != nil {
		r.err = err
	}
}

// Err returns the first write failure, if any.
func (r *Recorder) Err() error {
	return r.err
}

// Divergence is one mismatch between a recorded session and a replay.
type Divergence struct {
	Seq      int64
	Recorded string // empty when the replay produced an extra firing
	Replayed string // empty when the replay missed a recorded firing
}

func (d Divergence) String() string {
	switch {
	case d.Recorded == "":
		return fmt.Sprintf("seq %d: extra firing %s", d.Seq, d.Replayed)
	case d.Replayed == "":
		return fmt.Sprintf("seq %d: missing firing %s", d.Seq, d.Recorded)
	default:
		return fmt.Sprintf("seq %d: recorded %s, replayed %s", d.Seq, d.Recorded, d.Replayed)
	}
}

// Verify compares a recorded session against the firings a replay
// produced. Identity comparison is by content-addressed ID, so the
// float measurements cannot cause spurious divergences. An empty result
// means the replay was faithful.
func (s *Store) Verify(ctx context.Context, token string, replayed []engine.Firing) ([]Divergence, error) {
	recorded, err := s.ReadSession(ctx, token)
	if err != nil {
		return nil, err
	}

	var divergences []Divergence
	n := len(recorded)
	if len(replayed) > n {
		n = len(replayed)
	}
	for i := 0; i < n; i++ {
		var rec, rep string
		var seq int64
		if i < len(recorded) {
			rec = recorded[i].ID
			seq = recorded[i].Seq
		}
		if i < len(replayed) {
			id, err := FiringID(token, replayed[i])
			if err != nil {
				return nil, err
			}
			rep = id
			if seq == 0 {
				seq = replayed[i].Seq
			}
		}
		if rec != rep {
			divergences = append(divergences, Divergence{Seq: seq, Recorded: rec, Replayed: rep})
		}
	}
	return divergences, nil
}
