package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/hitwire/internal/engine"
)

// Domain prefixes for content-addressed identity. The version suffix
// leaves room for an algorithm migration without colliding hashes.
const (
	DomainFiring  = "hitwire/firing/v1"
	DomainRuleSet = "hitwire/ruleset/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The null
// separator fixes the domain/data boundary.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// FiringID computes the content-addressed ID for one firing within a
// session. The ID is stable across restarts and replays of the same
// session inputs.
//
// The measured distance and angle are intentionally excluded: the ID
// names what logically happened (which rule, which pair, when), and
// logical identity must not depend on float bit patterns. The
// measurements are still stored on the row for inspection.
func FiringID(sessionToken string, f engine.Firing) (string, error) {
	obj := map[string]any{
		"session":   sessionToken,
		"seq":       f.Seq,
		"rule":      f.Rule,
		"source_id": f.SourceID,
		"target_id": f.TargetID,
		"action":    f.Action,
		"cause":     f.Cause,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("firing id: %w", err)
	}
	return hashWithDomain(DomainFiring, canonical), nil
}

// MustFiringID is FiringID for inputs known to be valid; it panics on
// error. Test helper.
func MustFiringID(sessionToken string, f engine.Firing) string {
	id, err := FiringID(sessionToken, f)
	if err != nil {
		panic(err)
	}
	return id
}

// RuleSetHash fingerprints raw rule source bytes so a session records
// which rules produced it. Byte-level, not structural: rule documents
// carry float literals, which canonical JSON rejects.
func RuleSetHash(source []byte) string {
	return hashWithDomain(DomainRuleSet, source)
}
