package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRules = `
ball:
  brick:
    when:
      distance: 0
    action: bounce
  pointer:
    when:
      b.active: true
    action: grab
monotonic:
  pointer: [active]
`

func writeRuleFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestValidateValidRules(t *testing.T) {
	tmpDir := t.TempDir()
	writeRuleFile(t, tmpDir, "ball.yaml", validRules)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "✓ All rules valid")
	assert.Contains(t, output, "2 rule(s)")
}

func TestValidateValidRulesJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeRuleFile(t, tmpDir, "ball.yaml", validRules)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 1, resp.Data.Files)
	assert.Equal(t, 1, resp.Data.Types)
	assert.Equal(t, 2, resp.Data.Rules)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/directory/path"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "no rule files found")
}

func TestValidateUnknownField(t *testing.T) {
	tmpDir := t.TempDir()
	writeRuleFile(t, tmpDir, "bad.yaml", `
ball:
  brick:
    triger: enter
    action: bounce
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed")

	output := buf.String()
	assert.Contains(t, output, "✗ Validation failed")
	assert.Contains(t, output, ErrCodeBadSchema)
	assert.Contains(t, output, "bad.yaml")
}

func TestValidateBadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	writeRuleFile(t, tmpDir, "broken.yaml", ":\n  - ]\n")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), ErrCodeBadYAML)
}

func TestValidateBadMonotonic(t *testing.T) {
	tmpDir := t.TempDir()
	writeRuleFile(t, tmpDir, "mono.yaml", `
ball:
  brick:
    action: bounce
monotonic:
  pointer: 42
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "monotonic")
}

func TestValidateCollectsAcrossFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeRuleFile(t, tmpDir, "a.yaml", "ball:\n  brick:\n    triger: enter\n")
	writeRuleFile(t, tmpDir, "b.yaml", "paddle:\n  ball:\n    trigger: sideways\n")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewValidateCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 error(s)")
}
