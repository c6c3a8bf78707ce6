package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func decodeDoc(t *testing.T, src string) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	return doc
}

func TestValidateStrict_CleanDocument(t *testing.T) {
	doc := decodeDoc(t, `
ball:
  when:
    distance: 0
    from: edge
    to: center
    angle: {min: 45, max: 135}
    a.speed: {gt: 3}
    b.active: true
  trigger: enter
  edges: [bottom]
  action: bounce
  modifier: {power: 2}
pointer:
  - when: {distance: 0, b.active: true}
    action: hit
level:
  when: {cause: spawn}
  action: onSpawn
`)

	assert.NoError(t, ValidateStrict(doc))
}

func TestValidateStrict_AngleWindowList(t *testing.T) {
	doc := decodeDoc(t, `
ball:
  when:
    angle:
      - {min: 315, max: 360}
      - {min: 0, max: 45}
  action: deflect
`)

	assert.NoError(t, ValidateStrict(doc))
}

func TestValidateStrict_RejectsUnknownFields(t *testing.T) {
	doc := decodeDoc(t, `
ball:
  when:
    distanse: 0
  action: bounce
`)

	err := ValidateStrict(doc)
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	require.NotEmpty(t, errs)
	assert.Equal(t, ErrSchemaViolation, errs[0].Code)
}

func TestValidateStrict_AggregatesAllViolations(t *testing.T) {
	doc := decodeDoc(t, `
ball:
  trigger: sometimes
  edges: [diagonal]
  action: bounce
`)

	err := ValidateStrict(doc)
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.GreaterOrEqual(t, len(errs), 2, "both the trigger and the edge violation are reported")
}

func TestValidateStrict_NonMappingDocument(t *testing.T) {
	err := ValidateStrict([]any{"not", "a", "mapping"})
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrNotAMapping, errs[0].Code)
}

func TestValidationErrors_ErrorListsEveryViolation(t *testing.T) {
	errs := ValidationErrors{
		{Path: "ball.trigger", Message: "bad trigger", Code: ErrSchemaViolation},
		{Path: "ball.edges.0", Message: "bad edge", Code: ErrSchemaViolation},
	}

	msg := errs.Error()
	assert.Contains(t, msg, "2 violations")
	assert.Contains(t, msg, "ball.trigger")
	assert.Contains(t, msg, "ball.edges.0")
}
