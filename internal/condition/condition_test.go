package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroCondition_MatchesEverything(t *testing.T) {
	var c Condition
	assert.True(t, c.IsZero())
	assert.True(t, c.Matches(0))
	assert.True(t, c.Matches("anything"))
	assert.True(t, c.Matches(nil))
}

func TestExact(t *testing.T) {
	testCases := []struct {
		name     string
		expected any
		observed any
		want     bool
	}{
		{"string match", "red", "red", true},
		{"string mismatch", "red", "blue", false},
		{"bool match", true, true, true},
		{"bool mismatch", true, false, false},
		{"int vs int", 3, 3, true},
		{"int vs float", 3, 3.0, true},
		{"float vs int", 0.0, 0, true},
		{"number mismatch", 3, 4.0, false},
		{"number vs string", 3, "3", false},
		{"missing observed", "red", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Eq(tc.expected).Matches(tc.observed))
		})
	}
}

func TestComparisons(t *testing.T) {
	parse := func(t *testing.T, m map[string]any) Condition {
		t.Helper()
		c, err := Parse(m)
		require.NoError(t, err)
		return c
	}

	t.Run("lt", func(t *testing.T) {
		c := parse(t, map[string]any{"lt": 5})
		assert.True(t, c.Matches(4))
		assert.False(t, c.Matches(5))
	})

	t.Run("gt", func(t *testing.T) {
		c := parse(t, map[string]any{"gt": 5})
		assert.True(t, c.Matches(5.1))
		assert.False(t, c.Matches(5))
	})

	t.Run("lte gte inclusive", func(t *testing.T) {
		c := parse(t, map[string]any{"gte": 1, "lte": 3})
		assert.True(t, c.Matches(1))
		assert.True(t, c.Matches(3))
		assert.False(t, c.Matches(0.999))
		assert.False(t, c.Matches(3.001))
	})

	t.Run("range inclusive", func(t *testing.T) {
		c := parse(t, map[string]any{"min": 10, "max": 20})
		assert.True(t, c.Matches(10))
		assert.True(t, c.Matches(20))
		assert.False(t, c.Matches(9))
		assert.False(t, c.Matches(21))
	})

	t.Run("missing observed is false not panic", func(t *testing.T) {
		c := parse(t, map[string]any{"gt": 0})
		assert.False(t, c.Matches(nil))
		assert.False(t, c.Matches("fast"))
	})
}

func TestSetMembership(t *testing.T) {
	c, err := Parse([]any{"red", "green", 3})
	require.NoError(t, err)

	assert.True(t, c.Matches("red"))
	assert.True(t, c.Matches(3.0), "numeric members compare by value")
	assert.False(t, c.Matches("blue"))
	assert.False(t, c.Matches(nil))
}

func TestCompositeValues_StructuralNotPanic(t *testing.T) {
	testCases := []struct {
		name     string
		c        Condition
		observed any
		want     bool
	}{
		{"list member matches equal list", Condition{In: []any{[]any{1, 2}}}, []any{1, 2}, true},
		{"list member rejects different list", Condition{In: []any{[]any{1, 2}}}, []any{1, 3}, false},
		{"list member rejects scalar", Condition{In: []any{[]any{1, 2}}}, 1, false},
		{"map member matches equal map", Condition{In: []any{map[string]any{"k": 1}}}, map[string]any{"k": 1}, true},
		{"map member rejects different map", Condition{In: []any{map[string]any{"k": 1}}}, map[string]any{"k": 2}, false},
		{"exact list", Eq([]any{"a", "b"}), []any{"a", "b"}, true},
		{"exact list mismatch", Eq([]any{"a", "b"}), []any{"a"}, false},
		{"list vs map is false", Eq([]any{1}), map[string]any{"k": 1}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tc.want, tc.c.Matches(tc.observed))
			})
		})
	}
}

func TestParse_Scalars(t *testing.T) {
	c, err := Parse(0)
	require.NoError(t, err)
	assert.False(t, c.IsZero(), "exact zero is a constraint, not unset")
	assert.True(t, c.Matches(0))
	assert.False(t, c.Matches(1))
}

func TestParse_NilImposesNoConstraint(t *testing.T) {
	c, err := Parse(nil)
	require.NoError(t, err)
	assert.True(t, c.IsZero())
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(map[string]any{"lessthan": 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown comparison key")

	_, err = Parse(map[string]any{"lt": "fast"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a number")
}

func TestCombined_SubConditionsAND(t *testing.T) {
	c, err := Parse(map[string]any{"gt": 0, "lt": 10})
	require.NoError(t, err)

	assert.True(t, c.Matches(5))
	assert.False(t, c.Matches(0))
	assert.False(t, c.Matches(10))
}
