package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGolden_BounceDemo(t *testing.T) {
	s, err := LoadScenario("testdata/bounce-demo.yaml")
	require.NoError(t, err)
	require.NoError(t, RunWithGolden(t, s))
}
