package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleTracker_SpawnDedup(t *testing.T) {
	tr := NewLifecycleTracker()

	ev, ok := tr.OnSpawn("a")
	require.True(t, ok)
	assert.Equal(t, LifecycleSpawn, ev.Kind)
	assert.Equal(t, "spawn", ev.Cause)

	_, ok = tr.OnSpawn("a")
	assert.False(t, ok, "spawn of a known id emits nothing")
}

func TestLifecycleTracker_UpdateRequiresKnown(t *testing.T) {
	tr := NewLifecycleTracker()

	_, ok := tr.OnUpdate("ghost")
	assert.False(t, ok, "unknown id is a silent no-op, not an error")

	tr.OnSpawn("a")
	ev, ok := tr.OnUpdate("a")
	require.True(t, ok)
	assert.Equal(t, LifecycleUpdate, ev.Kind)

	// Updates do not un-mark: they can repeat.
	_, ok = tr.OnUpdate("a")
	assert.True(t, ok)
}

func TestLifecycleTracker_DestroyThenRespawn(t *testing.T) {
	tr := NewLifecycleTracker()
	tr.OnSpawn("a")

	ev, ok := tr.OnDestroy("a")
	require.True(t, ok)
	assert.Equal(t, LifecycleDestroy, ev.Kind)

	_, ok = tr.OnDestroy("a")
	assert.False(t, ok, "second destroy emits nothing")

	// The id can be reused: respawn fires spawn again.
	_, ok = tr.OnSpawn("a")
	assert.True(t, ok)
}

func TestLifecycleTracker_Transform(t *testing.T) {
	tr := NewLifecycleTracker()
	tr.OnSpawn("a")

	events := tr.OnTransform("a", true)
	require.Len(t, events, 2)
	assert.Equal(t, LifecycleDestroy, events[0].Kind)
	assert.Equal(t, LifecycleSpawn, events[1].Kind)
	assert.Equal(t, "transform", events[0].Cause, "transform pair is tagged, not a genuine removal")
	assert.Equal(t, "transform", events[1].Cause)

	assert.True(t, tr.Known("a"), "object stays known through a transform")
}

func TestLifecycleTracker_TransformSilent(t *testing.T) {
	tr := NewLifecycleTracker()
	tr.OnSpawn("a")

	assert.Empty(t, tr.OnTransform("a", false))
	assert.True(t, tr.Known("a"))
}

func TestLifecycleTracker_TransformUnknownEmitsNothing(t *testing.T) {
	tr := NewLifecycleTracker()

	assert.Empty(t, tr.OnTransform("new", true), "no destroy half for an id never seen")
	assert.True(t, tr.Known("new"), "transform marks the id known")
}
