package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hitwire/internal/geom"
)

func TestPointer_DeviceSizes(t *testing.T) {
	testCases := []struct {
		kind DeviceKind
		w, h float64
	}{
		{DeviceMouse, 1, 1},
		{DeviceFinger, 40, 40},
		{DeviceThrown, 60, 60},
		{DeviceLaser, 8, 8},
	}

	for _, tc := range testCases {
		t.Run(string(tc.kind), func(t *testing.T) {
			p := NewPointer(tc.kind)
			assert.Equal(t, tc.w, p.W)
			assert.Equal(t, tc.h, p.H)
		})
	}

	t.Run("unknown kind falls back to point", func(t *testing.T) {
		p := NewPointer(DeviceKind("telepathy"))
		assert.Equal(t, 1.0, p.W)
	})
}

func TestPointer_RectCenteredOnPosition(t *testing.T) {
	p := NewPointer(DeviceLaser)
	p.Update(100, 50, true)

	r := p.Rect()
	cx, cy := r.Center()
	assert.InDelta(t, 100, cx, 1e-9)
	assert.InDelta(t, 50, cy, 1e-9)
}

func TestPointer_View(t *testing.T) {
	p := NewPointer(DeviceMouse)
	p.Update(120, 120, true)
	p.Resize(10, 12)

	v := p.View()
	assert.Equal(t, PseudoPointer, v.ID)
	active, ok := v.Attr("active")
	require.True(t, ok)
	assert.Equal(t, true, active)
	assert.Equal(t, 10.0, v.Rect.W)
	assert.Equal(t, 12.0, v.Rect.H)
}

func TestGame_LoseLifeGuards(t *testing.T) {
	g := NewGame(1)

	assert.Equal(t, 0, g.LoseLife(), "loseLife returns the remaining lives")
	assert.Equal(t, StateLost, g.State, "zero lives forces lost")

	// A further call stays at zero and stays lost.
	assert.Equal(t, 0, g.LoseLife())
	assert.Equal(t, StateLost, g.State)
}

func TestGame_PauseResumeGuards(t *testing.T) {
	g := NewGame(3)

	g.Resume()
	assert.Equal(t, StatePlaying, g.State, "resume only applies from paused")

	g.Pause()
	assert.Equal(t, StatePaused, g.State)
	g.Pause()
	assert.Equal(t, StatePaused, g.State)
	g.Resume()
	assert.Equal(t, StatePlaying, g.State)

	g.Win()
	g.Pause()
	assert.Equal(t, StateWon, g.State, "a finished game cannot be paused")
}

func TestGame_View(t *testing.T) {
	g := NewGame(3)
	g.AddScore(150)

	v := g.View()
	score, _ := v.Attr("score")
	state, _ := v.Attr("state")
	assert.Equal(t, 150, score)
	assert.Equal(t, "playing", state)
}

func TestLevel_SetResetsElapsed(t *testing.T) {
	l := &Level{}
	l.Set("one")
	l.Advance(2.5)
	assert.InDelta(t, 2.5, l.Elapsed, 1e-9)

	l.Set("two")
	assert.Zero(t, l.Elapsed)
	name, _ := l.View().Attr("name")
	assert.Equal(t, "two", name)
}

func TestTimeKeeper_PerObjectElapsed(t *testing.T) {
	tk := NewTimeKeeper()
	tk.MarkSpawn("a")
	tk.Advance(1)
	tk.MarkSpawn("b")
	tk.Advance(2)

	assert.InDelta(t, 3, tk.Elapsed("a"), 1e-9)
	assert.InDelta(t, 2, tk.Elapsed("b"), 1e-9)
	assert.InDelta(t, 3, tk.Absolute(), 1e-9)
	assert.Zero(t, tk.Elapsed("ghost"), "unknown ids read as zero")
}

func TestTimeKeeper_ViewIsPerSource(t *testing.T) {
	tk := NewTimeKeeper()
	tk.MarkSpawn("old")
	tk.Advance(5)
	tk.MarkSpawn("young")
	tk.Advance(1)

	elapsedOld, _ := tk.View("old").Attr("elapsed")
	elapsedYoung, _ := tk.View("young").Attr("elapsed")
	assert.InDelta(t, 6, elapsedOld.(float64), 1e-9)
	assert.InDelta(t, 1, elapsedYoung.(float64), 1e-9)
}

func TestTimeKeeper_ResetClockPreservesElapsed(t *testing.T) {
	tk := NewTimeKeeper()
	tk.MarkSpawn("a")
	tk.Advance(4)

	tk.ResetClock()
	assert.Zero(t, tk.Absolute())
	assert.InDelta(t, 4, tk.Elapsed("a"), 1e-9, "level change must not age or rejuvenate objects")
}

func TestScreen_View(t *testing.T) {
	s := &Screen{Bounds: geom.NewRect(0, 0, 800, 600)}
	v := s.View()
	w, _ := v.Attr("width")
	assert.Equal(t, 800.0, w)
	assert.Equal(t, PseudoScreen, v.ID)
}

func TestIsPseudo(t *testing.T) {
	for _, name := range []string{"pointer", "screen", "level", "game", "time"} {
		assert.True(t, IsPseudo(name), name)
	}
	assert.False(t, IsPseudo("ball"))
}
