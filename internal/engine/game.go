package engine

// GameState is the game pseudo-object's coarse state.
type GameState string

const (
	StatePlaying GameState = "playing"
	StatePaused  GameState = "paused"
	StateWon     GameState = "won"
	StateLost    GameState = "lost"
)

// Game is the game pseudo-object: lives, score, and a guarded state
// machine. Transitions that would leave the guards (negative lives,
// pausing a finished game) are silently refused - game rules treat the
// pseudo-object as always valid.
type Game struct {
	Lives int
	Score int
	State GameState
}

// NewGame creates a playing game with the given starting lives.
func NewGame(lives int) *Game {
	return &Game{Lives: lives, State: StatePlaying}
}

// LoseLife decrements lives, floors at zero, and forces the lost state
// when they run out. Returns the remaining lives; calling again at zero
// stays at zero and stays lost.
func (g *Game) LoseLife() int {
	if g.Lives > 0 {
		g.Lives--
	}
	if g.Lives == 0 {
		g.State = StateLost
	}
	return g.Lives
}

// AddLife grants an extra life.
func (g *Game) AddLife() {
	g.Lives++
}

// AddScore adds points to the score.
func (g *Game) AddScore(points int) {
	g.Score += points
}

// Pause transitions playing -> paused. Any other state is unchanged.
func (g *Game) Pause() {
	if g.State == StatePlaying {
		g.State = StatePaused
	}
}

// Resume transitions paused -> playing. Any other state is unchanged.
func (g *Game) Resume() {
	if g.State == StatePaused {
		g.State = StatePlaying
	}
}

// Win marks the game won.
func (g *Game) Win() {
	g.State = StateWon
}

// View materializes the game as a tracked-object view.
func (g *Game) View() *Object {
	return &Object{
		ID:   PseudoGame,
		Type: PseudoGame,
		Attrs: map[string]any{
			"lives": g.Lives,
			"score": g.Score,
			"state": string(g.State),
		},
	}
}
