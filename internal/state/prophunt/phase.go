package prophunt

// Phase is one of the four states of the 3-D game state machine (spec §4.F).
type Phase int

const (
	PhasePreGame Phase = iota
	PhaseHiding
	PhaseHunting
	PhasePostGame
)

func (p Phase) String() string {
	switch p {
	case PhasePreGame:
		return "pre-game"
	case PhaseHiding:
		return "hiding"
	case PhaseHunting:
		return "hunting"
	case PhasePostGame:
		return "post-game"
	default:
		return "unknown"
	}
}

// Phase durations in seconds, per spec §4.F. Post-game has no duration of
// its own: the scoreboard is computed and broadcast the instant it is
// entered, and the very next tick flips back to pre-game ("immediately
// transition back to pre-game").
const (
	preGameSeconds = 10
	hidingSeconds  = 15
	huntingSeconds = 300

	// minHidingPlayers is the join-count gate for leaving pre-game.
	minHidingPlayers = 4
)
