package game

import "time"

// Rules are the per-game tunables. They ride along inside GameState so
// both sides of the wire time things out identically.
type Rules struct {
	// MaxRounds is how many rounds the rounds phase lasts.
	MaxRounds int `json:"maxRounds"`
	// LightningRound enables the bonus round after the final round.
	LightningRound bool `json:"lightningRound"`
	// UnreadyPlayerWaitSec is how long to wait per unready connected
	// player once the first player has readied.
	UnreadyPlayerWaitSec int `json:"unreadyPlayerWaitSec"`
	// WordChoiceWaitSec is how long the chooser gets to pick a word.
	WordChoiceWaitSec int `json:"wordChoiceWaitSec"`
	// PrePlayWaitSec is the countdown between word choice and play.
	PrePlayWaitSec int `json:"prePlayWaitSec"`
	// EasyWordWaitSec / HardWordWaitSec size the play window by the
	// chosen word's difficulty.
	EasyWordWaitSec int `json:"easyWordWaitSec"`
	HardWordWaitSec int `json:"hardWordWaitSec"`
}

func DefaultRules() Rules {
	return Rules{
		MaxRounds:            15,
		LightningRound:       false,
		UnreadyPlayerWaitSec: 10,
		WordChoiceWaitSec:    20,
		PrePlayWaitSec:       5,
		EasyWordWaitSec:      40,
		HardWordWaitSec:      60,
	}
}

// MaxRoundID is the id of the final round; round ids are zero-indexed.
func (r Rules) MaxRoundID() int {
	return r.MaxRounds - 1
}

func (r Rules) UnreadyPlayerWait() time.Duration {
	return time.Duration(r.UnreadyPlayerWaitSec) * time.Second
}

func (r Rules) WordChoiceWait() time.Duration {
	return time.Duration(r.WordChoiceWaitSec) * time.Second
}

func (r Rules) PrePlayWait() time.Duration {
	return time.Duration(r.PrePlayWaitSec) * time.Second
}

// PlayWait returns the play window for the given difficulty. An
// unresolved difficulty gets the easy window.
func (r Rules) PlayWait(d Difficulty) time.Duration {
	if d == DifficultyHard {
		return time.Duration(r.HardWordWaitSec) * time.Second
	}
	return time.Duration(r.EasyWordWaitSec) * time.Second
}

// Multiplier is the score multiplier a difficulty tier confers.
func Multiplier(d Difficulty) int {
	if d == DifficultyHard {
		return 3
	}
	return 2
}
