package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GameAttempt is one identity's record of guesses for one puzzle day.
// Exactly one of PlayerID or AnonymousID is set; each is unique together
// with PuzzleDate so an identity holds at most one attempt per day.
type GameAttempt struct {
	ID          string   `gorm:"type:uuid;primary_key" json:"id"`
	PlayerID    *string  `gorm:"type:uuid;column:player_id;uniqueIndex:ux_attempts_player_date" json:"player_id"`
	AnonymousID *string  `gorm:"type:varchar(128);column:anonymous_id;uniqueIndex:ux_attempts_anonymous_date" json:"anonymous_id"`
	PuzzleDate  string   `gorm:"type:varchar(10);not null;column:puzzle_date;uniqueIndex:ux_attempts_player_date;uniqueIndex:ux_attempts_anonymous_date" json:"puzzle_date"`
	Solved      bool     `gorm:"not null;default:false" json:"solved"`
	GaveUp      bool     `gorm:"not null;default:false;column:gave_up" json:"gave_up"`
	SolvedIn    *int     `gorm:"column:solved_in" json:"solved_in"`
	ShareCode   *string  `gorm:"type:varchar(9);uniqueIndex;column:share_code" json:"share_code"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Player      *Player  `gorm:"foreignKey:PlayerID" json:"-"`
	Guesses     []*Guess `gorm:"foreignKey:AttemptID" json:"guesses"`
}

func (a *GameAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// FirstCorrectPosition returns the 1-based position of the first correct
// guess, or 0 if none. Guesses are expected to be loaded in position order.
func (a *GameAttempt) FirstCorrectPosition() int {
	for _, g := range a.Guesses {
		if g.Correct {
			return g.Position
		}
	}
	return 0
}

// IsSolved is the defensive read of the solved state: the summary flag and
// the per-guess verdicts can diverge if a legacy write path set one but not
// the other, and divergence is treated as solved
func (a *GameAttempt) IsSolved() bool {
	return a.Solved || a.FirstCorrectPosition() > 0
}

// Terminal reports whether ordinary guessing has stopped for this attempt
func (a *GameAttempt) Terminal() bool {
	return a.IsSolved() || a.GaveUp
}
