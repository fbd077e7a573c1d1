package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Guess is an immutable, ordered child of a GameAttempt. Position is
// 1-based and unique per attempt; rows are only ever appended.
type Guess struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	AttemptID string    `gorm:"type:uuid;not null;column:attempt_id;uniqueIndex:ux_guesses_attempt_position" json:"attempt_id"`
	Position  int       `gorm:"type:integer;not null;uniqueIndex:ux_guesses_attempt_position" json:"position"`
	Guess     string    `gorm:"type:text;not null" json:"guess"`
	Score     int       `gorm:"type:integer;not null" json:"score"`
	Verdict   string    `gorm:"type:varchar(9);not null" json:"verdict"`
	Reason    string    `gorm:"type:text;not null" json:"reason"`
	Correct   bool      `gorm:"not null;default:false" json:"correct"`
	CreatedAt time.Time `json:"created_at"`
	Attempt   *GameAttempt `gorm:"foreignKey:AttemptID" json:"-"`
}

func (g *Guess) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
