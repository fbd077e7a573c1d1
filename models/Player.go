package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Player represents an authenticated account, keyed internally by UUID and
// externally by the identity provider's subject
type Player struct {
	ID          string        `gorm:"type:uuid;primary_key" json:"id"`
	ExternalID  string        `gorm:"type:varchar(255);not null;uniqueIndex;column:external_id" json:"external_id"`
	DisplayName *string       `gorm:"type:varchar(255);column:display_name" json:"display_name"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Attempts    []*GameAttempt `gorm:"foreignKey:PlayerID" json:"-"`
}

// BeforeCreate assigns the primary key so the model works on both postgres
// and sqlite without relying on a database-side default
func (p *Player) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
