package services

import (
	"errors"
	"fmt"

	"api/models"

	"gorm.io/gorm"
)

// PlayerService resolves external identities (the auth provider's subject)
// to player rows, creating them on first contact
type PlayerService struct {
	db *gorm.DB
}

func NewPlayerService(db *gorm.DB) *PlayerService {
	return &PlayerService{db: db}
}

// GetOrCreate returns the player for the given external id, creating the
// row when it does not exist yet. Safe under concurrent first requests: a
// lost create race falls back to the winner's row.
func (s *PlayerService) GetOrCreate(externalID string, displayName string) (*models.Player, error) {
	var player models.Player
	err := s.db.First(&player, "external_id = ?", externalID).Error
	if err == nil {
		return &player, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch player: %w", err)
	}

	player = models.Player{ExternalID: externalID}
	if displayName != "" {
		player.DisplayName = &displayName
	}
	if err := s.db.Create(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing models.Player
			if fetchErr := s.db.First(&existing, "external_id = ?", externalID).Error; fetchErr == nil {
				return &existing, nil
			}
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return &player, nil
}
