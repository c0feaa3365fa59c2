package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store 门店（business profile）
type Store struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	OwnerUserID string    `gorm:"type:varchar(36);index;not null" json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
