package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 车道生命周期状态
const (
	LaneStatusActive   = "active"
	LaneStatusArchived = "archived"
)

// Lane 收银通道 - 归档后从所有视图中排除
type Lane struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	StoreID   string    `gorm:"type:varchar(36);index;not null" json:"store_id"`
	Name      string    `gorm:"not null" json:"name"`
	Status    string    `gorm:"type:varchar(16);not null;default:active" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Lane) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = LaneStatusActive
	}
	return nil
}
