package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PairingCode 一次性配对码 - 绑定门店与车道，过期或被认领后永久失效
// Code 已做大写归一化；ClaimedAt 只会被成功认领设置一次
type PairingCode struct {
	ID                string     `gorm:"primaryKey;autoIncrement:false;type:varchar(36)" json:"id"`
	Code              string     `gorm:"type:varchar(16);index;not null" json:"code"`
	StoreID           string     `gorm:"type:varchar(36);index;not null" json:"store_id"`
	LaneID            string     `gorm:"type:varchar(36);index;not null" json:"lane_id"`
	GeneratedByUserID string     `gorm:"type:varchar(36);not null" json:"generated_by_user_id"`
	ExpiresAt         time.Time  `gorm:"not null" json:"expires_at"`
	ClaimedAt         *time.Time `json:"claimed_at"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (p *PairingCode) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
