package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 设备类型
const (
	DeviceTypeRegister = "Register"
	DeviceTypeTerminal = "Terminal"
	DeviceTypeDisplay  = "Display"
)

// Device 门店内的物理设备（收银机、支付终端、客显）
// LastSeenAt 由设备自身的心跳更新；IsActive 为 false 或 RevokedAt
// 非空的设备无论心跳多新都视为离线
type Device struct {
	ID            string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	StoreID       string     `gorm:"type:varchar(36);index;not null" json:"store_id"`
	LaneID        *string    `gorm:"type:varchar(36);index" json:"lane_id"`
	Type          string     `gorm:"type:varchar(24);not null" json:"type"`
	Label         string     `gorm:"not null" json:"label"`
	TokenHash     string     `gorm:"index" json:"-"`
	PairedAt      *time.Time `json:"paired_at"`
	LastSeenAt    *time.Time `json:"last_seen_at"`
	RevokedAt     *time.Time `json:"revoked_at"`
	IsActive      bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (d *Device) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
