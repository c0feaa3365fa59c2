package pairing

import (
	"context"
	"errors"
	"time"

	"github.com/anoixa/pos-admin/database"
	"github.com/anoixa/pos-admin/database/models"
	"gorm.io/gorm"
)

// 认领失败的不同种类，调用方需要区分提示
var (
	ErrCodeNotFound       = errors.New("pairing code not found")
	ErrCodeExpired        = errors.New("pairing code expired")
	ErrCodeAlreadyClaimed = errors.New("pairing code already claimed")
)

// Repository 配对码仓库
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的配对码仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// InsertPairingCode 写入配对码记录
func (r *Repository) InsertPairingCode(ctx context.Context, code *models.PairingCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

// ClaimPairingCode 原子认领配对码
func (r *Repository) ClaimPairingCode(ctx context.Context, code string, now time.Time) (*models.PairingCode, error) {
	var claimed *models.PairingCode
	err := r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		var err error
		claimed, err = claimCode(tx, code, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// ClaimPairingCodeForDevice 认领配对码并在同一事务内登记设备
// 任一步失败整体回滚，不会出现码被消耗而设备未登记的中间态
func (r *Repository) ClaimPairingCodeForDevice(ctx context.Context, code string, now time.Time, device *models.Device) (*models.PairingCode, error) {
	var claimed *models.PairingCode
	err := r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		var err error
		claimed, err = claimCode(tx, code, now)
		if err != nil {
			return err
		}
		device.StoreID = claimed.StoreID
		device.LaneID = &claimed.LaneID
		return tx.Create(device).Error
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// claimCode 认领的核心：单条条件 UPDATE，只有 claimed_at 为空且未过期
// 的行才会被写入 claimed_at。
//
// 守卫条件在 newest 子查询和外层 WHERE 各出现一次。Postgres READ
// COMMITTED 下并发认领同一个码时，落败方阻塞在胜者的行锁上，提交后
// 只对外层 WHERE 重检新元组；外层若只按 id 匹配则重检仍然通过，两个
// 调用方都会认领成功。外层守卫让落败方的重检失败，转入失败分类查询。
// 分类查询只区分错误种类，不参与认领判定，因此没有 check-then-act 竞态。
func claimCode(tx *gorm.DB, code string, now time.Time) (*models.PairingCode, error) {
	// 同一个码被重新签发时可能存在多行，始终以最新签发的一行为准
	newest := tx.Model(&models.PairingCode{}).
		Select("id").
		Where("code = ? AND claimed_at IS NULL AND expires_at > ?", code, now).
		Order("created_at DESC").
		Limit(1)

	result := tx.Model(&models.PairingCode{}).
		Where("id = (?) AND claimed_at IS NULL AND expires_at > ?", newest, now).
		Update("claimed_at", now)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 1 {
		var claimed models.PairingCode
		err := tx.Where("code = ? AND claimed_at = ?", code, now).
			Order("created_at DESC").
			First(&claimed).Error
		if err != nil {
			return nil, err
		}
		return &claimed, nil
	}

	// 没改到行：查最新一条同码记录，归类失败原因
	var existing models.PairingCode
	err := tx.Where("code = ?", code).
		Order("created_at DESC").
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	if existing.ClaimedAt != nil {
		return nil, ErrCodeAlreadyClaimed
	}
	if !existing.ExpiresAt.After(now) {
		return nil, ErrCodeExpired
	}
	// UPDATE 和分类查询之间被其他调用方抢先认领的窗口
	return nil, ErrCodeAlreadyClaimed
}

// DeleteStaleBefore 删除已过期或已认领且超过宽限期的配对码，返回删除行数
// 过期码无需显式删除即失效，这里只是外部清理任务
func (r *Repository) DeleteStaleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR claimed_at < ?", cutoff, cutoff).
		Delete(&models.PairingCode{})
	return result.RowsAffected, result.Error
}
