package lanes

import (
	"context"
	"errors"

	"github.com/anoixa/pos-admin/database"
	"github.com/anoixa/pos-admin/database/models"
	"gorm.io/gorm"
)

// Repository 车道/设备仓库 - 封装车道与设备相关的数据库操作
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的车道仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// FetchActiveLanes 获取门店下所有未归档车道，按创建时间排序
func (r *Repository) FetchActiveLanes(ctx context.Context, storeID string) ([]*models.Lane, error) {
	var lanes []*models.Lane
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND status = ?", storeID, models.LaneStatusActive).
		Order("created_at ASC").
		Find(&lanes).Error
	return lanes, err
}

// FetchActiveDevices 获取门店下所有激活设备，按创建时间排序
func (r *Repository) FetchActiveDevices(ctx context.Context, storeID string) ([]*models.Device, error) {
	var devices []*models.Device
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND is_active = ?", storeID, true).
		Order("created_at ASC").
		Find(&devices).Error
	return devices, err
}

// GetActiveLane 获取门店下指定的未归档车道，不存在时返回 nil
func (r *Repository) GetActiveLane(ctx context.Context, storeID, laneID string) (*models.Lane, error) {
	var lane models.Lane
	err := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ? AND status = ?", laneID, storeID, models.LaneStatusActive).
		First(&lane).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lane, nil
}

// InsertLane 创建车道
func (r *Repository) InsertLane(ctx context.Context, storeID, name string) (*models.Lane, error) {
	lane := &models.Lane{
		StoreID: storeID,
		Name:    name,
		Status:  models.LaneStatusActive,
	}
	if err := r.db.WithContext(ctx).Create(lane).Error; err != nil {
		return nil, err
	}
	return lane, nil
}

// UpdateLaneName 重命名车道
func (r *Repository) UpdateLaneName(ctx context.Context, storeID, laneID, name string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Lane{}).
		Where("id = ? AND store_id = ? AND status = ?", laneID, storeID, models.LaneStatusActive).
		Update("name", name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ArchiveLane 归档车道并解绑其所有设备，两步在同一事务中完成
func (r *Repository) ArchiveLane(ctx context.Context, storeID, laneID string) error {
	return r.db.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(&models.Device{}).
			Where("lane_id = ?", laneID).
			Updates(map[string]interface{}{"lane_id": nil, "is_active": false}).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Lane{}).
			Where("id = ? AND store_id = ? AND status = ?", laneID, storeID, models.LaneStatusActive).
			Update("status", models.LaneStatusArchived)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// CreateDevice 创建设备记录
func (r *Repository) CreateDevice(ctx context.Context, device *models.Device) error {
	return r.db.WithContext(ctx).Create(device).Error
}
