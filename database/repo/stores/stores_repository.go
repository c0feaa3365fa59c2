package stores

import (
	"context"
	"errors"

	"github.com/anoixa/pos-admin/database"
	"github.com/anoixa/pos-admin/database/models"
	"gorm.io/gorm"
)

// Repository 门店仓库
type Repository struct {
	db database.Provider
}

// NewRepository 创建新的门店仓库
func NewRepository(db database.Provider) *Repository {
	return &Repository{db: db}
}

// GetStoreByID 通过 ID 获取门店
func (r *Repository) GetStoreByID(ctx context.Context, storeID string) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).Where("id = ?", storeID).First(&store).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

// FirstStoreForOwner 获取用户名下的第一个门店
func (r *Repository) FirstStoreForOwner(ctx context.Context, userID string) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ?", userID).
		Order("created_at ASC").
		First(&store).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

// CreateStore 创建门店
func (r *Repository) CreateStore(ctx context.Context, store *models.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}
