package lanes

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/anoixa/pos-admin/database"
	"github.com/anoixa/pos-admin/database/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB 创建测试数据库
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	assert.NoError(t, err)

	sqlDB, err := db.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	// 自动迁移
	err = db.AutoMigrate(&models.Store{}, &models.Lane{}, &models.Device{}, &models.PairingCode{})
	assert.NoError(t, err)

	return db
}

// testProvider 测试数据库提供者
type testProvider struct {
	db *gorm.DB
}

func (p *testProvider) DB() *gorm.DB {
	return p.db
}

func (p *testProvider) WithContext(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx)
}

func (p *testProvider) Transaction(fn database.TxFunc) error {
	return p.db.Transaction(fn)
}

func (p *testProvider) TransactionWithContext(ctx context.Context, fn database.TxFunc) error {
	return p.db.WithContext(ctx).Transaction(fn)
}

func (p *testProvider) AutoMigrate(models ...interface{}) error {
	return p.db.AutoMigrate(models...)
}

func (p *testProvider) SQLDB() (*sql.DB, error) {
	return p.db.DB()
}

func (p *testProvider) Ping() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (p *testProvider) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (p *testProvider) Name() string {
	return "sqlite"
}

// --- 测试 FetchActiveLanes ---

func TestRepository_FetchActiveLanes_OrderAndFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(&testProvider{db: db})
	storeID := uuid.NewString()

	first, err := repo.InsertLane(context.Background(), storeID, "Lane 1")
	assert.NoError(t, err)
	// 拉开创建时间保证排序稳定
	db.Model(first).Update("created_at", time.Now().Add(-time.Hour))

	second, err := repo.InsertLane(context.Background(), storeID, "Lane 2")
	assert.NoError(t, err)

	archived, err := repo.InsertLane(context.Background(), storeID, "Old Lane")
	assert.NoError(t, err)
	db.Model(archived).Update("status", models.LaneStatusArchived)

	lanes, err := repo.FetchActiveLanes(context.Background(), storeID)
	assert.NoError(t, err)
	assert.Len(t, lanes, 2)
	assert.Equal(t, first.ID, lanes[0].ID)
	assert.Equal(t, second.ID, lanes[1].ID)
}

func TestRepository_FetchActiveLanes_Empty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(&testProvider{db: db})

	lanes, err := repo.FetchActiveLanes(context.Background(), uuid.NewString())
	assert.NoError(t, err)
	assert.Len(t, lanes, 0)
}

// --- 测试 FetchActiveDevices ---

func TestRepository_FetchActiveDevices_FiltersInactive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(&testProvider{db: db})
	storeID := uuid.NewString()

	lane, err := repo.InsertLane(context.Background(), storeID, "Lane 1")
	assert.NoError(t, err)

	active := &models.Device{StoreID: storeID, LaneID: &lane.ID, Type: models.DeviceTypeRegister, Label: "Front register", IsActive: true}
	assert.NoError(t, repo.CreateDevice(context.Background(), active))

	inactive := &models.Device{StoreID: storeID, LaneID: &lane.ID, Type: models.DeviceTypeTerminal, Label: "Old terminal"}
	assert.NoError(t, repo.CreateDevice(context.Background(), inactive))
	db.Model(inactive).Update("is_active", false)

	devices, err := repo.FetchActiveDevices(context.Background(), storeID)
	assert.NoError(t, err)
	assert.Len(t, devices, 1)
	assert.Equal(t, active.ID, devices[0].ID)
}

// --- 测试 UpdateLaneName ---

func TestRepository_UpdateLaneName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(&testProvider{db: db})
	storeID := uuid.NewString()

	lane, err := repo.InsertLane(context.Background(), storeID, "Lane 1")
	assert.NoError(t, err)

	err = repo.UpdateLaneName(context.Background(), storeID, lane.ID, "Express")
	assert.NoError(t, err)

	got, err := repo.GetActiveLane(context.Background(), storeID, lane.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Express", got.Name)
}

func TestRepository_UpdateLaneName_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(&testProvider{db: db})

	err := repo.UpdateLaneName(context.Background(), uuid.NewString(), uuid.NewString(), "Express")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// --- 测试 ArchiveLane ---

func TestRepository_ArchiveLane_UnpairsDevices(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(&testProvider{db: db})
	storeID := uuid.NewString()

	lane, err := repo.InsertLane(context.Background(), storeID, "Lane 1")
	assert.NoError(t, err)

	device := &models.Device{StoreID: storeID, LaneID: &lane.ID, Type: models.DeviceTypeRegister, Label: "Front register", IsActive: true}
	assert.NoError(t, repo.CreateDevice(context.Background(), device))

	assert.NoError(t, repo.ArchiveLane(context.Background(), storeID, lane.ID))

	// 归档后车道从视图消失，设备解绑且停用
	lanes, err := repo.FetchActiveLanes(context.Background(), storeID)
	assert.NoError(t, err)
	assert.Len(t, lanes, 0)

	var got models.Device
	assert.NoError(t, db.First(&got, "id = ?", device.ID).Error)
	assert.Nil(t, got.LaneID)
	assert.False(t, got.IsActive)
}

func TestRepository_ArchiveLane_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(&testProvider{db: db})

	err := repo.ArchiveLane(context.Background(), uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
