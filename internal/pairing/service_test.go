package pairing_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/anoixa/pos-admin/database"
	"github.com/anoixa/pos-admin/database/models"
	lanesrepo "github.com/anoixa/pos-admin/database/repo/lanes"
	pairingrepo "github.com/anoixa/pos-admin/database/repo/pairing"
	"github.com/anoixa/pos-admin/internal/pairing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupService 创建基于内存库的配对码服务
func setupService(t *testing.T, ttl time.Duration) (*pairing.Service, *lanesrepo.Repository, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	assert.NoError(t, err)

	sqlDB, err := db.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.Store{}, &models.Lane{}, &models.Device{}, &models.PairingCode{})
	assert.NoError(t, err)

	provider := &testProvider{db: db}
	lanes := lanesrepo.NewRepository(provider)
	codes := pairingrepo.NewRepository(provider)
	service := pairing.NewService(codes, lanes, nil, ttl, 0)
	return service, lanes, db
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

// --- 测试 Issue ---

func TestService_Issue(t *testing.T) {
	service, lanes, _ := setupService(t, 5*time.Minute)
	storeID := uuid.NewString()

	lane, err := lanes.InsertLane(context.Background(), storeID, "Lane 1")
	assert.NoError(t, err)

	before := time.Now()
	result, err := service.Issue(context.Background(), storeID, lane.ID, "user-1")
	assert.NoError(t, err)
	assert.Len(t, result.Code, pairing.DefaultCodeLength)
	assert.True(t, pairing.IsWellFormedCode(result.Code, pairing.DefaultCodeLength))
	assert.Equal(t, 5*time.Minute, result.TTL)

	// expires_at 约等于签发时刻加 TTL
	assert.False(t, result.ExpiresAt.Before(before.Add(5*time.Minute)))
	assert.True(t, result.ExpiresAt.Before(before.Add(5*time.Minute+10*time.Second)))
}

func TestService_Issue_LaneNotFound(t *testing.T) {
	service, _, _ := setupService(t, 5*time.Minute)

	_, err := service.Issue(context.Background(), uuid.NewString(), uuid.NewString(), "user-1")
	assert.ErrorIs(t, err, pairing.ErrLaneNotFound)
}

func TestService_Issue_ArchivedLane(t *testing.T) {
	service, lanes, _ := setupService(t, 5*time.Minute)
	storeID := uuid.NewString()

	lane, err := lanes.InsertLane(context.Background(), storeID, "Lane 1")
	assert.NoError(t, err)
	assert.NoError(t, lanes.ArchiveLane(context.Background(), storeID, lane.ID))

	_, err = service.Issue(context.Background(), storeID, lane.ID, "user-1")
	assert.ErrorIs(t, err, pairing.ErrLaneNotFound)
}

func TestService_Issue_ReissueKeepsOldCodeClaimable(t *testing.T) {
	service, lanes, _ := setupService(t, 5*time.Minute)
	storeID := uuid.NewString()

	lane, err := lanes.InsertLane(context.Background(), storeID, "Lane 1")
	assert.NoError(t, err)

	first, err := service.Issue(context.Background(), storeID, lane.ID, "user-1")
	assert.NoError(t, err)
	second, err := service.Issue(context.Background(), storeID, lane.ID, "user-1")
	assert.NoError(t, err)
	assert.NotEqual(t, first.Code, second.Code)

	// 重新签发不会使旧码失效，两个码在过期前都可认领
	_, err = service.Claim(context.Background(), first.Code, models.DeviceTypeRegister, "", time.Now())
	assert.NoError(t, err)
	_, err = service.Claim(context.Background(), second.Code, models.DeviceTypeRegister, "", time.Now())
	assert.NoError(t, err)
}

// --- 测试 Claim ---

func TestService_Claim_Roundtrip(t *testing.T) {
	service, lanes, db := setupService(t, 5*time.Minute)
	storeID := uuid.NewString()

	lane, err := lanes.InsertLane(context.Background(), storeID, "Lane 1")
	assert.NoError(t, err)

	issued, err := service.Issue(context.Background(), storeID, lane.ID, "user-1")
	assert.NoError(t, err)

	result, err := service.Claim(context.Background(), issued.Code, models.DeviceTypeTerminal, "Card terminal", time.Now())
	assert.NoError(t, err)
	assert.Equal(t, storeID, result.StoreID)
	assert.Equal(t, lane.ID, result.LaneID)
	assert.NotEmpty(t, result.DeviceID)
	assert.NotEmpty(t, result.DeviceToken)

	var device models.Device
	assert.NoError(t, db.First(&device, "id = ?", result.DeviceID).Error)
	assert.Equal(t, models.DeviceTypeTerminal, device.Type)
	assert.Equal(t, "Card terminal", device.Label)
	assert.NotNil(t, device.LaneID)
	assert.Equal(t, lane.ID, *device.LaneID)
	assert.True(t, device.IsActive)
	assert.NotNil(t, device.PairedAt)

	// 令牌只落库散列，不保存明文
	assert.NotEmpty(t, device.TokenHash)
	assert.NotEqual(t, result.DeviceToken, device.TokenHash)
}

func TestService_Claim_NormalizesInput(t *testing.T) {
	service, lanes, _ := setupService(t, 5*time.Minute)
	storeID := uuid.NewString()

	lane, err := lanes.InsertLane(context.Background(), storeID, "Lane 1")
	assert.NoError(t, err)

	issued, err := service.Issue(context.Background(), storeID, lane.ID, "user-1")
	assert.NoError(t, err)

	// 小写加首尾空白的输入归一化后照常认领
	raw := "  " + strings.ToLower(issued.Code) + "  "
	result, err := service.Claim(context.Background(), raw, models.DeviceTypeRegister, "", time.Now())
	assert.NoError(t, err)
	assert.Equal(t, lane.ID, result.LaneID)
}

func TestService_Claim_SecondClaimFails(t *testing.T) {
	service, lanes, _ := setupService(t, 5*time.Minute)
	storeID := uuid.NewString()

	lane, err := lanes.InsertLane(context.Background(), storeID, "Lane 1")
	assert.NoError(t, err)

	issued, err := service.Issue(context.Background(), storeID, lane.ID, "user-1")
	assert.NoError(t, err)

	_, err = service.Claim(context.Background(), issued.Code, models.DeviceTypeRegister, "", time.Now())
	assert.NoError(t, err)

	_, err = service.Claim(context.Background(), issued.Code, models.DeviceTypeRegister, "", time.Now())
	assert.ErrorIs(t, err, pairing.ErrCodeAlreadyClaimed)
}

func TestService_Claim_Expired(t *testing.T) {
	service, lanes, _ := setupService(t, 5*time.Minute)
	storeID := uuid.NewString()

	lane, err := lanes.InsertLane(context.Background(), storeID, "Lane 1")
	assert.NoError(t, err)

	issued, err := service.Issue(context.Background(), storeID, lane.ID, "user-1")
	assert.NoError(t, err)

	_, err = service.Claim(context.Background(), issued.Code, models.DeviceTypeRegister, "", time.Now().Add(6*time.Minute))
	assert.ErrorIs(t, err, pairing.ErrCodeExpired)
}

func TestService_Claim_MalformedRejectedBeforeLookup(t *testing.T) {
	service, _, _ := setupService(t, 5*time.Minute)

	for _, raw := range []string{"", "ABC", "ABCDEFG", "AB!2CD", "AB 2CD"} {
		_, err := service.Claim(context.Background(), raw, models.DeviceTypeRegister, "", time.Now())
		assert.ErrorIs(t, err, pairing.ErrCodeNotFound)
	}
}

func TestService_Claim_UnknownDeviceTypeDefaults(t *testing.T) {
	service, lanes, db := setupService(t, 5*time.Minute)
	storeID := uuid.NewString()

	lane, err := lanes.InsertLane(context.Background(), storeID, "Lane 1")
	assert.NoError(t, err)

	issued, err := service.Issue(context.Background(), storeID, lane.ID, "user-1")
	assert.NoError(t, err)

	result, err := service.Claim(context.Background(), issued.Code, "toaster", "", time.Now())
	assert.NoError(t, err)

	var device models.Device
	assert.NoError(t, db.First(&device, "id = ?", result.DeviceID).Error)
	assert.Equal(t, models.DeviceTypeRegister, device.Type)
	assert.Equal(t, "New Register", device.Label)
}
