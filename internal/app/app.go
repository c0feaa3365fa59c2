package app

import (
	"fmt"
	"log"
	"time"

	"github.com/anoixa/pos-admin/cache"
	"github.com/anoixa/pos-admin/config"
	"github.com/anoixa/pos-admin/database"
	lanesrepo "github.com/anoixa/pos-admin/database/repo/lanes"
	pairingrepo "github.com/anoixa/pos-admin/database/repo/pairing"
	storesrepo "github.com/anoixa/pos-admin/database/repo/stores"
	laneSvc "github.com/anoixa/pos-admin/internal/lanes"
	pairingSvc "github.com/anoixa/pos-admin/internal/pairing"
	"github.com/anoixa/pos-admin/internal/presence"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	config          *config.Config
	databaseFactory *database.Factory
	cacheFactory    *cache.Factory

	StoresRepo  *storesrepo.Repository
	LanesRepo   *lanesrepo.Repository
	PairingRepo *pairingrepo.Repository

	laneService    *laneSvc.Service
	pairingService *pairingSvc.Service
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// InitDatabase 初始化数据库工厂与仓库
func (c *Container) InitDatabase() error {
	factory, err := database.NewFactory(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize database factory: %w", err)
	}
	c.databaseFactory = factory

	provider := factory.GetProvider()
	c.StoresRepo = storesrepo.NewRepository(provider)
	c.LanesRepo = lanesrepo.NewRepository(provider)
	c.PairingRepo = pairingrepo.NewRepository(provider)

	return nil
}

// InitServices 初始化缓存与领域服务
func (c *Container) InitServices() error {
	cacheFactory, err := cache.NewFactory(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize cache factory: %w", err)
	}
	c.cacheFactory = cacheFactory

	evaluator := presence.NewEvaluator(c.config.PresenceOnlineThreshold)
	snapshotTTL := time.Duration(c.config.LaneSnapshotCacheTTL) * time.Second

	c.laneService = laneSvc.NewService(c.LanesRepo, evaluator, cacheFactory.GetProvider(), snapshotTTL)
	c.pairingService = pairingSvc.NewService(
		c.PairingRepo,
		c.LanesRepo,
		pairingSvc.RandomCodeGenerator{},
		c.config.PairingCodeTTL,
		c.config.PairingCodeLength,
	)

	return nil
}

// GetDatabaseFactory 获取数据库工厂
func (c *Container) GetDatabaseFactory() *database.Factory {
	return c.databaseFactory
}

// GetLaneService 获取车道聚合服务
func (c *Container) GetLaneService() *laneSvc.Service {
	return c.laneService
}

// GetPairingService 获取配对码服务
func (c *Container) GetPairingService() *pairingSvc.Service {
	return c.pairingService
}

// Close 关闭所有服务
func (c *Container) Close() error {
	if c.cacheFactory != nil {
		if err := c.cacheFactory.Close(); err != nil {
			log.Printf("Error closing cache factory: %v", err)
		}
	}
	if c.databaseFactory != nil {
		if err := c.databaseFactory.Close(); err != nil {
			log.Printf("Error closing database factory: %v", err)
		}
	}
	return nil
}
