package cache

import (
	"fmt"
	"log"

	"github.com/anoixa/pos-admin/cache/memory"
	"github.com/anoixa/pos-admin/cache/redis"
	"github.com/anoixa/pos-admin/config"
)

// Factory 缓存工厂 - 根据配置选择缓存提供者
type Factory struct {
	provider Provider
}

// NewFactory 创建缓存工厂
func NewFactory(cfg *config.Config) (*Factory, error) {
	var provider Provider
	var err error

	switch cfg.CacheType {
	case "redis":
		provider, err = redis.NewRedis(cfg.CacheRedisAddr, cfg.CacheRedisPassword, cfg.CacheRedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Printf("[CacheFactory] Using redis cache at %s", cfg.CacheRedisAddr)

	case "memory", "":
		provider, err = memory.NewMemory(memory.Config{
			NumCounters: 100000,
			MaxCost:     64 << 20, // 64MB
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create memory cache: %w", err)
		}
		log.Println("[CacheFactory] Using in-process memory cache")

	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}

	return &Factory{provider: provider}, nil
}

// GetProvider 获取缓存提供者
func (f *Factory) GetProvider() Provider {
	return f.provider
}

// Close 关闭缓存提供者
func (f *Factory) Close() error {
	if f.provider != nil {
		return f.provider.Close()
	}
	return nil
}
