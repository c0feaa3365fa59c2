// Package lanes 车道/设备聚合服务
//
// 持有每个门店最近一次加载的车道快照。消费方拿到的是不可变的视图
// 切片，不共享内部状态。刷新带代数计数，慢请求的结果不会覆盖更新
// 的快照。
package lanes

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/anoixa/pos-admin/cache"
	"github.com/anoixa/pos-admin/database/models"
	lanesrepo "github.com/anoixa/pos-admin/database/repo/lanes"
	"github.com/anoixa/pos-admin/internal/presence"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ErrEmptyLaneName 车道名为空
var ErrEmptyLaneName = errors.New("lane name must not be empty")

// ErrLaneNotFound 车道不存在或已归档
var ErrLaneNotFound = errors.New("lane not found")

// Device 带在线状态标注的设备视图
type Device struct {
	ID       string                `json:"id"`
	Type     string                `json:"type"`
	Label    string                `json:"label"`
	LastSeen string                `json:"last_seen"`
	Status   presence.DeviceStatus `json:"status"`
}

// Lane 聚合后的车道视图 - Status 为派生值，不落库
type Lane struct {
	ID      string                `json:"id"`
	Name    string                `json:"name"`
	Status  presence.DeviceStatus `json:"status"`
	Devices []*Device             `json:"devices"`
}

type storeSnapshot struct {
	lanes      []*Lane
	generation uint64
}

// Service 车道聚合服务
type Service struct {
	repo      *lanesrepo.Repository
	evaluator *presence.Evaluator

	cache    cache.Provider
	cacheTTL time.Duration

	mu          sync.Mutex
	snapshots   map[string]*storeSnapshot
	generations map[string]uint64
}

// NewService 创建车道聚合服务，cacheProvider 可为 nil（禁用快照缓存）
func NewService(repo *lanesrepo.Repository, evaluator *presence.Evaluator, cacheProvider cache.Provider, cacheTTL time.Duration) *Service {
	return &Service{
		repo:        repo,
		evaluator:   evaluator,
		cache:       cacheProvider,
		cacheTTL:    cacheTTL,
		snapshots:   make(map[string]*storeSnapshot),
		generations: make(map[string]uint64),
	}
}

func snapshotCacheKey(storeID string) string {
	return "lanes:snapshot:" + storeID
}

// LoadLanes 加载门店的车道快照
//
// 车道和设备并行拉取，任一失败则整体失败，不暴露部分结果。设备按
// lane_id 归组，找不到所属车道的设备被丢弃。车道与设备均保持仓库
// 返回的创建顺序。
func (s *Service) LoadLanes(ctx context.Context, storeID string) ([]*Lane, error) {
	if s.cache != nil && s.cacheTTL > 0 {
		var cached []*Lane
		if err := s.cache.Get(ctx, snapshotCacheKey(storeID), &cached); err == nil {
			return cached, nil
		}
	}

	generation := s.nextGeneration(storeID)

	var dbLanes []*models.Lane
	var dbDevices []*models.Device

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		dbLanes, err = s.repo.FetchActiveLanes(groupCtx, storeID)
		return err
	})
	group.Go(func() error {
		var err error
		dbDevices, err = s.repo.FetchActiveDevices(groupCtx, storeID)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load store data: %w", err)
	}

	result := s.assemble(dbLanes, dbDevices, time.Now())

	s.commit(storeID, generation, result)

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, snapshotCacheKey(storeID), result, s.cacheTTL); err != nil {
			log.Printf("Failed to cache lane snapshot for store %s: %v", storeID, err)
		}
	}

	return result, nil
}

// assemble 归组设备并派生车道状态
func (s *Service) assemble(dbLanes []*models.Lane, dbDevices []*models.Device, now time.Time) []*Lane {
	byLane := make(map[string][]*Device)
	for _, device := range dbDevices {
		if device.LaneID == nil {
			continue
		}
		byLane[*device.LaneID] = append(byLane[*device.LaneID], s.annotate(device, now))
	}

	result := make([]*Lane, 0, len(dbLanes))
	for _, dbLane := range dbLanes {
		devices := byLane[dbLane.ID]
		if devices == nil {
			devices = []*Device{}
		}

		status := presence.StatusOffline
		for _, device := range devices {
			if device.Status == presence.StatusOnline {
				status = presence.StatusOnline
				break
			}
		}

		result = append(result, &Lane{
			ID:      dbLane.ID,
			Name:    dbLane.Name,
			Status:  status,
			Devices: devices,
		})
	}
	return result
}

// annotate 标注单个设备
// 未激活或已吊销的设备无条件离线，心跳时间不参与判定
func (s *Service) annotate(device *models.Device, now time.Time) *Device {
	status := presence.StatusOffline
	if device.IsActive && device.RevokedAt == nil {
		status = s.evaluator.Status(device.LastSeenAt, now)
	}
	return &Device{
		ID:       device.ID,
		Type:     device.Type,
		Label:    device.Label,
		LastSeen: s.evaluator.AgeText(device.LastSeenAt, now),
		Status:   status,
	}
}

func (s *Service) nextGeneration(storeID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[storeID]++
	return s.generations[storeID]
}

// commit 提交快照，过期代数的结果直接丢弃
func (s *Service) commit(storeID string, generation uint64, result []*Lane) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generations[storeID] != generation {
		return
	}
	s.snapshots[storeID] = &storeSnapshot{lanes: result, generation: generation}
}

// Snapshot 返回最近一次提交的快照，没有则返回 nil
func (s *Service) Snapshot(storeID string) []*Lane {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap, ok := s.snapshots[storeID]; ok {
		return snap.lanes
	}
	return nil
}

// CreateLane 创建车道并在本地快照追加新车道
// 仓库写入失败时快照保持原样
func (s *Service) CreateLane(ctx context.Context, storeID, name string) (*Lane, error) {
	name = trimName(name)
	if name == "" {
		return nil, ErrEmptyLaneName
	}

	dbLane, err := s.repo.InsertLane(ctx, storeID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create lane: %w", err)
	}

	lane := &Lane{
		ID:      dbLane.ID,
		Name:    dbLane.Name,
		Status:  presence.StatusOffline,
		Devices: []*Device{},
	}

	s.mu.Lock()
	if snap, ok := s.snapshots[storeID]; ok {
		snap.lanes = append(snap.lanes, lane)
	}
	s.mu.Unlock()

	s.invalidateCache(ctx, storeID)
	return lane, nil
}

// RenameLane 重命名车道并就地修补快照，不重新派生状态
func (s *Service) RenameLane(ctx context.Context, storeID, laneID, name string) error {
	name = trimName(name)
	if name == "" {
		return ErrEmptyLaneName
	}

	if err := s.repo.UpdateLaneName(ctx, storeID, laneID, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLaneNotFound
		}
		return fmt.Errorf("failed to rename lane: %w", err)
	}

	s.mu.Lock()
	if snap, ok := s.snapshots[storeID]; ok {
		for _, lane := range snap.lanes {
			if lane.ID == laneID {
				lane.Name = name
				break
			}
		}
	}
	s.mu.Unlock()

	s.invalidateCache(ctx, storeID)
	return nil
}

// ArchiveLane 归档车道（解绑设备在仓库事务内完成）并从快照移除
func (s *Service) ArchiveLane(ctx context.Context, storeID, laneID string) error {
	if err := s.repo.ArchiveLane(ctx, storeID, laneID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLaneNotFound
		}
		return fmt.Errorf("failed to archive lane: %w", err)
	}

	s.mu.Lock()
	if snap, ok := s.snapshots[storeID]; ok {
		filtered := snap.lanes[:0]
		for _, lane := range snap.lanes {
			if lane.ID != laneID {
				filtered = append(filtered, lane)
			}
		}
		snap.lanes = filtered
	}
	s.mu.Unlock()

	s.invalidateCache(ctx, storeID)
	return nil
}

func trimName(name string) string {
	return strings.TrimSpace(name)
}

func (s *Service) invalidateCache(ctx context.Context, storeID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, snapshotCacheKey(storeID)); err != nil {
		log.Printf("Failed to invalidate lane snapshot cache for store %s: %v", storeID, err)
	}
}
