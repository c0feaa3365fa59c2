// Package pairing 配对码签发与认领
package pairing

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/anoixa/pos-admin/database/models"
	lanesrepo "github.com/anoixa/pos-admin/database/repo/lanes"
	pairingrepo "github.com/anoixa/pos-admin/database/repo/pairing"
)

// 认领失败种类（透传仓库哨兵错误，调用方据此展示不同提示）
var (
	ErrCodeNotFound       = pairingrepo.ErrCodeNotFound
	ErrCodeExpired        = pairingrepo.ErrCodeExpired
	ErrCodeAlreadyClaimed = pairingrepo.ErrCodeAlreadyClaimed
)

// ErrLaneNotFound 目标车道不存在或已归档
var ErrLaneNotFound = errors.New("lane not found")

// IssueResult 签发结果
// ExpiresAt 是过期判定的唯一依据，TTL 仅供调用方做倒计时展示
type IssueResult struct {
	Code      string        `json:"code"`
	ExpiresAt time.Time     `json:"expires_at"`
	TTL       time.Duration `json:"-"`
}

// ClaimResult 认领成功结果
type ClaimResult struct {
	StoreID     string `json:"store_id"`
	LaneID      string `json:"lane_id"`
	DeviceID    string `json:"device_id"`
	DeviceToken string `json:"device_token"`
}

// Service 配对码服务
type Service struct {
	codes      *pairingrepo.Repository
	lanes      *lanesrepo.Repository
	generator  CodeGenerator
	ttl        time.Duration
	codeLength int
}

// NewService 创建配对码服务
func NewService(codes *pairingrepo.Repository, lanes *lanesrepo.Repository, generator CodeGenerator, ttl time.Duration, codeLength int) *Service {
	if generator == nil {
		generator = RandomCodeGenerator{}
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if codeLength <= 0 {
		codeLength = DefaultCodeLength
	}
	return &Service{
		codes:      codes,
		lanes:      lanes,
		generator:  generator,
		ttl:        ttl,
		codeLength: codeLength,
	}
}

// Issue 为车道签发新配对码
//
// 重新签发不会使旧码失效，调用方以最新签发的码为准，未认领的旧码
// 等待自然过期。不强制每车道只有一个有效码。
func (s *Service) Issue(ctx context.Context, storeID, laneID, userID string) (*IssueResult, error) {
	lane, err := s.lanes.GetActiveLane(ctx, storeID, laneID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up lane: %w", err)
	}
	if lane == nil {
		return nil, ErrLaneNotFound
	}

	code, err := s.generator.Generate(s.codeLength)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := &models.PairingCode{
		Code:              code,
		StoreID:           storeID,
		LaneID:            laneID,
		GeneratedByUserID: userID,
		ExpiresAt:         now.Add(s.ttl),
	}
	if err := s.codes.InsertPairingCode(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist pairing code: %w", err)
	}

	return &IssueResult{
		Code:      record.Code,
		ExpiresAt: record.ExpiresAt,
		TTL:       s.ttl,
	}, nil
}

// Claim 认领配对码，成功后为车道创建设备记录并返回设备令牌
//
// 格式不合法的输入在任何数据库访问前拒绝。过期判定只看 expires_at
// 与 now 的比较，与签发侧的倒计时展示无关。
func (s *Service) Claim(ctx context.Context, rawCode, deviceType, label string, now time.Time) (*ClaimResult, error) {
	code := NormalizeCode(rawCode)
	if !IsWellFormedCode(code, s.codeLength) {
		return nil, ErrCodeNotFound
	}

	token, err := generateDeviceToken()
	if err != nil {
		return nil, err
	}

	device := &models.Device{
		Type:      normalizeDeviceType(deviceType),
		Label:     label,
		TokenHash: hashToken(token),
		PairedAt:  &now,
		IsActive:  true,
	}
	if device.Label == "" {
		device.Label = fmt.Sprintf("New %s", device.Type)
	}

	// 认领和设备登记在同一事务内完成，失败时码不会被消耗
	claimed, err := s.codes.ClaimPairingCodeForDevice(ctx, code, now, device)
	if err != nil {
		return nil, err
	}

	return &ClaimResult{
		StoreID:     claimed.StoreID,
		LaneID:      claimed.LaneID,
		DeviceID:    device.ID,
		DeviceToken: token,
	}, nil
}

// TTL 返回签发用的 TTL 常量
func (s *Service) TTL() time.Duration {
	return s.ttl
}

func normalizeDeviceType(deviceType string) string {
	switch deviceType {
	case models.DeviceTypeRegister, models.DeviceTypeTerminal, models.DeviceTypeDisplay:
		return deviceType
	default:
		return models.DeviceTypeRegister
	}
}

// generateDeviceToken 生成不透明设备令牌
func generateDeviceToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// hashToken 令牌落库前散列，数据库不保存明文
func hashToken(token string) string {
	hasher := sha256.New()
	hasher.Write([]byte(token))
	return hex.EncodeToString(hasher.Sum(nil))
}
