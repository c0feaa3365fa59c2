package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

// --- 测试 Status ---

func TestEvaluator_Status_NilLastSeen(t *testing.T) {
	e := NewEvaluator(0)
	now := time.Now()

	assert.Equal(t, StatusOffline, e.Status(nil, now))
}

func TestEvaluator_Status_WithinThreshold(t *testing.T) {
	e := NewEvaluator(0)
	now := time.Now()

	assert.Equal(t, StatusOnline, e.Status(timePtr(now.Add(-3*time.Minute)), now))
	assert.Equal(t, StatusOnline, e.Status(timePtr(now), now))
}

func TestEvaluator_Status_Boundary(t *testing.T) {
	e := NewEvaluator(5 * time.Minute)
	now := time.Now()

	// 边界取含义：恰好 5 分钟仍在线，超过 1 纳秒即离线
	assert.Equal(t, StatusOnline, e.Status(timePtr(now.Add(-5*time.Minute)), now))
	assert.Equal(t, StatusOffline, e.Status(timePtr(now.Add(-5*time.Minute-time.Nanosecond)), now))
}

func TestEvaluator_Status_Offline(t *testing.T) {
	e := NewEvaluator(0)
	now := time.Now()

	assert.Equal(t, StatusOffline, e.Status(timePtr(now.Add(-2*time.Hour)), now))
}

func TestEvaluator_Status_FutureTimestampClamped(t *testing.T) {
	e := NewEvaluator(0)
	now := time.Now()

	// 时钟偏差导致的未来时间戳按 0 处理
	assert.Equal(t, StatusOnline, e.Status(timePtr(now.Add(10*time.Minute)), now))
}

// --- 测试 AgeText ---

func TestEvaluator_AgeText(t *testing.T) {
	e := NewEvaluator(0)
	now := time.Now()

	assert.Equal(t, "Never", e.AgeText(nil, now))
	assert.Equal(t, "Just now", e.AgeText(timePtr(now.Add(-30*time.Second)), now))
	assert.Equal(t, "3m ago", e.AgeText(timePtr(now.Add(-3*time.Minute)), now))
	assert.Equal(t, "59m ago", e.AgeText(timePtr(now.Add(-59*time.Minute-30*time.Second)), now))
	assert.Equal(t, "2h ago", e.AgeText(timePtr(now.Add(-2*time.Hour)), now))
	assert.Equal(t, "23h ago", e.AgeText(timePtr(now.Add(-23*time.Hour-59*time.Minute)), now))
	assert.Equal(t, "3d ago", e.AgeText(timePtr(now.Add(-3*24*time.Hour)), now))
}

func TestEvaluator_AgeText_FutureTimestamp(t *testing.T) {
	e := NewEvaluator(0)
	now := time.Now()

	assert.Equal(t, "Just now", e.AgeText(timePtr(now.Add(time.Minute)), now))
}
