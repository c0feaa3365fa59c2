// Package presence 根据设备最近一次心跳时间推导在线状态
package presence

import (
	"fmt"
	"time"
)

// DeviceStatus 设备在线状态
type DeviceStatus string

const (
	StatusOnline  DeviceStatus = "Online"
	StatusOffline DeviceStatus = "Offline"
)

// DefaultOnlineThreshold 默认在线判定阈值
const DefaultOnlineThreshold = 5 * time.Minute

// Evaluator 在线状态评估器，纯函数无副作用
type Evaluator struct {
	threshold time.Duration
}

// NewEvaluator 创建评估器，threshold <= 0 时使用默认阈值
func NewEvaluator(threshold time.Duration) *Evaluator {
	if threshold <= 0 {
		threshold = DefaultOnlineThreshold
	}
	return &Evaluator{threshold: threshold}
}

// Status 判定在线状态：lastSeen 存在且距 now 不超过阈值（含边界）为在线
func (e *Evaluator) Status(lastSeen *time.Time, now time.Time) DeviceStatus {
	if lastSeen == nil {
		return StatusOffline
	}
	age := now.Sub(*lastSeen)
	if age < 0 {
		age = 0
	}
	if age <= e.threshold {
		return StatusOnline
	}
	return StatusOffline
}

// AgeText 返回心跳时间的展示文本
func (e *Evaluator) AgeText(lastSeen *time.Time, now time.Time) string {
	if lastSeen == nil {
		return "Never"
	}
	age := now.Sub(*lastSeen)
	if age < 0 {
		age = 0
	}

	switch {
	case age < time.Minute:
		return "Just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours())/24)
	}
}
