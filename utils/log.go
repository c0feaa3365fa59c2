package utils

import (
	"strings"
	"unicode"
)

// SanitizeLogMessage 清理写入日志的用户输入，去掉不可见字符防止日志注入
func SanitizeLogMessage(msg string) string {
	var sb strings.Builder
	for _, r := range msg {
		if r == 10 || r == 9 {
			sb.WriteRune(r)
		} else if unicode.IsPrint(r) || unicode.IsGraphic(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SanitizeLogName 截断并清理用户提供的名称
func SanitizeLogName(name string) string {
	if len(name) > 50 {
		name = name[:50] + "..."
	}
	return SanitizeLogMessage(name)
}
