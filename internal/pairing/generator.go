package pairing

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// 配对码字母表：大写字母加数字，与认领侧的归一化保持一致
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultCodeLength 默认配对码长度
const DefaultCodeLength = 6

var codePattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// CodeGenerator 配对码生成器接口
// 抽象出来便于后续单独加强长度或字母表，调用方不受影响
type CodeGenerator interface {
	Generate(length int) (string, error)
}

// RandomCodeGenerator 基于 crypto/rand 的默认实现
type RandomCodeGenerator struct{}

// Generate 生成指定长度的配对码
func (RandomCodeGenerator) Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}

	var sb strings.Builder
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random code: %w", err)
		}
		sb.WriteByte(codeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// NormalizeCode 认领输入归一化：去空白并转大写，与签发侧一致
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsWellFormedCode 校验归一化后的配对码格式
func IsWellFormedCode(code string, length int) bool {
	if length <= 0 {
		length = DefaultCodeLength
	}
	return len(code) == length && codePattern.MatchString(code)
}
