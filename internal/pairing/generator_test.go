package pairing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- 测试 RandomCodeGenerator ---

func TestRandomCodeGenerator_Generate(t *testing.T) {
	generator := RandomCodeGenerator{}

	code, err := generator.Generate(6)
	assert.NoError(t, err)
	assert.Len(t, code, 6)
	for _, r := range code {
		assert.Contains(t, codeAlphabet, string(r))
	}
}

func TestRandomCodeGenerator_Generate_DefaultLength(t *testing.T) {
	generator := RandomCodeGenerator{}

	code, err := generator.Generate(0)
	assert.NoError(t, err)
	assert.Len(t, code, DefaultCodeLength)
}

func TestRandomCodeGenerator_Generate_CustomLength(t *testing.T) {
	generator := RandomCodeGenerator{}

	code, err := generator.Generate(10)
	assert.NoError(t, err)
	assert.Len(t, code, 10)
}

// --- 测试 NormalizeCode ---

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "AB12CD", NormalizeCode("ab12cd"))
	assert.Equal(t, "AB12CD", NormalizeCode("  AB12CD  "))
	assert.Equal(t, "AB12CD", NormalizeCode("\tab12cd\n"))
	assert.Equal(t, "", NormalizeCode("   "))
}

// --- 测试 IsWellFormedCode ---

func TestIsWellFormedCode(t *testing.T) {
	assert.True(t, IsWellFormedCode("AB12CD", 6))
	assert.True(t, IsWellFormedCode(strings.Repeat("A", 8), 8))

	assert.False(t, IsWellFormedCode("AB12C", 6))
	assert.False(t, IsWellFormedCode("AB12CDE", 6))
	assert.False(t, IsWellFormedCode("ab12cd", 6))
	assert.False(t, IsWellFormedCode("AB 2CD", 6))
	assert.False(t, IsWellFormedCode("AB!2CD", 6))
	assert.False(t, IsWellFormedCode("", 6))
}
