package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_HonorsConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.env")
	content := "SERVER_PORT=9191\nPAIRING_CODE_LENGTH=8\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	viper.Set("config_file_path", path)
	defer viper.Set("config_file_path", "")

	loadConfig()

	assert.Equal(t, 9191, Get().ServerPort)
	assert.Equal(t, 8, Get().PairingCodeLength)
	// 文件未覆盖的键仍取默认值
	assert.Equal(t, 5*time.Minute, Get().PairingCodeTTL)
}

func TestConfig_Addr(t *testing.T) {
	cfg := &Config{ServerHost: "0.0.0.0", ServerPort: 9000}
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())

	cfg = &Config{}
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestConfig_BaseURL(t *testing.T) {
	cfg := &Config{ServerDomain: "https://pos.example.com"}
	assert.Equal(t, "https://pos.example.com", cfg.BaseURL())

	cfg = &Config{ServerHost: "0.0.0.0", ServerPort: 8080}
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL())
}
