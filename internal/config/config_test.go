package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[llm]
provider = "claude"
api_key = "sk-ant-real"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 50, cfg.Analysis.MinContentLength)
	assert.Equal(t, 3, cfg.Queue.MaxAttempts)
	assert.True(t, cfg.Analysis.Triggers.OnCreate)
	assert.False(t, cfg.Analysis.Triggers.OnUpdate)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadRejectsBadProvider(t *testing.T) {
	path := writeConfig(t, `
[llm]
provider = "skynet"
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_API_KEY", "sk-from-env")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")

	path := writeConfig(t, `
[server]
port = "8081"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port, "env wins over file")
	assert.Equal(t, "sk-from-env", cfg.LLM.APIKey)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
}

func TestHasCredential(t *testing.T) {
	cases := []struct {
		name string
		cfg  LLMConfig
		want bool
	}{
		{"real key", LLMConfig{Provider: "openai", APIKey: "sk-abc123"}, true},
		{"empty key", LLMConfig{Provider: "openai"}, false},
		{"whitespace key", LLMConfig{Provider: "openai", APIKey: "   "}, false},
		{"placeholder from docs", LLMConfig{Provider: "openai", APIKey: "your-api-key"}, false},
		{"placeholder sk-xxx", LLMConfig{Provider: "openai", APIKey: "sk-xxxxxxxx"}, false},
		{"demo key", LLMConfig{Provider: "openai", APIKey: "demo"}, false},
		{"ollama needs no key", LLMConfig{Provider: "ollama"}, true},
		{"empty key other provider", LLMConfig{Provider: "gemini"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.cfg.HasCredential())
		})
	}
}

func TestQueueDurations(t *testing.T) {
	cfg := Default().Queue
	assert.Equal(t, "2s", cfg.Backoff().String())
	assert.Equal(t, "5s", cfg.EnqueueDelay().String())
	assert.Equal(t, "250ms", cfg.PollInterval().String())
}
