package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{
		"ENVIRONMENT", "MODSYNTH_ADDR", "MODSYNTH_SAMPLE_RATE", "MODSYNTH_BLOCK_SIZE",
		"MODSYNTH_AUDIO", "AI_PROVIDER", "AI_TIMEOUT", "MODSYNTH_PATCH_FILE",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8088", cfg.Addr)
	assert.InDelta(t, 48000, cfg.SampleRate, 0)
	assert.Equal(t, 512, cfg.BlockSize)
	assert.True(t, cfg.Audio)
	assert.Equal(t, ProviderOpenAI, cfg.AIProvider)
	assert.Equal(t, 60*time.Second, cfg.AITimeout)
	assert.False(t, cfg.IsProduction())
}

func TestOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("MODSYNTH_SAMPLE_RATE", "44100")
	t.Setenv("MODSYNTH_BLOCK_SIZE", "256")
	t.Setenv("MODSYNTH_AUDIO", "false")
	t.Setenv("AI_PROVIDER", "Gemini")
	t.Setenv("AI_API_KEY", "gemini-key")
	t.Setenv("AI_TIMEOUT", "15")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.InDelta(t, 44100, cfg.SampleRate, 0)
	assert.Equal(t, 256, cfg.BlockSize)
	assert.False(t, cfg.Audio)
	assert.Equal(t, ProviderGemini, cfg.AIProvider)
	assert.Equal(t, 15*time.Second, cfg.AITimeout)
	assert.True(t, cfg.AssistantEnabled())
}

func TestKeylessLocalServer(t *testing.T) {
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("AI_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("AI_MODEL", "llama3.2")
	t.Setenv("AI_API_KEY", "")
	require.NoError(t, os.Unsetenv("AI_API_KEY"))

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.AssistantEnabled())
	assert.Empty(t, cfg.AIAPIKey)
	assert.Equal(t, "http://localhost:11434/v1", cfg.AIBaseURL)
}

func TestAssistantDisabled(t *testing.T) {
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("AI_API_KEY", "set-but-unused")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.AssistantEnabled())
}

func TestGeminiRequiresKey(t *testing.T) {
	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("AI_API_KEY", "")

	_, err := FromEnv()
	require.ErrorIs(t, err, errInvalid)
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"MODSYNTH_SAMPLE_RATE", "fast"},
		{"MODSYNTH_SAMPLE_RATE", "100"},
		{"MODSYNTH_BLOCK_SIZE", "1000000"},
		{"MODSYNTH_AUDIO", "maybe"},
		{"AI_TIMEOUT", "soon"},
		{"AI_TIMEOUT", "-1s"},
		{"AI_PROVIDER", "ollama"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			require.ErrorIs(t, err, errInvalid)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("MODSYNTH_ADDR=:9999\nAI_MODEL=gpt-test\n"), 0o600))
	t.Setenv("MODSYNTH_ADDR", "")
	require.NoError(t, os.Unsetenv("MODSYNTH_ADDR"))
	t.Setenv("AI_MODEL", "")
	require.NoError(t, os.Unsetenv("AI_MODEL"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "gpt-test", cfg.AIModel)
}
