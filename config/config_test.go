package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  PostgresConfig
		want string
	}{
		{
			name: "defaults",
			cfg:  DefaultPostgres(),
			want: "host=localhost port=5432 user=postgres dbname=postgres sslmode=disable",
		},
		{
			name: "password with spaces",
			cfg: PostgresConfig{
				Host: "db", Port: 6543, User: "app", Password: "s3cret pass", Database: "sales",
			},
			want: "host=db port=6543 user=app password='s3cret pass' dbname=sales",
		},
		{
			name: "quote in password",
			cfg:  PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "it's", Database: "d"},
			want: `host=db port=5432 user=u password='it\'s' dbname=d`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenRouter, cfg.AI.Provider)
	assert.Equal(t, 2048, cfg.AI.MaxTokens)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.AI.OpenRouter.BaseURL)
	assert.Equal(t, 10000, cfg.Data.ContextChars)
	assert.Equal(t, 5, cfg.Data.PreviewRows)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `ai:
  provider: ollama
  ollama:
    model: mistral
    base_url: http://gpu-box:11434/v1
data:
  context_chars: 500
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	t.Setenv("OLLAMA_MODEL", "qwen2.5")
	t.Setenv("PAIDATA_MAX_TOKENS", "512")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, cfg.AI.Provider)
	assert.Equal(t, "qwen2.5", cfg.AI.Ollama.Model)
	assert.Equal(t, "http://gpu-box:11434/v1", cfg.AI.Ollama.BaseURL)
	assert.Equal(t, 512, cfg.AI.MaxTokens)
	assert.Equal(t, 500, cfg.Data.ContextChars)
	assert.Equal(t, cfg.AI.Ollama, cfg.AI.Endpoint())
}

func TestLoadFromInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai: [unclosed"), 0600))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultAppConfig()
	cfg.AI.OpenRouter.APIKey = "sk-or-test"

	require.NoError(t, SaveTo(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-or-test", loaded.AI.OpenRouter.APIKey)
}

func TestSourceStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	store, err := OpenSourceStore(path)
	require.NoError(t, err)
	assert.Empty(t, store.Sources)

	store.Add(Source{Name: "orders", Postgres: DefaultPostgres(), Query: "SELECT * FROM orders"})
	store.Add(Source{Name: "users", Postgres: DefaultPostgres(), Query: "SELECT * FROM users"})
	store.Add(Source{Name: "orders", Postgres: DefaultPostgres(), Query: "SELECT id FROM orders"})
	require.Len(t, store.Sources, 2)
	require.NoError(t, store.Save())

	reopened, err := OpenSourceStore(path)
	require.NoError(t, err)
	src, ok := reopened.Get("orders")
	require.True(t, ok)
	assert.Equal(t, "SELECT id FROM orders", src.Query)
	assert.Equal(t, 5432, src.Postgres.Port)

	assert.True(t, reopened.Delete("orders"))
	assert.False(t, reopened.Delete("orders"))
	_, ok = reopened.Get("orders")
	assert.False(t, ok)
}
