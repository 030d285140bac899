package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbase-labs/kbase-cli/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultChunkSize, cfg.Chunking.ChunkSize)
	require.NotNil(t, cfg.Chunking.Overlap)
	assert.Equal(t, DefaultOverlap, *cfg.Chunking.Overlap)
	assert.Equal(t, DefaultProvider, cfg.Embedding.Provider)
	assert.Equal(t, DefaultBatchSize, cfg.Ingest.BatchSize)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedding.APIKeyEnv)
	assert.NotEmpty(t, cfg.Storage.DataDir)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultChunkSize, cfg.Chunking.ChunkSize)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[storage]
data_dir = "/srv/kbase"

[chunking]
chunk_size = 200
overlap = 25

[embedding]
provider = "openai"
model = "text-embedding-3-small"
api_key_env = "MY_KEY"

[ingest]
batch_size = 16
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/kbase", cfg.Storage.DataDir)
	assert.Equal(t, 200, cfg.Chunking.ChunkSize)
	require.NotNil(t, cfg.Chunking.Overlap)
	assert.Equal(t, 25, *cfg.Chunking.Overlap)
	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, "MY_KEY", cfg.Embedding.APIKeyEnv)
	assert.Equal(t, 16, cfg.Ingest.BatchSize)
}

func TestLoad_PartialFileKeepsOtherDefaults(t *testing.T) {
	path := writeConfig(t, `
[chunking]
chunk_size = 300
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Chunking.ChunkSize)
	require.NotNil(t, cfg.Chunking.Overlap)
	assert.Equal(t, DefaultOverlap, *cfg.Chunking.Overlap)
	assert.Equal(t, DefaultProvider, cfg.Embedding.Provider)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "this is not toml = = =")

	_, err := Load(path)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"negative chunk size", "[chunking]\nchunk_size = -1\n"},
		{"overlap at chunk size", "[chunking]\nchunk_size = 10\noverlap = 10\n"},
		{"negative overlap", "[chunking]\noverlap = -5\n"},
		{"negative batch size", "[ingest]\nbatch_size = -2\n"},
		{"unknown provider", "[embedding]\nprovider = \"carrier-pigeon\"\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func TestLoad_SmallChunkSizeDropsDefaultOverlap(t *testing.T) {
	// With chunk_size below the default overlap, an omitted overlap falls
	// back to zero instead of an invalid 50.
	cfg, err := Load(writeConfig(t, "[chunking]\nchunk_size = 20\n"))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Chunking.ChunkSize)
	require.NotNil(t, cfg.Chunking.Overlap)
	assert.Equal(t, 0, *cfg.Chunking.Overlap)
}

func TestLoad_ExplicitZeroOverlap(t *testing.T) {
	// An explicit overlap = 0 is a valid setting and must not be promoted
	// to the default.
	cfg, err := Load(writeConfig(t, "[chunking]\nchunk_size = 500\noverlap = 0\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.Chunking.Overlap)
	assert.Equal(t, 0, *cfg.Chunking.Overlap)
}

func TestIndexDir(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{DataDir: "/var/kbase"}}
	assert.Equal(t,
		filepath.Join("/var/kbase", "tenants", "acme", "index"),
		cfg.IndexDir("acme"))
}
