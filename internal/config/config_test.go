package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_PassesValidation(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.validate())
	assert.Equal(t, "milvus", cfg.VectorBackend)
	assert.Equal(t, "openai", cfg.GenerationProvider)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults().EmbeddingDim, cfg.EmbeddingDim)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vector_backend: qdrant\nembedding_dim: 1536\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "qdrant", cfg.VectorBackend)
	assert.Equal(t, 1536, cfg.EmbeddingDim)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("RAGCORE_VECTOR_BACKEND", "qdrant")
	t.Setenv("RAGCORE_MAX_ITERATIONS", "7")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "qdrant", cfg.VectorBackend)
	assert.Equal(t, 7, cfg.MaxIterations)
}

func TestLoad_EnvOverridesQueryExpansion(t *testing.T) {
	t.Setenv("RAGCORE_ENABLE_QUERY_EXPANSION", "true")
	t.Setenv("RAGCORE_QUERY_EXPANSION_COUNT", "5")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.EnableQueryExpansion)
	assert.Equal(t, 5, cfg.QueryExpansionCount)
}

func TestDefaults_QueryExpansionDisabledWithSaneCounts(t *testing.T) {
	cfg := Defaults()
	assert.False(t, cfg.EnableQueryExpansion)
	assert.Equal(t, 3, cfg.QueryExpansionCount)
	assert.Equal(t, 4, cfg.QueryExpansionPoolSize)
}

func TestValidate_RejectsZeroQueryExpansionCountWhenEnabled(t *testing.T) {
	cfg := Defaults()
	cfg.EnableQueryExpansion = true
	cfg.QueryExpansionCount = 0
	assert.Error(t, cfg.validate())
}

func TestValidate_RejectsZeroQueryExpansionPoolSizeWhenEnabled(t *testing.T) {
	cfg := Defaults()
	cfg.EnableQueryExpansion = true
	cfg.QueryExpansionPoolSize = 0
	assert.Error(t, cfg.validate())
}

func TestLoad_RejectsUnreadableFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_RejectsBadVectorBackend(t *testing.T) {
	cfg := Defaults()
	cfg.VectorBackend = "pinecone"
	assert.Error(t, cfg.validate())
}

func TestValidate_RejectsBadGenerationProvider(t *testing.T) {
	cfg := Defaults()
	cfg.GenerationProvider = "bedrock"
	assert.Error(t, cfg.validate())
}

func TestValidate_RejectsNonPositiveEmbeddingDim(t *testing.T) {
	cfg := Defaults()
	cfg.EmbeddingDim = 0
	assert.Error(t, cfg.validate())
}

func TestValidate_RejectsBadVectorMetric(t *testing.T) {
	cfg := Defaults()
	cfg.VectorMetric = "jaccard"
	assert.Error(t, cfg.validate())
}

func TestSpeculativeAndAgenticTimeout_ConvertMillisecondsToDuration(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 800_000_000, int(cfg.SpeculativeTimeout()))
	assert.Equal(t, 12_000_000_000, int(cfg.AgenticTimeout()))
}
