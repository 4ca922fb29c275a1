// Package config loads the engine's configuration from a YAML file with
// environment-variable overrides, the way tarsy's pkg/config loads
// tarsy.yaml: defaults, then file, then env, each layer overriding the values
// it sets from the layers before it.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ragcore-ai/engine/internal/ragerr"
)

// VectorMetric is the similarity metric a collection is created with.
type VectorMetric string

const (
	MetricCosine VectorMetric = "cosine"
	MetricL2     VectorMetric = "l2"
	MetricIP     VectorMetric = "ip"
)

// MCPServerConfig describes one child process the multiplexer can spawn.
// AllowedRoots is empty for servers that don't expose filesystem tools; when
// non-empty, the multiplexer rejects tool calls whose arguments reference a
// path outside these roots before the call reaches the subprocess (§4.5's
// defense-in-depth on top of the child's own enforcement).
type MCPServerConfig struct {
	Command      string            `yaml:"command"`
	Args         []string          `yaml:"args"`
	Env          map[string]string `yaml:"env"`
	AllowedRoots []string          `yaml:"allowed_roots"`
}

// Config is the process-wide configuration object, covering every option in
// SPEC_FULL §6 plus the ambient stack (store addresses, generation
// provider, logging).
type Config struct {
	// Router / agentic timing.
	SpeculativeTimeoutMS int `yaml:"speculative_timeout_ms"`
	AgenticTimeoutMS     int `yaml:"agentic_timeout_ms"`
	MaxIterations        int `yaml:"max_iterations"`

	// Vector store.
	EmbeddingDim             int          `yaml:"embedding_dim"`
	VectorMetric             VectorMetric `yaml:"vector_metric"`
	EnableKoreanOptimization bool         `yaml:"enable_korean_optimization"`

	// EnableQueryExpansion turns on the vector retriever's paraphrase
	// expansion + reciprocal-rank-fusion path (§4.4): QueryExpansionCount
	// paraphrases are searched concurrently, bounded by
	// QueryExpansionPoolSize goroutines, and fused into one ranking.
	EnableQueryExpansion   bool `yaml:"enable_query_expansion"`
	QueryExpansionCount    int  `yaml:"query_expansion_count"`
	QueryExpansionPoolSize int  `yaml:"query_expansion_pool_size"`

	// VectorBackend selects which of the two concrete vectorstore.Store
	// adapters cmd/ragcored wires up; both implement the same interface, so
	// this is the only place backend choice is decided (§4.6).
	VectorBackend            string `yaml:"vector_backend"`
	VectorCollection         string `yaml:"vector_collection"`
	CorpusSize               int64  `yaml:"corpus_size"`
	VectorPoolSize           int    `yaml:"vector_pool_size"`
	VectorPoolIdleTTLSeconds int    `yaml:"vector_pool_idle_ttl_s"`

	// Episodic memory (always Qdrant-backed; see internal/episode).
	EpisodeCollection string `yaml:"episode_collection"`

	// TokenEncoding names the tiktoken-go encoding the query analyzer uses
	// for QueryAnalysis.EstimatedTokens. Empty disables token estimation.
	TokenEncoding string `yaml:"token_encoding"`

	// Cache.
	L1TTLSeconds int `yaml:"l1_ttl_s"`
	L2TTLSeconds int `yaml:"l2_ttl_s"`
	L2MaxSize    int `yaml:"l2_max_size"`

	// MCP. LocalMCPServer/WebMCPServer name the entries in MCPServers that
	// back the local-data and web-search specialist retrievers; empty
	// disables the corresponding retriever.
	MCPServers     map[string]MCPServerConfig `yaml:"mcp_servers"`
	LocalMCPServer string                     `yaml:"local_mcp_server"`
	WebMCPServer   string                     `yaml:"web_mcp_server"`

	// Monitor.
	AlertErrorRate float64 `yaml:"alert_error_rate"`
	AlertP95MS     int     `yaml:"alert_p95_ms"`

	// Resolved Open Questions (§9), externalized as tunables per the
	// implementer's note rather than hard-coded.
	EpisodeSimilarityThreshold      float64 `yaml:"episode_similarity_threshold"`
	ObservationRelevanceThreshold   float64 `yaml:"observation_relevance_threshold"`
	CorrectiveConfidenceBoost       float64 `yaml:"corrective_confidence_boost"`

	// Ambient stack: stores and the generation provider.
	MilvusAddr     string `yaml:"milvus_addr"`
	QdrantAddr     string `yaml:"qdrant_addr"`
	RedisAddr      string `yaml:"redis_addr"`
	LogLevel       string `yaml:"log_level"`

	// GenerationProvider selects which generation.Model backend cmd/ragcored
	// constructs ("openai" or "anthropic"); GenerationModel is that
	// provider's model name.
	GenerationProvider    string `yaml:"generation_provider"`
	GenerationModel       string `yaml:"generation_model"`
	OpenAIEmbeddingModel  string `yaml:"openai_embedding_model"`

	// Env var names holding secrets, never the secrets themselves.
	OpenAIAPIKeyEnv    string `yaml:"openai_api_key_env"`
	AnthropicAPIKeyEnv string `yaml:"anthropic_api_key_env"`
}

// Defaults returns the configuration's zero state with every value the spec
// calls out a default for already filled in.
func Defaults() *Config {
	return &Config{
		SpeculativeTimeoutMS:          800,
		AgenticTimeoutMS:              12_000,
		MaxIterations:                 3,
		EmbeddingDim:                  768,
		VectorMetric:                  MetricCosine,
		EnableKoreanOptimization:      false,
		EnableQueryExpansion:          false,
		QueryExpansionCount:           3,
		QueryExpansionPoolSize:        4,
		VectorBackend:                 "milvus",
		VectorCollection:              "ragcore_chunks",
		VectorPoolSize:                4,
		VectorPoolIdleTTLSeconds:      300,
		EpisodeCollection:             "ragcore_episodes",
		TokenEncoding:                 "cl100k_base",
		L1TTLSeconds:                  300,
		L2TTLSeconds:                  1800,
		L2MaxSize:                     10_000,
		MCPServers:                    map[string]MCPServerConfig{},
		AlertErrorRate:                0.05,
		AlertP95MS:                    5_000,
		EpisodeSimilarityThreshold:    0.92,
		ObservationRelevanceThreshold: 0.15,
		CorrectiveConfidenceBoost:     0.1,
		MilvusAddr:                    "localhost:19530",
		QdrantAddr:                    "localhost:6334",
		RedisAddr:                     "localhost:6379",
		LogLevel:                      "info",
		GenerationProvider:            "openai",
		GenerationModel:               "gpt-4o-mini",
		OpenAIEmbeddingModel:          "text-embedding-3-small",
		OpenAIAPIKeyEnv:               "OPENAI_API_KEY",
		AnthropicAPIKeyEnv:            "ANTHROPIC_API_KEY",
	}
}

// Load reads a local .env file if present (ignored if missing — godotenv is
// a development convenience, not a deployment requirement), then layers a
// YAML config file over Defaults(), then applies environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, ragerr.Wrap(ragerr.InvalidArgument, "read config file "+path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, ragerr.Wrap(ragerr.InvalidArgument, "parse config file "+path, err)
		}
	}
	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	overrideString(&c.MilvusAddr, "RAGCORE_MILVUS_ADDR")
	overrideString(&c.QdrantAddr, "RAGCORE_QDRANT_ADDR")
	overrideString(&c.RedisAddr, "RAGCORE_REDIS_ADDR")
	overrideString(&c.LogLevel, "RAGCORE_LOG_LEVEL")
	overrideString(&c.GenerationModel, "RAGCORE_GENERATION_MODEL")
	overrideString(&c.GenerationProvider, "RAGCORE_GENERATION_PROVIDER")
	overrideString(&c.VectorBackend, "RAGCORE_VECTOR_BACKEND")
	overrideInt(&c.SpeculativeTimeoutMS, "RAGCORE_SPECULATIVE_TIMEOUT_MS")
	overrideInt(&c.AgenticTimeoutMS, "RAGCORE_AGENTIC_TIMEOUT_MS")
	overrideInt(&c.MaxIterations, "RAGCORE_MAX_ITERATIONS")
	overrideBool(&c.EnableQueryExpansion, "RAGCORE_ENABLE_QUERY_EXPANSION")
	overrideInt(&c.QueryExpansionCount, "RAGCORE_QUERY_EXPANSION_COUNT")
}

func overrideString(dst *string, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		var parsed int
		if _, err := fmt.Sscanf(v, "%d", &parsed); err == nil {
			*dst = parsed
		}
	}
}

func overrideBool(dst *bool, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*dst = v == "true" || v == "1"
	}
}

func (c *Config) validate() error {
	if c.EmbeddingDim <= 0 {
		return ragerr.New(ragerr.InvalidArgument, "embedding_dim must be positive")
	}
	switch c.VectorMetric {
	case MetricCosine, MetricL2, MetricIP:
	default:
		return ragerr.New(ragerr.InvalidArgument, "vector_metric must be one of cosine, l2, ip")
	}
	if c.MaxIterations < 0 {
		return ragerr.New(ragerr.InvalidArgument, "max_iterations must be >= 0")
	}
	switch c.VectorBackend {
	case "milvus", "qdrant":
	default:
		return ragerr.New(ragerr.InvalidArgument, "vector_backend must be one of milvus, qdrant")
	}
	switch c.GenerationProvider {
	case "openai", "anthropic":
	default:
		return ragerr.New(ragerr.InvalidArgument, "generation_provider must be one of openai, anthropic")
	}
	if c.EnableQueryExpansion {
		if c.QueryExpansionCount <= 0 {
			return ragerr.New(ragerr.InvalidArgument, "query_expansion_count must be positive when enable_query_expansion is set")
		}
		if c.QueryExpansionPoolSize <= 0 {
			return ragerr.New(ragerr.InvalidArgument, "query_expansion_pool_size must be positive when enable_query_expansion is set")
		}
	}
	return nil
}

// SpeculativeTimeout and AgenticTimeout convert the millisecond config
// fields into durations for direct use with context.WithTimeout.
func (c *Config) SpeculativeTimeout() time.Duration {
	return time.Duration(c.SpeculativeTimeoutMS) * time.Millisecond
}

func (c *Config) AgenticTimeout() time.Duration {
	return time.Duration(c.AgenticTimeoutMS) * time.Millisecond
}
