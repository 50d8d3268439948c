package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every tunable of the service.
type Config struct {
	Server ServerConfig
	Match  MatchConfig
	AI     AIConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	match, err := loadMatchConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Match: match, AI: ai}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3001"
	}

	if strings.Contains(port, ":") {
		// Accept ":3001" or "127.0.0.1:3001" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// MatchConfig holds the matchmaking and liveness timers. All of them are
// fixed wall-clock thresholds, never adaptive.
type MatchConfig struct {
	// AffinityWindow is how long a session with declared interests holds
	// out for an interest-matching partner before accepting anyone.
	AffinityWindow time.Duration

	// RetrySweepInterval drives the periodic re-run of the pairing scan
	// for entries already waiting in the queue.
	RetrySweepInterval time.Duration

	// FallbackThreshold is the queue residency after which a simulated
	// partner is assigned; FallbackSweepInterval is how often that is
	// checked.
	FallbackThreshold     time.Duration
	FallbackSweepInterval time.Duration

	// StaleTimeout evicts entries that sat in the queue unmatched;
	// StaleSweepInterval is how often that is checked.
	StaleTimeout       time.Duration
	StaleSweepInterval time.Duration

	// IdleTimeout disconnects sessions with no inbound traffic;
	// IdleSweepInterval is how often that is checked.
	IdleTimeout       time.Duration
	IdleSweepInterval time.Duration

	// PingInterval is the transport keep-alive probe period. A connection
	// is terminated after PingMissLimit consecutive unanswered probes.
	PingInterval  time.Duration
	PingMissLimit int

	// MaxInterests caps how many declared interests a session may carry.
	MaxInterests int
}

func loadMatchConfig() (MatchConfig, error) {
	cfg := MatchConfig{
		AffinityWindow:        15 * time.Second,
		RetrySweepInterval:    3 * time.Second,
		FallbackThreshold:     30 * time.Second,
		FallbackSweepInterval: 5 * time.Second,
		StaleTimeout:          5 * time.Minute,
		StaleSweepInterval:    time.Minute,
		IdleTimeout:           3 * time.Minute,
		IdleSweepInterval:     30 * time.Second,
		PingInterval:          15 * time.Second,
		PingMissLimit:         2,
		MaxInterests:          5,
	}

	overrides := []struct {
		key string
		dst *time.Duration
	}{
		{"MATCH_AFFINITY_WINDOW", &cfg.AffinityWindow},
		{"MATCH_RETRY_INTERVAL", &cfg.RetrySweepInterval},
		{"MATCH_FALLBACK_THRESHOLD", &cfg.FallbackThreshold},
		{"MATCH_FALLBACK_INTERVAL", &cfg.FallbackSweepInterval},
		{"MATCH_STALE_TIMEOUT", &cfg.StaleTimeout},
		{"MATCH_STALE_INTERVAL", &cfg.StaleSweepInterval},
		{"MATCH_IDLE_TIMEOUT", &cfg.IdleTimeout},
		{"MATCH_IDLE_INTERVAL", &cfg.IdleSweepInterval},
		{"MATCH_PING_INTERVAL", &cfg.PingInterval},
	}
	for _, o := range overrides {
		if err := parseOptionalDurationEnv(o.key, o.dst); err != nil {
			return MatchConfig{}, err
		}
	}

	if miss, err := parseOptionalIntEnv("MATCH_PING_MISS_LIMIT"); err != nil {
		return MatchConfig{}, err
	} else if miss != nil {
		if *miss < 1 {
			cfg.PingMissLimit = 1
		} else {
			cfg.PingMissLimit = *miss
		}
	}

	if limit, err := parseOptionalIntEnv("MATCH_MAX_INTERESTS"); err != nil {
		return MatchConfig{}, err
	} else if limit != nil && *limit > 0 {
		cfg.MaxInterests = *limit
	}

	return cfg, nil
}

// AIConfig describes the LLM backing the simulated chat partner.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials missing: provide ARK_API_KEY + ARK_MODEL or AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalDurationEnv(key string, dst *time.Duration) error {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	val, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	if val <= 0 {
		return fmt.Errorf("invalid %s value %q: must be positive", key, value)
	}
	*dst = val
	return nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
