package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultImmortalIDs can never lose their privileges at runtime.
var DefaultImmortalIDs = []string{"1390372727767961640", "728984351316115474"}

type Config struct {
	Bot        BotConfig        `json:"bot"`
	AntiRaid   AntiRaidConfig   `json:"anti_raid"`
	Disclosure DisclosureConfig `json:"disclosure"`
	Vanity     VanityConfig     `json:"vanity"`
	Runtime    RuntimeConfig    `json:"runtime"`
	Network    NetworkConfig    `json:"network"`
	Logging    LoggingConfig    `json:"logging"`
	Metrics    MetricsConfig    `json:"metrics"`
}

type BotConfig struct {
	Token       string   `json:"token"`
	Prefix      string   `json:"prefix"`
	GuildIDs    []string `json:"guild_ids"`
	ImmortalIDs []string `json:"immortal_ids"`
}

type AntiRaidConfig struct {
	Enabled bool   `json:"enabled"`
	Level   string `json:"level"`
}

type DisclosureConfig struct {
	// guild ID -> channel ID
	Channels map[string]string `json:"channels"`
}

type VanityConfig struct {
	// guild:code:role
	Entries  []string `json:"entries"`
	CacheTTL int      `json:"cache_ttl_ms"`
}

type RuntimeConfig struct {
	Shards          int `json:"shards"`
	QueueSize       int `json:"queue_size"`
	EnqueueTimeout  int `json:"enqueue_timeout_ms"`
	SweepInterval   int `json:"sweep_interval_ms"`
	SanctionMinutes int `json:"sanction_minutes"`
}

type NetworkConfig struct {
	HTTPPoolSize   int     `json:"http_pool_size"`
	WorkerCount    int     `json:"worker_count"`
	JobQueueSize   int     `json:"job_queue_size"`
	MaxAttempts    int     `json:"max_attempts"`
	RequestsPerSec float64 `json:"requests_per_sec"`
	APIBaseURL     string  `json:"api_base_url"`
}

type LoggingConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type MetricsConfig struct {
	Listen string `json:"listen"`
}

// envOverlay mirrors the variables the bot has always read from the
// environment. Unset variables leave the file/default value alone.
type envOverlay struct {
	Token        string            `envconfig:"TOKEN"`
	DiscordToken string            `envconfig:"DISCORD_TOKEN"`
	Prefix       string            `envconfig:"PREFIX"`
	GuildIDs     []string          `envconfig:"GUILD_IDS"`
	ImmortalIDs  []string          `envconfig:"IMMORTAL_IDS"`
	HallOfShame  map[string]string `envconfig:"HALL_OF_SHAME_MAP"`
	VanityMap    []string          `envconfig:"VANITY_MAP"`
	AntiRaid     *bool             `envconfig:"ANTI_RAID"`
	RaidLevel    string            `envconfig:"RAID_LEVEL"`
	LogLevel     string            `envconfig:"LOG_LEVEL"`
	LogFile      string            `envconfig:"LOG_FILE"`
	MetricsAddr  string            `envconfig:"METRICS_LISTEN"`
	APIBaseURL   string            `envconfig:"API_BASE_URL"`
}

// Load reads the JSON file at path over the defaults, then applies the
// environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.fillZeroes()
	return cfg, nil
}

// LoadEnvFile loads a dotenv file into the process environment without
// overriding variables that are already set.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func ApplyEnv(cfg *Config) error {
	var env envOverlay
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if env.DiscordToken != "" {
		cfg.Bot.Token = env.DiscordToken
	}
	if env.Token != "" {
		cfg.Bot.Token = env.Token
	}
	if env.Prefix != "" {
		cfg.Bot.Prefix = env.Prefix
	}
	if len(env.GuildIDs) > 0 {
		cfg.Bot.GuildIDs = env.GuildIDs
	}
	if len(env.ImmortalIDs) > 0 {
		cfg.Bot.ImmortalIDs = append(cfg.Bot.ImmortalIDs, env.ImmortalIDs...)
	}
	if len(env.HallOfShame) > 0 {
		cfg.Disclosure.Channels = env.HallOfShame
	}
	if len(env.VanityMap) > 0 {
		cfg.Vanity.Entries = env.VanityMap
	}
	if env.AntiRaid != nil {
		cfg.AntiRaid.Enabled = *env.AntiRaid
	}
	if env.RaidLevel != "" {
		cfg.AntiRaid.Level = env.RaidLevel
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
	if env.LogFile != "" {
		cfg.Logging.File = env.LogFile
	}
	if env.MetricsAddr != "" {
		cfg.Metrics.Listen = env.MetricsAddr
	}
	if env.APIBaseURL != "" {
		cfg.Network.APIBaseURL = env.APIBaseURL
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Bot: BotConfig{
			Prefix:      "!",
			ImmortalIDs: append([]string(nil), DefaultImmortalIDs...),
		},
		AntiRaid: AntiRaidConfig{
			Enabled: true,
			Level:   "medium",
		},
		Disclosure: DisclosureConfig{
			Channels: make(map[string]string),
		},
		Vanity: VanityConfig{
			CacheTTL: 60000,
		},
		Runtime: RuntimeConfig{
			Shards:          8,
			QueueSize:       256,
			EnqueueTimeout:  100,
			SweepInterval:   60000,
			SanctionMinutes: 5,
		},
		Network: NetworkConfig{
			HTTPPoolSize:   4,
			WorkerCount:    4,
			JobQueueSize:   1024,
			MaxAttempts:    4,
			RequestsPerSec: 5,
			APIBaseURL:     "https://discord.com/api/v10",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "antiraid.log",
		},
		Metrics: MetricsConfig{
			Listen: ":9464",
		},
	}
}

// fillZeroes restores defaults for sizes a config file set to zero or less.
func (c *Config) fillZeroes() {
	def := DefaultConfig()
	if c.Bot.Prefix == "" {
		c.Bot.Prefix = def.Bot.Prefix
	}
	if c.Disclosure.Channels == nil {
		c.Disclosure.Channels = make(map[string]string)
	}
	if c.Runtime.Shards <= 0 {
		c.Runtime.Shards = def.Runtime.Shards
	}
	if c.Runtime.QueueSize <= 0 {
		c.Runtime.QueueSize = def.Runtime.QueueSize
	}
	if c.Runtime.EnqueueTimeout <= 0 {
		c.Runtime.EnqueueTimeout = def.Runtime.EnqueueTimeout
	}
	if c.Runtime.SweepInterval <= 0 {
		c.Runtime.SweepInterval = def.Runtime.SweepInterval
	}
	if c.Runtime.SanctionMinutes <= 0 {
		c.Runtime.SanctionMinutes = def.Runtime.SanctionMinutes
	}
	if c.Network.HTTPPoolSize <= 0 {
		c.Network.HTTPPoolSize = def.Network.HTTPPoolSize
	}
	if c.Network.WorkerCount <= 0 {
		c.Network.WorkerCount = def.Network.WorkerCount
	}
	if c.Network.JobQueueSize <= 0 {
		c.Network.JobQueueSize = def.Network.JobQueueSize
	}
	if c.Network.MaxAttempts <= 0 {
		c.Network.MaxAttempts = def.Network.MaxAttempts
	}
	if c.Network.RequestsPerSec <= 0 {
		c.Network.RequestsPerSec = def.Network.RequestsPerSec
	}
	if c.Network.APIBaseURL == "" {
		c.Network.APIBaseURL = def.Network.APIBaseURL
	}
	if c.Vanity.CacheTTL <= 0 {
		c.Vanity.CacheTTL = def.Vanity.CacheTTL
	}
}

func (c RuntimeConfig) SweepEvery() time.Duration {
	return time.Duration(c.SweepInterval) * time.Millisecond
}

func (c RuntimeConfig) EnqueueWait() time.Duration {
	return time.Duration(c.EnqueueTimeout) * time.Millisecond
}

func (c RuntimeConfig) SanctionDuration() time.Duration {
	return time.Duration(c.SanctionMinutes) * time.Minute
}

func (c VanityConfig) CacheFor() time.Duration {
	return time.Duration(c.CacheTTL) * time.Millisecond
}
