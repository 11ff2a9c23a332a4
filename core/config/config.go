package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token string `yaml:"token" envconfig:"BOT_TOKEN"`
	// TokenParam names an SSM parameter holding the token; used when Token is empty.
	TokenParam string `yaml:"token_param" envconfig:"BOT_TOKEN_PARAM"`
	RunMode    string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int    `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
	APIURL                 string `yaml:"api_url" envconfig:"TELEGRAM_API_URL"`
}

// WebhookConfig specifies the HTTP server receiving Telegram updates.
type WebhookConfig struct {
	// URL is the public address registered via setWebhook. Empty leaves registration to the operator.
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level     string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format    string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder string `yaml:"keys_order"`
	Dir       string `yaml:"dir"`
	BotFile   string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// Community is a chat the user must belong to before submitting.
type Community struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// RelayConfig describes the broadcast channel and the membership gate.
type RelayConfig struct {
	ChannelID   int64  `yaml:"channel_id" envconfig:"RELAY_CHANNEL_ID"`
	ChannelName string `yaml:"channel_name" envconfig:"RELAY_CHANNEL_NAME"`
	BotUsername string `yaml:"bot_username" envconfig:"RELAY_BOT_USERNAME"`
	// RequiredChats replaces the community ids when set from the environment.
	RequiredChats []string    `yaml:"-" envconfig:"RELAY_REQUIRED_CHATS"`
	Communities   []Community `yaml:"communities" ignored:"true"`
}

// RedisConfig configures the redis state backend.
type RedisConfig struct {
	URL    string `yaml:"url" envconfig:"REDIS_URL"`
	Prefix string `yaml:"prefix" envconfig:"REDIS_PREFIX"`
}

// DatabaseConfig holds postgres connection settings.
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// StoreConfig selects and tunes the conversation state backend.
type StoreConfig struct {
	Backend       string         `yaml:"backend" envconfig:"STORE_BACKEND"`
	TTL           time.Duration  `yaml:"ttl" envconfig:"STORE_TTL"`
	SweepInterval time.Duration  `yaml:"sweep_interval" envconfig:"STORE_SWEEP_INTERVAL"`
	Redis         RedisConfig    `yaml:"redis"`
	Database      DatabaseConfig `yaml:"database"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// BackendMemory keeps conversation state in process memory.
	BackendMemory = "memory"
	// BackendRedis keeps conversation state in redis.
	BackendRedis = "redis"
	// BackendPostgres keeps conversation state in postgres.
	BackendPostgres = "postgres"
)

const (
	DefaultPort          = 8001
	DefaultStoreTTL      = 24 * time.Hour
	DefaultSweepInterval = 10 * time.Minute
	DefaultRedisPrefix   = "menfes:state"
)

// Config aggregates all bot configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Logging  LoggingConfig  `yaml:"logging"`
	Relay    RelayConfig    `yaml:"relay"`
	Store    StoreConfig    `yaml:"store"`
}

// Defaults returns the configuration of the production @Anofes relay.
func Defaults() Config {
	return Config{
		Telegram: TelegramConfig{RunMode: RunModeWebhook},
		Webhook:  WebhookConfig{Listen: "0.0.0.0", Port: DefaultPort},
		Relay: RelayConfig{
			ChannelID:   -1002589515039,
			ChannelName: "@Anofes",
			BotUsername: "TextMenfesbot",
			Communities: []Community{
				{ID: "@Anofes", Title: "📢 Join @Anofes"},
				{ID: "@Mwtlan", Title: "👥 Join Mwtlan"},
				{ID: "@KhamahdalysRoom", Title: "📺 Join KhamahdalysRoom"},
			},
		},
		Store: StoreConfig{
			Backend:       BackendMemory,
			TTL:           DefaultStoreTTL,
			SweepInterval: DefaultSweepInterval,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	cfg.Telegram.Token = strings.TrimSpace(cfg.Telegram.Token)
	cfg.Telegram.TokenParam = strings.TrimSpace(cfg.Telegram.TokenParam)
	if cfg.Telegram.Token == "" && cfg.Telegram.TokenParam == "" {
		return fmt.Errorf("telegram token is required (telegram.token or telegram.token_param)")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeWebhook
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			cfg.Webhook.Listen = "0.0.0.0"
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if err := normalizeRelay(&cfg.Relay); err != nil {
		return err
	}
	return normalizeStore(&cfg.Store)
}

func normalizeRelay(r *RelayConfig) error {
	if r.ChannelID == 0 {
		return fmt.Errorf("relay.channel_id is required")
	}
	if len(r.RequiredChats) > 0 {
		communities := make([]Community, 0, len(r.RequiredChats))
		for _, id := range r.RequiredChats {
			communities = append(communities, Community{ID: id})
		}
		r.Communities = communities
		r.RequiredChats = nil
	}

	seen := make(map[string]struct{}, len(r.Communities))
	out := r.Communities[:0]
	for _, c := range r.Communities {
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" {
			continue
		}
		key := strings.ToLower(c.ID)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		name := strings.TrimPrefix(c.ID, "@")
		if strings.TrimSpace(c.URL) == "" && strings.HasPrefix(c.ID, "@") {
			c.URL = "https://t.me/" + name
		}
		if strings.TrimSpace(c.Title) == "" {
			c.Title = "📢 Join " + c.ID
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return fmt.Errorf("relay.communities must list at least one chat")
	}
	r.Communities = out

	r.ChannelName = strings.TrimSpace(r.ChannelName)
	r.BotUsername = strings.TrimPrefix(strings.TrimSpace(r.BotUsername), "@")
	return nil
}

func normalizeStore(s *StoreConfig) error {
	backend := strings.ToLower(strings.TrimSpace(s.Backend))
	if backend == "" {
		backend = BackendMemory
	}
	if s.TTL < 0 {
		return fmt.Errorf("store.ttl must be >= 0")
	}
	if s.TTL == 0 {
		s.TTL = DefaultStoreTTL
	}
	if s.SweepInterval <= 0 {
		s.SweepInterval = DefaultSweepInterval
	}

	switch backend {
	case BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(s.Redis.URL) == "" {
			return fmt.Errorf("store.redis.url is required when store.backend is 'redis'")
		}
		if strings.TrimSpace(s.Redis.Prefix) == "" {
			s.Redis.Prefix = DefaultRedisPrefix
		}
	case BackendPostgres:
		db := &s.Database
		if strings.TrimSpace(db.Host) == "" || strings.TrimSpace(db.Name) == "" {
			return fmt.Errorf("store.database.host and store.database.name are required when store.backend is 'postgres'")
		}
		if db.Port == "" {
			db.Port = "5432"
		}
		if db.SSLMode == "" {
			db.SSLMode = "disable"
		}
		if db.MaxConnections <= 0 {
			db.MaxConnections = 5
		}
	default:
		return fmt.Errorf("invalid store.backend %q; allowed: memory, redis, postgres", s.Backend)
	}
	s.Backend = backend
	return nil
}
