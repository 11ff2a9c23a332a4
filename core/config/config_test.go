package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"BOT_TOKEN", "BOT_TOKEN_PARAM", "TELEGRAM_RUN_MODE", "WEBHOOK_URL", "STORE_BACKEND", "REDIS_URL", "RELAY_REQUIRED_CHATS"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", " 123:abc ")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, RunModeWebhook, cfg.Telegram.RunMode)
	assert.Equal(t, DefaultPort, cfg.Webhook.Port)
	assert.Equal(t, int64(-1002589515039), cfg.Relay.ChannelID)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, DefaultStoreTTL, cfg.Store.TTL)

	require.Len(t, cfg.Relay.Communities, 3)
	assert.Equal(t, Community{ID: "@Anofes", Title: "📢 Join @Anofes", URL: "https://t.me/Anofes"}, cfg.Relay.Communities[0])
	assert.Equal(t, "https://t.me/Mwtlan", cfg.Relay.Communities[1].URL)
}

func TestLoadRequiresToken(t *testing.T) {
	clearEnv(t)
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token is required")

	t.Setenv("BOT_TOKEN_PARAM", "/menfes/bot-token")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Telegram.Token)
	assert.Equal(t, "/menfes/bot-token", cfg.Telegram.TokenParam)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
telegram:
  token: "from-file"
  run_mode: polling
relay:
  channel_id: -100123
  channel_name: "@Other"
  communities:
    - id: "@One"
      title: "Join One"
      url: "https://t.me/+invite"
    - id: "@one"
    - id: "-100777"
store:
  backend: REDIS
  ttl: 30m
  redis:
    url: redis://localhost:6379/1
`)
	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, int64(-100123), cfg.Relay.ChannelID)

	require.Len(t, cfg.Relay.Communities, 2)
	assert.Equal(t, "https://t.me/+invite", cfg.Relay.Communities[0].URL)
	assert.Equal(t, Community{ID: "-100777", Title: "📢 Join -100777"}, cfg.Relay.Communities[1])

	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Store.TTL)
	assert.Equal(t, DefaultRedisPrefix, cfg.Store.Redis.Prefix)
}

func TestRequiredChatsOverrideCommunities(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("RELAY_REQUIRED_CHATS", "@A, @B,@a")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Len(t, cfg.Relay.Communities, 2)
	assert.Equal(t, "@A", cfg.Relay.Communities[0].ID)
	assert.Equal(t, "https://t.me/B", cfg.Relay.Communities[1].URL)
}

func TestNormalizeRejects(t *testing.T) {
	base := func() Config {
		cfg := Defaults()
		cfg.Telegram.Token = "123:abc"
		return cfg
	}
	cases := map[string]func(*Config){
		"run mode":    func(c *Config) { c.Telegram.RunMode = "carrier-pigeon" },
		"port":        func(c *Config) { c.Webhook.Port = 0 },
		"channel":     func(c *Config) { c.Relay.ChannelID = 0 },
		"communities": func(c *Config) { c.Relay.Communities = []Community{{ID: " "}} },
		"backend":     func(c *Config) { c.Store.Backend = "etcd" },
		"ttl":         func(c *Config) { c.Store.TTL = -time.Second },
		"redis url":   func(c *Config) { c.Store.Backend = BackendRedis },
		"postgres":    func(c *Config) { c.Store.Backend = BackendPostgres },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			mutate(&cfg)
			assert.Error(t, Normalize(&cfg))
		})
	}
	assert.Error(t, Normalize(nil))
}

func TestNormalizePostgresDefaults(t *testing.T) {
	cfg := Defaults()
	cfg.Telegram.Token = "123:abc"
	cfg.Store.Backend = BackendPostgres
	cfg.Store.Database = DatabaseConfig{Host: "db", Name: "menfes"}

	require.NoError(t, Normalize(&cfg))
	assert.Equal(t, "5432", cfg.Store.Database.Port)
	assert.Equal(t, "disable", cfg.Store.Database.SSLMode)
	assert.Equal(t, 5, cfg.Store.Database.MaxConnections)
	assert.Equal(t, DefaultSweepInterval, cfg.Store.SweepInterval)
}
