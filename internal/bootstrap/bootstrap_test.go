package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-antiraid/internal/config"
)

func clearOverrides(t *testing.T) {
	t.Helper()
	for _, key := range []string{"RAID_LEVEL", "LOG_LEVEL", "LOG_FILE", "METRICS_LISTEN", "PREFIX"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigAppliesOverrides(t *testing.T) {
	clearOverrides(t)
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("TOKEN", "env-token")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"anti_raid":{"enabled":true,"level":"high"},"bot":{"prefix":"?"}}`), 0o644))

	b := New(Options{
		ConfigPath:    path,
		EnvFile:       filepath.Join(t.TempDir(), "missing.env"),
		LogLevel:      "debug",
		MetricsListen: "127.0.0.1:0",
	})
	require.NoError(t, b.loadConfig())

	assert.Equal(t, "env-token", b.Config.Bot.Token)
	assert.Equal(t, "?", b.Config.Bot.Prefix)
	assert.Equal(t, "high", b.Config.AntiRaid.Level)
	assert.Equal(t, "debug", b.Config.Logging.Level)
	assert.Equal(t, "127.0.0.1:0", b.Config.Metrics.Listen)
}

func TestLoadConfigRequiresToken(t *testing.T) {
	clearOverrides(t)
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("TOKEN", "")

	b := New(Options{ConfigPath: filepath.Join(t.TempDir(), "none.json")})
	err := b.loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no bot token")
}

func TestStartRequiresInitialize(t *testing.T) {
	assert.Error(t, New(Options{}).Start())
}

func TestWireBuildsComponents(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Bot.Token = "test-token"
	cfg.Bot.GuildIDs = []string{"g1"}
	cfg.Runtime.Shards = 3
	cfg.Metrics.Listen = ""

	b := &Bootstrap{Config: cfg}
	require.NoError(t, Wire(b))

	c := b.Components
	require.NotNil(t, c)
	t.Cleanup(func() {
		c.Executor.Stop()
		c.cancel()
		_ = c.Dispatcher.Stop(context.Background())
	})

	assert.Nil(t, c.Metrics)
	assert.Equal(t, 3, c.Executor.Shards())
	assert.Equal(t, cfg.Network.HTTPPoolSize, c.HTTPPool.Size())
	assert.True(t, c.Policy.Enabled())
	assert.Equal(t, config.RaidMedium, c.Policy.Level())
	assert.Same(t, c.Policy, c.Controller.Policy())
	assert.True(t, c.Privileges.IsImmortal(config.DefaultImmortalIDs[0]))
	assert.True(t, c.Profiles.IsManaged("g1"))
	assert.Equal(t, 0, c.Dispatcher.Pending())
	assert.NotNil(t, c.Router.Controller)
	assert.NotNil(t, c.Router.Commands)
	assert.NotNil(t, c.Router.Joins)
}
