package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaidLevelLimits(t *testing.T) {
	assert.Equal(t, RateLimit{Threshold: 4, Window: 3 * time.Second}, RaidLow.Limit())
	assert.Equal(t, RateLimit{Threshold: 3, Window: 2 * time.Second}, RaidMedium.Limit())
	assert.Equal(t, RateLimit{Threshold: 2, Window: time.Second}, RaidHigh.Limit())

	// stricter as severity rises
	assert.Less(t, RaidHigh.Limit().Threshold, RaidMedium.Limit().Threshold)
	assert.Less(t, RaidMedium.Limit().Threshold, RaidLow.Limit().Threshold)
	assert.Less(t, RaidHigh.Limit().Window, RaidLow.Limit().Window)
}

func TestParseRaidLevelFallsBackToMedium(t *testing.T) {
	assert.Equal(t, RaidLow, ParseRaidLevel("low"))
	assert.Equal(t, RaidHigh, ParseRaidLevel(" HIGH "))
	assert.Equal(t, RaidMedium, ParseRaidLevel("medium"))

	for _, bogus := range []string{"", "extreme", "0", "lowest"} {
		assert.Equal(t, RaidMedium, ParseRaidLevel(bogus), bogus)
		assert.Equal(t, RaidMedium.Limit(), ParseRaidLevel(bogus).Limit(), bogus)
		assert.False(t, IsRaidLevel(bogus), bogus)
	}
	assert.True(t, IsRaidLevel("Low"))
	assert.Equal(t, "medium", RaidLevel(42).String())
	assert.Equal(t, RaidMedium.Limit(), RaidLevel(42).Limit())
}

func TestPolicyStore(t *testing.T) {
	ps := NewPolicyStore(true, "nonsense")
	assert.True(t, ps.Enabled())
	assert.Equal(t, RaidMedium, ps.Level())

	assert.False(t, ps.Toggle())
	assert.False(t, ps.Enabled())
	assert.True(t, ps.Toggle())

	assert.Equal(t, RaidHigh, ps.SetLevel("high"))
	assert.Equal(t, 2, ps.Limit().Threshold)

	// unknown level behaves exactly like medium
	assert.Equal(t, RaidMedium, ps.SetLevel("ultra"))
	assert.Equal(t, RaidMedium.Limit(), ps.Limit())
}

func TestPolicyStoresAreIndependent(t *testing.T) {
	a := NewPolicyStore(true, "low")
	b := NewPolicyStore(false, "high")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); a.SetLevel("low") }()
		go func() { defer wg.Done(); b.SetLevel("high") }()
	}
	wg.Wait()

	assert.Equal(t, RaidLow, a.Level())
	assert.Equal(t, RaidHigh, b.Level())
	assert.True(t, a.Enabled())
	assert.False(t, b.Enabled())
}

func TestParseVanityMap(t *testing.T) {
	entries := ParseVanityMap([]string{"g1:cool:r1", "bad", "g2::r2", " g3:code:r3 ", "a:b:c:d"})
	require.Len(t, entries, 2)
	assert.Equal(t, VanityEntry{GuildID: "g1", Code: "cool", RoleID: "r1"}, entries[0])
	assert.Equal(t, VanityEntry{GuildID: "g3", Code: "code", RoleID: "r3"}, entries[1])
}

func TestProfileStoreFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bot.GuildIDs = []string{"g1", " "}
	cfg.Disclosure.Channels = map[string]string{"g1": "c1", "g2": "c2", "g3": ""}
	cfg.Vanity.Entries = []string{"g1:cool:r1", "g4:x:r4"}

	ps := NewProfileStoreFromConfig(cfg)

	ch, ok := ps.DisclosureChannel("g1")
	assert.True(t, ok)
	assert.Equal(t, "c1", ch)

	_, ok = ps.DisclosureChannel("g3")
	assert.False(t, ok)
	_, ok = ps.DisclosureChannel("unknown")
	assert.False(t, ok)

	assert.True(t, ps.IsManaged("g1"))
	assert.False(t, ps.IsManaged("g2"))
	assert.False(t, ps.IsManaged("g4"))

	role, ok := ps.VanityRole("g1", "cool")
	assert.True(t, ok)
	assert.Equal(t, "r1", role)
	_, ok = ps.VanityRole("g1", "other")
	assert.False(t, ok)
	_, ok = ps.VanityRole("nope", "cool")
	assert.False(t, ok)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"bot": {"prefix": "?"},
		"anti_raid": {"enabled": true, "level": "low"},
		"runtime": {"shards": 2}
	}`), 0644))

	t.Setenv("TOKEN", "secret")
	t.Setenv("GUILD_IDS", "g1,g2")
	t.Setenv("HALL_OF_SHAME_MAP", "g1:c1,g2:c2")
	t.Setenv("VANITY_MAP", "g1:cool:r1,g2:neat:r2")
	t.Setenv("ANTI_RAID", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Bot.Token)
	assert.Equal(t, "?", cfg.Bot.Prefix)
	assert.Equal(t, []string{"g1", "g2"}, cfg.Bot.GuildIDs)
	assert.Equal(t, map[string]string{"g1": "c1", "g2": "c2"}, cfg.Disclosure.Channels)
	assert.Equal(t, []string{"g1:cool:r1", "g2:neat:r2"}, cfg.Vanity.Entries)
	assert.False(t, cfg.AntiRaid.Enabled)
	assert.Equal(t, "low", cfg.AntiRaid.Level)
	assert.Equal(t, 2, cfg.Runtime.Shards)
	// fields absent from the file keep their defaults
	assert.Equal(t, 256, cfg.Runtime.QueueSize)
	assert.Equal(t, 5*time.Minute, cfg.Runtime.SanctionDuration())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, "!", cfg.Bot.Prefix)
	assert.Equal(t, "medium", cfg.AntiRaid.Level)
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RAID_LEVEL=high\n"), 0644))
	t.Setenv("RAID_LEVEL", "")
	os.Unsetenv("RAID_LEVEL")

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "high", os.Getenv("RAID_LEVEL"))
	os.Unsetenv("RAID_LEVEL")
}

func TestLongestWindow(t *testing.T) {
	assert.Equal(t, 3*time.Second, LongestWindow())
}
