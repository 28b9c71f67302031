package whitelist

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImmortalShortCircuits(t *testing.T) {
	ps := New([]string{"god"})

	for _, tier := range []Tier{TierCommon, TierMod, TierAntiRaid, TierAll, Tier("made-up")} {
		assert.True(t, ps.IsAuthorized("god", nil, tier), tier)
	}
	assert.True(t, ps.IsImmortal("god"))
	assert.ErrorIs(t, ps.RemoveUser(TierAll, "god"), ErrImmortal)
	assert.True(t, ps.IsAuthorized("god", nil, TierMod))
}

func TestAuthorizationOrder(t *testing.T) {
	ps := New(nil)

	assert.False(t, ps.IsAuthorized("u1", nil, TierMod))
	assert.False(t, ps.IsAuthorized("", []string{"r"}, TierMod))

	require.NoError(t, ps.AddUser(TierMod, "u1"))
	assert.True(t, ps.IsAuthorized("u1", nil, TierMod))
	assert.False(t, ps.IsAuthorized("u1", nil, TierAntiRaid))

	require.NoError(t, ps.AddUser(TierAll, "u2"))
	assert.True(t, ps.IsAuthorized("u2", nil, TierAntiRaid))
	assert.True(t, ps.IsAuthorized("u2", nil, Tier("whatever")))

	require.NoError(t, ps.AddRole(TierMod, "modrole"))
	assert.True(t, ps.IsAuthorized("u3", []string{"x", "modrole"}, TierMod))
	assert.False(t, ps.IsAuthorized("u3", []string{"modrole"}, TierCommon))

	require.NoError(t, ps.AddRole(TierAll, "admin"))
	assert.True(t, ps.IsAuthorized("u4", []string{"admin"}, TierCommon))

	require.NoError(t, ps.RemoveRole(TierMod, "modrole"))
	assert.False(t, ps.IsAuthorized("u3", []string{"modrole"}, TierMod))

	require.NoError(t, ps.RemoveUser(TierMod, "u1"))
	assert.False(t, ps.IsAuthorized("u1", nil, TierMod))
}

func TestUnknownTierRejected(t *testing.T) {
	ps := New(nil)
	assert.ErrorIs(t, ps.AddUser(Tier("owner"), "u1"), ErrUnknownTier)
	assert.Error(t, ps.AddRole(TierMod, ""))

	_, err := ParseTier("Owner")
	assert.ErrorIs(t, err, ErrUnknownTier)

	tier, err := ParseTier(" ANTIRAID ")
	require.NoError(t, err)
	assert.Equal(t, TierAntiRaid, tier)
}

func TestSnapshotSorted(t *testing.T) {
	ps := New([]string{"z"})
	require.NoError(t, ps.AddUser(TierMod, "b"))
	require.NoError(t, ps.AddUser(TierMod, "a"))
	require.NoError(t, ps.AddRole(TierAntiRaid, "r"))

	snap := ps.Snapshot()
	require.Len(t, snap, len(Tiers))

	byTier := map[Tier]TierSnapshot{}
	for _, s := range snap {
		byTier[s.Tier] = s
	}
	assert.Equal(t, []string{"a", "b"}, byTier[TierMod].Users)
	assert.Equal(t, []string{"r"}, byTier[TierAntiRaid].Roles)
	assert.Equal(t, []string{"z"}, byTier[TierAll].Users)
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	ps := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = ps.AddRole(TierMod, "r")
			_ = ps.RemoveRole(TierMod, "r")
		}()
		go func() {
			defer wg.Done()
			ps.IsAuthorized("u", []string{"r"}, TierMod)
		}()
	}
	wg.Wait()
}
