package config

import (
	"strings"
	"sync"
)

// GuildProfile is the static routing for one guild: where disclosures go and
// which role a vanity code grants.
type GuildProfile struct {
	GuildID             string
	Managed             bool
	DisclosureChannelID string
	VanityRoles         map[string]string
}

type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*GuildProfile
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[string]*GuildProfile),
	}
}

// NewProfileStoreFromConfig builds routing from the guild, hall of shame and
// vanity settings. Malformed vanity entries are skipped.
func NewProfileStoreFromConfig(cfg *Config) *ProfileStore {
	ps := NewProfileStore()

	for _, guildID := range cfg.Bot.GuildIDs {
		guildID = strings.TrimSpace(guildID)
		if guildID == "" {
			continue
		}
		ps.getOrCreate(guildID).Managed = true
	}

	for guildID, channelID := range cfg.Disclosure.Channels {
		if guildID == "" || channelID == "" {
			continue
		}
		ps.getOrCreate(guildID).DisclosureChannelID = channelID
	}

	for _, entry := range ParseVanityMap(cfg.Vanity.Entries) {
		ps.getOrCreate(entry.GuildID).VanityRoles[entry.Code] = entry.RoleID
	}

	return ps
}

func (ps *ProfileStore) getOrCreate(guildID string) *GuildProfile {
	if profile, exists := ps.profiles[guildID]; exists {
		return profile
	}
	profile := &GuildProfile{
		GuildID:     guildID,
		VanityRoles: make(map[string]string),
	}
	ps.profiles[guildID] = profile
	return profile
}

// DisclosureChannel returns the Hall of Shame channel for a guild.
func (ps *ProfileStore) DisclosureChannel(guildID string) (string, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	profile, exists := ps.profiles[guildID]
	if !exists || profile.DisclosureChannelID == "" {
		return "", false
	}
	return profile.DisclosureChannelID, true
}

func (ps *ProfileStore) VanityRole(guildID, code string) (string, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	profile, exists := ps.profiles[guildID]
	if !exists {
		return "", false
	}
	roleID, ok := profile.VanityRoles[code]
	return roleID, ok
}

func (ps *ProfileStore) IsManaged(guildID string) bool {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	profile, exists := ps.profiles[guildID]
	return exists && profile.Managed
}

type VanityEntry struct {
	GuildID string
	Code    string
	RoleID  string
}

// ParseVanityMap reads guild:code:role triples. Entries missing a part are dropped.
func ParseVanityMap(entries []string) []VanityEntry {
	out := make([]VanityEntry, 0, len(entries))
	for _, raw := range entries {
		parts := strings.Split(strings.TrimSpace(raw), ":")
		if len(parts) != 3 {
			continue
		}
		guildID, code, roleID := parts[0], parts[1], parts[2]
		if guildID == "" || code == "" || roleID == "" {
			continue
		}
		out = append(out, VanityEntry{GuildID: guildID, Code: code, RoleID: roleID})
	}
	return out
}
