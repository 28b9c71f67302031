// Package whitelist decides whether an actor holds a privilege tier.
//
// Each tier has a user set and a role set. The "all" tier grants every tier.
// Immortal actors pass every check and cannot be removed at runtime.
package whitelist

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type Tier string

const (
	TierCommon   Tier = "common"
	TierMod      Tier = "mod"
	TierAntiRaid Tier = "antiraid"
	TierAll      Tier = "all"
)

var Tiers = []Tier{TierCommon, TierMod, TierAntiRaid, TierAll}

var (
	ErrUnknownTier = errors.New("unknown tier")
	ErrImmortal    = errors.New("immortal actors cannot be removed")
)

// ParseTier accepts a tier name in any case.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tiers {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

type idSet map[string]struct{}

func (s idSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s idSet) sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

type PrivilegeSet struct {
	mu       sync.RWMutex
	immortal idSet
	users    map[Tier]idSet
	roles    map[Tier]idSet
}

// New builds a privilege set whose immortal set is fixed to immortals.
// Immortals are also placed in the "all" user set.
func New(immortals []string) *PrivilegeSet {
	ps := &PrivilegeSet{
		immortal: make(idSet),
		users:    make(map[Tier]idSet, len(Tiers)),
		roles:    make(map[Tier]idSet, len(Tiers)),
	}
	for _, t := range Tiers {
		ps.users[t] = make(idSet)
		ps.roles[t] = make(idSet)
	}
	for _, id := range immortals {
		if id == "" {
			continue
		}
		ps.immortal[id] = struct{}{}
		ps.users[TierAll][id] = struct{}{}
	}
	return ps
}

func (ps *PrivilegeSet) IsImmortal(actorID string) bool {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.immortal.has(actorID)
}

// IsAuthorized never fails: an empty actor or an unknown tier is simply
// not authorized unless the universal sets say otherwise.
func (ps *PrivilegeSet) IsAuthorized(actorID string, roleIDs []string, tier Tier) bool {
	if actorID == "" {
		return false
	}

	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if ps.immortal.has(actorID) {
		return true
	}
	if ps.users[TierAll].has(actorID) {
		return true
	}
	if users, ok := ps.users[tier]; ok && users.has(actorID) {
		return true
	}

	tierRoles := ps.roles[tier]
	for _, roleID := range roleIDs {
		if ps.roles[TierAll].has(roleID) || tierRoles.has(roleID) {
			return true
		}
	}
	return false
}

func (ps *PrivilegeSet) AddUser(tier Tier, userID string) error {
	return ps.mutate(ps.users, tier, userID, true)
}

func (ps *PrivilegeSet) RemoveUser(tier Tier, userID string) error {
	if ps.IsImmortal(userID) {
		return ErrImmortal
	}
	return ps.mutate(ps.users, tier, userID, false)
}

func (ps *PrivilegeSet) AddRole(tier Tier, roleID string) error {
	return ps.mutate(ps.roles, tier, roleID, true)
}

func (ps *PrivilegeSet) RemoveRole(tier Tier, roleID string) error {
	return ps.mutate(ps.roles, tier, roleID, false)
}

func (ps *PrivilegeSet) mutate(sets map[Tier]idSet, tier Tier, id string, add bool) error {
	if id == "" {
		return errors.New("empty id")
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	set, ok := sets[tier]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
	if add {
		set[id] = struct{}{}
	} else {
		delete(set, id)
	}
	return nil
}

// TierSnapshot lists the members of one tier, sorted.
type TierSnapshot struct {
	Tier  Tier
	Users []string
	Roles []string
}

func (ps *PrivilegeSet) Snapshot() []TierSnapshot {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	out := make([]TierSnapshot, 0, len(Tiers))
	for _, t := range Tiers {
		out = append(out, TierSnapshot{
			Tier:  t,
			Users: ps.users[t].sorted(),
			Roles: ps.roles[t].sorted(),
		})
	}
	return out
}
