// Package vanity grants a configured role to members who join while a guild's
// vanity invite code is the one configured for that role.
package vanity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"go-antiraid/internal/config"
	"go-antiraid/internal/logging"
	"go-antiraid/internal/metrics"
	"go-antiraid/internal/models"
)

// GuildAPI is the subset of *discordgo.Session the assigner uses.
type GuildAPI interface {
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

type JoinNotifier interface {
	SendVanityJoin(ctx context.Context, channelID, userID, code, roleID string) error
}

type Result string

const (
	ResultSkipped  Result = "skipped"
	ResultNoVanity Result = "no_vanity"
	ResultNoRole   Result = "no_role"
	ResultGranted  Result = "granted"
	ResultFailed   Result = "failed"
)

var errNoVanity = errors.New("guild has no vanity code")

type Assigner struct {
	api      GuildAPI
	profiles *config.ProfileStore
	notifier JoinNotifier
	codes    *expirable.LRU[string, string]
}

func NewAssigner(api GuildAPI, profiles *config.ProfileStore, notifier JoinNotifier, cacheTTL time.Duration) *Assigner {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &Assigner{
		api:      api,
		profiles: profiles,
		notifier: notifier,
		codes:    expirable.NewLRU[string, string](256, nil, cacheTTL),
	}
}

// HandleJoin never fails the caller; problems are logged and reported in the
// result.
func (a *Assigner) HandleJoin(ctx context.Context, event *models.MemberJoinEvent) Result {
	result := a.handleJoin(ctx, event)
	metrics.VanityGrants.WithLabelValues(string(result)).Inc()
	return result
}

func (a *Assigner) handleJoin(ctx context.Context, event *models.MemberJoinEvent) Result {
	if event.IsBot || !a.profiles.IsManaged(event.GuildID) {
		return ResultSkipped
	}

	code, err := a.vanityCode(ctx, event.GuildID)
	if err != nil {
		if !errors.Is(err, errNoVanity) {
			logging.Warn("Vanity lookup failed for guild %s: %v", event.GuildID, err)
		}
		return ResultNoVanity
	}

	roleID, ok := a.profiles.VanityRole(event.GuildID, code)
	if !ok {
		return ResultNoRole
	}

	if err := a.api.GuildMemberRoleAdd(event.GuildID, event.UserID, roleID, discordgo.WithContext(ctx)); err != nil {
		logging.Error("Vanity role %s could not be granted to %s: %v", roleID, event.UserID, err)
		return ResultFailed
	}
	logging.Info("%s joined with vanity %s and got role %s", event.Tag, code, roleID)

	if channelID, ok := a.profiles.DisclosureChannel(event.GuildID); ok {
		if err := a.notifier.SendVanityJoin(ctx, channelID, event.UserID, code, roleID); err != nil {
			logging.Warn("Vanity join log failed: %v", err)
		}
	}
	return ResultGranted
}

// vanityCode reads the guild's current code, caching it briefly so a join
// wave costs one API call.
func (a *Assigner) vanityCode(ctx context.Context, guildID string) (string, error) {
	if code, ok := a.codes.Get(guildID); ok {
		if code == "" {
			return "", errNoVanity
		}
		return code, nil
	}

	guild, err := a.api.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("fetch guild: %w", err)
	}

	a.codes.Add(guildID, guild.VanityURLCode)
	if guild.VanityURLCode == "" {
		return "", errNoVanity
	}
	return guild.VanityURLCode, nil
}

// Invalidate drops the cached code, e.g. after a guild update.
func (a *Assigner) Invalidate(guildID string) {
	a.codes.Remove(guildID)
}
