package commands

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func (h *Handler) handleServer(ctx context.Context, req *Request) error {
	name, members, err := h.guildSummary(ctx, req.GuildID)
	if err != nil {
		return err
	}

	return h.replyEmbed(ctx, req, &discordgo.MessageEmbed{
		Title: "📊 Server Info",
		Color: colorPurple,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Server Name", Value: name},
			{Name: "Server ID", Value: req.GuildID},
			{Name: "Members", Value: fmt.Sprintf("%d", members)},
			{Name: "Anti-Raid", Value: h.antiRaidState()},
		},
	})
}

// guildSummary prefers the gateway cache, which carries the exact member
// count. A plain REST guild fetch omits counts, so the fallback asks for them.
func (h *Handler) guildSummary(ctx context.Context, guildID string) (string, int, error) {
	if h.cache != nil {
		if guild, err := h.cache.Guild(guildID); err == nil && guild.MemberCount > 0 {
			return guild.Name, guild.MemberCount, nil
		}
	}

	guild, err := h.session.GuildWithCounts(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", 0, fmt.Errorf("failed to get guild: %w", err)
	}

	members := guild.MemberCount
	if members == 0 {
		members = guild.ApproximateMemberCount
	}
	return guild.Name, members, nil
}

// antiRaidState renders e.g. "enabled (medium)".
func (h *Handler) antiRaidState() string {
	policy := h.controller.Policy()
	state := "disabled"
	if policy.Enabled() {
		state = "enabled"
	}
	return fmt.Sprintf("%s (%s)", state, policy.Level())
}
