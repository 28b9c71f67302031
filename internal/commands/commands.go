package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"go-antiraid/pkg/util"
)

const (
	colorBlue   = 0x3498DB
	colorGreen  = 0x57F287
	colorPurple = 0x9B59B6
)

func (h *Handler) handleCmds(ctx context.Context, req *Request) error {
	p := h.prefix
	var b strings.Builder

	fmt.Fprintf(&b, "**Info**\n%scmds %sinfo @user %sserver %sping %sstats\n", p, p, p, p, p)
	if h.canUse("unwarn", req) {
		fmt.Fprintf(&b, "\n**Moderation**\n%sunwarn @user\n", p)
	}
	if h.canUse("anti-raid", req) {
		fmt.Fprintf(&b, "\n**Security**\n%santi-raid\n%santi-raid low|medium|high\n", p, p)
	}
	if h.canUse("whitelist", req) {
		fmt.Fprintf(&b, "\n**Whitelist**\n%swhitelist add|remove user|role <tier> <id>\n%swhitelist view\n", p, p)
	}

	return h.replyEmbed(ctx, req, &discordgo.MessageEmbed{
		Title:       "🛠️ Bot Commands",
		Color:       colorBlue,
		Description: b.String(),
	})
}

func (h *Handler) handleInfo(ctx context.Context, req *Request) error {
	targetID := req.AuthorID
	if len(req.Args) > 0 {
		targetID = util.ParseID(req.Args[0])
	}
	if !util.IsSnowflake(targetID) {
		h.reply(ctx, req, "User not found.")
		return nil
	}

	member, err := h.session.GuildMember(req.GuildID, targetID, discordgo.WithContext(ctx))
	if err != nil || member == nil || member.User == nil {
		h.reply(ctx, req, "User not found.")
		return nil
	}

	roles := "None"
	if len(member.Roles) > 0 {
		roles = strings.Join(h.roleNames(ctx, req.GuildID, member.Roles), ", ")
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "User", Value: member.User.String()},
		{Name: "User ID", Value: member.User.ID},
	}
	if !member.JoinedAt.IsZero() {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Joined Server", Value: fmt.Sprintf("<t:%d:R>", member.JoinedAt.Unix())})
	}
	if created, err := discordgo.SnowflakeTimestamp(member.User.ID); err == nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Account Created", Value: fmt.Sprintf("<t:%d:R>", created.Unix())})
	}
	fields = append(fields, &discordgo.MessageEmbedField{Name: "Roles", Value: roles})

	return h.replyEmbed(ctx, req, &discordgo.MessageEmbed{
		Title:  "ℹ️ User Info",
		Color:  colorGreen,
		Fields: fields,
	})
}

// roleNames resolves role IDs against the guild, falling back to mentions.
func (h *Handler) roleNames(ctx context.Context, guildID string, roleIDs []string) []string {
	byID := map[string]string{}
	if guild, err := h.session.Guild(guildID, discordgo.WithContext(ctx)); err == nil {
		for _, role := range guild.Roles {
			byID[role.ID] = role.Name
		}
	}

	names := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		} else {
			names = append(names, "<@&"+id+">")
		}
	}
	return names
}
