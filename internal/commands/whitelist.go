package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"go-antiraid/internal/logging"
	"go-antiraid/internal/whitelist"
	"go-antiraid/pkg/util"
)

func (h *Handler) handleWhitelist(ctx context.Context, req *Request) error {
	if len(req.Args) == 1 && strings.EqualFold(req.Args[0], "view") {
		return h.handleWhitelistView(ctx, req)
	}
	if len(req.Args) != 4 {
		h.whitelistUsage(ctx, req)
		return nil
	}

	op := strings.ToLower(req.Args[0])
	kind := strings.ToLower(req.Args[1])
	tier, err := whitelist.ParseTier(req.Args[2])
	if err != nil {
		h.reply(ctx, req, fmt.Sprintf("Unknown tier. Use one of: %s.", tierNames))
		return nil
	}
	id := util.ParseID(req.Args[3])
	if !util.IsSnowflake(id) {
		h.reply(ctx, req, "Invalid ID.")
		return nil
	}

	var mutate func(whitelist.Tier, string) error
	switch {
	case op == "add" && kind == "user":
		mutate = h.privileges.AddUser
	case op == "remove" && kind == "user":
		mutate = h.privileges.RemoveUser
	case op == "add" && kind == "role":
		mutate = h.privileges.AddRole
	case op == "remove" && kind == "role":
		mutate = h.privileges.RemoveRole
	default:
		h.whitelistUsage(ctx, req)
		return nil
	}

	if err := mutate(tier, id); err != nil {
		if errors.Is(err, whitelist.ErrImmortal) {
			h.reply(ctx, req, "Immortal users cannot be removed.")
			return nil
		}
		return err
	}

	logging.Info("Whitelist %s %s %s in tier %s by %s", op, kind, id, tier, req.AuthorID)
	h.reply(ctx, req, fmt.Sprintf("✅ %s %s `%s` %s tier **%s**.", pastTense(op), kind, id, preposition(op), tier))
	return nil
}

func (h *Handler) handleWhitelistView(ctx context.Context, req *Request) error {
	snapshot := h.privileges.Snapshot()

	fields := make([]*discordgo.MessageEmbedField, 0, len(snapshot))
	for _, entry := range snapshot {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  strings.ToUpper(string(entry.Tier)),
			Value: fmt.Sprintf("**Users:** %s\n**Roles:** %s", mentions(entry.Users, "<@%s>"), mentions(entry.Roles, "<@&%s>")),
		})
	}

	return h.replyEmbed(ctx, req, &discordgo.MessageEmbed{
		Title:  "Whitelist Registry",
		Color:  0x2B2D31,
		Fields: fields,
	})
}

func (h *Handler) whitelistUsage(ctx context.Context, req *Request) {
	h.reply(ctx, req, fmt.Sprintf("Usage: `%swhitelist add|remove user|role <tier> <id>` or `%swhitelist view`", h.prefix, h.prefix))
}

func mentions(ids []string, format string) string {
	if len(ids) == 0 {
		return "None"
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = fmt.Sprintf(format, id)
	}
	return strings.Join(out, ", ")
}

func pastTense(op string) string {
	if op == "add" {
		return "Added"
	}
	return "Removed"
}

func preposition(op string) string {
	if op == "add" {
		return "to"
	}
	return "from"
}
