package commands

import (
	"context"
	"fmt"

	"go-antiraid/internal/config"
	"go-antiraid/internal/logging"
	"go-antiraid/pkg/util"
)

// handleAntiRaid toggles the engine with no argument, or sets the level.
func (h *Handler) handleAntiRaid(ctx context.Context, req *Request) error {
	if len(req.Args) == 0 {
		enabled := h.controller.Toggle()
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		logging.Info("Anti-raid %s by %s in %s", state, req.AuthorID, req.GuildID)
		h.reply(ctx, req, fmt.Sprintf("🛡️ Anti-Raid is now **%s**.", state))
		return nil
	}

	requested := req.Args[0]
	level := h.controller.SetLevel(requested)
	if !config.IsRaidLevel(requested) {
		h.reply(ctx, req, fmt.Sprintf("Unknown level `%s`, using **%s**.", requested, level))
		return nil
	}
	h.reply(ctx, req, fmt.Sprintf("🛡️ Anti-Raid level set to **%s**.", level))
	return nil
}

func (h *Handler) handleUnwarn(ctx context.Context, req *Request) error {
	if len(req.Args) == 0 {
		h.reply(ctx, req, fmt.Sprintf("Usage: `%sunwarn @user`", h.prefix))
		return nil
	}
	userID := util.ParseID(req.Args[0])
	if !util.IsSnowflake(userID) {
		h.reply(ctx, req, "Invalid user.")
		return nil
	}

	if h.controller.ResetWarnings(userID) {
		logging.Info("Warnings for %s cleared by %s", userID, req.AuthorID)
		h.reply(ctx, req, fmt.Sprintf("✅ Cleared warnings for <@%s>.", userID))
		return nil
	}
	h.reply(ctx, req, fmt.Sprintf("<@%s> has no warnings.", userID))
	return nil
}
