package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

func (h *Handler) handlePing(ctx context.Context, req *Request) error {
	ws := h.session.HeartbeatLatency()

	var color int
	switch {
	case ws < 60*time.Millisecond:
		color = 0x00FF00
	case ws < 120*time.Millisecond:
		color = 0xFFA500
	default:
		color = 0xFF0000
	}

	return h.replyEmbed(ctx, req, &discordgo.MessageEmbed{
		Title: "🚀 Pong!",
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "⚡ WebSocket", Value: fmt.Sprintf("`%dms`", ws.Milliseconds()), Inline: true},
			{Name: "🛡️ Anti-Raid", Value: h.antiRaidState(), Inline: true},
		},
	})
}
