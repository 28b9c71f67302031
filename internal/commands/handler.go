package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"go-antiraid/internal/decision"
	"go-antiraid/internal/logging"
	"go-antiraid/internal/metrics"
	"go-antiraid/internal/models"
	"go-antiraid/internal/whitelist"
)

// Session is the subset of *discordgo.Session the commands use.
type Session interface {
	ChannelMessageSendReply(channelID, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbedReply(channelID string, embed *discordgo.MessageEmbed, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildWithCounts(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	HeartbeatLatency() time.Duration
}

// GuildCache is the gateway state cache; *discordgo.State satisfies it.
type GuildCache interface {
	Guild(guildID string) (*discordgo.Guild, error)
}

// Request is one parsed prefix command.
type Request struct {
	GuildID   string
	ChannelID string
	MessageID string
	AuthorID  string
	RoleIDs   []string
	Name      string
	Args      []string
}

func (r *Request) reference() *discordgo.MessageReference {
	return &discordgo.MessageReference{MessageID: r.MessageID, ChannelID: r.ChannelID, GuildID: r.GuildID}
}

type access uint8

const (
	accessAnyone access = iota
	accessTier
	accessImmortal
)

type command struct {
	name   string
	access access
	tier   whitelist.Tier
	run    func(h *Handler, ctx context.Context, req *Request) error
}

type Options struct {
	Prefix     string
	Controller *decision.Controller
	Privileges *whitelist.PrivilegeSet
	Cache      GuildCache
	GuildCount func() int
	Now        func() time.Time
}

// Handler routes prefix commands from guild messages.
type Handler struct {
	session    Session
	prefix     string
	controller *decision.Controller
	privileges *whitelist.PrivilegeSet
	cache      GuildCache
	guildCount func() int
	now        func() time.Time
	startedAt  time.Time
	gather     func() *SystemStats
	commands   map[string]command
}

func NewHandler(session Session, opts Options) *Handler {
	h := &Handler{
		session:    session,
		prefix:     opts.Prefix,
		controller: opts.Controller,
		privileges: opts.Privileges,
		cache:      opts.Cache,
		guildCount: opts.GuildCount,
		now:        opts.Now,
	}
	if h.prefix == "" {
		h.prefix = "!"
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.guildCount == nil {
		h.guildCount = func() int { return 0 }
	}
	h.startedAt = h.now()
	h.gather = func() *SystemStats {
		return gatherSystemStats(h.session.HeartbeatLatency(), h.now().Sub(h.startedAt), h.guildCount())
	}

	h.commands = make(map[string]command)
	for _, c := range []command{
		{name: "cmds", run: (*Handler).handleCmds},
		{name: "info", run: (*Handler).handleInfo},
		{name: "server", run: (*Handler).handleServer},
		{name: "ping", run: (*Handler).handlePing},
		{name: "stats", run: (*Handler).handleStats},
		{name: "anti-raid", access: accessTier, tier: whitelist.TierAntiRaid, run: (*Handler).handleAntiRaid},
		{name: "unwarn", access: accessTier, tier: whitelist.TierMod, run: (*Handler).handleUnwarn},
		{name: "whitelist", access: accessImmortal, run: (*Handler).handleWhitelist},
	} {
		h.commands[c.name] = c
	}
	return h
}

// ParseCommand splits "<prefix>name arg arg" into a lowercased name and its
// arguments.
func ParseCommand(prefix, content string) (string, []string, bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}
	fields := strings.Fields(content[len(prefix):])
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// HandleMessage runs the command in event, if any, and reports whether the
// message was a known command.
func (h *Handler) HandleMessage(ctx context.Context, event *models.MessageEvent) bool {
	if event.GuildID == "" || event.IsBot {
		return false
	}
	name, args, ok := ParseCommand(h.prefix, event.Content)
	if !ok {
		return false
	}
	cmd, known := h.commands[name]
	if !known {
		return false
	}

	req := &Request{
		GuildID:   event.GuildID,
		ChannelID: event.ChannelID,
		MessageID: event.MessageID,
		AuthorID:  event.ActorID,
		RoleIDs:   event.RoleIDs,
		Name:      name,
		Args:      args,
	}

	if !h.allowed(cmd, req) {
		metrics.CommandsHandled.WithLabelValues(name, "denied").Inc()
		h.reply(ctx, req, "⛔ You don't have permission to use this command.")
		return true
	}

	start := time.Now()
	if err := cmd.run(h, ctx, req); err != nil {
		metrics.CommandsHandled.WithLabelValues(name, "error").Inc()
		logging.Error("Command error [%s]: %v", name, err)
		h.reply(ctx, req, fmt.Sprintf("❌ Error: %s", userMessage(err)))
		return true
	}
	metrics.CommandsHandled.WithLabelValues(name, "ok").Inc()
	logging.Debug("Command %s by %s took %s", name, req.AuthorID, logging.Since(start))
	return true
}

func (h *Handler) reply(ctx context.Context, req *Request, content string) {
	if _, err := h.session.ChannelMessageSendReply(req.ChannelID, content, req.reference(), discordgo.WithContext(ctx)); err != nil {
		logging.Warn("Failed to reply to %s: %v", req.Name, err)
	}
}

func (h *Handler) replyEmbed(ctx context.Context, req *Request, embed *discordgo.MessageEmbed) error {
	_, err := h.session.ChannelMessageSendEmbedReply(req.ChannelID, embed, req.reference(), discordgo.WithContext(ctx))
	return err
}

func userMessage(err error) string {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Message
	}
	return err.Error()
}
