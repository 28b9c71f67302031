package bot

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"

	"go-antiraid/internal/decision"
	"go-antiraid/internal/ingest"
	"go-antiraid/internal/logging"
	"go-antiraid/internal/models"
	"go-antiraid/internal/vanity"
)

const GatewayComponent = "gateway"

type MessageController interface {
	HandleMessage(ctx context.Context, event *models.MessageEvent) decision.Outcome
}

type CommandHandler interface {
	HandleMessage(ctx context.Context, event *models.MessageEvent) bool
}

type JoinHandler interface {
	HandleJoin(ctx context.Context, event *models.MemberJoinEvent) vanity.Result
	Invalidate(guildID string)
}

type Executor interface {
	Submit(ctx context.Context, key string, job ingest.Job) error
}

type Heartbeater interface {
	Heartbeat(name string)
}

// Router turns gateway events into domain events and hands them on.
type Router struct {
	Controller MessageController
	Commands   CommandHandler
	Joins      JoinHandler
	Executor   Executor
	Health     Heartbeater

	ctx context.Context
}

// NewRouter binds every handler to ctx; cancelling it stops new work.
func NewRouter(ctx context.Context, controller MessageController, commands CommandHandler, joins JoinHandler, executor Executor, health Heartbeater) *Router {
	return &Router{
		Controller: controller,
		Commands:   commands,
		Joins:      joins,
		Executor:   executor,
		Health:     health,
		ctx:        ctx,
	}
}

// SetupEventHandlers registers the router's gateway handlers.
func (s *Session) SetupEventHandlers(r *Router) {
	s.discord.AddHandler(func(sess *discordgo.Session, ready *discordgo.Ready) {
		logging.Info("Bot ready! Connected as %s in %d guilds", ready.User.String(), len(ready.Guilds))
	})
	s.discord.AddHandler(func(sess *discordgo.Session, m *discordgo.MessageCreate) {
		r.OnMessage(ToMessageEvent(m))
	})
	s.discord.AddHandler(func(sess *discordgo.Session, m *discordgo.GuildMemberAdd) {
		r.OnMemberJoin(ToJoinEvent(m))
	})
	s.discord.AddHandler(func(sess *discordgo.Session, g *discordgo.GuildUpdate) {
		// the vanity code may have changed
		if r.Joins != nil {
			r.Joins.Invalidate(g.ID)
		}
	})
	logging.Info("Discord event handlers registered")
}

// OnMessage queues anti-raid evaluation on the actor's shard, then runs any
// prefix command on the caller's goroutine.
func (r *Router) OnMessage(event *models.MessageEvent) {
	if event == nil {
		return
	}
	if r.Health != nil {
		r.Health.Heartbeat(GatewayComponent)
	}

	if r.Controller != nil && r.Executor != nil {
		err := r.Executor.Submit(r.ctx, event.ActorID, func(ctx context.Context) {
			start := time.Now()
			outcome := r.Controller.HandleMessage(ctx, event)
			if outcome >= decision.OutcomeWarned {
				logging.Debug("Anti-raid %s %s in %s", outcome, event.ActorID, logging.Since(start))
			}
		})
		switch {
		case err == nil:
		case errors.Is(err, ingest.ErrExecutorClosed), errors.Is(err, context.Canceled):
			logging.Debug("Message %s not evaluated: %v", event.MessageID, err)
		default:
			logging.Warn("Message %s from %s not evaluated: %v", event.MessageID, event.ActorID, err)
		}
	}

	if r.Commands != nil {
		r.Commands.HandleMessage(r.ctx, event)
	}
}

func (r *Router) OnMemberJoin(event *models.MemberJoinEvent) {
	if event == nil || r.Joins == nil {
		return
	}
	if r.Health != nil {
		r.Health.Heartbeat(GatewayComponent)
	}
	r.Joins.HandleJoin(r.ctx, event)
}

// ToMessageEvent returns nil for messages without an author.
func ToMessageEvent(m *discordgo.MessageCreate) *models.MessageEvent {
	if m == nil || m.Message == nil || m.Author == nil {
		return nil
	}

	event := &models.MessageEvent{
		ActorID:   m.Author.ID,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
		IsBot:     m.Author.Bot || m.Author.System,
		Content:   m.Content,
	}
	if m.Member != nil {
		event.RoleIDs = m.Member.Roles
	}
	if !m.Timestamp.IsZero() {
		event.TimestampMillis = m.Timestamp.UnixMilli()
	} else {
		event.TimestampMillis = time.Now().UnixMilli()
	}
	return event
}

func ToJoinEvent(m *discordgo.GuildMemberAdd) *models.MemberJoinEvent {
	if m == nil || m.Member == nil || m.User == nil {
		return nil
	}
	return &models.MemberJoinEvent{
		GuildID: m.GuildID,
		UserID:  m.User.ID,
		IsBot:   m.User.Bot,
		Tag:     m.User.String(),
	}
}
