package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"go-antiraid/internal/logging"
)

// Intents cover guild metadata, member joins, message content and moderation.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent |
	discordgo.IntentsGuildBans

type Session struct {
	discord *discordgo.Session
}

func New(token string) (*Session, error) {
	if token == "" {
		return nil, fmt.Errorf("bot token is empty")
	}
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	dg.Identify.Intents = Intents

	return &Session{discord: dg}, nil
}

// Discord exposes the underlying discordgo session.
func (s *Session) Discord() *discordgo.Session {
	return s.discord
}

// Connect opens the gateway websocket.
func (s *Session) Connect() error {
	if err := s.discord.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	if s.discord.State.User != nil {
		logging.Info("Connected as %s (%s)", s.discord.State.User.String(), s.discord.State.User.ID)
	}
	return nil
}

func (s *Session) Close() error {
	if s.discord != nil {
		return s.discord.Close()
	}
	return nil
}

// GuildCount is the number of guilds in the gateway state cache.
func (s *Session) GuildCount() int {
	if s.discord.State == nil {
		return 0
	}
	s.discord.State.RLock()
	defer s.discord.State.RUnlock()
	return len(s.discord.State.Guilds)
}
