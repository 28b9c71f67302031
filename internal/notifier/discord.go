// Package notifier formats and posts the bot's chat messages.
package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"go-antiraid/internal/models"
)

const (
	WarningText = "⚠️ Stop spamming."

	ColorDarkRed = 0x992D22
	ColorGold    = 0xF1C40F
)

// MessageSender is the subset of *discordgo.Session the notifier uses.
type MessageSender interface {
	ChannelMessageSendReply(channelID, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Notifier struct {
	session MessageSender
	now     func() time.Time
}

func New(session MessageSender) *Notifier {
	return &Notifier{
		session: session,
		now:     time.Now,
	}
}

// SendWarning replies to the offending message.
func (n *Notifier) SendWarning(ctx context.Context, action *models.WarningAction) error {
	ref := &discordgo.MessageReference{
		MessageID: action.MessageID,
		ChannelID: action.ChannelID,
		GuildID:   action.GuildID,
	}
	if _, err := n.session.ChannelMessageSendReply(action.ChannelID, WarningText, ref, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to warn %s: %w", action.ActorID, err)
	}
	return nil
}

// SendDisclosure posts the Hall of Shame entry to the record's channel.
func (n *Notifier) SendDisclosure(ctx context.Context, record *models.DisclosureRecord) error {
	if record.ChannelID == "" {
		return nil
	}
	if _, err := n.session.ChannelMessageSendEmbed(record.ChannelID, HallOfShameEmbed(record), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to post disclosure %s: %w", record.CaseID, err)
	}
	return nil
}

func (n *Notifier) SendVanityJoin(ctx context.Context, channelID, userID, code, roleID string) error {
	if channelID == "" {
		return nil
	}
	embed := VanityJoinEmbed(userID, code, roleID, n.now())
	if _, err := n.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to post vanity join for %s: %w", userID, err)
	}
	return nil
}

func HallOfShameEmbed(record *models.DisclosureRecord) *discordgo.MessageEmbed {
	moderator := "Anti-Raid"
	if record.ModeratorID != nil && *record.ModeratorID != "" {
		moderator = fmt.Sprintf("<@%s>", *record.ModeratorID)
	}
	reason := record.Reason
	if reason == "" {
		reason = "No reason"
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🚫 Hall of Shame",
		Color:       ColorDarkRed,
		Description: "**You can’t overpass us.**\n**You broke the rules — and now we broke you.**",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User ID", Value: record.ActorID, Inline: true},
			{Name: "Moderator", Value: moderator, Inline: true},
			{Name: "Reason", Value: reason},
		},
		Timestamp: record.CreatedAt.Format(time.RFC3339),
	}
	if record.CaseID != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Case " + record.CaseID}
	}
	return embed
}

func VanityJoinEmbed(userID, code, roleID string, at time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "✨ New Vanity Join",
		Color:       ColorGold,
		Description: fmt.Sprintf("<@%s> joined using vanity code **%s** and received the role <@&%s>.", userID, code, roleID),
		Timestamp:   at.Format(time.RFC3339),
	}
}
