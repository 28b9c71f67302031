package models

import "time"

const (
	SanctionReason   = "Anti-Raid Spam"
	DisclosureReason = "Spam"

	DefaultSanctionMillis int64 = 5 * 60 * 1000
)

// WarningAction asks the delivery side to reply to the offending message.
type WarningAction struct {
	ActorID   string
	GuildID   string
	ChannelID string
	MessageID string
}

// SanctionAction asks the platform to time the actor out.
type SanctionAction struct {
	ActorID        string
	GuildID        string
	DurationMillis int64
	Reason         string
}

func NewSanctionAction(guildID, actorID string, duration time.Duration) *SanctionAction {
	ms := duration.Milliseconds()
	if ms <= 0 {
		ms = DefaultSanctionMillis
	}
	return &SanctionAction{
		ActorID:        actorID,
		GuildID:        guildID,
		DurationMillis: ms,
		Reason:         SanctionReason,
	}
}

func (s *SanctionAction) Duration() time.Duration {
	return time.Duration(s.DurationMillis) * time.Millisecond
}

// DisclosureRecord is a public Hall of Shame entry. ModeratorID is nil when
// the sanction came from the anti-raid engine rather than a person.
type DisclosureRecord struct {
	CaseID      string
	GuildID     string
	ChannelID   string
	ActorID     string
	ModeratorID *string
	Reason      string
	CreatedAt   time.Time
}

func NewDisclosureRecord(guildID, channelID, actorID string, now time.Time) *DisclosureRecord {
	return &DisclosureRecord{
		GuildID:   guildID,
		ChannelID: channelID,
		ActorID:   actorID,
		Reason:    DisclosureReason,
		CreatedAt: now,
	}
}
