package models

// MessageEvent is one inbound guild message as the anti-raid engine sees it.
type MessageEvent struct {
	ActorID         string
	GuildID         string
	ChannelID       string
	MessageID       string
	IsBot           bool
	RoleIDs         []string
	Content         string
	TimestampMillis int64
}

// MemberJoinEvent is a member arriving in a guild.
type MemberJoinEvent struct {
	GuildID string
	UserID  string
	IsBot   bool
	Tag     string
}
