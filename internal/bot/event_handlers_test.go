package bot

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-antiraid/internal/decision"
	"go-antiraid/internal/ingest"
	"go-antiraid/internal/models"
	"go-antiraid/internal/vanity"
)

type syncExecutor struct {
	keys []string
	err  error
}

func (e *syncExecutor) Submit(ctx context.Context, key string, job ingest.Job) error {
	if e.err != nil {
		return e.err
	}
	e.keys = append(e.keys, key)
	job(ctx)
	return nil
}

type fakeController struct{ events []*models.MessageEvent }

func (f *fakeController) HandleMessage(ctx context.Context, event *models.MessageEvent) decision.Outcome {
	f.events = append(f.events, event)
	return decision.OutcomeTracked
}

type fakeCommands struct{ seen int }

func (f *fakeCommands) HandleMessage(ctx context.Context, event *models.MessageEvent) bool {
	f.seen++
	return true
}

type fakeJoins struct {
	joins       []*models.MemberJoinEvent
	invalidated []string
}

func (f *fakeJoins) HandleJoin(ctx context.Context, event *models.MemberJoinEvent) vanity.Result {
	f.joins = append(f.joins, event)
	return vanity.ResultGranted
}

func (f *fakeJoins) Invalidate(guildID string) {
	f.invalidated = append(f.invalidated, guildID)
}

type fakeHealth struct{ beats int }

func (f *fakeHealth) Heartbeat(name string) { f.beats++ }

func TestToMessageEvent(t *testing.T) {
	ts := time.UnixMilli(1_700_000_000_123)
	m := &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   "hi",
		Timestamp: ts,
		Author:    &discordgo.User{ID: "u1"},
		Member:    &discordgo.Member{Roles: []string{"r1"}},
	}}

	ev := ToMessageEvent(m)
	require.NotNil(t, ev)
	assert.Equal(t, &models.MessageEvent{
		ActorID:         "u1",
		GuildID:         "g1",
		ChannelID:       "c1",
		MessageID:       "m1",
		RoleIDs:         []string{"r1"},
		Content:         "hi",
		TimestampMillis: 1_700_000_000_123,
	}, ev)

	m.Author.Bot = true
	assert.True(t, ToMessageEvent(m).IsBot)

	assert.Nil(t, ToMessageEvent(&discordgo.MessageCreate{Message: &discordgo.Message{}}))
	assert.Nil(t, ToMessageEvent(nil))
}

func TestToJoinEvent(t *testing.T) {
	ev := ToJoinEvent(&discordgo.GuildMemberAdd{Member: &discordgo.Member{
		GuildID: "g1",
		User:    &discordgo.User{ID: "u1", Username: "neo", Bot: true},
	}})
	require.NotNil(t, ev)
	assert.Equal(t, "g1", ev.GuildID)
	assert.Equal(t, "u1", ev.UserID)
	assert.True(t, ev.IsBot)

	assert.Nil(t, ToJoinEvent(&discordgo.GuildMemberAdd{}))
}

func TestRouterFansOutMessages(t *testing.T) {
	exec := &syncExecutor{}
	ctrl := &fakeController{}
	cmds := &fakeCommands{}
	health := &fakeHealth{}
	r := NewRouter(context.Background(), ctrl, cmds, nil, exec, health)

	r.OnMessage(&models.MessageEvent{ActorID: "u1", GuildID: "g1"})
	r.OnMessage(nil)

	assert.Equal(t, []string{"u1"}, exec.keys)
	assert.Len(t, ctrl.events, 1)
	assert.Equal(t, 1, cmds.seen)
	assert.Equal(t, 1, health.beats)
}

func TestRouterCommandsRunWhenExecutorRejects(t *testing.T) {
	exec := &syncExecutor{err: &ingest.QueueFullError{Shard: 1, Length: 1, Capacity: 1}}
	ctrl := &fakeController{}
	cmds := &fakeCommands{}
	r := NewRouter(context.Background(), ctrl, cmds, nil, exec, nil)

	r.OnMessage(&models.MessageEvent{ActorID: "u1", GuildID: "g1"})
	assert.Empty(t, ctrl.events)
	assert.Equal(t, 1, cmds.seen)
}

func TestRouterJoins(t *testing.T) {
	joins := &fakeJoins{}
	r := NewRouter(context.Background(), nil, nil, joins, nil, nil)

	r.OnMemberJoin(&models.MemberJoinEvent{GuildID: "g", UserID: "u"})
	r.OnMemberJoin(nil)
	assert.Len(t, joins.joins, 1)

	NewRouter(context.Background(), nil, nil, nil, nil, nil).OnMemberJoin(&models.MemberJoinEvent{})
}
