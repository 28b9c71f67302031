package vanity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"

	"go-antiraid/internal/config"
	"go-antiraid/internal/models"
)

type fakeGuildAPI struct {
	code       string
	guildErr   error
	roleErr    error
	guildCalls int
	granted    []string
}

func (f *fakeGuildAPI) Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error) {
	f.guildCalls++
	if f.guildErr != nil {
		return nil, f.guildErr
	}
	return &discordgo.Guild{ID: guildID, VanityURLCode: f.code}, nil
}

func (f *fakeGuildAPI) GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	if f.roleErr != nil {
		return f.roleErr
	}
	f.granted = append(f.granted, guildID+"/"+userID+"/"+roleID)
	return nil
}

type fakeNotifier struct {
	posts []string
}

func (f *fakeNotifier) SendVanityJoin(ctx context.Context, channelID, userID, code, roleID string) error {
	f.posts = append(f.posts, channelID+":"+userID+":"+code+":"+roleID)
	return nil
}

func profiles() *config.ProfileStore {
	cfg := config.DefaultConfig()
	cfg.Bot.GuildIDs = []string{"g1", "g2"}
	cfg.Disclosure.Channels = map[string]string{"g1": "shame"}
	cfg.Vanity.Entries = []string{"g1:cool:r1", "g2:neat:r2"}
	return config.NewProfileStoreFromConfig(cfg)
}

func join(guild, user string) *models.MemberJoinEvent {
	return &models.MemberJoinEvent{GuildID: guild, UserID: user, Tag: user + "#0001"}
}

func TestGrantsRoleAndPosts(t *testing.T) {
	api := &fakeGuildAPI{code: "cool"}
	n := &fakeNotifier{}
	a := NewAssigner(api, profiles(), n, time.Minute)

	assert.Equal(t, ResultGranted, a.HandleJoin(context.Background(), join("g1", "u1")))
	assert.Equal(t, []string{"g1/u1/r1"}, api.granted)
	assert.Equal(t, []string{"shame:u1:cool:r1"}, n.posts)
}

func TestCodeIsCached(t *testing.T) {
	api := &fakeGuildAPI{code: "cool"}
	a := NewAssigner(api, profiles(), &fakeNotifier{}, time.Minute)

	for _, u := range []string{"a", "b", "c"} {
		a.HandleJoin(context.Background(), join("g1", u))
	}
	assert.Equal(t, 1, api.guildCalls)
	assert.Len(t, api.granted, 3)

	a.Invalidate("g1")
	a.HandleJoin(context.Background(), join("g1", "d"))
	assert.Equal(t, 2, api.guildCalls)
}

func TestNoDisclosureChannelStillGrants(t *testing.T) {
	api := &fakeGuildAPI{code: "neat"}
	n := &fakeNotifier{}
	a := NewAssigner(api, profiles(), n, time.Minute)

	assert.Equal(t, ResultGranted, a.HandleJoin(context.Background(), join("g2", "u")))
	assert.Empty(t, n.posts)
}

func TestSkipsAndMisses(t *testing.T) {
	ctx := context.Background()

	api := &fakeGuildAPI{code: "cool"}
	a := NewAssigner(api, profiles(), &fakeNotifier{}, time.Minute)
	bot := join("g1", "bot")
	bot.IsBot = true
	assert.Equal(t, ResultSkipped, a.HandleJoin(ctx, bot))
	assert.Equal(t, ResultSkipped, a.HandleJoin(ctx, join("unmanaged", "u")))
	assert.Equal(t, 0, api.guildCalls)

	a = NewAssigner(&fakeGuildAPI{code: "other"}, profiles(), &fakeNotifier{}, time.Minute)
	assert.Equal(t, ResultNoRole, a.HandleJoin(ctx, join("g1", "u")))

	a = NewAssigner(&fakeGuildAPI{}, profiles(), &fakeNotifier{}, time.Minute)
	assert.Equal(t, ResultNoVanity, a.HandleJoin(ctx, join("g1", "u")))
	assert.Equal(t, ResultNoVanity, a.HandleJoin(ctx, join("g1", "u")))

	a = NewAssigner(&fakeGuildAPI{guildErr: errors.New("403")}, profiles(), &fakeNotifier{}, time.Minute)
	assert.Equal(t, ResultNoVanity, a.HandleJoin(ctx, join("g1", "u")))

	a = NewAssigner(&fakeGuildAPI{code: "cool", roleErr: errors.New("missing perms")}, profiles(), &fakeNotifier{}, time.Minute)
	assert.Equal(t, ResultFailed, a.HandleJoin(ctx, join("g1", "u")))
}
