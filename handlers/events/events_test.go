package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"leaguebot/interfaces"
	"leaguebot/league"
	"leaguebot/logger"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler は呼ばれたメソッドを記録します。
type recordingHandler struct {
	name  string
	calls []string
	panic bool
}

func (h *recordingHandler) GetCommandDef() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: h.name}
}

func (h *recordingHandler) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if h.panic {
		panic("boom")
	}
	h.calls = append(h.calls, "command")
}

func (h *recordingHandler) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.calls = append(h.calls, "component")
}

func (h *recordingHandler) HandleModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.calls = append(h.calls, "modal")
}

func (h *recordingHandler) GetComponentIDs() []string { return nil }
func (h *recordingHandler) GetCategory() string       { return "" }

func command(name string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{Name: name},
	}}
}

func component(customID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		Data: discordgo.MessageComponentInteractionData{CustomID: customID},
	}}
}

func TestOnInteractionCreate(t *testing.T) {
	sign := &recordingHandler{name: "sign"}
	help := &recordingHandler{name: "help"}
	commandHandlers := map[string]interfaces.CommandHandler{"sign": sign, "help": help}
	componentHandlers := map[string]interfaces.CommandHandler{"offer_accept:": sign, "offer_decline:": sign}
	log := logger.Nop()

	OnInteractionCreate(nil, command("help"), commandHandlers, componentHandlers, log)
	OnInteractionCreate(nil, command("unknown"), commandHandlers, componentHandlers, log)
	OnInteractionCreate(nil, component("offer_accept:abc"), commandHandlers, componentHandlers, log)
	OnInteractionCreate(nil, component("offer_decline:abc"), commandHandlers, componentHandlers, log)
	OnInteractionCreate(nil, component("hilow_high"), commandHandlers, componentHandlers, log)

	assert.Equal(t, []string{"command"}, help.calls)
	assert.Equal(t, []string{"component", "component"}, sign.calls)
}

func TestMatchComponent(t *testing.T) {
	short := &recordingHandler{name: "short"}
	long := &recordingHandler{name: "long"}
	handlers := map[string]interfaces.CommandHandler{"offer_": short, "offer_accept_rc:": long, "": short}

	tests := map[string]struct {
		customID string
		want     interfaces.CommandHandler
	}{
		"longest prefix wins": {customID: "offer_accept_rc:42", want: long},
		"shorter prefix":      {customID: "offer_decline:42", want: short},
		"no match":            {customID: "ticket_close", want: nil},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := matchComponent(handlers, tc.customID)
			assert.Equal(t, tc.want != nil, ok)
			if tc.want != nil {
				assert.Same(t, tc.want, got)
			}
		})
	}
}

func TestOnInteractionCreate_recoversFromPanic(t *testing.T) {
	bad := &recordingHandler{name: "bad", panic: true}
	commandHandlers := map[string]interfaces.CommandHandler{"bad": bad}

	assert.NotPanics(t, func() {
		OnInteractionCreate(nil, command("bad"), commandHandlers, nil, logger.Nop())
	})
}

type fakeSyncer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeSyncer) SyncAll(ctx context.Context) (*league.SyncReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &league.SyncReport{Teams: 2, Errors: []error{errors.New("forbidden")}}, nil
}

func TestOnReady_runsRoleSync(t *testing.T) {
	tests := map[string]struct {
		err error
	}{
		"success":     {},
		"sync failed": {err: errors.New("gateway gone")},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			syncer := &fakeSyncer{err: tc.err}
			// 未接続のセッションではステータス更新は失敗するが同期は走る
			done := OnReady(&discordgo.Session{}, &discordgo.Ready{User: &discordgo.User{Username: "league"}}, logger.Nop(), syncer)

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("role sync did not finish")
			}
			assert.Equal(t, 1, syncer.calls)
		})
	}
}

type fakeRestorer struct {
	users []string
	out   league.Outcome
	err   error
}

func (f *fakeRestorer) RestoreRoles(ctx context.Context, userID string) ([]string, league.Outcome, error) {
	f.users = append(f.users, userID)
	return []string{"fa"}, f.out, f.err
}

func memberAdd(guildID, userID string, bot bool) *discordgo.GuildMemberAdd {
	return &discordgo.GuildMemberAdd{Member: &discordgo.Member{
		GuildID: guildID,
		User:    &discordgo.User{ID: userID, Bot: bot},
	}}
}

func TestMemberHandler_onGuildMemberAdd(t *testing.T) {
	tests := map[string]struct {
		event     *discordgo.GuildMemberAdd
		wantUsers []string
	}{
		"league guild member": {event: memberAdd("g1", "u1", false), wantUsers: []string{"u1"}},
		"other guild":         {event: memberAdd("g2", "u1", false), wantUsers: nil},
		"bot account":         {event: memberAdd("g1", "b1", true), wantUsers: nil},
		"missing member":      {event: &discordgo.GuildMemberAdd{}, wantUsers: nil},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			restorer := &fakeRestorer{}
			h := NewMemberHandler(logger.Nop(), "g1", restorer)
			require.NotPanics(t, func() { h.onGuildMemberAdd(nil, tc.event) })
			assert.Equal(t, tc.wantUsers, restorer.users)
		})
	}
}

func TestMemberHandler_partialRestoreIsNotFatal(t *testing.T) {
	restorer := &fakeRestorer{out: league.Outcome{RoleErrors: []error{errors.New("missing permissions")}}}
	h := NewMemberHandler(logger.Nop(), "", restorer)

	h.onGuildMemberAdd(nil, memberAdd("any", "u1", false))
	assert.Equal(t, []string{"u1"}, restorer.users)
}
