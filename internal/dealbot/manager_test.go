package dealbot

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/cache/cachelru"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/resource"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/rng"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/store"
)

type fakePusher struct {
	mtx    sync.Mutex
	events map[string][]string // connectionID -> event names
}

func (f *fakePusher) Push(connectionID, event string, data interface{}) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if f.events == nil {
		f.events = map[string][]string{}
	}
	f.events[connectionID] = append(f.events[connectionID], event)
}

func (f *fakePusher) received(connectionID, event string) bool {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	for _, e := range f.events[connectionID] {
		if e == event {
			return true
		}
	}
	return false
}

func newTestManager(t *testing.T) (*Manager, *fakePusher) {
	t.Helper()

	global, err := cachelru.NewLRU(128)
	if err != nil {
		t.Fatalf("lru: %v", err)
	}

	config := &Config{
		WaitingTTLMs:   1 << 30,
		SelectionTTLMs: 1 << 30,
		FinishedTTLMs:  1 << 30,
		TurnTimeoutMs:  1 << 30,
		OfferTimeoutMs: 1 << 30,
		RevealDelayMs:  1 << 30,
	}

	rand := rng.New()
	st := store.New(global, rand, store.TTLs{}, nil)
	m := NewManager(config, st, rand)

	pusher := &fakePusher{}
	m.BindPusher(pusher)
	return m, pusher
}

func raw(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestCreateRoomAck(t *testing.T) {
	t.Parallel()

	m, pusher := newTestManager(t)
	ctx := context.Background()

	ack := m.Handle(ctx, "conn-1", EventCreateRoom, raw(t, map[string]string{"playerName": "Host"}))
	if ack == nil || !ack.Success {
		t.Fatalf("expected success ack, got %+v", ack)
	}
	if len(ack.RoomCode) != resource.CodeLen || ack.PlayerID == "" {
		t.Fatalf("ack must carry code and player id: %+v", ack)
	}

	if !pusher.received("conn-1", "game-state-update") {
		t.Error("creator must receive an initial snapshot")
	}
}

func TestCreateRoomRequiresName(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	ack := m.Handle(context.Background(), "conn-1", EventCreateRoom, raw(t, map[string]string{"playerName": "   "}))
	if ack == nil || ack.Success || ack.Error != resource.TextNameRequired {
		t.Fatalf("expected name-required error, got %+v", ack)
	}
}

func TestJoinRoomAckErrors(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	ctx := context.Background()

	ack := m.Handle(ctx, "conn-1", EventJoinRoom, raw(t, map[string]interface{}{
		"roomCode": "", "playerName": "Late",
	}))
	if ack.Error != resource.TextCodeRequired {
		t.Errorf("expected code-required, got %q", ack.Error)
	}

	ack = m.Handle(ctx, "conn-1", EventJoinRoom, raw(t, map[string]interface{}{
		"roomCode": "zzzzzz", "playerName": "Late",
	}))
	if ack.Error != resource.TextRoomNotFound {
		t.Errorf("expected room-not-found, got %q", ack.Error)
	}
}

func TestJoinRoomUppercasesCode(t *testing.T) {
	t.Parallel()

	m, pusher := newTestManager(t)
	ctx := context.Background()

	created := m.Handle(ctx, "conn-1", EventCreateRoom, raw(t, map[string]string{"playerName": "Host"}))

	joined := m.Handle(ctx, "conn-2", EventJoinRoom, raw(t, map[string]interface{}{
		"roomCode":   " " + strings.ToLower(created.RoomCode) + " ",
		"playerName": "Joiner",
	}))
	if !joined.Success || joined.RoomCode != created.RoomCode {
		t.Fatalf("lowercase code with whitespace must join: %+v", joined)
	}

	if !pusher.received("conn-2", "leaderboard-update") {
		t.Error("joiner must receive the leaderboard snapshot directly")
	}
}

func TestReconnectUnknownPlayer(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	ack := m.Handle(context.Background(), "conn-9", EventReconnectPlayer, raw(t, map[string]string{"playerId": "ghost"}))
	if ack == nil || ack.Success || ack.Error != resource.TextPlayerNotFound {
		t.Fatalf("expected player-not-found, got %+v", ack)
	}
}

func TestReconnectFlow(t *testing.T) {
	t.Parallel()

	m, pusher := newTestManager(t)
	ctx := context.Background()

	created := m.Handle(ctx, "conn-1", EventCreateRoom, raw(t, map[string]string{"playerName": "Host"}))

	m.HandleDisconnect("conn-1")

	ack := m.Handle(ctx, "conn-2", EventReconnectPlayer, raw(t, map[string]string{"playerId": created.PlayerID}))
	if !ack.Success || ack.RoomCode != created.RoomCode {
		t.Fatalf("reconnect must restore the room: %+v", ack)
	}

	if !pusher.received("conn-2", "game-state-update") {
		t.Error("reconnect must push a fresh snapshot to the new connection")
	}
}

func TestGlobalLeaderboardAck(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	ack := m.Handle(context.Background(), "conn-1", EventGlobalLeaderboard, nil)
	if ack == nil || !ack.Success {
		t.Fatalf("expected success, got %+v", ack)
	}
	if ack.Leaderboard == nil {
		t.Error("leaderboard must be present, even when empty")
	}
}

func TestChatFansOut(t *testing.T) {
	t.Parallel()

	m, pusher := newTestManager(t)
	ctx := context.Background()

	created := m.Handle(ctx, "conn-1", EventCreateRoom, raw(t, map[string]string{"playerName": "Host"}))
	m.Handle(ctx, "conn-2", EventJoinRoom, raw(t, map[string]interface{}{
		"roomCode": created.RoomCode, "playerName": "Joiner",
	}))

	m.Handle(ctx, "conn-1", EventChatMessage, raw(t, map[string]string{"content": "hello"}))

	if !pusher.received("conn-2", "chat-message") {
		t.Error("chat must reach the other member")
	}
	if got := m.Store().ChatHistory(created.RoomCode); len(got) != 1 || got[0].Content != "hello" {
		t.Errorf("chat must land in the ring: %+v", got)
	}
}

func TestSpectatorChatRefused(t *testing.T) {
	t.Parallel()

	m, pusher := newTestManager(t)
	ctx := context.Background()

	created := m.Handle(ctx, "conn-1", EventCreateRoom, raw(t, map[string]string{"playerName": "Host"}))
	m.Handle(ctx, "conn-2", EventJoinRoom, raw(t, map[string]interface{}{
		"roomCode": created.RoomCode, "playerName": "Watcher", "asSpectator": true,
	}))

	m.Handle(ctx, "conn-2", EventChatMessage, raw(t, map[string]string{"content": "let me talk"}))

	if pusher.received("conn-1", "chat-message") {
		t.Error("spectator chat must be silently refused")
	}
	if got := m.Store().ChatHistory(created.RoomCode); len(got) != 0 {
		t.Errorf("spectator chat must not be stored: %+v", got)
	}
}

func TestSetPasswordHostOnly(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	ctx := context.Background()

	created := m.Handle(ctx, "conn-1", EventCreateRoom, raw(t, map[string]string{"playerName": "Host"}))
	m.Handle(ctx, "conn-2", EventJoinRoom, raw(t, map[string]interface{}{
		"roomCode": created.RoomCode, "playerName": "Joiner",
	}))

	ack := m.Handle(ctx, "conn-2", EventSetRoomPassword, raw(t, map[string]string{"password": "pw"}))
	if ack.Success {
		t.Error("non-host password change must fail")
	}

	ack = m.Handle(ctx, "conn-1", EventSetRoomPassword, raw(t, map[string]string{"password": "pw"}))
	if !ack.Success {
		t.Errorf("host password change must succeed: %+v", ack)
	}

	joined := m.Handle(ctx, "conn-3", EventJoinRoom, raw(t, map[string]interface{}{
		"roomCode": created.RoomCode, "playerName": "Guesser",
	}))
	if joined.Success || joined.Error != resource.TextBadPassword {
		t.Errorf("expected bad-password, got %+v", joined)
	}
}
