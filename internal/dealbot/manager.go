package dealbot

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/match"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/resource"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/rng"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/store"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/util"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client -> server event names.
const (
	EventCreateRoom        = "create-room"
	EventJoinRoom          = "join-room"
	EventReconnectPlayer   = "reconnect-player"
	EventSetRoomPassword   = "set-room-password"
	EventGlobalLeaderboard = "get-global-leaderboard"
	EventSelectBox         = "select-box"
	EventPlayerReady       = "player-ready"
	EventStartGame         = "start-game"
	EventOpenBox           = "open-box"
	EventDealResponse      = "deal-response"
	EventChatMessage       = "chat-message"
)

// Pusher delivers one event to one connection without blocking.
type Pusher interface {
	Push(connectionID, event string, data interface{})
}

// Ack is the structured acknowledgement returned for request-style events.
type Ack struct {
	Success     bool               `json:"success"`
	Error       string             `json:"error,omitempty"`
	RoomCode    string             `json:"roomCode,omitempty"`
	PlayerID    string             `json:"playerId,omitempty"`
	Leaderboard []store.GlobalView `json:"leaderboard,omitempty"`
}

func NewManager(config *Config, st *store.Store, rand rng.Source) *Manager {
	return &Manager{
		config: config,
		store:  st,
		rand:   rand,
	}
}

// Manager resolves inbound events to engine operations, emits acks, and
// fans personalised broadcasts out to connections.
type Manager struct {
	config *Config
	store  *store.Store
	rand   rng.Source
	pusher Pusher
}

// BindPusher wires the transport in after construction; the server needs the
// manager first.
func (m *Manager) BindPusher(p Pusher) {
	m.pusher = p
}

func (m *Manager) Store() *store.Store {
	return m.store
}

func (m *Manager) push(connectionID, event string, data interface{}) {
	if m.pusher != nil {
		m.pusher.Push(connectionID, event, data)
	}
}

// Handle dispatches one inbound event. The returned ack is non-nil only for
// request-style events; everything else fails silently and the next state
// broadcast is the authoritative correction.
func (m *Manager) Handle(ctx context.Context, connectionID, event string, data json.RawMessage) *Ack {
	logger := logging.FromContext(ctx).Named("manager")

	switch event {
	case EventCreateRoom:
		return m.handleCreateRoom(logger, connectionID, data)
	case EventJoinRoom:
		return m.handleJoinRoom(logger, connectionID, data)
	case EventReconnectPlayer:
		return m.handleReconnect(logger, connectionID, data)
	case EventSetRoomPassword:
		return m.handleSetPassword(connectionID, data)
	case EventGlobalLeaderboard:
		return &Ack{Success: true, Leaderboard: m.store.TopGlobal()}
	case EventSelectBox:
		m.withSession(connectionID, func(playerID string, s *match.Session) {
			var payload struct {
				BoxNumber int `json:"boxNumber"`
			}
			if json.Unmarshal(data, &payload) == nil {
				s.SelectBox(playerID, payload.BoxNumber)
			}
		})
	case EventPlayerReady:
		m.withSession(connectionID, func(playerID string, s *match.Session) {
			s.Ready(playerID)
		})
	case EventStartGame:
		m.withSession(connectionID, func(playerID string, s *match.Session) {
			s.Start(playerID)
		})
	case EventOpenBox:
		m.withSession(connectionID, func(playerID string, s *match.Session) {
			var payload struct {
				BoxNumber int `json:"boxNumber"`
			}
			if json.Unmarshal(data, &payload) == nil {
				s.OpenBox(playerID, payload.BoxNumber)
			}
		})
	case EventDealResponse:
		m.withSession(connectionID, func(playerID string, s *match.Session) {
			var payload struct {
				Accepted bool `json:"accepted"`
			}
			if json.Unmarshal(data, &payload) == nil {
				s.DealResponse(playerID, payload.Accepted)
			}
		})
	case EventChatMessage:
		m.handleChat(connectionID, data)
	default:
		logger.Debugf("unknown event %q from %s", event, connectionID)
	}

	return nil
}

// HandleDisconnect is invoked by the transport when a connection drops.
func (m *Manager) HandleDisconnect(connectionID string) {
	if session, ok := m.store.HandleDisconnect(connectionID); ok {
		session.Flush()
	}
}

func (m *Manager) handleCreateRoom(logger *zap.SugaredLogger, connectionID string, data json.RawMessage) *Ack {
	var payload struct {
		PlayerName string `json:"playerName"`
	}
	_ = json.Unmarshal(data, &payload)

	name := util.SanitizeName(payload.PlayerName)
	if name == "" {
		return &Ack{Success: false, Error: resource.TextNameRequired}
	}

	session, playerID := m.store.Create(connectionID, name, m.matchConfig(logger))
	session.SendSnapshot(playerID)
	session.Flush()

	return &Ack{Success: true, RoomCode: session.Code(), PlayerID: playerID}
}

func (m *Manager) handleJoinRoom(logger *zap.SugaredLogger, connectionID string, data json.RawMessage) *Ack {
	var payload struct {
		RoomCode    string `json:"roomCode"`
		PlayerName  string `json:"playerName"`
		Password    string `json:"password"`
		AsSpectator bool   `json:"asSpectator"`
	}
	_ = json.Unmarshal(data, &payload)

	code := strings.ToUpper(strings.TrimSpace(payload.RoomCode))
	if code == "" {
		return &Ack{Success: false, Error: resource.TextCodeRequired}
	}
	name := util.SanitizeName(payload.PlayerName)
	if name == "" {
		return &Ack{Success: false, Error: resource.TextNameRequired}
	}

	session, playerID, err := m.store.Join(code, connectionID, name, payload.Password, payload.AsSpectator)
	if err != nil {
		return &Ack{Success: false, Error: joinErrorText(err)}
	}

	// Direct snapshot so a late joiner never misses a terminal event.
	session.SendSnapshot(playerID)
	session.Flush()

	logger.Infof("player %s joined %s (spectator=%v)", name, code, payload.AsSpectator)

	return &Ack{Success: true, RoomCode: code, PlayerID: playerID}
}

func (m *Manager) handleReconnect(logger *zap.SugaredLogger, connectionID string, data json.RawMessage) *Ack {
	var payload struct {
		PlayerID string `json:"playerId"`
	}
	_ = json.Unmarshal(data, &payload)

	session, err := m.store.Reconnect(payload.PlayerID, connectionID)
	if err != nil {
		return &Ack{Success: false, Error: resource.TextPlayerNotFound}
	}

	session.SendSnapshot(payload.PlayerID)
	session.Flush()

	logger.Infof("player %s reconnected to %s", payload.PlayerID, session.Code())

	return &Ack{Success: true, RoomCode: session.Code()}
}

func (m *Manager) handleSetPassword(connectionID string, data json.RawMessage) *Ack {
	var payload struct {
		Password *string `json:"password"`
	}
	_ = json.Unmarshal(data, &payload)

	playerID, session, ok := m.store.Resolve(connectionID)
	if !ok {
		return &Ack{Success: false, Error: resource.TextRoomNotFound}
	}

	password := ""
	if payload.Password != nil {
		password = *payload.Password
	}

	if err := session.SetPassword(playerID, password); err != nil {
		if errors.Is(err, match.ErrWrongPhase) {
			return &Ack{Success: false, Error: resource.TextWrongPhase}
		}
		return &Ack{Success: false, Error: resource.TextNotAuthorized}
	}

	return &Ack{Success: true}
}

func (m *Manager) handleChat(connectionID string, data json.RawMessage) {
	var payload struct {
		Content string `json:"content"`
	}
	if json.Unmarshal(data, &payload) != nil {
		return
	}

	playerID, session, ok := m.store.Resolve(connectionID)
	if !ok || !session.CanChat(playerID) {
		return
	}

	content := payload.Content
	if runes := []rune(content); len(runes) > resource.MaxChatLen {
		content = string(runes[:resource.MaxChatLen])
	}
	if strings.TrimSpace(content) == "" {
		return
	}

	name, _ := session.PlayerName(playerID)
	msg := match.ChatMessage{
		ID:          uuid.NewString(),
		SenderID:    playerID,
		SenderName:  name,
		Content:     content,
		TimestampMs: time.Now().UnixMilli(),
		RoomCode:    session.Code(),
	}

	m.store.AppendChat(session.Code(), msg)
	session.BroadcastChat(msg)
	session.Flush()
}

// matchConfig carries the engine callbacks, mirroring the session config the
// manager hands to every new room.
func (m *Manager) matchConfig(logger *zap.SugaredLogger) match.Config {
	return match.Config{
		TurnTimeout:      m.config.TurnTimeout(),
		OfferTimeout:     m.config.OfferTimeout(),
		OfferRevealDelay: m.config.RevealDelay(),
		Rand:             m.rand,
		Push:             m.push,
		DoneFn:           m.matchDoneFn,
		Logger:           logger.Named("match"),
	}
}

// matchDoneFn runs once per room after finalisation: global leaderboard
// upserts and the closing system chat line.
func (m *Manager) matchDoneFn(session *match.Session) {
	for _, entry := range session.FinalBoard() {
		m.store.UpdateGlobal(entry.PlayerID, entry.PlayerName, entry.Points)
	}

	msg := match.ChatMessage{
		ID:          uuid.NewString(),
		SenderID:    "",
		SenderName:  resource.TextGameEndedChatName,
		Content:     resource.TextGameEndedChatMsg,
		TimestampMs: time.Now().UnixMilli(),
		RoomCode:    session.Code(),
	}
	m.store.AppendChat(session.Code(), msg)
	session.BroadcastChat(msg)
	session.Flush()
}

func (m *Manager) withSession(connectionID string, fn func(playerID string, s *match.Session)) {
	playerID, session, ok := m.store.Resolve(connectionID)
	if !ok {
		return
	}
	fn(playerID, session)
	session.Flush()
}

func joinErrorText(err error) string {
	switch {
	case errors.Is(err, store.ErrRoomNotFound):
		return resource.TextRoomNotFound
	case errors.Is(err, match.ErrBadPassword):
		return resource.TextBadPassword
	case errors.Is(err, match.ErrGameInProgress):
		return resource.TextGameInProgress
	case errors.Is(err, match.ErrRoomFull):
		return resource.TextRoomFull
	}
	return err.Error()
}
