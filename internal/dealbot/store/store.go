package store

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/cache"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/match"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/resource"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/rng"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/util"
	"go.uber.org/zap"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found")
)

const topGlobalLimit = 100

// TTLs control the sweep; see Sweep.
type TTLs struct {
	Waiting   time.Duration
	Selection time.Duration
	Finished  time.Duration
}

// Store is the in-memory catalog of rooms and the only cross-room state.
// Lock order is always store first, then room; no network I/O happens while
// either lock is held.
type Store struct {
	mtx sync.RWMutex

	rooms      map[string]*match.Session
	playerRoom map[string]string // playerID -> room code
	connPlayer map[string]string // connectionID -> playerID
	chat       map[string][]match.ChatMessage

	global cache.Cache // playerID -> *GlobalEntry, process lifetime

	rand   rng.Source
	ttls   TTLs
	logger *zap.SugaredLogger
}

func New(global cache.Cache, rand rng.Source, ttls TTLs, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{
		rooms:      map[string]*match.Session{},
		playerRoom: map[string]string{},
		connPlayer: map[string]string{},
		chat:       map[string][]match.ChatMessage{},
		global:     global,
		rand:       rand,
		ttls:       ttls,
		logger:     logger,
	}
}

// Create builds a room with a fresh unique code and registers the creator as
// host. The supplied config carries the engine callbacks; the code is ours.
func (s *Store) Create(connectionID, name string, config match.Config) (*match.Session, string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var code string
	for {
		code = util.GenerateCode(s.rand)
		if _, taken := s.rooms[code]; !taken {
			break
		}
	}

	config.Code = code
	session, host := match.NewSession(config, connectionID, name)

	s.rooms[code] = session
	s.playerRoom[host.ID] = code
	s.connPlayer[connectionID] = host.ID

	s.logger.Infof("room %s created by %s", code, name)

	return session, host.ID
}

// Join admits a player (or spectator) to an existing room.
func (s *Store) Join(code, connectionID, name, password string, asSpectator bool) (*match.Session, string, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	session, ok := s.rooms[code]
	if !ok {
		return nil, "", ErrRoomNotFound
	}

	playerID, err := session.Join(connectionID, name, password, asSpectator)
	if err != nil {
		return nil, "", err
	}

	s.playerRoom[playerID] = code
	s.connPlayer[connectionID] = playerID

	return session, playerID, nil
}

// Resolve maps a live connection to its player and room.
func (s *Store) Resolve(connectionID string) (string, *match.Session, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	playerID, ok := s.connPlayer[connectionID]
	if !ok {
		return "", nil, false
	}
	session, ok := s.rooms[s.playerRoom[playerID]]
	if !ok {
		return "", nil, false
	}
	return playerID, session, true
}

func (s *Store) Room(code string) (*match.Session, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	session, ok := s.rooms[code]
	return session, ok
}

// HandleDisconnect drops the connection index and flags the player AFK. The
// player stays resident until the room is deleted.
func (s *Store) HandleDisconnect(connectionID string) (*match.Session, bool) {
	s.mtx.Lock()
	playerID, ok := s.connPlayer[connectionID]
	if !ok {
		s.mtx.Unlock()
		return nil, false
	}
	delete(s.connPlayer, connectionID)
	session := s.rooms[s.playerRoom[playerID]]
	s.mtx.Unlock()

	if session == nil {
		return nil, false
	}
	session.MarkDisconnected(playerID, connectionID)
	return session, true
}

// Reconnect rebinds a stable player identity to a new connection.
func (s *Store) Reconnect(playerID, connectionID string) (*match.Session, error) {
	s.mtx.Lock()
	code, ok := s.playerRoom[playerID]
	if !ok {
		s.mtx.Unlock()
		return nil, ErrPlayerNotFound
	}
	session, ok := s.rooms[code]
	if !ok {
		s.mtx.Unlock()
		return nil, ErrPlayerNotFound
	}
	s.connPlayer[connectionID] = playerID
	s.mtx.Unlock()

	if !session.Rebind(playerID, connectionID) {
		return nil, ErrPlayerNotFound
	}
	return session, nil
}

// AppendChat stores a message in the room's bounded ring.
func (s *Store) AppendChat(code string, msg match.ChatMessage) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	ring := append(s.chat[code], msg)
	if len(ring) > resource.ChatHistoryLen {
		ring = ring[len(ring)-resource.ChatHistoryLen:]
	}
	s.chat[code] = ring
}

func (s *Store) ChatHistory(code string) []match.ChatMessage {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	history := make([]match.ChatMessage, len(s.chat[code]))
	copy(history, s.chat[code])
	return history
}

// GlobalEntry is one process-lifetime leaderboard record, keyed by the
// stable player id.
type GlobalEntry struct {
	PlayerID    string
	DisplayName string
	TotalPoints int
	GamesPlayed int
}

// PublicID disambiguates same-named players without exposing the full id.
func (e *GlobalEntry) PublicID() string {
	id := e.PlayerID
	if len(id) > 4 {
		id = id[len(id)-4:]
	}
	return e.DisplayName + "#" + strings.ToUpper(id)
}

// GlobalView is the wire form of a ranked global entry.
type GlobalView struct {
	Rank        int    `json:"rank"`
	PublicID    string `json:"publicId"`
	PlayerName  string `json:"playerName"`
	TotalPoints int    `json:"totalPoints"`
	GamesPlayed int    `json:"gamesPlayed"`
}

// UpdateGlobal upserts a finished contestant into the global leaderboard,
// accumulating points and games.
func (s *Store) UpdateGlobal(playerID, name string, pointsEarned int) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	entry := &GlobalEntry{PlayerID: playerID}
	if v, ok := s.global.Get(playerID); ok {
		entry = v.(*GlobalEntry)
	}
	entry.DisplayName = name
	entry.TotalPoints += pointsEarned
	entry.GamesPlayed++
	s.global.Add(playerID, entry)
}

// TopGlobal returns the ranked global leaderboard truncated to 100.
func (s *Store) TopGlobal() []GlobalView {
	s.mtx.RLock()
	entries := make([]*GlobalEntry, 0, s.global.Len())
	for _, key := range s.global.Keys() {
		if v, ok := s.global.Get(key); ok {
			entries = append(entries, v.(*GlobalEntry))
		}
	}
	s.mtx.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalPoints > entries[j].TotalPoints
	})
	if len(entries) > topGlobalLimit {
		entries = entries[:topGlobalLimit]
	}

	views := make([]GlobalView, len(entries))
	for i, e := range entries {
		views[i] = GlobalView{
			Rank:        i + 1,
			PublicID:    e.PublicID(),
			PlayerName:  e.DisplayName,
			TotalPoints: e.TotalPoints,
			GamesPlayed: e.GamesPlayed,
		}
	}
	return views
}

// Sweep deletes rooms stuck in waiting/selection past their TTL and finished
// rooms past theirs. Rooms in playing or offer are never touched; the engine
// owns live timers there.
func (s *Store) Sweep(now time.Time) int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var removed int
	for code, session := range s.rooms {
		var stale bool
		switch session.Phase() {
		case match.PhaseWaiting:
			stale = now.Sub(session.CreatedAt()) > s.ttls.Waiting
		case match.PhaseSelection:
			stale = now.Sub(session.CreatedAt()) > s.ttls.Selection
		case match.PhaseFinished:
			stale = now.Sub(session.FinishedAt()) > s.ttls.Finished
		}
		if !stale {
			continue
		}

		for _, playerID := range session.PlayerIDs() {
			delete(s.playerRoom, playerID)
		}
		for connID, playerID := range s.connPlayer {
			if _, resident := s.playerRoom[playerID]; !resident {
				delete(s.connPlayer, connID)
			}
		}
		delete(s.chat, code)
		delete(s.rooms, code)
		removed++

		s.logger.Infof("room %s swept in phase %s", code, session.Phase())
	}

	return removed
}

// RoomsLen reports the live room count.
func (s *Store) RoomsLen() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.rooms)
}
