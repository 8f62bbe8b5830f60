package match

import (
	"sync"
	"time"

	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/banker"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/resource"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/rng"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/scoring"
	"go.uber.org/zap"
)

type Phase uint8

const (
	PhaseWaiting Phase = iota + 1
	PhaseSelection
	PhasePlaying
	PhaseOffer
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseSelection:
		return "selection"
	case PhasePlaying:
		return "playing"
	case PhaseOffer:
		return "offer"
	case PhaseFinished:
		return "finished"
	}
	return "unknown"
}

// Server push event names.
const (
	EventGameState   = "game-state-update"
	EventChatMessage = "chat-message"
	EventLeaderboard = "leaderboard-update"
	EventGameEnded   = "game-ended"
	EventPlayerLeft  = "player-left"
)

// PushFn delivers one event to one connection. It must not block; the
// transport drops on backpressure.
type PushFn func(connectionID, event string, data interface{})

type Config struct {
	Code string

	TurnTimeout      time.Duration
	OfferTimeout     time.Duration
	OfferRevealDelay time.Duration

	Rand   rng.Source
	Push   PushFn
	DoneFn func(session *Session)
	Logger *zap.SugaredLogger
}

type outbound struct {
	connectionID string
	event        string
	data         interface{}
}

// NewSession creates a room in the waiting phase with shuffled boxes and the
// creator registered as host contestant. All rule state lives behind the
// session mutex; the store serialises index updates around it.
func NewSession(config Config, hostConnectionID, hostName string) (*Session, *Player) {
	values := make([]float64, len(resource.BoxValueLadder))
	copy(values, resource.BoxValueLadder)
	rng.ShuffleFloat64s(config.Rand, values)

	boxes := make([]*Box, resource.BoxCount)
	for i := range boxes {
		boxes[i] = &Box{Number: i + 1, Value: values[i]}
	}

	remaining := make([]float64, len(resource.BoxValueLadder))
	copy(remaining, resource.BoxValueLadder)

	host := NewPlayer(hostConnectionID, hostName, RoleContestant, true)

	r := &Session{
		config:    config,
		code:      config.Code,
		hostID:    host.ID,
		phase:     PhaseWaiting,
		players:   map[string]*Player{host.ID: host},
		order:     []string{host.ID},
		boxes:     boxes,
		remaining: remaining,
		createdAt: time.Now(),
		logger:    config.Logger,
	}
	if r.logger == nil {
		r.logger = zap.NewNop().Sugar()
	}

	return r, host
}

type Session struct {
	mtx sync.Mutex

	config Config
	logger *zap.SugaredLogger

	code     string
	hostID   string
	password string

	createdAt  time.Time
	startedAt  time.Time
	finishedAt time.Time

	phase   Phase
	players map[string]*Player
	order   []string // player ids in insertion order; turn derivation uses it
	boxes   []*Box

	currentRound    int
	openedThisRound []int
	remaining       []float64
	eliminated      []float64

	currentOffer   float64
	offerExpiresAt time.Time
	offerEligible  []string
	offerResponses map[string]bool

	turnOrder        []string
	currentTurnIndex int
	currentTurnID    string
	turnExpiresAt    time.Time

	// Timer handles; re-arming replaces the handle and bumps the epoch so a
	// stale firing no-ops under the guard check.
	turnTimer   *time.Timer
	offerTimer  *time.Timer
	revealTimer *time.Timer
	turnEpoch   uint64
	offerEpoch  uint64
	revealEpoch uint64

	finalBoard []scoring.LeaderEntry
	doneCalled bool

	outbox []outbound
}

func (r *Session) Code() string {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.code
}

func (r *Session) Phase() Phase {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.phase
}

func (r *Session) CreatedAt() time.Time {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.createdAt
}

func (r *Session) FinishedAt() time.Time {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.finishedAt
}

func (r *Session) PlayerIDs() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

func (r *Session) PlayerName(playerID string) (string, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	p, ok := r.players[playerID]
	if !ok {
		return "", false
	}
	return p.DisplayName, true
}

func (r *Session) CanChat(playerID string) bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	p, ok := r.players[playerID]
	return ok && p.CanChat()
}

// FinalBoard returns the terminal leaderboard, nil before finalisation.
func (r *Session) FinalBoard() []scoring.LeaderEntry {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	board := make([]scoring.LeaderEntry, len(r.finalBoard))
	copy(board, r.finalBoard)
	return board
}

// Join registers a new player. Contestants are admitted only in the waiting
// phase and below the room limit; spectators join in any phase.
func (r *Session) Join(connectionID, name, password string, asSpectator bool) (string, error) {
	r.mtx.Lock()

	if r.password != "" && password != r.password {
		r.mtx.Unlock()
		return "", ErrBadPassword
	}

	role := RoleContestant
	if asSpectator {
		role = RoleSpectator
	}

	if role == RoleContestant {
		if r.phase != PhaseWaiting && r.phase != PhaseSelection {
			r.mtx.Unlock()
			return "", ErrGameInProgress
		}
		if r.contestantsLenLocked() >= resource.MaxContestants {
			r.mtx.Unlock()
			return "", ErrRoomFull
		}
	}

	p := NewPlayer(connectionID, name, role, false)
	r.players[p.ID] = p
	r.order = append(r.order, p.ID)

	r.broadcastLocked(nil)
	r.mtx.Unlock()

	return p.ID, nil
}

// Rebind attaches a reconnecting player to a new connection.
func (r *Session) Rebind(playerID, connectionID string) bool {
	r.mtx.Lock()
	p, ok := r.players[playerID]
	if !ok {
		r.mtx.Unlock()
		return false
	}

	p.ConnectionID = connectionID
	p.IsConnected = true
	r.broadcastLocked(nil)
	r.mtx.Unlock()
	return true
}

// MarkDisconnected flags the player AFK. The player and the room survive; a
// later newer connection wins the race via the connection id check.
func (r *Session) MarkDisconnected(playerID, connectionID string) {
	r.mtx.Lock()
	p, ok := r.players[playerID]
	if !ok || p.ConnectionID != connectionID {
		r.mtx.Unlock()
		return
	}

	p.IsConnected = false
	r.pushOthersLocked(playerID, EventPlayerLeft, map[string]string{"playerId": playerID})
	r.broadcastLocked(nil)
	r.mtx.Unlock()
}

// SetPassword is a host-only, waiting-only operation. Empty clears it.
func (r *Session) SetPassword(playerID, password string) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if playerID != r.hostID {
		return ErrNotAuthorized
	}
	if r.phase != PhaseWaiting {
		return ErrWrongPhase
	}
	if runes := []rune(password); len(runes) > resource.MaxPasswordLen {
		password = string(runes[:resource.MaxPasswordLen])
	}

	r.password = password
	return nil
}

// SelectBox assigns (or reassigns) the acting contestant's personal box.
// Silent drop on any guard failure.
func (r *Session) SelectBox(playerID string, boxNumber int) {
	r.mtx.Lock()

	p, ok := r.players[playerID]
	if !ok || !p.IsContestant() || p.IsReady ||
		(r.phase != PhaseWaiting && r.phase != PhaseSelection) ||
		boxNumber < 1 || boxNumber > resource.BoxCount {
		r.mtx.Unlock()
		return
	}
	if owner := r.boxOwnerLocked(boxNumber); owner != "" && owner != playerID {
		r.mtx.Unlock()
		return
	}

	p.BoxNumber = boxNumber
	r.broadcastLocked(nil)
	r.mtx.Unlock()
}

// Ready freezes the contestant's box choice.
func (r *Session) Ready(playerID string) {
	r.mtx.Lock()

	p, ok := r.players[playerID]
	if !ok || !p.IsContestant() || p.BoxNumber == 0 ||
		(r.phase != PhaseWaiting && r.phase != PhaseSelection) {
		r.mtx.Unlock()
		return
	}

	p.IsReady = true
	r.broadcastLocked(nil)
	r.mtx.Unlock()
}

// Start moves the room into play: snapshots box values, builds the rotation
// and arms the first turn from a random position.
func (r *Session) Start(playerID string) {
	r.mtx.Lock()

	p, ok := r.players[playerID]
	if !ok || !p.CanStartGame() || (r.phase != PhaseWaiting && r.phase != PhaseSelection) {
		r.mtx.Unlock()
		return
	}

	contestants := r.contestantsLocked()
	if len(contestants) < resource.MinContestants {
		r.mtx.Unlock()
		return
	}
	for _, c := range contestants {
		if !c.IsReady || c.BoxNumber == 0 {
			r.mtx.Unlock()
			return
		}
	}

	r.phase = PhasePlaying
	r.startedAt = time.Now()
	r.currentRound = 1

	r.turnOrder = r.turnOrder[:0]
	for _, c := range contestants {
		c.BoxValue = r.boxes[c.BoxNumber-1].Value
		r.turnOrder = append(r.turnOrder, c.ID)
	}
	r.currentTurnIndex = int(r.config.Rand.Uint32n(uint32(len(r.turnOrder))))

	r.logger.Infof("game %s started with %d contestants", r.code, len(r.turnOrder))

	r.armTurnLocked()
	r.broadcastLocked(nil)
	r.mtx.Unlock()
}

// OpenBox is accepted only from the current turn player for an unopened,
// unowned box. Completing the round quota routes to the banker after a
// cosmetic delay.
func (r *Session) OpenBox(playerID string, boxNumber int) {
	r.mtx.Lock()

	if r.phase != PhasePlaying || playerID != r.currentTurnID ||
		boxNumber < 1 || boxNumber > resource.BoxCount {
		r.mtx.Unlock()
		return
	}
	box := r.boxes[boxNumber-1]
	if box.IsOpened || r.boxOwnerLocked(boxNumber) != "" {
		r.mtx.Unlock()
		return
	}

	r.cancelTurnTimerLocked()

	box.IsOpened = true
	box.OpenedBy = playerID
	r.eliminateValueLocked(box.Value)
	r.openedThisRound = append(r.openedThisRound, boxNumber)

	recent := &OpenedBoxView{BoxNumber: boxNumber, Value: box.Value}

	if len(r.openedThisRound) >= resource.BoxesToOpen(r.currentRound) || !r.hasOpenableBoxLocked() {
		r.advanceTurnIndexLocked()
		r.currentTurnID = ""
		r.turnExpiresAt = time.Time{}
		r.scheduleOfferLocked()
	} else {
		r.advanceTurnIndexLocked()
		r.armTurnLocked()
	}

	r.broadcastLocked(recent)
	r.mtx.Unlock()
}

// DealResponse records one eligible contestant's answer to the live offer.
// Acceptance settles the player immediately; the offer resolves once every
// eligible player has answered.
func (r *Session) DealResponse(playerID string, accepted bool) {
	r.mtx.Lock()

	p, ok := r.players[playerID]
	if !ok || r.phase != PhaseOffer || !r.isOfferEligibleLocked(playerID) {
		r.mtx.Unlock()
		return
	}
	if _, responded := r.offerResponses[playerID]; responded {
		r.mtx.Unlock()
		return
	}

	r.offerResponses[playerID] = accepted
	if accepted {
		r.settleDealLocked(p)
	}

	if r.allEligibleRespondedLocked() {
		r.resolveOfferLocked()
	}

	r.broadcastLocked(nil)
	r.pushAllLocked(EventLeaderboard, LeaderboardPayload{Leaderboard: r.provisionalBoardLocked()})
	if r.phase == PhaseFinished {
		r.pushAllLocked(EventGameEnded, LeaderboardPayload{Leaderboard: r.finalBoard})
	}
	r.mtx.Unlock()
}

// BroadcastChat fans a server-stamped chat message to every connection.
func (r *Session) BroadcastChat(msg ChatMessage) {
	r.mtx.Lock()
	r.pushAllLocked(EventChatMessage, msg)
	r.mtx.Unlock()
}

// SendSnapshot pushes a fresh personalised state directly to one player,
// followed by the leaderboard snapshot that prevents missed terminal events.
func (r *Session) SendSnapshot(playerID string) {
	r.mtx.Lock()

	p, ok := r.players[playerID]
	if !ok {
		r.mtx.Unlock()
		return
	}

	r.pushLocked(p.ConnectionID, EventGameState, r.projectLocked(playerID, nil))
	if r.phase == PhaseFinished {
		r.pushLocked(p.ConnectionID, EventGameEnded, LeaderboardPayload{Leaderboard: r.finalBoard})
	} else {
		r.pushLocked(p.ConnectionID, EventLeaderboard, LeaderboardPayload{Leaderboard: r.provisionalBoardLocked()})
	}
	r.mtx.Unlock()
}

// Flush drains buffered pushes and runs the done callback outside every lock.
// Callers invoke it after releasing the store mutex; timer paths call it
// directly.
func (r *Session) Flush() {
	r.mtx.Lock()
	batch := r.outbox
	r.outbox = nil
	done := r.phase == PhaseFinished && !r.doneCalled
	if done {
		r.doneCalled = true
	}
	r.mtx.Unlock()

	for _, o := range batch {
		r.config.Push(o.connectionID, o.event, o.data)
	}

	if done && r.config.DoneFn != nil {
		r.config.DoneFn(r)
	}
}

// ----- internals; every *Locked method runs under r.mtx -----

func (r *Session) contestantsLocked() []*Player {
	var out []*Player
	for _, id := range r.order {
		if p := r.players[id]; p.IsContestant() {
			out = append(out, p)
		}
	}
	return out
}

func (r *Session) contestantsLenLocked() int {
	var n int
	for _, id := range r.order {
		if r.players[id].IsContestant() {
			n++
		}
	}
	return n
}

func (r *Session) boxOwnerLocked(boxNumber int) string {
	for _, id := range r.order {
		if p := r.players[id]; p.IsContestant() && p.BoxNumber == boxNumber {
			return p.ID
		}
	}
	return ""
}

// An openable box is unopened and not reserved as anyone's personal box.
func (r *Session) hasOpenableBoxLocked() bool {
	for _, box := range r.boxes {
		if !box.IsOpened && r.boxOwnerLocked(box.Number) == "" {
			return true
		}
	}
	return false
}

func (r *Session) eliminateValueLocked(value float64) {
	for i, v := range r.remaining {
		if v == value {
			r.remaining = append(r.remaining[:i], r.remaining[i+1:]...)
			break
		}
	}
	r.eliminated = append(r.eliminated, value)
}

func (r *Session) advanceTurnIndexLocked() {
	if len(r.turnOrder) == 0 {
		r.currentTurnIndex = 0
		return
	}
	r.currentTurnIndex = (r.currentTurnIndex + 1) % len(r.turnOrder)
}

func (r *Session) armTurnLocked() {
	if len(r.turnOrder) == 0 || !r.hasOpenableBoxLocked() {
		// Late-game dead end: nothing left to open, go straight to the banker.
		r.currentTurnID = ""
		r.turnExpiresAt = time.Time{}
		r.beginOfferLocked()
		return
	}

	if r.currentTurnIndex >= len(r.turnOrder) {
		r.currentTurnIndex = 0
	}

	playerID := r.turnOrder[r.currentTurnIndex]
	r.currentTurnID = playerID
	r.turnExpiresAt = time.Now().Add(r.config.TurnTimeout)

	r.turnEpoch++
	epoch := r.turnEpoch
	if r.turnTimer != nil {
		r.turnTimer.Stop()
	}
	r.turnTimer = time.AfterFunc(r.config.TurnTimeout, func() {
		r.turnExpired(epoch, playerID)
	})
}

func (r *Session) cancelTurnTimerLocked() {
	r.turnEpoch++
	if r.turnTimer != nil {
		r.turnTimer.Stop()
		r.turnTimer = nil
	}
	r.currentTurnID = ""
	r.turnExpiresAt = time.Time{}
}

func (r *Session) turnExpired(epoch uint64, playerID string) {
	r.mtx.Lock()
	if r.phase != PhasePlaying || epoch != r.turnEpoch || r.currentTurnID != playerID {
		// State moved on between firing and dispatch; benign no-op.
		r.mtx.Unlock()
		return
	}

	if p, ok := r.players[playerID]; ok {
		p.TimeoutCount++
		r.logger.Infof("game %s: %s missed the turn deadline", r.code, p.DisplayName)
	}

	r.advanceTurnIndexLocked()
	r.armTurnLocked()
	r.broadcastLocked(nil)
	r.mtx.Unlock()
	r.Flush()
}

// scheduleOfferLocked arms the cosmetic pause between the last reveal of a
// round and the banker call.
func (r *Session) scheduleOfferLocked() {
	r.revealEpoch++
	epoch := r.revealEpoch
	if r.revealTimer != nil {
		r.revealTimer.Stop()
	}
	r.revealTimer = time.AfterFunc(r.config.OfferRevealDelay, func() {
		r.revealExpired(epoch)
	})
}

func (r *Session) revealExpired(epoch uint64) {
	r.mtx.Lock()
	if r.phase != PhasePlaying || epoch != r.revealEpoch {
		r.mtx.Unlock()
		return
	}

	r.beginOfferLocked()
	r.broadcastLocked(nil)
	r.mtx.Unlock()
	r.Flush()
}

func (r *Session) beginOfferLocked() {
	eligible := make([]string, 0, len(r.turnOrder))
	for _, id := range r.order {
		if r.players[id].IsActive() {
			eligible = append(eligible, id)
		}
	}

	if len(eligible) == 0 {
		r.finalizeLocked()
		return
	}

	r.phase = PhaseOffer
	r.currentOffer = banker.Offer(r.remaining, r.currentRound, r.config.Rand)
	r.offerEligible = eligible
	r.offerResponses = map[string]bool{}
	r.offerExpiresAt = time.Now().Add(r.config.OfferTimeout)

	r.logger.Infof("game %s round %d: banker offers %.2f to %d players",
		r.code, r.currentRound, r.currentOffer, len(eligible))

	r.offerEpoch++
	epoch := r.offerEpoch
	if r.offerTimer != nil {
		r.offerTimer.Stop()
	}
	r.offerTimer = time.AfterFunc(r.config.OfferTimeout, func() {
		r.offerExpired(epoch)
	})
}

func (r *Session) offerExpired(epoch uint64) {
	r.mtx.Lock()
	if r.phase != PhaseOffer || epoch != r.offerEpoch {
		r.mtx.Unlock()
		return
	}

	// Non-responders become implicit rejections and pay the timeout penalty.
	for _, id := range r.offerEligible {
		if _, ok := r.offerResponses[id]; !ok {
			r.offerResponses[id] = false
			if p, found := r.players[id]; found {
				p.TimeoutCount++
			}
		}
	}

	r.resolveOfferLocked()
	r.broadcastLocked(nil)
	r.pushAllLocked(EventLeaderboard, LeaderboardPayload{Leaderboard: r.provisionalBoardLocked()})
	if r.phase == PhaseFinished {
		r.pushAllLocked(EventGameEnded, LeaderboardPayload{Leaderboard: r.finalBoard})
	}
	r.mtx.Unlock()
	r.Flush()
}

func (r *Session) isOfferEligibleLocked(playerID string) bool {
	for _, id := range r.offerEligible {
		if id == playerID {
			return true
		}
	}
	return false
}

func (r *Session) allEligibleRespondedLocked() bool {
	for _, id := range r.offerEligible {
		if _, ok := r.offerResponses[id]; !ok {
			return false
		}
	}
	return true
}

func (r *Session) settleDealLocked(p *Player) {
	p.HasDealt = true
	p.DealAmount = r.currentOffer
	p.RoundDealt = r.currentRound

	box := r.boxes[p.BoxNumber-1]
	if !box.IsOpened {
		box.IsOpened = true
		box.OpenedBy = p.ID
		r.eliminateValueLocked(box.Value)
	}

	// Keep the next-round rotation fair after the removal.
	for i, id := range r.turnOrder {
		if id == p.ID {
			r.turnOrder = append(r.turnOrder[:i], r.turnOrder[i+1:]...)
			if i <= r.currentTurnIndex && r.currentTurnIndex > 0 {
				r.currentTurnIndex--
			}
			break
		}
	}

	r.logger.Infof("game %s round %d: %s dealt at %.2f", r.code, r.currentRound, p.DisplayName, p.DealAmount)
}

func (r *Session) resolveOfferLocked() {
	r.offerEpoch++
	if r.offerTimer != nil {
		r.offerTimer.Stop()
		r.offerTimer = nil
	}

	var undealt []*Player
	for _, id := range r.order {
		if p := r.players[id]; p.IsActive() {
			undealt = append(undealt, p)
		}
	}

	switch len(undealt) {
	case 0:
		r.finalizeLocked()
	case 1:
		r.settleLastStandingLocked(undealt[0])
		r.finalizeLocked()
	default:
		r.currentRound++
		r.openedThisRound = nil
		r.currentOffer = 0
		r.offerExpiresAt = time.Time{}
		r.offerEligible = nil
		r.offerResponses = nil
		r.phase = PhasePlaying
		r.armTurnLocked()
	}
}

// settleLastStandingLocked reveals the final contestant's own box as their
// winnings.
func (r *Session) settleLastStandingLocked(p *Player) {
	box := r.boxes[p.BoxNumber-1]
	if !box.IsOpened {
		box.IsOpened = true
		box.OpenedBy = p.ID
		r.eliminateValueLocked(box.Value)
	}

	p.HasDealt = true
	p.DealAmount = p.BoxValue
	p.RoundDealt = r.currentRound
	p.IsLastStanding = true

	for i, id := range r.turnOrder {
		if id == p.ID {
			r.turnOrder = append(r.turnOrder[:i], r.turnOrder[i+1:]...)
			break
		}
	}

	r.logger.Infof("game %s: %s is last standing, box reveals %.2f", r.code, p.DisplayName, p.DealAmount)
}

func (r *Session) finalizeLocked() {
	r.cancelTurnTimerLocked()
	r.offerEpoch++
	if r.offerTimer != nil {
		r.offerTimer.Stop()
		r.offerTimer = nil
	}
	r.revealEpoch++
	if r.revealTimer != nil {
		r.revealTimer.Stop()
		r.revealTimer = nil
	}

	r.currentOffer = 0
	r.offerExpiresAt = time.Time{}
	r.offerEligible = nil
	r.offerResponses = nil

	var highest float64
	contestants := r.contestantsLocked()
	for _, p := range contestants {
		if p.BoxNumber != 0 && p.DealAmount > highest {
			highest = p.DealAmount
		}
	}

	entries := make([]scoring.LeaderEntry, 0, len(contestants))
	for _, p := range contestants {
		if p.BoxNumber == 0 {
			continue
		}
		p.Points = scoring.Points(scoring.Outcome{
			FinalWinnings:     p.DealAmount,
			FinalBoxValue:     p.BoxValue,
			RoundDealt:        p.RoundDealt,
			IsLastStanding:    p.IsLastStanding,
			IsHighestWinnings: p.DealAmount == highest,
			TimeoutCount:      p.TimeoutCount,
		})
		entries = append(entries, scoring.LeaderEntry{
			PlayerID:    p.ID,
			PlayerName:  p.DisplayName,
			Amount:      p.DealAmount,
			Points:      p.Points,
			WasBoxValue: p.IsLastStanding,
		})
	}

	r.finalBoard = scoring.Rank(entries)
	r.phase = PhaseFinished
	r.finishedAt = time.Now()

	r.logger.Infof("game %s finished after %d rounds", r.code, r.currentRound)
}

// provisionalBoardLocked ranks the already-settled contestants mid-game.
// Highest-winnings is judged against the settled set only; the final board
// recomputes it over everyone.
func (r *Session) provisionalBoardLocked() []scoring.LeaderEntry {
	if r.phase == PhaseFinished {
		board := make([]scoring.LeaderEntry, len(r.finalBoard))
		copy(board, r.finalBoard)
		return board
	}

	var highest float64
	for _, id := range r.order {
		if p := r.players[id]; p.IsContestant() && p.HasDealt && p.BoxNumber != 0 && p.DealAmount > highest {
			highest = p.DealAmount
		}
	}

	entries := []scoring.LeaderEntry{}
	for _, id := range r.order {
		p := r.players[id]
		if !p.IsContestant() || !p.HasDealt || p.BoxNumber == 0 {
			continue
		}
		entries = append(entries, scoring.LeaderEntry{
			PlayerID:   p.ID,
			PlayerName: p.DisplayName,
			Amount:     p.DealAmount,
			Points: scoring.Points(scoring.Outcome{
				FinalWinnings:     p.DealAmount,
				FinalBoxValue:     p.BoxValue,
				RoundDealt:        p.RoundDealt,
				IsLastStanding:    p.IsLastStanding,
				IsHighestWinnings: p.DealAmount == highest,
				TimeoutCount:      p.TimeoutCount,
			}),
			WasBoxValue: p.IsLastStanding,
		})
	}

	return scoring.Rank(entries)
}

func (r *Session) pushLocked(connectionID, event string, data interface{}) {
	if connectionID == "" {
		return
	}
	r.outbox = append(r.outbox, outbound{connectionID: connectionID, event: event, data: data})
}

func (r *Session) pushAllLocked(event string, data interface{}) {
	for _, id := range r.order {
		if p := r.players[id]; p.IsConnected {
			r.pushLocked(p.ConnectionID, event, data)
		}
	}
}

func (r *Session) pushOthersLocked(exceptPlayerID, event string, data interface{}) {
	for _, id := range r.order {
		if id == exceptPlayerID {
			continue
		}
		if p := r.players[id]; p.IsConnected {
			r.pushLocked(p.ConnectionID, event, data)
		}
	}
}

// broadcastLocked queues one personalised snapshot per connected player.
func (r *Session) broadcastLocked(recent *OpenedBoxView) {
	for _, id := range r.order {
		p := r.players[id]
		if !p.IsConnected {
			continue
		}
		r.pushLocked(p.ConnectionID, EventGameState, r.projectLocked(id, recent))
	}
}
