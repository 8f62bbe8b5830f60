package match

import (
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/resource"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/scoring"
)

// Snapshot is the personalised room view pushed as game-state-update.
// Unopened box values never appear; isPlayerBox marks the recipient's own.
type Snapshot struct {
	Phase                string          `json:"phase"`
	Players              []PlayerView    `json:"players"`
	Boxes                []BoxView       `json:"boxes"`
	CurrentRound         int             `json:"currentRound"`
	BoxesToOpenThisRound int             `json:"boxesToOpenThisRound"`
	BoxesOpenedThisRound []int           `json:"boxesOpenedThisRound"`
	RemainingValues      []float64       `json:"remainingValues"`
	EliminatedValues     []float64       `json:"eliminatedValues"`
	CurrentOffer         *float64        `json:"currentOffer"`
	OfferExpiresAt       *int64          `json:"offerExpiresAt"`
	CurrentTurnPlayerID  *string         `json:"currentTurnPlayerId"`
	TurnExpiresAt        *int64          `json:"turnExpiresAt"`
	RecentlyOpenedBox    *OpenedBoxView  `json:"recentlyOpenedBox,omitempty"`
}

type PlayerView struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	IsHost      bool     `json:"isHost"`
	Role        string   `json:"role"`
	IsReady     bool     `json:"isReady"`
	IsConnected bool     `json:"isConnected"`
	BoxNumber   *int     `json:"boxNumber"`
	HasDealt    bool     `json:"hasDealt"`
	DealAmount  *float64 `json:"dealAmount"`
	IsActive    bool     `json:"isActive"`
}

type BoxView struct {
	Number      int      `json:"number"`
	IsOpened    bool     `json:"isOpened"`
	Value       *float64 `json:"value,omitempty"`
	IsPlayerBox bool     `json:"isPlayerBox"`
	OwnerID     *string  `json:"ownerId"`
}

type OpenedBoxView struct {
	BoxNumber int     `json:"boxNumber"`
	Value     float64 `json:"value"`
}

type LeaderboardPayload struct {
	Leaderboard []scoring.LeaderEntry `json:"leaderboard"`
}

// projectLocked builds the recipient's snapshot. Read-only and idempotent.
func (r *Session) projectLocked(recipientID string, recent *OpenedBoxView) Snapshot {
	recipient := r.players[recipientID]

	snap := Snapshot{
		Phase:                r.phase.String(),
		Players:              make([]PlayerView, 0, len(r.order)),
		Boxes:                make([]BoxView, 0, len(r.boxes)),
		CurrentRound:         r.currentRound,
		BoxesToOpenThisRound: resource.BoxesToOpen(r.currentRound),
		BoxesOpenedThisRound: append([]int{}, r.openedThisRound...),
		RemainingValues:      append([]float64{}, r.remaining...),
		EliminatedValues:     append([]float64{}, r.eliminated...),
		RecentlyOpenedBox:    recent,
	}

	if r.phase == PhaseOffer {
		offer := r.currentOffer
		expires := r.offerExpiresAt.UnixMilli()
		snap.CurrentOffer = &offer
		snap.OfferExpiresAt = &expires
	}
	if r.currentTurnID != "" {
		turnID := r.currentTurnID
		expires := r.turnExpiresAt.UnixMilli()
		snap.CurrentTurnPlayerID = &turnID
		snap.TurnExpiresAt = &expires
	}

	for _, id := range r.order {
		p := r.players[id]
		view := PlayerView{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			IsHost:      p.IsHost,
			Role:        p.Role.String(),
			IsReady:     p.IsReady,
			IsConnected: p.IsConnected,
			HasDealt:    p.HasDealt,
			IsActive:    p.IsActive(),
		}
		if p.IsContestant() && p.BoxNumber != 0 {
			n := p.BoxNumber
			view.BoxNumber = &n
		}
		if p.IsContestant() && p.HasDealt && p.BoxNumber != 0 {
			amount := p.DealAmount
			view.DealAmount = &amount
		}
		snap.Players = append(snap.Players, view)
	}

	for _, box := range r.boxes {
		view := BoxView{
			Number:   box.Number,
			IsOpened: box.IsOpened,
		}
		if box.IsOpened {
			value := box.Value
			view.Value = &value
		}
		if recipient != nil && recipient.BoxNumber == box.Number {
			view.IsPlayerBox = true
		}
		if owner := r.boxOwnerLocked(box.Number); owner != "" {
			ownerID := owner
			view.OwnerID = &ownerID
		}
		snap.Boxes = append(snap.Boxes, view)
	}

	return snap
}
