package match

import "github.com/google/uuid"

type Role uint8

const (
	RoleContestant Role = iota + 1
	RoleSpectator
)

func (r Role) String() string {
	if r == RoleSpectator {
		return "spectator"
	}
	return "player"
}

func NewPlayer(connectionID, name string, role Role, isHost bool) *Player {
	p := &Player{
		ID:           uuid.NewString(),
		ConnectionID: connectionID,
		DisplayName:  name,
		IsHost:       isHost,
		Role:         role,
		IsConnected:  true,
	}

	// Spectators are inert to every contestant check.
	if role == RoleSpectator {
		p.IsReady = true
		p.HasDealt = true
	}

	return p
}

type Player struct {
	ID           string
	ConnectionID string
	DisplayName  string
	IsHost       bool
	Role         Role
	IsReady      bool
	IsConnected  bool

	// Contestant-only fields. BoxNumber 0 means no box picked yet.
	BoxNumber      int
	HasDealt       bool
	DealAmount     float64
	BoxValue       float64
	RoundDealt     int
	IsLastStanding bool
	TimeoutCount   int
	Points         int
}

func (p *Player) IsContestant() bool {
	return p.Role == RoleContestant
}

// IsActive reports whether the player still opens boxes and receives offers.
func (p *Player) IsActive() bool {
	return p.Role == RoleContestant && p.BoxNumber != 0 && !p.HasDealt
}

func (p *Player) CanChat() bool {
	return p.Role == RoleContestant
}

func (p *Player) CanStartGame() bool {
	return p.IsHost && p.Role == RoleContestant
}

type Box struct {
	Number   int
	Value    float64
	IsOpened bool
	// OpenedBy is the player who opened the box; the owning contestant for
	// deal settlement and the last-standing reveal.
	OpenedBy string
}

type ChatMessage struct {
	ID          string `json:"id"`
	SenderID    string `json:"senderId"`
	SenderName  string `json:"senderName"`
	Content     string `json:"content"`
	TimestampMs int64  `json:"timestampMs"`
	RoomCode    string `json:"roomCode"`
}
