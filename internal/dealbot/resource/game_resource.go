package resource

import (
	"time"

	"github.com/enescakir/emoji"
)

const (
	ProjectName    = "dealbot"
	ProjectVersion = "1.0.0"
)

var Graffiti = emoji.MoneyBag.String() + ` deal-or-no-deal multiplayer server ` + emoji.Briefcase.String() + "\n"

// BoxValueLadder is the fixed multiset of monetary values hidden in the 20
// boxes of every game. Order here is the display order, not the box order.
var BoxValueLadder = []float64{
	0.01, 1, 5, 10, 50,
	100, 250, 500, 750, 1000,
	3000, 5000, 7500, 10000, 15000,
	20000, 35000, 50000, 75000, 100000,
}

const BoxCount = 20

// BoxesToOpen returns the round quota of box openings before the banker calls.
func BoxesToOpen(round int) int {
	switch round {
	case 1:
		return 5
	case 2:
		return 4
	case 3:
		return 3
	case 4:
		return 2
	default:
		return 1
	}
}

// BankerBaseModifiers index with min(round-1, 5).
var BankerBaseModifiers = []float64{0.70, 0.80, 0.90, 0.95, 1.00, 1.05}

const (
	MaxContestants = 6
	MinContestants = 2
	MaxNameLen     = 16
	MaxPasswordLen = 64
	MaxChatLen     = 500
	ChatHistoryLen = 100
)

const (
	TurnTimeout      = 20 * time.Second
	OfferTimeout     = 20 * time.Second
	OfferRevealDelay = 1500 * time.Millisecond
)

// Room codes exclude 0, 1, I and O.
const (
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeLen      = 6
)

// BannedNameWords are matched case-insensitively as substrings; a hit masks
// every vowel of the display name.
var BannedNameWords = []string{
	"admin",
	"banker",
	"moderator",
	"fuck",
	"shit",
	"bitch",
	"cunt",
	"nigger",
	"faggot",
}

const (
	TextRoomNotFound      = "Room not found"
	TextBadPassword       = "Incorrect password"
	TextGameInProgress    = "Game already in progress"
	TextRoomFull          = "Room is full"
	TextNameRequired      = "Player name is required"
	TextCodeRequired      = "Room code is required"
	TextPlayerNotFound    = "Player not found"
	TextNotAuthorized     = "Not authorized"
	TextWrongPhase        = "Not allowed in this phase"
	TextGameEndedChatName = "banker"
)

var TextGameEndedChatMsg = emoji.PartyPopper.String() + " The game has ended, thanks for playing!"
