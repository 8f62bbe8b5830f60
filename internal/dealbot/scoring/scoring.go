package scoring

import "sort"

// Outcome is the per-contestant input to the points formula.
type Outcome struct {
	FinalWinnings     float64
	FinalBoxValue     float64
	RoundDealt        int
	IsLastStanding    bool
	IsHighestWinnings bool
	TimeoutCount      int
}

// Points maps a contestant's outcome to their score. Never negative.
func Points(o Outcome) int {
	pts := int(o.FinalWinnings / 100)
	if pts > 3000 {
		pts = 3000
	}

	if o.FinalWinnings > o.FinalBoxValue {
		pts += 200 // smart deal
	}
	if o.RoundDealt >= 4 {
		pts += 150 // guts
	}
	if o.RoundDealt <= 2 {
		pts -= 50 // early exit
	}
	if o.IsLastStanding {
		pts += 200
	}
	if o.IsHighestWinnings {
		pts += 200
	}

	pts -= 50 * o.TimeoutCount

	if pts < 0 {
		pts = 0
	}

	return pts
}

// LeaderEntry is one row of a per-game leaderboard.
type LeaderEntry struct {
	PlayerID    string  `json:"playerId"`
	PlayerName  string  `json:"playerName"`
	Amount      float64 `json:"amount"`
	Points      int     `json:"points"`
	WasBoxValue bool    `json:"wasBoxValue"`
	Rank        int     `json:"rank"`
}

// Rank orders entries by points descending, ties keeping their incoming
// order, and assigns ranks 1..N in place.
func Rank(entries []LeaderEntry) []LeaderEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
