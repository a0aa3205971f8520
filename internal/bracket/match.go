package bracket

type MatchStatus string

const (
	MatchPending  MatchStatus = "pending"
	MatchFinished MatchStatus = "finished"
	// MatchVoid marks the grand-final reset when the winners-bracket
	// champion already closed the tournament in the first grand final.
	MatchVoid MatchStatus = "void"
)

type BracketSide string

const (
	WinnersSide BracketSide = "winners"
	LosersSide  BracketSide = "losers"
	FinalsSide  BracketSide = "finals"
)

// Match is the unit of competition. Slots hold player names: an empty
// string means the slot is still waiting on a predecessor match, ByeName
// marks an empty seat. Routing pointers (WinnerTo/LoserTo) are fixed once
// at bracket generation and never recomputed.
type Match struct {
	ID int `db:"match_id" json:"id"`

	// Position in the tournament for reconstructing the view
	BracketSide BracketSide `db:"bracket_side" json:"bracket_side"`
	RoundNumber int         `db:"round_number" json:"round_number"`
	MatchOrder  int         `db:"match_order" json:"match_order"`

	Slot1 string `db:"slot_1" json:"slot_1"`
	Slot2 string `db:"slot_2" json:"slot_2"`

	Score1 *int `db:"score_1" json:"score_1"`
	Score2 *int `db:"score_2" json:"score_2"`

	WinnerSlot *int        `db:"winner_slot" json:"winner_slot"`
	Status     MatchStatus `db:"status" json:"status"`
	IsBye      bool        `db:"is_bye" json:"is_bye"`

	IsGrandFinalsReset bool `db:"is_reset" json:"is_grand_finals_reset"`

	// Table is the occupied resource, 0 when the match is off-table.
	Table int `db:"table_id" json:"table"`

	// Match IDs fed by this match's outcome; 0 means no successor.
	WinnerTo     int `db:"winner_to" json:"winner_to"`
	WinnerToSlot int `db:"winner_to_slot" json:"winner_to_slot"`
	LoserTo      int `db:"loser_to" json:"loser_to"`
	LoserToSlot  int `db:"loser_to_slot" json:"loser_to_slot"`
}

func (m *Match) Slot(n int) string {
	if n == 1 {
		return m.Slot1
	}
	return m.Slot2
}

func (m *Match) SetSlot(n int, name string) {
	if n == 1 {
		m.Slot1 = name
	} else {
		m.Slot2 = name
	}
}

func (m *Match) Decided() bool {
	return m.Status == MatchFinished && m.WinnerSlot != nil
}

// Ready reports whether both seats are resolved to real players and no
// result has been recorded yet. Table assignment is a scheduler concern
// and deliberately not part of readiness.
func (m *Match) Ready() bool {
	return m.Status == MatchPending &&
		m.Slot1 != "" && m.Slot1 != ByeName &&
		m.Slot2 != "" && m.Slot2 != ByeName
}

func (m *Match) Winner() string {
	if !m.Decided() {
		return ""
	}
	return m.Slot(*m.WinnerSlot)
}

func (m *Match) Loser() string {
	if !m.Decided() {
		return ""
	}
	return m.Slot(3 - *m.WinnerSlot)
}

func (m *Match) HasPlayer(name string) bool {
	return name != "" && (m.Slot1 == name || m.Slot2 == name)
}
