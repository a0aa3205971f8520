// Package schedule assigns ready matches to a fixed pool of physical
// tables. It is a pure decision layer over bracket snapshots: it reads
// match state, never mutates topology, and calling it repeatedly against
// unchanged state yields identical recommendations.
package schedule

import (
	"fmt"
	"sort"

	"github.com/chalkline/bracketd/internal/bracket"
)

// Table is one physical playing resource.
type Table struct {
	ID int `db:"table_id" json:"id"`

	// MatchID is the occupying match, 0 when free.
	MatchID int `db:"match_id" json:"match_id"`

	// AutoAssign opts the table into planner recommendations.
	AutoAssign bool `db:"auto_assign" json:"auto_assign"`
}

// Pick is one selection decision. Relaxed records that the player-conflict
// exclusion emptied the candidate set and the pick came from the
// unfiltered list instead.
type Pick struct {
	Match   *bracket.Match
	Relaxed bool
}

// Assignment recommends a match for a free table.
type Assignment struct {
	TableID int  `json:"table_id"`
	MatchID int  `json:"match_id"`
	Relaxed bool `json:"relaxed"`
}

// Plan is the planner output; empty assignments mean no work, which is
// never an error.
type Plan struct {
	Assignments []Assignment `json:"assignments"`
}

// Ready lists the matches that could start right now: both seats hold real
// players, no result yet, not already on a table.
func Ready(b *bracket.Bracket) []*bracket.Match {
	var out []*bracket.Match
	for _, m := range b.Matches {
		if m.Ready() && m.Table == 0 {
			out = append(out, m)
		}
	}
	return out
}

// OccupiedPlayers collects every player currently seated at a table,
// derived fresh from the snapshot on each call.
func OccupiedPlayers(b *bracket.Bracket, tables []Table) map[string]bool {
	occupied := make(map[string]bool)
	for _, t := range tables {
		if t.MatchID == 0 {
			continue
		}
		m := b.Match(t.MatchID)
		if m == nil {
			continue
		}
		for _, name := range []string{m.Slot1, m.Slot2} {
			if name != "" && name != bracket.ByeName {
				occupied[name] = true
			}
		}
	}
	return occupied
}

// SelectNext picks the highest-priority ready match whose players are not
// already seated elsewhere. When the conflict filter leaves nothing, it
// falls back to the unfiltered candidates rather than stalling the event,
// and flags the pick as relaxed. Returns ok=false when there is no ready
// match at all.
func SelectNext(b *bracket.Bracket, ready []*bracket.Match, occupied map[string]bool, cfg Config) (Pick, bool) {
	if len(ready) == 0 {
		return Pick{}, false
	}

	candidates := make([]*bracket.Match, 0, len(ready))
	for _, m := range ready {
		if !occupied[m.Slot1] && !occupied[m.Slot2] {
			candidates = append(candidates, m)
		}
	}

	relaxed := false
	if len(candidates) == 0 {
		candidates = append(candidates, ready...)
		relaxed = true
	}

	sort.SliceStable(candidates, byPriority(b, cfg, candidates))
	return Pick{Match: candidates[0], Relaxed: relaxed}, true
}

// PlanAssignments recommends one match per free auto-assign table. Earlier
// picks count as occupied for later ones, so a single plan never seats a
// player twice. The snapshot is not mutated; the host applies the plan
// through Assign.
func PlanAssignments(b *bracket.Bracket, tables []Table, cfg Config) Plan {
	ready := Ready(b)
	occupied := OccupiedPlayers(b, tables)

	var plan Plan
	for _, t := range tables {
		if t.MatchID != 0 || !t.AutoAssign {
			continue
		}
		pick, ok := SelectNext(b, ready, occupied, cfg)
		if !ok {
			break
		}
		plan.Assignments = append(plan.Assignments, Assignment{
			TableID: t.ID,
			MatchID: pick.Match.ID,
			Relaxed: pick.Relaxed,
		})

		occupied[pick.Match.Slot1] = true
		occupied[pick.Match.Slot2] = true
		remaining := ready[:0]
		for _, m := range ready {
			if m.ID != pick.Match.ID {
				remaining = append(remaining, m)
			}
		}
		ready = remaining
	}
	return plan
}

// Assign seats a match at a table. The table must be free, the match ready
// and not seated anywhere else; violations fail fast.
func Assign(b *bracket.Bracket, tables []Table, tableID, matchID int) error {
	t := findTable(tables, tableID)
	if t == nil {
		return fmt.Errorf("%w: %d", ErrTableNotFound, tableID)
	}
	if t.MatchID != 0 {
		return fmt.Errorf("%w: table %d holds match %d", ErrTableOccupied, tableID, t.MatchID)
	}
	m := b.Match(matchID)
	if m == nil {
		return fmt.Errorf("%w: %d", ErrMatchNotFound, matchID)
	}
	if !m.Ready() {
		return fmt.Errorf("%w: match %d", ErrMatchNotReady, matchID)
	}
	if m.Table != 0 {
		return fmt.Errorf("%w: match %d on table %d", ErrDoubleAssigned, matchID, m.Table)
	}
	for i := range tables {
		if tables[i].MatchID == matchID {
			return fmt.Errorf("%w: match %d on table %d", ErrDoubleAssigned, matchID, tables[i].ID)
		}
	}

	t.MatchID = matchID
	m.Table = tableID
	return nil
}

// Release frees a table. A match that completed while seated simply goes
// away; it never resurfaces as ready because it already has a winner.
func Release(b *bracket.Bracket, tables []Table, tableID int) error {
	t := findTable(tables, tableID)
	if t == nil {
		return fmt.Errorf("%w: %d", ErrTableNotFound, tableID)
	}
	if t.MatchID != 0 {
		if m := b.Match(t.MatchID); m != nil && m.Table == tableID {
			m.Table = 0
		}
		t.MatchID = 0
	}
	return nil
}

// ReleaseMatch frees whichever table holds the match, if any.
func ReleaseMatch(b *bracket.Bracket, tables []Table, matchID int) {
	for i := range tables {
		if tables[i].MatchID == matchID {
			tables[i].MatchID = 0
		}
	}
	if m := b.Match(matchID); m != nil {
		m.Table = 0
	}
}

// NewTables builds a pool of count empty tables numbered from 1.
func NewTables(count int, autoAssign bool) ([]Table, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoPositiveCount, count)
	}
	tables := make([]Table, count)
	for i := range tables {
		tables[i] = Table{ID: i + 1, AutoAssign: autoAssign}
	}
	return tables, nil
}

func findTable(tables []Table, tableID int) *Table {
	for i := range tables {
		if tables[i].ID == tableID {
			return &tables[i]
		}
	}
	return nil
}
