package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentStarted   TournamentStatus = "started"
	TournamentCompleted TournamentStatus = "completed"
)

type Tournament struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	Name        string           `db:"name" json:"name"`
	Status      TournamentStatus `db:"status" json:"status"`
	Mode        GrandFinalMode   `db:"grand_final_mode" json:"grand_final_mode"`
	BracketSize int              `db:"bracket_size" json:"bracket_size"`

	// LoserWeight scales losers-bracket scheduling priority; 1.0 is
	// neutral, above 1.0 favors the losers bracket for free tables.
	LoserWeight float64 `db:"loser_weight" json:"loser_weight"`

	// AutoAssign gates automatic table planning for the whole event.
	AutoAssign bool `db:"auto_assign" json:"auto_assign"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
