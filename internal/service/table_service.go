package service

import (
	"context"
	"fmt"

	"github.com/chalkline/bracketd/internal/bracket"
	"github.com/chalkline/bracketd/internal/schedule"
	"github.com/chalkline/bracketd/internal/store"
	"github.com/jmoiron/sqlx"
)

type TableService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewTableService(db *sqlx.DB, store *store.TournamentStore) *TableService {
	return &TableService{db: db, store: store}
}

// AutoAssign runs the planner over the current snapshot and applies the
// recommendations. An empty plan is a normal outcome, not an error. The
// host calls this after every state change; unchanged state yields the
// same plan.
func (s *TableService) AutoAssign(ctx context.Context, tournamentID string) (schedule.Plan, error) {
	tournament, b, tables, err := loadState(ctx, s.store, tournamentID)
	if err != nil {
		return schedule.Plan{}, err
	}
	if !tournament.AutoAssign {
		return schedule.Plan{}, nil
	}

	cfg := schedule.Config{LoserWeight: tournament.LoserWeight}
	plan := schedule.PlanAssignments(b, tables, cfg)
	for _, a := range plan.Assignments {
		if err := schedule.Assign(b, tables, a.TableID, a.MatchID); err != nil {
			return schedule.Plan{}, fmt.Errorf("failed to apply plan: %w", err)
		}
	}
	if len(plan.Assignments) == 0 {
		return plan, nil
	}

	return plan, s.persist(ctx, tournament, b, tables)
}

// AssignTable seats a specific match at a specific table, bypassing the
// planner. Same validity rules apply.
func (s *TableService) AssignTable(ctx context.Context, tournamentID string, tableID, matchID int) error {
	tournament, b, tables, err := loadState(ctx, s.store, tournamentID)
	if err != nil {
		return err
	}

	if err := schedule.Assign(b, tables, tableID, matchID); err != nil {
		return err
	}
	return s.persist(ctx, tournament, b, tables)
}

func (s *TableService) ReleaseTable(ctx context.Context, tournamentID string, tableID int) error {
	tournament, b, tables, err := loadState(ctx, s.store, tournamentID)
	if err != nil {
		return err
	}

	if err := schedule.Release(b, tables, tableID); err != nil {
		return err
	}
	return s.persist(ctx, tournament, b, tables)
}

// SetTableAutoAssign opts a single table in or out of planning.
func (s *TableService) SetTableAutoAssign(ctx context.Context, tournamentID string, tableID int, enabled bool) error {
	tournament, b, tables, err := loadState(ctx, s.store, tournamentID)
	if err != nil {
		return err
	}

	found := false
	for i := range tables {
		if tables[i].ID == tableID {
			tables[i].AutoAssign = enabled
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: %d", schedule.ErrTableNotFound, tableID)
	}
	return s.persist(ctx, tournament, b, tables)
}

func (s *TableService) persist(ctx context.Context, tournament *bracket.Tournament, b *bracket.Bracket, tables []schedule.Table) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.store.UpdateMatches(ctx, tx, tournament.ID, b.Matches); err != nil {
		return err
	}
	if err := s.store.UpdateTables(ctx, tx, tournament.ID, tables); err != nil {
		return err
	}
	return tx.Commit()
}
