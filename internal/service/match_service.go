package service

import (
	"context"

	"github.com/chalkline/bracketd/internal/bracket"
	"github.com/chalkline/bracketd/internal/engine"
	"github.com/chalkline/bracketd/internal/schedule"
	"github.com/chalkline/bracketd/internal/store"
	"github.com/jmoiron/sqlx"
)

type MatchService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewMatchService(db *sqlx.DB, store *store.TournamentStore) *MatchService {
	return &MatchService{db: db, store: store}
}

// SubmitScore records a result, propagates it through the bracket, and
// frees the table the match was on.
func (s *MatchService) SubmitScore(ctx context.Context, tournamentID string, matchID, score1, score2 int) error {
	tournament, b, tables, err := loadState(ctx, s.store, tournamentID)
	if err != nil {
		return err
	}

	if err := engine.ApplyResult(b, matchID, score1, score2); err != nil {
		return err
	}
	schedule.ReleaseMatch(b, tables, matchID)

	return s.persist(ctx, tournament, b, tables)
}

// EditScore corrects an already recorded result. The engine refuses the
// edit when downstream matches were decided by play; nothing is persisted
// in that case.
func (s *MatchService) EditScore(ctx context.Context, tournamentID string, matchID, score1, score2 int) error {
	tournament, b, tables, err := loadState(ctx, s.store, tournamentID)
	if err != nil {
		return err
	}

	if err := engine.EditResult(b, matchID, score1, score2); err != nil {
		return err
	}

	return s.persist(ctx, tournament, b, tables)
}

// WaitingMatches is the ready-and-unassigned view the host polls.
func (s *MatchService) WaitingMatches(ctx context.Context, tournamentID string) ([]*bracket.Match, error) {
	_, b, _, err := loadState(ctx, s.store, tournamentID)
	if err != nil {
		return nil, err
	}
	return schedule.Ready(b), nil
}

func (s *MatchService) persist(ctx context.Context, tournament *bracket.Tournament, b *bracket.Bracket, tables []schedule.Table) error {
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

	status := bracket.TournamentStarted
	if engine.IsComplete(b) {
		status = bracket.TournamentCompleted
	}
	if status != tournament.Status {
		if err := s.store.UpdateTournamentStatus(ctx, tx, tournament.ID.String(), status); err != nil {
			return err
		}
	}

	return tx.Commit()
}
