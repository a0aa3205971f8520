package service

import (
	"context"
	"fmt"

	"github.com/chalkline/bracketd/internal/bracket"
	"github.com/chalkline/bracketd/internal/engine"
	"github.com/chalkline/bracketd/internal/schedule"
	"github.com/chalkline/bracketd/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore) *TournamentService {
	return &TournamentService{db: db, store: store}
}

type CreateInput struct {
	Name        string
	Mode        bracket.GrandFinalMode
	PlayerNames []string
	TableCount  int
	LoserWeight float64
	AutoAssign  bool
}

// Snapshot is the full tournament state handed to the host after every
// read or mutation.
type Snapshot struct {
	Tournament *bracket.Tournament `json:"tournament"`
	Players    []bracket.Player    `json:"players"`
	Bracket    *bracket.Bracket    `json:"bracket"`
	Tables     []schedule.Table    `json:"tables"`
	Champion   string              `json:"champion,omitempty"`
}

func (s *TournamentService) CreateTournament(ctx context.Context, input CreateInput) (uuid.UUID, error) {
	players := make([]bracket.Player, 0, len(input.PlayerNames))
	for i, name := range input.PlayerNames {
		players = append(players, bracket.Player{Name: name, Seed: i + 1})
	}

	b, err := engine.Generate(players, input.Mode)
	if err != nil {
		return uuid.Nil, err
	}

	tables, err := schedule.NewTables(input.TableCount, true)
	if err != nil {
		return uuid.Nil, err
	}

	loserWeight := input.LoserWeight
	if loserWeight <= 0 {
		loserWeight = 1.0
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	tournamentID := uuid.New()
	tournament := bracket.Tournament{
		ID:          tournamentID,
		Name:        input.Name,
		Status:      bracket.TournamentStarted,
		Mode:        input.Mode,
		BracketSize: b.Size,
		LoserWeight: loserWeight,
		AutoAssign:  input.AutoAssign,
	}

	if err := s.store.CreateTournament(ctx, tx, &tournament); err != nil {
		return uuid.Nil, err
	}
	if err := s.store.CreatePlayers(ctx, tx, tournamentID, players); err != nil {
		return uuid.Nil, err
	}
	if err := s.store.CreateMatches(ctx, tx, tournamentID, b.Matches); err != nil {
		return uuid.Nil, err
	}
	if err := s.store.CreateTables(ctx, tx, tournamentID, tables); err != nil {
		return uuid.Nil, err
	}

	return tournamentID, tx.Commit()
}

func (s *TournamentService) GetSnapshot(ctx context.Context, id string) (*Snapshot, error) {
	tournament, b, tables, err := loadState(ctx, s.store, id)
	if err != nil {
		return nil, err
	}

	players, err := s.store.GetPlayers(ctx, id)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Tournament: tournament,
		Players:    players,
		Bracket:    b,
		Tables:     tables,
	}
	if champion, ok := engine.Champion(b); ok {
		snap.Champion = champion
	}
	return snap, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	return s.store.ListTournaments(ctx)
}

// SetAutoAssign flips the event-wide automatic planning toggle.
func (s *TournamentService) SetAutoAssign(ctx context.Context, id string, enabled bool) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.store.UpdateTournamentAutoAssign(ctx, tx, id, enabled); err != nil {
		return err
	}
	return tx.Commit()
}

// loadState rebuilds the in-memory bracket and table pool from storage.
func loadState(ctx context.Context, st *store.TournamentStore, id string) (*bracket.Tournament, *bracket.Bracket, []schedule.Table, error) {
	tournament, err := st.GetTournament(ctx, id)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get tournament: %w", err)
	}

	matches, err := st.GetMatches(ctx, id)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get matches: %w", err)
	}

	tables, err := st.GetTables(ctx, id)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get tables: %w", err)
	}

	b := bracket.New(tournament.BracketSize, tournament.Mode, matches)
	return tournament, b, tables, nil
}
