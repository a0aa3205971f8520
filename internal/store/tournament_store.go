package store

import (
	"context"

	"github.com/chalkline/bracketd/internal/bracket"
	"github.com/chalkline/bracketd/internal/schedule"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

// Row wrappers scope the shared domain types to one tournament.
type matchRow struct {
	TournamentID uuid.UUID `db:"tournament_id"`
	bracket.Match
}

type playerRow struct {
	TournamentID uuid.UUID `db:"tournament_id"`
	bracket.Player
}

type tableRow struct {
	TournamentID uuid.UUID `db:"tournament_id"`
	schedule.Table
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournaments (id, name, status, grand_final_mode, bracket_size, loser_weight, auto_assign)
        VALUES (:id, :name, :status, :grand_final_mode, :bracket_size, :loser_weight, :auto_assign)`, tournament)
	return err
}

func (s *TournamentStore) CreatePlayers(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, players []bracket.Player) error {
	if len(players) == 0 {
		return nil
	}
	rows := make([]playerRow, 0, len(players))
	for _, p := range players {
		rows = append(rows, playerRow{TournamentID: tournamentID, Player: p})
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO players (tournament_id, seed, name)
            VALUES (:tournament_id, :seed, :name)`, rows)
	return err
}

func (s *TournamentStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, matches []*bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}
	rows := make([]matchRow, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, matchRow{TournamentID: tournamentID, Match: *m})
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO matches (tournament_id, match_id, bracket_side, round_number, match_order,
            slot_1, slot_2, score_1, score_2, winner_slot, status, is_bye, is_reset, table_id,
            winner_to, winner_to_slot, loser_to, loser_to_slot)
        VALUES (:tournament_id, :match_id, :bracket_side, :round_number, :match_order,
            :slot_1, :slot_2, :score_1, :score_2, :winner_slot, :status, :is_bye, :is_reset, :table_id,
            :winner_to, :winner_to_slot, :loser_to, :loser_to_slot)`, rows)
	return err
}

func (s *TournamentStore) CreateTables(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, tables []schedule.Table) error {
	if len(tables) == 0 {
		return nil
	}
	rows := make([]tableRow, 0, len(tables))
	for _, t := range tables {
		rows = append(rows, tableRow{TournamentID: tournamentID, Table: t})
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tables (tournament_id, table_id, match_id, auto_assign)
        VALUES (:tournament_id, :table_id, :match_id, :auto_assign)`, rows)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id string) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := s.db.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE id = ?", id)
	return &tournament, err
}

func (s *TournamentStore) ListTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, "SELECT * FROM tournaments ORDER BY created_at DESC")
	return tournaments, err
}

func (s *TournamentStore) GetPlayers(ctx context.Context, tournamentID string) ([]bracket.Player, error) {
	var rows []playerRow
	err := s.db.SelectContext(ctx, &rows, "SELECT * FROM players WHERE tournament_id = ? ORDER BY seed ASC", tournamentID)
	if err != nil {
		return nil, err
	}
	players := make([]bracket.Player, 0, len(rows))
	for _, r := range rows {
		players = append(players, r.Player)
	}
	return players, nil
}

func (s *TournamentStore) GetMatches(ctx context.Context, tournamentID string) ([]*bracket.Match, error) {
	var rows []matchRow
	err := s.db.SelectContext(ctx, &rows, "SELECT * FROM matches WHERE tournament_id = ? ORDER BY match_id ASC", tournamentID)
	if err != nil {
		return nil, err
	}
	matches := make([]*bracket.Match, 0, len(rows))
	for i := range rows {
		m := rows[i].Match
		matches = append(matches, &m)
	}
	return matches, nil
}

func (s *TournamentStore) GetTables(ctx context.Context, tournamentID string) ([]schedule.Table, error) {
	var rows []tableRow
	err := s.db.SelectContext(ctx, &rows, "SELECT * FROM tables WHERE tournament_id = ? ORDER BY table_id ASC", tournamentID)
	if err != nil {
		return nil, err
	}
	tables := make([]schedule.Table, 0, len(rows))
	for _, r := range rows {
		tables = append(tables, r.Table)
	}
	return tables, nil
}

func (s *TournamentStore) UpdateMatches(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, matches []*bracket.Match) error {
	for _, m := range matches {
		row := matchRow{TournamentID: tournamentID, Match: *m}
		_, err := tx.NamedExecContext(ctx, `UPDATE matches SET
                slot_1 = :slot_1, slot_2 = :slot_2, score_1 = :score_1, score_2 = :score_2,
                winner_slot = :winner_slot, status = :status, is_bye = :is_bye, table_id = :table_id
            WHERE tournament_id = :tournament_id AND match_id = :match_id`, row)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *TournamentStore) UpdateTables(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, tables []schedule.Table) error {
	for _, t := range tables {
		row := tableRow{TournamentID: tournamentID, Table: t}
		_, err := tx.NamedExecContext(ctx, `UPDATE tables SET match_id = :match_id, auto_assign = :auto_assign
            WHERE tournament_id = :tournament_id AND table_id = :table_id`, row)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *TournamentStore) UpdateTournamentStatus(ctx context.Context, tx *sqlx.Tx, tournamentID string, status bracket.TournamentStatus) error {
	_, err := tx.ExecContext(ctx, "UPDATE tournaments SET status = ? WHERE id = ?", status, tournamentID)
	return err
}

func (s *TournamentStore) UpdateTournamentAutoAssign(ctx context.Context, tx *sqlx.Tx, tournamentID string, enabled bool) error {
	_, err := tx.ExecContext(ctx, "UPDATE tournaments SET auto_assign = ? WHERE id = ?", enabled, tournamentID)
	return err
}
