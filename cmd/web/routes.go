package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/chalkline/bracketd/internal/bracket"
	"github.com/chalkline/bracketd/internal/config"
	"github.com/chalkline/bracketd/internal/engine"
	"github.com/chalkline/bracketd/internal/httputil"
	"github.com/chalkline/bracketd/internal/live"
	"github.com/chalkline/bracketd/internal/schedule"
	"github.com/chalkline/bracketd/internal/service"
	"github.com/chalkline/bracketd/internal/store"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
)

func newRouter(cfg config.Config, database *sqlx.DB, hub *live.Hub) http.Handler {
	tournamentStore := store.NewTournamentStore(database)
	tournaments := service.NewTournamentService(database, tournamentStore)
	matches := service.NewMatchService(database, tournamentStore)
	tables := service.NewTableService(database, tournamentStore)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// broadcast pushes the post-mutation snapshot to live viewers and
	// returns it so the handler can answer with the same state.
	broadcast := func(w http.ResponseWriter, req *http.Request, id, eventType string) {
		snap, err := tournaments.GetSnapshot(req.Context(), id)
		if err != nil {
			httputil.InternalServerError(w, "Failed to load snapshot", err)
			return
		}
		hub.Broadcast(live.Event{Type: eventType, TournamentID: id, Payload: snap})
		writeJSON(w, http.StatusOK, snap)
	}

	r.Get("/tournaments", func(w http.ResponseWriter, req *http.Request) {
		list, err := tournaments.ListTournaments(req.Context())
		if err != nil {
			httputil.InternalServerError(w, "Failed to list tournaments", err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	})

	r.Post("/tournaments", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Name        string   `json:"name"`
			Mode        string   `json:"mode"`
			Players     []string `json:"players"`
			TableCount  int      `json:"table_count"`
			LoserWeight float64  `json:"loser_weight"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			httputil.BadRequest(w, "Invalid request body", err)
			return
		}

		mode := bracket.GrandFinalReset
		if body.Mode == string(bracket.GrandFinalSingle) {
			mode = bracket.GrandFinalSingle
		}
		input := service.CreateInput{
			Name:        body.Name,
			Mode:        mode,
			PlayerNames: body.Players,
			TableCount:  body.TableCount,
			LoserWeight: body.LoserWeight,
			AutoAssign:  cfg.AutoAssign,
		}
		if input.TableCount == 0 {
			input.TableCount = cfg.TableCount
		}
		if input.LoserWeight == 0 {
			input.LoserWeight = cfg.LoserWeight
		}

		id, err := tournaments.CreateTournament(req.Context(), input)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
	})

	r.Route("/tournaments/{id}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			snap, err := tournaments.GetSnapshot(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, snap)
		})

		r.Patch("/", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				AutoAssign bool `json:"auto_assign"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}
			id := chi.URLParam(req, "id")
			if err := tournaments.SetAutoAssign(req.Context(), id, body.AutoAssign); err != nil {
				writeServiceError(w, err)
				return
			}
			broadcast(w, req, id, "tournament_updated")
		})

		r.Get("/matches/waiting", func(w http.ResponseWriter, req *http.Request) {
			waiting, err := matches.WaitingMatches(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, waiting)
		})

		r.Post("/matches/{matchID}/result", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			matchID, s1, s2, err := scoreParams(req)
			if err != nil {
				httputil.BadRequest(w, "Invalid score submission", err)
				return
			}
			if err := matches.SubmitScore(req.Context(), id, matchID, s1, s2); err != nil {
				writeServiceError(w, err)
				return
			}
			broadcast(w, req, id, "result_recorded")
		})

		r.Put("/matches/{matchID}/result", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			matchID, s1, s2, err := scoreParams(req)
			if err != nil {
				httputil.BadRequest(w, "Invalid score edit", err)
				return
			}
			if err := matches.EditScore(req.Context(), id, matchID, s1, s2); err != nil {
				writeServiceError(w, err)
				return
			}
			broadcast(w, req, id, "result_edited")
		})

		r.Post("/tables/plan", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			plan, err := tables.AutoAssign(req.Context(), id)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			snap, err := tournaments.GetSnapshot(req.Context(), id)
			if err != nil {
				httputil.InternalServerError(w, "Failed to load snapshot", err)
				return
			}
			if len(plan.Assignments) > 0 {
				hub.Broadcast(live.Event{Type: "tables_assigned", TournamentID: id, Payload: snap})
			}
			writeJSON(w, http.StatusOK, plan)
		})

		r.Post("/tables/{tableID}/assign", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			tableID, err := strconv.Atoi(chi.URLParam(req, "tableID"))
			if err != nil {
				httputil.BadRequest(w, "Invalid table ID", err)
				return
			}
			var body struct {
				MatchID int `json:"match_id"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}
			if err := tables.AssignTable(req.Context(), id, tableID, body.MatchID); err != nil {
				writeServiceError(w, err)
				return
			}
			broadcast(w, req, id, "tables_assigned")
		})

		r.Post("/tables/{tableID}/release", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			tableID, err := strconv.Atoi(chi.URLParam(req, "tableID"))
			if err != nil {
				httputil.BadRequest(w, "Invalid table ID", err)
				return
			}
			if err := tables.ReleaseTable(req.Context(), id, tableID); err != nil {
				writeServiceError(w, err)
				return
			}
			broadcast(w, req, id, "table_released")
		})

		r.Patch("/tables/{tableID}", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			tableID, err := strconv.Atoi(chi.URLParam(req, "tableID"))
			if err != nil {
				httputil.BadRequest(w, "Invalid table ID", err)
				return
			}
			var body struct {
				AutoAssign bool `json:"auto_assign"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				httputil.BadRequest(w, "Invalid request body", err)
				return
			}
			if err := tables.SetTableAutoAssign(req.Context(), id, tableID, body.AutoAssign); err != nil {
				writeServiceError(w, err)
				return
			}
			broadcast(w, req, id, "table_updated")
		})

		r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
			live.ServeWS(hub, w, req, chi.URLParam(req, "id"))
		})
	})

	return r
}

func scoreParams(req *http.Request) (matchID, score1, score2 int, err error) {
	matchID, err = strconv.Atoi(chi.URLParam(req, "matchID"))
	if err != nil {
		return 0, 0, 0, err
	}
	var body struct {
		Score1 int `json:"score1"`
		Score2 int `json:"score2"`
	}
	if err = json.NewDecoder(req.Body).Decode(&body); err != nil {
		return 0, 0, 0, err
	}
	return matchID, body.Score1, body.Score2, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing left to do but log.
		slog.Error("failed to encode response", "error", err)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows),
		errors.Is(err, engine.ErrMatchNotFound),
		errors.Is(err, schedule.ErrMatchNotFound),
		errors.Is(err, schedule.ErrTableNotFound):
		httputil.NotFound(w, "Not found", err)
	case errors.Is(err, engine.ErrDownstreamDecided):
		httputil.Conflict(w, err.Error(), err)
	case errors.Is(err, engine.ErrTiedScore),
		errors.Is(err, engine.ErrNegativeScore),
		errors.Is(err, engine.ErrMissingOpponent),
		errors.Is(err, engine.ErrAlreadyDecided),
		errors.Is(err, engine.ErrNotDecided),
		errors.Is(err, engine.ErrMatchVoid),
		errors.Is(err, engine.ErrByeNotEditable),
		errors.Is(err, engine.ErrRosterTooSmall),
		errors.Is(err, engine.ErrDuplicatePlayer),
		errors.Is(err, engine.ErrReservedName),
		errors.Is(err, schedule.ErrTableOccupied),
		errors.Is(err, schedule.ErrMatchNotReady),
		errors.Is(err, schedule.ErrDoubleAssigned),
		errors.Is(err, schedule.ErrNoPositiveCount):
		httputil.BadRequest(w, err.Error(), err)
	default:
		httputil.InternalServerError(w, "Unexpected error", err)
	}
}
