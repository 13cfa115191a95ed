package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/PrimalTeam/sportsy-back/models"
	"github.com/lib/pq"
)

var (
	ErrGameNotFound           = errors.New("game not found")
	ErrTeamStatusNotFound     = errors.New("team is not part of this game")
	ErrGameTournamentInvalid  = errors.New("invalid tournament reference for game")
	ErrGameTeamInvalid        = errors.New("invalid team reference for game")
	ErrGameTeamStatusConflict = errors.New("team already has a status in this game")
)

type GameRepository interface {
	// Create inserts the game and a zero-score team status for each of its teams.
	Create(ctx context.Context, exec SQLExecutor, game *models.Game) error
	GetByID(ctx context.Context, id int) (*models.Game, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Game, error)
	UpdateStatus(ctx context.Context, id int, status models.GameStatus) error
	UpdateTeamScore(ctx context.Context, gameID, teamID int, score float64) error
	Delete(ctx context.Context, id int) error
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGameRepository) Create(ctx context.Context, exec SQLExecutor, game *models.Game) error {
	return inTx(ctx, r.db, exec, func(tx SQLExecutor) error {
		query := `
			INSERT INTO games (tournament_id, status, team_ids)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`
		err := tx.QueryRowContext(ctx, query, game.TournamentID, game.Status, toInt64Array(game.TeamIDs)).
			Scan(&game.ID, &game.CreatedAt)
		if err != nil {
			return handleGameError(err)
		}

		game.TeamStatuses = make([]models.TeamStatus, 0, len(game.TeamIDs))
		for _, teamID := range game.TeamIDs {
			ts := models.TeamStatus{GameID: game.ID, TeamID: teamID}
			err := tx.QueryRowContext(ctx,
				`INSERT INTO team_statuses (game_id, team_id, score) VALUES ($1, $2, 0) RETURNING id`,
				game.ID, teamID,
			).Scan(&ts.ID)
			if err != nil {
				return handleGameError(err)
			}
			game.TeamStatuses = append(game.TeamStatuses, ts)
		}
		return nil
	})
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	executor := r.getExecutor(nil)
	query := `SELECT id, tournament_id, status, team_ids, created_at FROM games WHERE id = $1`

	var game models.Game
	var ids pq.Int64Array
	err := executor.QueryRowContext(ctx, query, id).Scan(&game.ID, &game.TournamentID, &game.Status, &ids, &game.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game %d: %w", id, err)
	}
	game.TeamIDs = fromInt64Array(ids)

	statuses, err := listTeamStatuses(ctx, executor, `WHERE game_id = $1`, id)
	if err != nil {
		return nil, err
	}
	game.TeamStatuses = statuses[id]
	return &game, nil
}

func (r *postgresGameRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Game, error) {
	return listGamesByTournament(ctx, r.db, tournamentID)
}

func (r *postgresGameRepository) UpdateStatus(ctx context.Context, id int, status models.GameStatus) error {
	executor := r.getExecutor(nil)
	result, err := executor.ExecContext(ctx, `UPDATE games SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status of game %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) UpdateTeamScore(ctx context.Context, gameID, teamID int, score float64) error {
	executor := r.getExecutor(nil)
	result, err := executor.ExecContext(ctx,
		`UPDATE team_statuses SET score = $1 WHERE game_id = $2 AND team_id = $3`,
		score, gameID, teamID)
	if err != nil {
		return fmt.Errorf("failed to update score of team %d in game %d: %w", teamID, gameID, err)
	}
	return checkAffectedRows(result, ErrTeamStatusNotFound)
}

func (r *postgresGameRepository) Delete(ctx context.Context, id int) error {
	executor := r.getExecutor(nil)
	// team_statuses уходят каскадом
	result, err := executor.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete game %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func listGamesByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Game, error) {
	query := `SELECT id, tournament_id, status, team_ids, created_at FROM games WHERE tournament_id = $1 ORDER BY id`
	rows, err := exec.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		var game models.Game
		var ids pq.Int64Array
		if err := rows.Scan(&game.ID, &game.TournamentID, &game.Status, &ids, &game.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		game.TeamIDs = fromInt64Array(ids)
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	statuses, err := listTeamStatuses(ctx, exec,
		`WHERE game_id IN (SELECT id FROM games WHERE tournament_id = $1)`, tournamentID)
	if err != nil {
		return nil, err
	}
	for i := range games {
		games[i].TeamStatuses = statuses[games[i].ID]
	}
	return games, nil
}

// listTeamStatuses returns team statuses grouped by game id.
func listTeamStatuses(ctx context.Context, exec SQLExecutor, where string, args ...interface{}) (map[int][]models.TeamStatus, error) {
	query := `SELECT id, game_id, team_id, score FROM team_statuses ` + where + ` ORDER BY id`
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list team statuses: %w", err)
	}
	defer rows.Close()

	out := make(map[int][]models.TeamStatus)
	for rows.Next() {
		var ts models.TeamStatus
		if err := rows.Scan(&ts.ID, &ts.GameID, &ts.TeamID, &ts.Score); err != nil {
			return nil, fmt.Errorf("failed to scan team status: %w", err)
		}
		out[ts.GameID] = append(out[ts.GameID], ts)
	}
	return out, rows.Err()
}

func handleGameError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrGameTeamStatusConflict
		case "23503":
			switch pqErr.Constraint {
			case "games_tournament_id_fkey":
				return ErrGameTournamentInvalid
			case "team_statuses_team_id_fkey":
				return ErrGameTeamInvalid
			}
		}
	}
	return err
}
