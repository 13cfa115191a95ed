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
	ErrTeamNameConflict      = errors.New("team name already exists in this tournament")
	ErrTeamTournamentInvalid = errors.New("invalid tournament reference for team")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `INSERT INTO teams (tournament_id, name) VALUES ($1, $2) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, team.TournamentID, team.Name).Scan(&team.ID, &team.CreatedAt)
	return handleTeamError(err)
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error) {
	return listTeamsByTournament(ctx, r.db, tournamentID)
}

func listTeamsByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Team, error) {
	query := `SELECT id, tournament_id, name, created_at FROM teams WHERE tournament_id = $1 ORDER BY id`
	rows, err := exec.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.TournamentID, &team.Name, &team.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrTeamNameConflict
		case "23503":
			return ErrTeamTournamentInvalid
		}
	}
	return err
}
