package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/PrimalTeam/sportsy-back/models"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrLadderVersionConflict  = errors.New("ladder was changed by another update")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	// FindWithRelations loads the tournament with its teams, games and team statuses.
	FindWithRelations(ctx context.Context, id int) (*models.Tournament, error)
	// SaveLadder writes the ladder blob if the stored version still equals
	// expectedVersion and returns the new version.
	SaveLadder(ctx context.Context, id int, blob []byte, expectedVersion int) (int, error)
	ClearLadder(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	executor := r.getExecutor(nil)
	query := `
		INSERT INTO tournaments (name, leader_type, auto_create_from_leader, pool_size)
		VALUES ($1, $2, $3, $4)
		RETURNING id, leader_version, created_at`

	err := executor.QueryRowContext(ctx, query,
		t.Name, t.LeaderType, t.AutoCreateFromLeader, t.PoolSize,
	).Scan(&t.ID, &t.LeaderVersion, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT id, name, leader_type, auto_create_from_leader, pool_size,
		       leader, leader_version, created_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	var leader []byte
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.LeaderType, &t.AutoCreateFromLeader, &t.PoolSize,
		&leader, &t.LeaderVersion, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	t.Leader = leader
	return t, nil
}

func (r *postgresTournamentRepository) FindWithRelations(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		teams []models.Team
		games []models.Game
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = listTeamsByTournament(gCtx, r.db, id)
		return err
	})
	g.Go(func() error {
		var err error
		games, err = listGamesByTournament(gCtx, r.db, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[int]models.Team, len(teams))
	for _, team := range teams {
		byID[team.ID] = team
	}
	for i := range games {
		for _, teamID := range games[i].TeamIDs {
			if team, ok := byID[teamID]; ok {
				games[i].Teams = append(games[i].Teams, team)
			}
		}
	}

	t.Teams = teams
	t.Games = games
	return t, nil
}

func (r *postgresTournamentRepository) SaveLadder(ctx context.Context, id int, blob []byte, expectedVersion int) (int, error) {
	executor := r.getExecutor(nil)
	query := `
		UPDATE tournaments
		SET leader = $1, leader_version = leader_version + 1
		WHERE id = $2 AND leader_version = $3
		RETURNING leader_version`

	var version int
	err := executor.QueryRowContext(ctx, query, string(blob), id, expectedVersion).Scan(&version)
	if err == nil {
		return version, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to save ladder for tournament %d: %w", id, err)
	}

	// Either the row is gone or someone else bumped the version.
	var exists bool
	if err := executor.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tournaments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return 0, fmt.Errorf("failed to check tournament %d: %w", id, err)
	}
	if !exists {
		return 0, ErrTournamentNotFound
	}
	return 0, ErrLadderVersionConflict
}

func (r *postgresTournamentRepository) ClearLadder(ctx context.Context, id int) error {
	executor := r.getExecutor(nil)
	query := `UPDATE tournaments SET leader = NULL, leader_version = leader_version + 1 WHERE id = $1`

	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to clear ladder for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "tournaments_name_key" {
				return ErrTournamentNameConflict
			}
		}
	}
	return err
}
