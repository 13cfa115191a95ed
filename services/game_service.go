package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/PrimalTeam/sportsy-back/models"
	"github.com/PrimalTeam/sportsy-back/repositories"
)

type GameService interface {
	CreateGame(ctx context.Context, tournamentID int, teamIDs []int, status models.GameStatus) (*models.Game, error)
	GetGame(ctx context.Context, gameID int) (*models.Game, error)
	RemoveGame(ctx context.Context, gameID int) error
	UpdateStatus(ctx context.Context, gameID int, status models.GameStatus) (*models.Game, error)
	UpdateTeamScore(ctx context.Context, gameID, teamID int, score float64) (*models.Game, error)
}

type gameService struct {
	gameRepo repositories.GameRepository
	teamRepo repositories.TeamRepository
	logger   *slog.Logger
}

func NewGameService(gameRepo repositories.GameRepository, teamRepo repositories.TeamRepository, logger *slog.Logger) GameService {
	return &gameService{gameRepo: gameRepo, teamRepo: teamRepo, logger: logger}
}

// CreateGame checks that every team is a distinct member of the tournament and
// stores the game with zero scores.
func (s *gameService) CreateGame(ctx context.Context, tournamentID int, teamIDs []int, status models.GameStatus) (*models.Game, error) {
	if status == "" {
		status = models.GameStatusPending
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGameStatus, status)
	}
	if err := s.checkTeams(ctx, tournamentID, teamIDs); err != nil {
		return nil, err
	}

	game := &models.Game{
		TournamentID: tournamentID,
		Status:       status,
		TeamIDs:      append([]int{}, teamIDs...),
	}
	if err := s.gameRepo.Create(ctx, nil, game); err != nil {
		return nil, handleGameRepoError(err)
	}

	s.logger.DebugContext(ctx, "game created",
		slog.Int("tournament_id", tournamentID),
		slog.Int("game_id", game.ID),
		slog.Any("team_ids", game.TeamIDs))
	return game, nil
}

func (s *gameService) checkTeams(ctx context.Context, tournamentID int, teamIDs []int) error {
	if len(teamIDs) < 2 {
		return fmt.Errorf("%w: at least 2 teams required", ErrGameTeamsInvalid)
	}
	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to load teams of tournament %d: %w", tournamentID, err)
	}
	members := make(map[int]bool, len(teams))
	for _, team := range teams {
		members[team.ID] = true
	}
	seen := make(map[int]bool, len(teamIDs))
	for _, id := range teamIDs {
		if !members[id] || seen[id] {
			return fmt.Errorf("%w: team %d", ErrGameTeamsInvalid, id)
		}
		seen[id] = true
	}
	return nil
}

func (s *gameService) GetGame(ctx context.Context, gameID int) (*models.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, handleGameRepoError(err)
	}
	return game, nil
}

func (s *gameService) RemoveGame(ctx context.Context, gameID int) error {
	if err := s.gameRepo.Delete(ctx, gameID); err != nil {
		return handleGameRepoError(err)
	}
	return nil
}

func (s *gameService) UpdateStatus(ctx context.Context, gameID int, status models.GameStatus) (*models.Game, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGameStatus, status)
	}
	if err := s.gameRepo.UpdateStatus(ctx, gameID, status); err != nil {
		return nil, handleGameRepoError(err)
	}
	return s.GetGame(ctx, gameID)
}

func (s *gameService) UpdateTeamScore(ctx context.Context, gameID, teamID int, score float64) (*models.Game, error) {
	if err := s.gameRepo.UpdateTeamScore(ctx, gameID, teamID, score); err != nil {
		return nil, handleGameRepoError(err)
	}
	return s.GetGame(ctx, gameID)
}

func handleGameRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrGameNotFound):
		return ErrGameNotFound
	case errors.Is(err, repositories.ErrTeamStatusNotFound):
		return fmt.Errorf("%w: %w", ErrTeamNotFound, err)
	case errors.Is(err, repositories.ErrGameTournamentInvalid):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrGameTeamInvalid), errors.Is(err, repositories.ErrGameTeamStatusConflict):
		return fmt.Errorf("%w: %w", ErrGameTeamsInvalid, err)
	}
	return err
}
