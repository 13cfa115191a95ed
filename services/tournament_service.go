package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PrimalTeam/sportsy-back/models"
	"github.com/PrimalTeam/sportsy-back/repositories"
)

type CreateTournamentInput struct {
	Name                 string              `json:"name"`
	LeaderType           models.LadderFormat `json:"leader_type"`
	AutoCreateFromLeader bool                `json:"auto_create_from_leader"`
	PoolSize             *int                `json:"pool_size,omitempty"`
}

type AddTeamInput struct {
	Name string `json:"name"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	AddTeam(ctx context.Context, tournamentID int, input AddTeamInput) (*models.Team, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	logger         *slog.Logger
}

func NewTournamentService(tournamentRepo repositories.TournamentRepository, teamRepo repositories.TeamRepository, logger *slog.Logger) TournamentService {
	return &tournamentService{tournamentRepo: tournamentRepo, teamRepo: teamRepo, logger: logger}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.LeaderType == "" {
		input.LeaderType = models.FormatSingleElimination
	}
	if !input.LeaderType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLadderFormat, input.LeaderType)
	}
	if input.PoolSize != nil && *input.PoolSize < 2 {
		return nil, fmt.Errorf("%w: pool size must be at least 2", ErrValidationFailed)
	}

	t := &models.Tournament{
		Name:                 name,
		LeaderType:           input.LeaderType,
		AutoCreateFromLeader: input.AutoCreateFromLeader,
		PoolSize:             input.PoolSize,
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	s.logger.InfoContext(ctx, "tournament created",
		slog.Int("tournament_id", t.ID), slog.String("leader_type", string(t.LeaderType)))
	return t, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.FindWithRelations(ctx, id)
	if err != nil {
		return nil, handleTournamentRepoError(err)
	}
	return t, nil
}

func (s *tournamentService) AddTeam(ctx context.Context, tournamentID int, input AddTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, handleTournamentRepoError(err)
	}

	team := &models.Team{TournamentID: tournamentID, Name: name}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		case errors.Is(err, repositories.ErrTeamTournamentInvalid):
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to add team: %w", err)
	}
	return team, nil
}

func handleTournamentRepoError(err error) error {
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return fmt.Errorf("%w: %w", ErrTournamentNotFound, err)
	}
	return err
}
