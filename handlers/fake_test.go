package handlers

import (
	"context"

	"github.com/PrimalTeam/sportsy-back/brackets"
	"github.com/PrimalTeam/sportsy-back/models"
	"github.com/PrimalTeam/sportsy-back/services"
)

func emptyRoundRobin() *brackets.Ladder {
	return &brackets.Ladder{Type: models.FormatRoundRobin, RoundRobin: &brackets.RoundRobin{}}
}

type fakeLadderService struct {
	CalcLadderFunc   func(ctx context.Context, t *models.Tournament) (*brackets.Ladder, error)
	UpdateByIDFunc   func(ctx context.Context, tournamentID int) (*brackets.Ladder, error)
	ResetGamesFunc   func(ctx context.Context, tournamentID int) error
	DeleteLadderFunc func(ctx context.Context, tournamentID int, resetGames bool) error
	GetLadderFunc    func(ctx context.Context, tournamentID int) (*services.LadderView, error)

	calls []string
}

func (f *fakeLadderService) CalcLadder(ctx context.Context, t *models.Tournament) (*brackets.Ladder, error) {
	f.calls = append(f.calls, "calc")
	if f.CalcLadderFunc != nil {
		return f.CalcLadderFunc(ctx, t)
	}
	return emptyRoundRobin(), nil
}

func (f *fakeLadderService) UpdateLadder(ctx context.Context, t *models.Tournament) (*brackets.Ladder, error) {
	return f.UpdateLadderByTournamentID(ctx, t.ID)
}

func (f *fakeLadderService) UpdateLadderByTournamentID(ctx context.Context, tournamentID int) (*brackets.Ladder, error) {
	f.calls = append(f.calls, "update")
	if f.UpdateByIDFunc != nil {
		return f.UpdateByIDFunc(ctx, tournamentID)
	}
	return emptyRoundRobin(), nil
}

func (f *fakeLadderService) ResetGames(ctx context.Context, tournamentID int) error {
	f.calls = append(f.calls, "reset")
	if f.ResetGamesFunc != nil {
		return f.ResetGamesFunc(ctx, tournamentID)
	}
	return nil
}

func (f *fakeLadderService) DeleteLadder(ctx context.Context, tournamentID int, resetGames bool) error {
	f.calls = append(f.calls, "delete")
	if f.DeleteLadderFunc != nil {
		return f.DeleteLadderFunc(ctx, tournamentID, resetGames)
	}
	return nil
}

func (f *fakeLadderService) GetLadder(ctx context.Context, tournamentID int) (*services.LadderView, error) {
	f.calls = append(f.calls, "get")
	if f.GetLadderFunc != nil {
		return f.GetLadderFunc(ctx, tournamentID)
	}
	return &services.LadderView{TournamentID: tournamentID}, nil
}

type fakeGameService struct {
	games map[int]*models.Game
}

func (f *fakeGameService) CreateGame(_ context.Context, tournamentID int, teamIDs []int, status models.GameStatus) (*models.Game, error) {
	g := &models.Game{ID: len(f.games) + 1, TournamentID: tournamentID, TeamIDs: teamIDs, Status: status}
	f.games[g.ID] = g
	return g, nil
}

func (f *fakeGameService) GetGame(_ context.Context, gameID int) (*models.Game, error) {
	g, ok := f.games[gameID]
	if !ok {
		return nil, services.ErrGameNotFound
	}
	return g, nil
}

func (f *fakeGameService) RemoveGame(_ context.Context, gameID int) error {
	if _, ok := f.games[gameID]; !ok {
		return services.ErrGameNotFound
	}
	delete(f.games, gameID)
	return nil
}

func (f *fakeGameService) UpdateStatus(ctx context.Context, gameID int, status models.GameStatus) (*models.Game, error) {
	if !status.Valid() {
		return nil, services.ErrInvalidGameStatus
	}
	g, err := f.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	g.Status = status
	return g, nil
}

func (f *fakeGameService) UpdateTeamScore(ctx context.Context, gameID, teamID int, score float64) (*models.Game, error) {
	g, err := f.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	ts := g.StatusFor(teamID)
	if ts == nil {
		return nil, services.ErrTeamNotFound
	}
	ts.Score = score
	return g, nil
}

type fakeTournamentService struct {
	tournaments map[int]*models.Tournament
}

func (f *fakeTournamentService) CreateTournament(_ context.Context, input services.CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, services.ErrTournamentNameRequired
	}
	for _, t := range f.tournaments {
		if t.Name == input.Name {
			return nil, services.ErrTournamentNameConflict
		}
	}
	t := &models.Tournament{
		ID:                   len(f.tournaments) + 1,
		Name:                 input.Name,
		LeaderType:           input.LeaderType,
		AutoCreateFromLeader: input.AutoCreateFromLeader,
		PoolSize:             input.PoolSize,
	}
	f.tournaments[t.ID] = t
	return t, nil
}

func (f *fakeTournamentService) GetTournament(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := f.tournaments[id]
	if !ok {
		return nil, services.ErrTournamentNotFound
	}
	return t, nil
}

func (f *fakeTournamentService) AddTeam(ctx context.Context, tournamentID int, input services.AddTeamInput) (*models.Team, error) {
	t, err := f.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	team := models.Team{ID: len(t.Teams) + 1, TournamentID: tournamentID, Name: input.Name}
	t.Teams = append(t.Teams, team)
	return &team, nil
}
