package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/PrimalTeam/sportsy-back/brackets"
	"github.com/PrimalTeam/sportsy-back/models"
	"github.com/PrimalTeam/sportsy-back/repositories"
)

// memStore is an in-memory stand-in for the tournament, team and game tables.
type memStore struct {
	mu          sync.Mutex
	tournaments map[int]*models.Tournament
	teams       map[int]models.Team
	games       map[int]*models.Game
	nextID      int

	// beforeSave runs inside SaveLadder before the version check.
	beforeSave func(t *models.Tournament)
	createErr  error
}

var (
	_ repositories.TournamentRepository = (*memStore)(nil)
	_ repositories.TeamRepository       = (*memTeams)(nil)
	_ repositories.GameRepository       = (*memGames)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		tournaments: map[int]*models.Tournament{},
		teams:       map[int]models.Team{},
		games:       map[int]*models.Game{},
	}
}

func (m *memStore) id() int {
	m.nextID++
	return m.nextID
}

func (m *memStore) Create(_ context.Context, t *models.Tournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tournaments {
		if existing.Name == t.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	t.ID = m.id()
	stored := *t
	m.tournaments[t.ID] = &stored
	return nil
}

func (m *memStore) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	out := *t
	out.Leader = append([]byte(nil), t.Leader...)
	return &out, nil
}

func (m *memStore) FindWithRelations(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t.Teams = m.teamsOf(id)
	t.Games = nil
	for _, g := range m.sortedGames() {
		if g.TournamentID != id {
			continue
		}
		game := copyGame(g)
		game.Teams = t.TeamsByIDs(game.TeamIDs)
		t.Games = append(t.Games, game)
	}
	return t, nil
}

func (m *memStore) SaveLadder(_ context.Context, id int, blob []byte, expectedVersion int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tournaments[id]
	if !ok {
		return 0, repositories.ErrTournamentNotFound
	}
	if m.beforeSave != nil {
		m.beforeSave(t)
	}
	if t.LeaderVersion != expectedVersion {
		return 0, repositories.ErrLadderVersionConflict
	}
	t.Leader = append([]byte(nil), blob...)
	t.LeaderVersion++
	return t.LeaderVersion, nil
}

func (m *memStore) ClearLadder(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Leader = nil
	t.LeaderVersion++
	return nil
}

func (m *memStore) teamsOf(tournamentID int) []models.Team {
	var out []models.Team
	for _, team := range m.teams {
		if team.TournamentID == tournamentID {
			out = append(out, team)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) sortedGames() []*models.Game {
	out := make([]*models.Game, 0, len(m.games))
	for _, g := range m.games {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) gameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.games)
}

// complete finishes a game so that winnerID scores 1 and everyone else 0.
func (m *memStore) complete(gameID, winnerID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.games[gameID]
	g.Status = models.GameStatusCompleted
	for i := range g.TeamStatuses {
		if g.TeamStatuses[i].TeamID == winnerID {
			g.TeamStatuses[i].Score = 1
		}
	}
}

func (m *memStore) seed(name string, format models.LadderFormat, teams int) *models.Tournament {
	t := &models.Tournament{Name: name, LeaderType: format, AutoCreateFromLeader: true}
	if err := m.Create(context.Background(), t); err != nil {
		panic(err)
	}
	tr := m.teamRepo()
	for i := 0; i < teams; i++ {
		team := &models.Team{TournamentID: t.ID, Name: fmt.Sprintf("%s team %d", name, i+1)}
		if err := tr.Create(context.Background(), team); err != nil {
			panic(err)
		}
	}
	return t
}

func copyGame(g *models.Game) models.Game {
	out := *g
	out.TeamIDs = append([]int(nil), g.TeamIDs...)
	out.TeamStatuses = append([]models.TeamStatus(nil), g.TeamStatuses...)
	return out
}

type memTeams struct{ *memStore }

func (m *memStore) teamRepo() *memTeams { return &memTeams{m} }

func (m *memTeams) Create(_ context.Context, team *models.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tournaments[team.TournamentID]; !ok {
		return repositories.ErrTeamTournamentInvalid
	}
	for _, existing := range m.teams {
		if existing.TournamentID == team.TournamentID && existing.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	team.ID = m.id()
	m.teams[team.ID] = *team
	return nil
}

func (m *memTeams) ListByTournament(_ context.Context, tournamentID int) ([]models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.teamsOf(tournamentID), nil
}

type memGames struct{ *memStore }

func (m *memStore) gameRepo() *memGames { return &memGames{m} }

func (m *memGames) Create(_ context.Context, _ repositories.SQLExecutor, game *models.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.tournaments[game.TournamentID]; !ok {
		return repositories.ErrGameTournamentInvalid
	}
	game.ID = m.id()
	game.TeamStatuses = nil
	for _, teamID := range game.TeamIDs {
		game.TeamStatuses = append(game.TeamStatuses, models.TeamStatus{ID: m.id(), GameID: game.ID, TeamID: teamID})
	}
	stored := copyGame(game)
	m.games[game.ID] = &stored
	return nil
}

func (m *memGames) GetByID(_ context.Context, id int) (*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	out := copyGame(g)
	return &out, nil
}

func (m *memGames) ListByTournament(_ context.Context, tournamentID int) ([]models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Game
	for _, g := range m.sortedGames() {
		if g.TournamentID == tournamentID {
			out = append(out, copyGame(g))
		}
	}
	return out, nil
}

func (m *memGames) UpdateStatus(_ context.Context, id int, status models.GameStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return repositories.ErrGameNotFound
	}
	g.Status = status
	return nil
}

func (m *memGames) UpdateTeamScore(_ context.Context, gameID, teamID int, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return repositories.ErrTeamStatusNotFound
	}
	ts := g.StatusFor(teamID)
	if ts == nil {
		return repositories.ErrTeamStatusNotFound
	}
	ts.Score = score
	return nil
}

func (m *memGames) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return repositories.ErrGameNotFound
	}
	delete(m.games, id)
	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	updates []*brackets.Ladder
}

func (n *recordingNotifier) NotifyLadderUpdated(_ int, ladder *brackets.Ladder) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, ladder)
}

func (n *recordingNotifier) last() *brackets.Ladder {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.updates) == 0 {
		return nil
	}
	return n.updates[len(n.updates)-1]
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.updates)
}

type memArchive struct {
	mu    sync.Mutex
	blobs map[int][]byte
	err   error
}

func (a *memArchive) Store(_ context.Context, tournamentID int, blob []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return "", a.err
	}
	if a.blobs == nil {
		a.blobs = map[int][]byte{}
	}
	a.blobs[tournamentID] = append([]byte(nil), blob...)
	return a.URL(tournamentID), nil
}

func (a *memArchive) Remove(_ context.Context, tournamentID int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	delete(a.blobs, tournamentID)
	return nil
}

func (a *memArchive) URL(tournamentID int) string {
	return fmt.Sprintf("https://cdn.example.com/ladders/%d.json", tournamentID)
}

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
