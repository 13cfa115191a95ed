package brackets

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/PrimalTeam/sportsy-back/models"
	"github.com/stretchr/testify/require"
)

// fakeGames records created games and hands out sequential ids.
type fakeGames struct {
	mu      sync.Mutex
	nextID  int
	created []*models.Game
	err     error
}

func (f *fakeGames) CreateGame(_ context.Context, tournamentID int, teamIDs []int, status models.GameStatus) (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	game := &models.Game{
		ID:           f.nextID,
		TournamentID: tournamentID,
		Status:       status,
		TeamIDs:      append([]int{}, teamIDs...),
	}
	for _, id := range teamIDs {
		game.TeamStatuses = append(game.TeamStatuses, models.TeamStatus{GameID: game.ID, TeamID: id})
	}
	f.created = append(f.created, game)
	return game, nil
}

func (f *fakeGames) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func testConfig() Config {
	return Config{Shuffler: NewShuffler(rand.New(rand.NewPCG(7, 11)))}
}

func newTestTournament(n int, format models.LadderFormat) *models.Tournament {
	t := &models.Tournament{ID: 42, Name: "Cup", LeaderType: format, AutoCreateFromLeader: true}
	for i := 1; i <= n; i++ {
		t.Teams = append(t.Teams, models.Team{ID: i, TournamentID: t.ID, Name: fmt.Sprintf("Team %d", i)})
	}
	return t
}

// setScores completes a game with the given scores.
func setScores(t *models.Tournament, gameID int, scores map[int]float64) {
	for i := range t.Games {
		if t.Games[i].ID != gameID {
			continue
		}
		t.Games[i].Status = models.GameStatusCompleted
		statuses := make([]models.TeamStatus, len(t.Games[i].TeamStatuses))
		copy(statuses, t.Games[i].TeamStatuses)
		for j := range statuses {
			statuses[j].Score = scores[statuses[j].TeamID]
		}
		t.Games[i].TeamStatuses = statuses
	}
}

// winGame completes a game so that winnerID scores 1 and everyone else 0.
func winGame(t *models.Tournament, gameID, winnerID int) {
	setScores(t, gameID, map[int]float64{winnerID: 1})
}

// completeByLowestID completes a game won by the team with the lowest id.
func completeByLowestID(t *models.Tournament, n *Node) {
	lowest := n.TeamIDs[0]
	for _, id := range n.TeamIDs {
		if id < lowest {
			lowest = id
		}
	}
	winGame(t, *n.GameID, lowest)
}

func removeGame(t *models.Tournament, gameID int) {
	for i := range t.Games {
		if t.Games[i].ID == gameID {
			t.Games = append(t.Games[:i], t.Games[i+1:]...)
			return
		}
	}
}

func ladderJSON(tb testing.TB, l *Ladder) string {
	tb.Helper()
	b, err := json.Marshal(l)
	require.NoError(tb, err)
	return string(b)
}
