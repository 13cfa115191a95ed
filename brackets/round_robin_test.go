package brackets

import (
	"context"
	"testing"

	"github.com/PrimalTeam/sportsy-back/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRobinBuildFourTeams(t *testing.T) {
	games := &fakeGames{}
	tour := newTestTournament(4, models.FormatRoundRobin)

	ladder, err := NewRoundRobinGenerator(games, testConfig()).Build(context.Background(), tour)
	require.NoError(t, err)
	rr := ladder.RoundRobin
	require.NotNil(t, rr)

	require.Len(t, rr.Games, 6)
	assert.Equal(t, 6, games.count())
	assert.Equal(t, "Round 1 - Team 1 vs Team 2", rr.Games[0].Name)
	assert.Equal(t, "Round 3 - Team 3 vs Team 4", rr.Games[5].Name)

	rounds := make([]int, 0, len(rr.Games))
	for _, n := range rr.Games {
		rounds = append(rounds, n.RoundNumber)
	}
	assert.Equal(t, []int{1, 1, 2, 2, 3, 3}, rounds)
	assert.Len(t, rr.Standings, 4)
}

func TestRoundRobinStandingsAfterAllGames(t *testing.T) {
	ctx := context.Background()
	tour := newTestTournament(4, models.FormatRoundRobin)
	gen := NewRoundRobinGenerator(&fakeGames{}, testConfig())

	ladder, err := gen.Build(ctx, tour)
	require.NoError(t, err)
	for _, n := range ladder.RoundRobin.Games {
		completeByLowestID(tour, n)
	}

	ladder, err = gen.Progress(ctx, tour, ladder)
	require.NoError(t, err)

	wins, losses, points := 0, 0, 0
	for _, row := range ladder.RoundRobin.Standings {
		wins += row.Wins
		losses += row.Losses
		points += row.Points
		assert.Equal(t, 3, row.GamesPlayed)
	}
	assert.Equal(t, 6, wins)
	assert.Equal(t, 6, losses)
	assert.Equal(t, 18, points)

	ranking := ladder.RoundRobin.Ranking()
	require.Len(t, ranking, 4)
	assert.Equal(t, 1, ranking[0].TeamID)
	assert.Equal(t, 9, ranking[0].Points)
	assert.Equal(t, 4, ranking[3].TeamID)
}

func TestRoundRobinDraw(t *testing.T) {
	ctx := context.Background()
	tour := newTestTournament(3, models.FormatRoundRobin)
	gen := NewRoundRobinGenerator(&fakeGames{}, testConfig())

	ladder, err := gen.Build(ctx, tour)
	require.NoError(t, err)
	n := ladder.RoundRobin.Games[0]
	setScores(tour, *n.GameID, map[int]float64{1: 2, 2: 2})

	ladder, err = gen.Progress(ctx, tour, ladder)
	require.NoError(t, err)

	for _, id := range []int{1, 2} {
		row := ladder.RoundRobin.Standings[id]
		assert.Equal(t, 1, row.Draws)
		assert.Equal(t, 1, row.Points)
		assert.Equal(t, 1, row.GamesPlayed)
		assert.Zero(t, row.Wins)
	}
	assert.Zero(t, ladder.RoundRobin.Standings[3].GamesPlayed)
}

func TestRoundRobinProgressIsIdempotent(t *testing.T) {
	ctx := context.Background()
	games := &fakeGames{}
	tour := newTestTournament(5, models.FormatRoundRobin)
	gen := NewRoundRobinGenerator(games, testConfig())

	ladder, err := gen.Build(ctx, tour)
	require.NoError(t, err)
	completeByLowestID(tour, ladder.RoundRobin.Games[0])
	completeByLowestID(tour, ladder.RoundRobin.Games[3])

	first, err := gen.Progress(ctx, tour, ladder)
	require.NoError(t, err)
	snapshot := ladderJSON(t, first)
	second, err := gen.Progress(ctx, tour, first)
	require.NoError(t, err)

	assert.JSONEq(t, snapshot, ladderJSON(t, second))
	assert.Equal(t, 10, games.count())
}

func TestRoundRobinRejectsTwoTeams(t *testing.T) {
	games := &fakeGames{}
	_, err := NewRoundRobinGenerator(games, testConfig()).Build(context.Background(), newTestTournament(2, models.FormatRoundRobin))
	assert.ErrorIs(t, err, ErrNotEnoughTeams)
	assert.Zero(t, games.count())
}
