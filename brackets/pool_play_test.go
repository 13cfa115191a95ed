package brackets

import (
	"context"
	"testing"

	"github.com/PrimalTeam/sportsy-back/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func poolGames(pp *PoolPlay) []*Node {
	var out []*Node
	for _, p := range pp.Pools {
		out = append(out, p.Games...)
	}
	return out
}

func TestPoolPlayBuildEightTeams(t *testing.T) {
	games := &fakeGames{}
	tour := newTestTournament(8, models.FormatPoolPlay)

	ladder, err := NewPoolPlayGenerator(games, testConfig()).Build(context.Background(), tour)
	require.NoError(t, err)
	pp := ladder.Pool
	require.NotNil(t, pp)

	require.Len(t, pp.Pools, 2)
	assert.Equal(t, "Pool A", pp.Pools[0].Name)
	assert.Equal(t, "Pool B", pp.Pools[1].Name)
	for _, p := range pp.Pools {
		assert.Len(t, p.Teams, 4)
		assert.Len(t, p.Games, 6)
		for _, n := range p.Games {
			assert.Equal(t, p.Name+" Game", n.Name)
			assert.NotNil(t, n.GameID)
		}
	}
	assert.Equal(t, 12, games.count())
	assert.Len(t, pp.Standings, 8)
	assert.Nil(t, pp.Playoffs)
}

func TestPoolPlayPoolSizeOverride(t *testing.T) {
	tour := newTestTournament(6, models.FormatPoolPlay)
	size := 3
	tour.PoolSize = &size

	ladder, err := NewPoolPlayGenerator(&fakeGames{}, testConfig()).Build(context.Background(), tour)
	require.NoError(t, err)
	require.Len(t, ladder.Pool.Pools, 2)
	assert.Len(t, poolGames(ladder.Pool), 6)
}

func TestPoolPlayPlayoffsAfterAllPoolGames(t *testing.T) {
	ctx := context.Background()
	games := &fakeGames{}
	tour := newTestTournament(8, models.FormatPoolPlay)
	gen := NewPoolPlayGenerator(games, testConfig())

	ladder, err := gen.Build(ctx, tour)
	require.NoError(t, err)

	all := poolGames(ladder.Pool)
	for _, n := range all[:len(all)-1] {
		completeByLowestID(tour, n)
	}
	ladder, err = gen.Progress(ctx, tour, ladder)
	require.NoError(t, err)
	assert.Nil(t, ladder.Pool.Playoffs)
	assert.Equal(t, 12, games.count())

	completeByLowestID(tour, all[len(all)-1])
	ladder, err = gen.Progress(ctx, tour, ladder)
	require.NoError(t, err)

	pp := ladder.Pool
	require.NotNil(t, pp.Playoffs)
	assert.Equal(t, "Playoff Final", pp.Playoffs.Name)
	require.NotNil(t, pp.Playoffs.GameID)
	assert.Equal(t, 13, games.count())

	var champions []int
	for _, p := range pp.Pools {
		ids := make([]int, 0, len(p.Teams))
		for _, team := range p.Teams {
			ids = append(ids, team.ID)
		}
		champions = append(champions, minID(ids))
	}
	assert.ElementsMatch(t, champions, pp.Playoffs.TeamIDs)

	wins, losses, points := 0, 0, 0
	for _, row := range pp.Standings {
		wins += row.Wins
		losses += row.Losses
		points += row.Points
	}
	assert.Equal(t, 12, wins)
	assert.Equal(t, 12, losses)
	assert.Equal(t, 36, points)
	for _, id := range champions {
		assert.Equal(t, 3, pp.Standings[id].Wins)
	}
}

func TestPoolPlayStandingsAreRecomputed(t *testing.T) {
	ctx := context.Background()
	tour := newTestTournament(4, models.FormatPoolPlay)
	tour.AutoCreateFromLeader = false
	gen := NewPoolPlayGenerator(&fakeGames{}, testConfig())

	ladder, err := gen.Build(ctx, tour)
	require.NoError(t, err)
	completeByLowestID(tour, ladder.Pool.Pools[0].Games[0])

	first, err := gen.Progress(ctx, tour, ladder)
	require.NoError(t, err)
	snapshot := ladderJSON(t, first)

	second, err := gen.Progress(ctx, tour, first)
	require.NoError(t, err)
	assert.JSONEq(t, snapshot, ladderJSON(t, second))

	wins := 0
	for _, row := range second.Pool.Standings {
		wins += row.Wins
	}
	assert.Equal(t, 1, wins)
}

func TestPoolPlayTieIsNotCounted(t *testing.T) {
	ctx := context.Background()
	tour := newTestTournament(4, models.FormatPoolPlay)
	gen := NewPoolPlayGenerator(&fakeGames{}, testConfig())

	ladder, err := gen.Build(ctx, tour)
	require.NoError(t, err)
	n := ladder.Pool.Pools[0].Games[0]
	setScores(tour, *n.GameID, map[int]float64{n.TeamIDs[0]: 2, n.TeamIDs[1]: 2})

	ladder, err = gen.Progress(ctx, tour, ladder)
	require.NoError(t, err)
	for _, row := range ladder.Pool.Standings {
		assert.Zero(t, row.Wins)
		assert.Zero(t, row.Losses)
	}
}

func TestPoolPlayProgressesPlayoffTree(t *testing.T) {
	ctx := context.Background()
	games := &fakeGames{}
	tour := newTestTournament(16, models.FormatPoolPlay)
	gen := NewPoolPlayGenerator(games, testConfig())

	ladder, err := gen.Build(ctx, tour)
	require.NoError(t, err)
	require.Len(t, ladder.Pool.Pools, 4)
	for _, n := range poolGames(ladder.Pool) {
		completeByLowestID(tour, n)
	}

	ladder, err = gen.Progress(ctx, tour, ladder)
	require.NoError(t, err)
	playoffs := ladder.Pool.Playoffs
	require.NotNil(t, playoffs)
	assert.Equal(t, "Playoff Final", playoffs.Name)
	semis := collectRound(0, playoffs)
	require.Len(t, semis, 2)
	assert.Equal(t, "Playoff Semi-Final", semis[0].Name)
	assert.Equal(t, 24+2, games.count())

	for _, n := range semis {
		completeByLowestID(tour, n)
	}
	ladder, err = gen.Progress(ctx, tour, ladder)
	require.NoError(t, err)
	assert.NotNil(t, ladder.Pool.Playoffs.GameID)
	assert.Equal(t, 24+3, games.count())
}

func TestPoolPlayRejectsTooFewTeams(t *testing.T) {
	games := &fakeGames{}
	_, err := NewPoolPlayGenerator(games, testConfig()).Build(context.Background(), newTestTournament(3, models.FormatPoolPlay))
	assert.ErrorIs(t, err, ErrNotEnoughTeams)
	assert.Zero(t, games.count())
}
