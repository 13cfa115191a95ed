package brackets

import (
	"math/rand/v2"
	"testing"

	"github.com/PrimalTeam/sportsy-back/models"
	"github.com/stretchr/testify/assert"
)

func TestCalculateRoundsAndByes(t *testing.T) {
	cases := []struct {
		n      int
		rounds int
		byes   int
	}{
		{n: 0, rounds: 0, byes: 0},
		{n: 1, rounds: 0, byes: 0},
		{n: 2, rounds: 1, byes: 0},
		{n: 3, rounds: 2, byes: 1},
		{n: 4, rounds: 2, byes: 0},
		{n: 5, rounds: 3, byes: 3},
		{n: 8, rounds: 3, byes: 0},
		{n: 9, rounds: 4, byes: 7},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.rounds, CalculateRounds(tc.n), "rounds for %d", tc.n)
		assert.Equal(t, tc.byes, CalculateByes(tc.n), "byes for %d", tc.n)
	}
}

func TestNextPowerOf2(t *testing.T) {
	assert.Equal(t, 1, NextPowerOf2(1))
	assert.Equal(t, 4, NextPowerOf2(3))
	assert.Equal(t, 8, NextPowerOf2(8))
	assert.Equal(t, 16, NextPowerOf2(9))
}

func TestChunkIntoPairsDropsOddTail(t *testing.T) {
	pairs := ChunkIntoPairs([]int{1, 2, 3, 4, 5})
	assert.Equal(t, [][2]int{{1, 2}, {3, 4}}, pairs)
	assert.Empty(t, ChunkIntoPairs([]int{1}))
}

func TestRoundName(t *testing.T) {
	assert.Equal(t, "Final", RoundName(3, 3))
	assert.Equal(t, "Semi-Final", RoundName(2, 3))
	assert.Equal(t, "Quarter-Final", RoundName(1, 3))
	assert.Equal(t, "Round 1", RoundName(0, 3))
}

func TestShuffleKeepsInputAndPermutes(t *testing.T) {
	teams := newTestTournament(6, models.FormatSingleElimination).Teams
	original := append([]models.Team{}, teams...)

	s := NewShuffler(rand.New(rand.NewPCG(1, 2)))
	shuffled := s.Shuffle(teams)

	assert.Equal(t, original, teams)
	assert.ElementsMatch(t, teams, shuffled)
}

func TestShuffleIsDeterministicForSeed(t *testing.T) {
	teams := newTestTournament(8, models.FormatSingleElimination).Teams
	a := NewShuffler(rand.New(rand.NewPCG(3, 4))).Shuffle(teams)
	b := NewShuffler(rand.New(rand.NewPCG(3, 4))).Shuffle(teams)
	assert.Equal(t, a, b)
}
