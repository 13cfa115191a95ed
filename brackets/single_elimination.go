package brackets

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PrimalTeam/sportsy-back/models"
)

const preGameName = "PreGame"

type SingleEliminationGenerator struct {
	engineBase
}

func NewSingleEliminationGenerator(games GameCreator, cfg Config) *SingleEliminationGenerator {
	return &SingleEliminationGenerator{engineBase: newEngineBase(models.FormatSingleElimination, games, cfg)}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

func (g *SingleEliminationGenerator) MinTeams() int { return 2 }

// Build shuffles the roster and lays out the knockout tree. When the roster is
// not a power of two, the overflow teams play pre-games first and the main
// tree is one round shallower.
func (g *SingleEliminationGenerator) Build(ctx context.Context, t *models.Tournament) (*Ladder, error) {
	if err := g.checkTeams(t, g.MinTeams()); err != nil {
		return nil, err
	}

	teams := g.shuffler.Shuffle(t.Teams)
	rounds := CalculateRounds(len(teams))
	byes := CalculateByes(len(teams))

	g.logger.InfoContext(ctx, "building single elimination ladder",
		slog.Int("tournament_id", t.ID),
		slog.Int("teams", len(teams)),
		slog.Int("rounds", rounds),
		slog.Int("byes", byes))

	se := &SingleElimination{PreGames: []*Node{}}

	if byes > 0 {
		depth := rounds - 2
		se.MainLadder = buildEmptyTree(depth, depth, RoundName)

		games, err := g.createPairGames(ctx, t, ChunkIntoPairs(teams[byes-1:len(teams)-1]))
		if err != nil {
			return nil, fmt.Errorf("create pre-games: %w", err)
		}
		for _, game := range games {
			n := newNode(preGameName, 0)
			g.bindGame(t, n, game)
			se.PreGames = append(se.PreGames, n)
		}
	} else {
		depth := rounds - 1
		se.MainLadder = buildEmptyTree(depth, depth, RoundName)
		if err := g.fillLeaves(ctx, t, collectRound(0, se.MainLadder), teams); err != nil {
			return nil, fmt.Errorf("create first round: %w", err)
		}
	}

	return &Ladder{Type: g.format, Single: se}, nil
}

// Progress refreshes the tree from game records and, when the tournament
// allows it, creates the games that became possible.
func (g *SingleEliminationGenerator) Progress(ctx context.Context, t *models.Tournament, ladder *Ladder) (*Ladder, error) {
	se := ladder.Single
	if se == nil {
		return nil, fmt.Errorf("%w: expected single elimination payload", ErrUnknownLadder)
	}

	g.syncTrees(ctx, t, se.MainLadder)
	for _, n := range se.PreGames {
		g.syncNode(ctx, t, n)
	}

	if !t.AutoCreateFromLeader {
		return ladder, nil
	}

	if err := g.advanceReady(ctx, t, se.MainLadder); err != nil {
		return nil, err
	}
	if err := g.seedAfterPreGames(ctx, t, se); err != nil {
		return nil, err
	}
	return ladder, nil
}

// seedAfterPreGames fills the first round once every pre-game is decided. The
// pre-game losers are out; everyone else is shuffled and paired.
func (g *SingleEliminationGenerator) seedAfterPreGames(ctx context.Context, t *models.Tournament, se *SingleElimination) error {
	if len(se.PreGames) == 0 || !allCompleted(se.PreGames) {
		return nil
	}
	leaves := collectRound(0, se.MainLadder)
	if len(leaves) == 0 || leaves[0].IsBound() {
		return nil
	}

	eliminated := make(map[int]bool, len(se.PreGames))
	for _, n := range se.PreGames {
		loser, ok, err := g.loserOf(t, n)
		if err != nil {
			return fmt.Errorf("pre-game loser: %w", err)
		}
		if ok {
			eliminated[loser.ID] = true
		}
	}

	remaining := make([]models.Team, 0, len(t.Teams))
	for _, team := range t.Teams {
		if !eliminated[team.ID] {
			remaining = append(remaining, team)
		}
	}

	g.logger.InfoContext(ctx, "pre-games completed, seeding first round",
		slog.Int("tournament_id", t.ID),
		slog.Int("eliminated", len(eliminated)),
		slog.Int("remaining", len(remaining)))

	return g.fillLeaves(ctx, t, leaves, g.shuffler.Shuffle(remaining))
}
