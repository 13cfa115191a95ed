package brackets

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PrimalTeam/sportsy-back/models"
)

const (
	grandFinalName  = "Grand Final"
	grandFinalRound = 999
)

// DoubleEliminationGenerator keeps a winners and a losers bracket and joins
// their champions in a grand final. Teams knocked out of the winners bracket
// are not moved into the losers bracket.
type DoubleEliminationGenerator struct {
	engineBase
}

func NewDoubleEliminationGenerator(games GameCreator, cfg Config) *DoubleEliminationGenerator {
	return &DoubleEliminationGenerator{engineBase: newEngineBase(models.FormatDoubleElimination, games, cfg)}
}

func (g *DoubleEliminationGenerator) GetName() string {
	return "DoubleElimination"
}

func (g *DoubleEliminationGenerator) MinTeams() int { return 2 }

func (g *DoubleEliminationGenerator) Build(ctx context.Context, t *models.Tournament) (*Ladder, error) {
	if err := g.checkTeams(t, g.MinTeams()); err != nil {
		return nil, err
	}

	teams := g.shuffler.Shuffle(t.Teams)
	rounds := CalculateRounds(len(teams))

	g.logger.InfoContext(ctx, "building double elimination ladder",
		slog.Int("tournament_id", t.ID),
		slog.Int("teams", len(teams)),
		slog.Int("rounds", rounds))

	de := &DoubleElimination{
		WinnersBracket: buildEmptyTree(rounds-1, rounds-1, prefixedRoundName("Winners")),
		LosersBracket:  buildEmptyTree(rounds-2, rounds-2, prefixedRoundName("Losers")),
	}

	if err := g.fillLeaves(ctx, t, collectRound(0, de.WinnersBracket), teams); err != nil {
		return nil, fmt.Errorf("create winners first round: %w", err)
	}

	return &Ladder{Type: g.format, Double: de}, nil
}

func (g *DoubleEliminationGenerator) Progress(ctx context.Context, t *models.Tournament, ladder *Ladder) (*Ladder, error) {
	de := ladder.Double
	if de == nil {
		return nil, fmt.Errorf("%w: expected double elimination payload", ErrUnknownLadder)
	}

	g.syncTrees(ctx, t, de.WinnersBracket, de.LosersBracket, de.GrandFinal)

	if !t.AutoCreateFromLeader {
		return ladder, nil
	}

	if err := g.advanceReady(ctx, t, de.WinnersBracket, de.LosersBracket); err != nil {
		return nil, err
	}
	if err := g.createGrandFinal(ctx, t, de); err != nil {
		return nil, err
	}
	return ladder, nil
}

func (g *DoubleEliminationGenerator) createGrandFinal(ctx context.Context, t *models.Tournament, de *DoubleElimination) error {
	if de.GrandFinal != nil && de.GrandFinal.IsBound() {
		return nil
	}
	if !de.WinnersBracket.IsCompleted() || !de.LosersBracket.IsCompleted() {
		return nil
	}

	winnersChamp, ok1, err := g.winnerOf(t, de.WinnersBracket)
	if err != nil {
		return fmt.Errorf("winners bracket champion: %w", err)
	}
	losersChamp, ok2, err := g.winnerOf(t, de.LosersBracket)
	if err != nil {
		return fmt.Errorf("losers bracket champion: %w", err)
	}
	if !ok1 || !ok2 {
		return nil
	}

	games, err := g.createPairGames(ctx, t, [][2]models.Team{{winnersChamp, losersChamp}})
	if err != nil {
		return fmt.Errorf("create grand final: %w", err)
	}
	if de.GrandFinal == nil {
		de.GrandFinal = newNode(grandFinalName, grandFinalRound)
	}
	g.bindGame(t, de.GrandFinal, games[0])

	g.logger.InfoContext(ctx, "grand final created",
		slog.Int("tournament_id", t.ID), slog.Int("game_id", games[0].ID))
	return nil
}
