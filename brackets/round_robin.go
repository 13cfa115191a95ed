package brackets

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PrimalTeam/sportsy-back/models"
)

// RoundRobinGenerator creates one game for every pair of teams in roster order
// and keeps a points table.
type RoundRobinGenerator struct {
	engineBase
}

func NewRoundRobinGenerator(games GameCreator, cfg Config) *RoundRobinGenerator {
	return &RoundRobinGenerator{engineBase: newEngineBase(models.FormatRoundRobin, games, cfg)}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

func (g *RoundRobinGenerator) MinTeams() int { return 3 }

func (g *RoundRobinGenerator) Build(ctx context.Context, t *models.Tournament) (*Ladder, error) {
	if err := g.checkTeams(t, g.MinTeams()); err != nil {
		return nil, err
	}

	teams := t.Teams
	var pairs [][2]models.Team
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			pairs = append(pairs, [2]models.Team{teams[i], teams[j]})
		}
	}

	games, err := g.createPairGames(ctx, t, pairs)
	if err != nil {
		return nil, fmt.Errorf("create round robin games: %w", err)
	}

	// The label counter moves on every floor(n/2) games.
	perRound := len(teams) / 2
	round := 1
	rr := &RoundRobin{
		Games:     make([]*Node, 0, len(games)),
		Standings: newStandings(teams),
	}
	for i, game := range games {
		n := newNode(fmt.Sprintf("Round %d - %s vs %s", round, pairs[i][0].Name, pairs[i][1].Name), round)
		g.bindGame(t, n, game)
		rr.Games = append(rr.Games, n)
		if len(rr.Games)%perRound == 0 {
			round++
		}
	}
	rr.Rounds = round

	g.logger.InfoContext(ctx, "built round robin ladder",
		slog.Int("tournament_id", t.ID),
		slog.Int("teams", len(teams)),
		slog.Int("games", len(rr.Games)))

	return &Ladder{Type: g.format, RoundRobin: rr}, nil
}

// Progress resyncs every game and rebuilds the table from scratch. Round robin
// never creates games after Build.
func (g *RoundRobinGenerator) Progress(ctx context.Context, t *models.Tournament, ladder *Ladder) (*Ladder, error) {
	rr := ladder.RoundRobin
	if rr == nil {
		return nil, fmt.Errorf("%w: expected round robin payload", ErrUnknownLadder)
	}

	rr.Standings = newStandings(t.Teams)

	for _, n := range rr.Games {
		g.syncNode(ctx, t, n)
		if !n.IsCompleted() {
			continue
		}
		winner, ok, err := g.winnerOf(t, n)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		loser, _, err := g.loserOf(t, n)
		if err != nil {
			return nil, err
		}
		if winner.ID == loser.ID {
			rr.recordDraw(t.TeamsByIDs(n.TeamIDs))
			continue
		}
		rr.recordWin(winner, loser)
	}

	return ladder, nil
}
