package brackets

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PrimalTeam/sportsy-back/models"
)

// PoolPlayGenerator splits the roster into pools, plays every pairing inside
// each pool and sends the pool winners into a knockout playoff.
type PoolPlayGenerator struct {
	engineBase
	poolSize int
}

func NewPoolPlayGenerator(games GameCreator, cfg Config) *PoolPlayGenerator {
	size := cfg.PoolSize
	if size <= 0 {
		size = DefaultPoolSize
	}
	return &PoolPlayGenerator{
		engineBase: newEngineBase(models.FormatPoolPlay, games, cfg),
		poolSize:   size,
	}
}

func (g *PoolPlayGenerator) GetName() string {
	return "PoolPlay"
}

func (g *PoolPlayGenerator) MinTeams() int { return 4 }

func (g *PoolPlayGenerator) sizeFor(t *models.Tournament) int {
	if t.PoolSize != nil && *t.PoolSize > 0 {
		return *t.PoolSize
	}
	return g.poolSize
}

func poolName(idx int) string {
	return fmt.Sprintf("Pool %c", rune('A'+idx))
}

func (g *PoolPlayGenerator) Build(ctx context.Context, t *models.Tournament) (*Ladder, error) {
	if err := g.checkTeams(t, g.MinTeams()); err != nil {
		return nil, err
	}

	teams := g.shuffler.Shuffle(t.Teams)
	size := g.sizeFor(t)
	numPools := (len(teams) + size - 1) / size

	g.logger.InfoContext(ctx, "building pool play ladder",
		slog.Int("tournament_id", t.ID),
		slog.Int("teams", len(teams)),
		slog.Int("pool_size", size),
		slog.Int("pools", numPools))

	members := make([][]models.Team, numPools)
	for i, team := range teams {
		members[i%numPools] = append(members[i%numPools], team)
	}

	var pairs [][2]models.Team
	var owner []int
	for idx, pool := range members {
		for i := 0; i < len(pool); i++ {
			for j := i + 1; j < len(pool); j++ {
				pairs = append(pairs, [2]models.Team{pool[i], pool[j]})
				owner = append(owner, idx)
			}
		}
	}

	games, err := g.createPairGames(ctx, t, pairs)
	if err != nil {
		return nil, fmt.Errorf("create pool games: %w", err)
	}

	pp := &PoolPlay{
		Pools:     make([]*Pool, numPools),
		Standings: newPoolStandings(teams),
	}
	for idx, pool := range members {
		p := &Pool{Name: poolName(idx), Teams: make([]TeamRef, 0, len(pool)), Games: []*Node{}}
		for _, team := range pool {
			p.Teams = append(p.Teams, TeamRef{ID: team.ID, Name: team.Name})
		}
		pp.Pools[idx] = p
	}
	for i, game := range games {
		idx := owner[i]
		n := newNode(poolName(idx)+" Game", 0)
		g.bindGame(t, n, game)
		pp.Pools[idx].Games = append(pp.Pools[idx].Games, n)
	}

	return &Ladder{Type: g.format, Pool: pp}, nil
}

func (g *PoolPlayGenerator) Progress(ctx context.Context, t *models.Tournament, ladder *Ladder) (*Ladder, error) {
	pp := ladder.Pool
	if pp == nil {
		return nil, fmt.Errorf("%w: expected pool play payload", ErrUnknownLadder)
	}

	var poolGames []*Node
	for _, p := range pp.Pools {
		for _, n := range p.Games {
			g.syncNode(ctx, t, n)
			poolGames = append(poolGames, n)
		}
	}

	if err := g.recomputeStandings(t, pp, poolGames); err != nil {
		return nil, err
	}

	if pp.Playoffs != nil {
		g.syncTrees(ctx, t, pp.Playoffs)
		if t.AutoCreateFromLeader {
			if err := g.advanceReady(ctx, t, pp.Playoffs); err != nil {
				return nil, err
			}
		}
		return ladder, nil
	}

	if t.AutoCreateFromLeader && allCompleted(poolGames) {
		if err := g.createPlayoffs(ctx, t, pp); err != nil {
			return nil, err
		}
	}
	return ladder, nil
}

// recomputeStandings rebuilds every row from the completed pool games so that
// repeated passes give the same table.
func (g *PoolPlayGenerator) recomputeStandings(t *models.Tournament, pp *PoolPlay, nodes []*Node) error {
	pp.Standings = make(map[int]*PoolStanding)
	for _, p := range pp.Pools {
		for _, team := range p.Teams {
			pp.Standings[team.ID] = &PoolStanding{}
		}
	}

	for _, n := range nodes {
		if !n.IsCompleted() {
			continue
		}
		winner, ok, err := g.winnerOf(t, n)
		if err != nil {
			return err
		}
		loser, _, err := g.loserOf(t, n)
		if err != nil {
			return err
		}
		if !ok || winner.ID == loser.ID {
			continue
		}
		pp.recordResult(winner, loser)
	}
	return nil
}

func (g *PoolPlayGenerator) createPlayoffs(ctx context.Context, t *models.Tournament, pp *PoolPlay) error {
	var qualified []models.Team
	for _, p := range pp.Pools {
		id, ok := pp.PoolWinner(p)
		if !ok {
			continue
		}
		qualified = append(qualified, t.TeamsByIDs([]int{id})...)
	}

	depth := CalculateRounds(len(qualified)) - 1
	pp.Playoffs = buildEmptyTree(depth, depth, prefixedRoundName("Playoff"))

	g.logger.InfoContext(ctx, "pool games completed, creating playoffs",
		slog.Int("tournament_id", t.ID), slog.Int("qualified", len(qualified)))

	if err := g.fillLeaves(ctx, t, collectRound(0, pp.Playoffs), qualified); err != nil {
		return fmt.Errorf("create playoff first round: %w", err)
	}
	return nil
}
