package brackets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/PrimalTeam/sportsy-back/models"
	"golang.org/x/sync/errgroup"
)

// ErrNotEnoughTeams is returned by Build when the roster is below the format minimum.
var ErrNotEnoughTeams = errors.New("not enough teams to generate ladder")

// DefaultPoolSize is the number of teams per pool when neither the tournament
// nor the engine config sets one.
const DefaultPoolSize = 4

// GameCreator creates the games a ladder needs.
type GameCreator interface {
	CreateGame(ctx context.Context, tournamentID int, teamIDs []int, status models.GameStatus) (*models.Game, error)
}

// GameRemover deletes games of a ladder being reset.
type GameRemover interface {
	RemoveGame(ctx context.Context, gameID int) error
}

// Engine builds and progresses the ladder of one format. The caller must not
// run two passes for the same tournament at the same time.
type Engine interface {
	GetName() string
	Format() models.LadderFormat
	MinTeams() int
	Build(ctx context.Context, tournament *models.Tournament) (*Ladder, error)
	Progress(ctx context.Context, tournament *models.Tournament, ladder *Ladder) (*Ladder, error)
}

type Config struct {
	Logger   *slog.Logger
	PoolSize int

	// Shuffler seeds the brackets; nil uses the global random source.
	Shuffler *Shuffler

	// OnGamesCreated is called after each successful fan-out with the number of games created.
	OnGamesCreated func(format models.LadderFormat, n int)
}

// NewEngine returns the engine for format. Formats without their own engine
// fall back to single elimination and ok is false.
func NewEngine(format models.LadderFormat, games GameCreator, cfg Config) (engine Engine, ok bool) {
	switch format {
	case models.FormatSingleElimination:
		return NewSingleEliminationGenerator(games, cfg), true
	case models.FormatDoubleElimination, models.FormatKnockout, models.FormatPlayoffs:
		return NewDoubleEliminationGenerator(games, cfg), true
	case models.FormatPoolPlay:
		return NewPoolPlayGenerator(games, cfg), true
	case models.FormatRoundRobin:
		return NewRoundRobinGenerator(games, cfg), true
	default:
		return NewSingleEliminationGenerator(games, cfg), false
	}
}

type engineBase struct {
	format   models.LadderFormat
	games    GameCreator
	logger   *slog.Logger
	shuffler *Shuffler
	decide   *Determiner
	onCreate func(format models.LadderFormat, n int)
}

func newEngineBase(format models.LadderFormat, games GameCreator, cfg Config) engineBase {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("ladder_format", string(format)))
	shuffler := cfg.Shuffler
	if shuffler == nil {
		shuffler = NewShuffler(nil)
	}
	return engineBase{
		format:   format,
		games:    games,
		logger:   logger,
		shuffler: shuffler,
		decide:   NewDeterminer(logger),
		onCreate: cfg.OnGamesCreated,
	}
}

func (b *engineBase) Format() models.LadderFormat { return b.format }

func (b *engineBase) checkTeams(t *models.Tournament, min int) error {
	if len(t.Teams) < min {
		return fmt.Errorf("%w: %s requires at least %d teams, got %d",
			ErrNotEnoughTeams, b.format, min, len(t.Teams))
	}
	return nil
}

// createPairGames creates one pending game per pair in parallel. The result is
// index-aligned with pairs and the games are appended to t.Games.
func (b *engineBase) createPairGames(ctx context.Context, t *models.Tournament, pairs [][2]models.Team) ([]*models.Game, error) {
	created := make([]*models.Game, len(pairs))
	if len(pairs) == 0 {
		return created, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	for i, pair := range pairs {
		g.Go(func() error {
			game, err := b.games.CreateGame(gCtx, t.ID, []int{pair[0].ID, pair[1].ID}, models.GameStatusPending)
			if err != nil {
				return fmt.Errorf("create game %s vs %s: %w", pair[0].Name, pair[1].Name, err)
			}
			created[i] = game
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, game := range created {
		t.Games = append(t.Games, *game)
	}
	if b.onCreate != nil {
		b.onCreate(b.format, len(created))
	}
	b.logger.DebugContext(ctx, "games created",
		slog.Int("tournament_id", t.ID), slog.Int("count", len(created)))
	return created, nil
}

// winnerOf returns the winner of the game bound to n.
func (b *engineBase) winnerOf(t *models.Tournament, n *Node) (models.Team, bool, error) {
	return b.resultOf(t, n, false)
}

func (b *engineBase) loserOf(t *models.Tournament, n *Node) (models.Team, bool, error) {
	return b.resultOf(t, n, true)
}

func (b *engineBase) resultOf(t *models.Tournament, n *Node, inverse bool) (models.Team, bool, error) {
	if n.GameID == nil {
		return models.Team{}, false, nil
	}
	game := t.FindGame(*n.GameID)
	if game == nil {
		return models.Team{}, false, nil
	}
	team, err := b.decide.Winner(t.TeamsByIDs(game.TeamIDs), game, inverse)
	if err != nil {
		return models.Team{}, false, fmt.Errorf("game %d: %w", game.ID, err)
	}
	return team, true, nil
}

// advanceReady creates the next game for every ready node of the trees.
func (b *engineBase) advanceReady(ctx context.Context, t *models.Tournament, roots ...*Node) error {
	ready := findReady(roots...)
	if len(ready) == 0 {
		return nil
	}

	pairs := make([][2]models.Team, 0, len(ready))
	targets := make([]*Node, 0, len(ready))
	for _, n := range ready {
		first, ok1, err := b.winnerOf(t, n.Children[0])
		if err != nil {
			return err
		}
		second, ok2, err := b.winnerOf(t, n.Children[1])
		if err != nil {
			return err
		}
		if !ok1 || !ok2 {
			b.logger.WarnContext(ctx, "child game missing, skipping node",
				slog.Int("tournament_id", t.ID), slog.String("node", n.Name))
			continue
		}
		pairs = append(pairs, [2]models.Team{first, second})
		targets = append(targets, n)
	}

	games, err := b.createPairGames(ctx, t, pairs)
	if err != nil {
		return err
	}
	for i, game := range games {
		b.bindGame(t, targets[i], game)
		b.logger.InfoContext(ctx, "next round game created",
			slog.Int("tournament_id", t.ID),
			slog.Int("game_id", game.ID),
			slog.String("node", targets[i].Name))
	}
	return nil
}

// fillLeaves pairs teams and binds one new game to each leaf, in order.
func (b *engineBase) fillLeaves(ctx context.Context, t *models.Tournament, leaves []*Node, teams []models.Team) error {
	pairs := ChunkIntoPairs(teams)
	if len(pairs) > len(leaves) {
		pairs = pairs[:len(leaves)]
	}
	games, err := b.createPairGames(ctx, t, pairs)
	if err != nil {
		return err
	}
	for i, game := range games {
		b.bindGame(t, leaves[i], game)
	}
	return nil
}
