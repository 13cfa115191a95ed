package brackets

import (
	"context"
	"log/slog"

	"github.com/PrimalTeam/sportsy-back/models"
)

func (b *engineBase) bindGame(t *models.Tournament, n *Node, game *models.Game) {
	n.bind(game, t.TeamsByIDs(game.TeamIDs))
}

// syncNode refreshes a bound node from the tournament's game records. A node
// whose game no longer exists is cleared.
func (b *engineBase) syncNode(ctx context.Context, t *models.Tournament, n *Node) {
	if n == nil || n.GameID == nil {
		return
	}
	game := t.FindGame(*n.GameID)
	if game == nil {
		b.logger.WarnContext(ctx, "game referenced by ladder not found, clearing node",
			slog.Int("tournament_id", t.ID),
			slog.Int("game_id", *n.GameID),
			slog.String("node", n.Name))
		n.clear()
		return
	}
	b.bindGame(t, n, game)
}

func (b *engineBase) syncTrees(ctx context.Context, t *models.Tournament, roots ...*Node) {
	for _, n := range collectAll(roots...) {
		b.syncNode(ctx, t, n)
	}
}
