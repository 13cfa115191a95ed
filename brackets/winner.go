package brackets

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/PrimalTeam/sportsy-back/models"
)

var (
	ErrNoTeams         = errors.New("no teams provided to determine winner")
	ErrInvalidGameData = errors.New("invalid game data for winner determination")
)

// Determiner picks winners and losers of a game from its team scores.
type Determiner struct {
	logger *slog.Logger
}

func NewDeterminer(logger *slog.Logger) *Determiner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Determiner{logger: logger}
}

// Winner orders teams by score, highest first (lowest first when inverse), and
// returns the first one. Equal scores keep the input order, so on a tie Winner
// and Loser return the same team.
func (d *Determiner) Winner(teams []models.Team, game *models.Game, inverse bool) (models.Team, error) {
	if len(teams) == 0 {
		return models.Team{}, ErrNoTeams
	}
	if game == nil || len(game.TeamStatuses) == 0 {
		return models.Team{}, ErrInvalidGameData
	}

	sorted := make([]models.Team, len(teams))
	copy(sorted, teams)

	sort.SliceStable(sorted, func(i, j int) bool {
		a := game.StatusFor(sorted[i].ID)
		b := game.StatusFor(sorted[j].ID)
		if a == nil || b == nil {
			d.logger.Warn("team status missing, treating scores as equal",
				slog.Int("game_id", game.ID),
				slog.Int("team_a", sorted[i].ID),
				slog.Int("team_b", sorted[j].ID))
			return false
		}
		if inverse {
			return a.Score < b.Score
		}
		return a.Score > b.Score
	})

	return sorted[0], nil
}

func (d *Determiner) Loser(teams []models.Team, game *models.Game) (models.Team, error) {
	return d.Winner(teams, game, true)
}
