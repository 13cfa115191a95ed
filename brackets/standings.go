package brackets

import (
	"sort"

	"github.com/PrimalTeam/sportsy-back/models"
)

// PoolStanding is a team's record inside its pool.
type PoolStanding struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Points int `json:"points"`
}

// Standing is a team's record in a round robin.
type Standing struct {
	TeamID      int    `json:"teamId"`
	TeamName    string `json:"teamName"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Draws       int    `json:"draws"`
	Points      int    `json:"points"`
	GamesPlayed int    `json:"gamesPlayed"`
}

const (
	pointsForWin  = 3
	pointsForDraw = 1
)

func newPoolStandings(teams []models.Team) map[int]*PoolStanding {
	out := make(map[int]*PoolStanding, len(teams))
	for _, team := range teams {
		out[team.ID] = &PoolStanding{}
	}
	return out
}

func newStandings(teams []models.Team) map[int]*Standing {
	out := make(map[int]*Standing, len(teams))
	for _, team := range teams {
		out[team.ID] = &Standing{TeamID: team.ID, TeamName: team.Name}
	}
	return out
}

func poolRow(standings map[int]*PoolStanding, teamID int) *PoolStanding {
	row, ok := standings[teamID]
	if !ok {
		row = &PoolStanding{}
		standings[teamID] = row
	}
	return row
}

func (l *PoolPlay) recordResult(winner, loser models.Team) {
	w := poolRow(l.Standings, winner.ID)
	w.Wins++
	w.Points += pointsForWin
	poolRow(l.Standings, loser.ID).Losses++
}

func robinRow(standings map[int]*Standing, team models.Team) *Standing {
	row, ok := standings[team.ID]
	if !ok {
		row = &Standing{TeamID: team.ID, TeamName: team.Name}
		standings[team.ID] = row
	}
	return row
}

func (l *RoundRobin) recordWin(winner, loser models.Team) {
	w := robinRow(l.Standings, winner)
	w.Wins++
	w.Points += pointsForWin
	w.GamesPlayed++

	lr := robinRow(l.Standings, loser)
	lr.Losses++
	lr.GamesPlayed++
}

func (l *RoundRobin) recordDraw(teams []models.Team) {
	for _, team := range teams {
		row := robinRow(l.Standings, team)
		row.Draws++
		row.Points += pointsForDraw
		row.GamesPlayed++
	}
}

// Ranking returns the standings ordered by points, then wins, then games
// played, all descending. Remaining ties are ordered by team id.
func (l *RoundRobin) Ranking() []Standing {
	out := make([]Standing, 0, len(l.Standings))
	for _, row := range l.Standings {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.GamesPlayed != b.GamesPlayed {
			return a.GamesPlayed > b.GamesPlayed
		}
		return a.TeamID < b.TeamID
	})
	return out
}

// PoolWinner returns the id of the best team of the pool by wins then points.
// Ties keep the pool's roster order.
func (l *PoolPlay) PoolWinner(p *Pool) (int, bool) {
	if len(p.Teams) == 0 {
		return 0, false
	}
	ranked := make([]TeamRef, len(p.Teams))
	copy(ranked, p.Teams)
	sort.SliceStable(ranked, func(i, j int) bool {
		a := poolRow(l.Standings, ranked[i].ID)
		b := poolRow(l.Standings, ranked[j].ID)
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.Points > b.Points
	})
	return ranked[0].ID, true
}
