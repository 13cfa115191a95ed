package models

import "time"

type GameStatus string

const (
	GameStatusPending    GameStatus = "Pending"
	GameStatusInProgress GameStatus = "InProgress"
	GameStatusCompleted  GameStatus = "Completed"
	GameStatusCancelled  GameStatus = "Cancelled"
)

// Valid reports whether s is one of the known game statuses.
func (s GameStatus) Valid() bool {
	switch s {
	case GameStatusPending, GameStatusInProgress, GameStatusCompleted, GameStatusCancelled:
		return true
	}
	return false
}

// TeamStatus holds the score of one team in one game.
type TeamStatus struct {
	ID     int     `json:"id" db:"id"`
	GameID int     `json:"game_id" db:"game_id"`
	TeamID int     `json:"team_id" db:"team_id"`
	Score  float64 `json:"score" db:"score"`
}

type Game struct {
	ID           int          `json:"id" db:"id"`
	TournamentID int          `json:"tournament_id" db:"tournament_id"`
	Status       GameStatus   `json:"status" db:"status"`
	TeamIDs      []int        `json:"team_ids" db:"team_ids"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	TeamStatuses []TeamStatus `json:"team_statuses,omitempty" db:"-"`
	Teams        []Team       `json:"teams,omitempty" db:"-"`
}

// StatusFor returns the team status row of teamID, or nil.
func (g *Game) StatusFor(teamID int) *TeamStatus {
	for i := range g.TeamStatuses {
		if g.TeamStatuses[i].TeamID == teamID {
			return &g.TeamStatuses[i]
		}
	}
	return nil
}
