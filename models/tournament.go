package models

import (
	"encoding/json"
	"time"
)

// LadderFormat is the bracket type of a tournament, stored in tournaments.leader_type.
type LadderFormat string

const (
	FormatSingleElimination LadderFormat = "single-elimination"
	FormatDoubleElimination LadderFormat = "double-elimination"
	FormatRoundRobin        LadderFormat = "round-robin"
	FormatSwiss             LadderFormat = "swiss"
	FormatPoolPlay          LadderFormat = "pool-play"
	FormatGroupStage        LadderFormat = "group-stage"
	FormatKnockout          LadderFormat = "knockout"
	FormatPlayoffs          LadderFormat = "playoffs"
	FormatConference        LadderFormat = "conference"
	FormatLeague            LadderFormat = "league"
)

// LadderFormats lists every format a tournament may be created with.
var LadderFormats = []LadderFormat{
	FormatSingleElimination, FormatDoubleElimination, FormatRoundRobin, FormatSwiss, FormatPoolPlay,
	FormatGroupStage, FormatKnockout, FormatPlayoffs, FormatConference, FormatLeague,
}

func (f LadderFormat) Valid() bool {
	for _, known := range LadderFormats {
		if f == known {
			return true
		}
	}
	return false
}

// Tournament представляет турнир вместе с его сеткой.
type Tournament struct {
	ID                   int          `json:"id" db:"id"`
	Name                 string       `json:"name" db:"name"`
	LeaderType           LadderFormat `json:"leader_type" db:"leader_type"`
	AutoCreateFromLeader bool         `json:"auto_create_from_leader" db:"auto_create_from_leader"`
	PoolSize             *int         `json:"pool_size,omitempty" db:"pool_size"`
	CreatedAt            time.Time    `json:"created_at" db:"created_at"`

	// Leader is the serialized bracket root. It is opaque to everything but the brackets package.
	Leader        json.RawMessage `json:"leader,omitempty" db:"leader"`
	LeaderVersion int             `json:"leader_version" db:"leader_version"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Teams []Team `json:"teams,omitempty" db:"-"`
	Games []Game `json:"games,omitempty" db:"-"`
}

// HasLeader reports whether a bracket has been generated and not deleted.
func (t *Tournament) HasLeader() bool {
	if len(t.Leader) == 0 {
		return false
	}
	s := string(t.Leader)
	return s != "null" && s != "{}"
}

// FindGame returns the game with the given id, or nil.
func (t *Tournament) FindGame(id int) *Game {
	for i := range t.Games {
		if t.Games[i].ID == id {
			return &t.Games[i]
		}
	}
	return nil
}

// TeamsByIDs returns the tournament teams whose ids are in ids, in roster order.
func (t *Tournament) TeamsByIDs(ids []int) []Team {
	result := make([]Team, 0, len(ids))
	for _, team := range t.Teams {
		for _, id := range ids {
			if team.ID == id {
				result = append(result, team)
				break
			}
		}
	}
	return result
}
