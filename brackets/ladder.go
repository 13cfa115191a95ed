package brackets

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PrimalTeam/sportsy-back/models"
)

var ErrUnknownLadder = errors.New("unrecognized ladder payload")

type SingleElimination struct {
	MainLadder *Node   `json:"mainLadder"`
	PreGames   []*Node `json:"preGames"`
}

type DoubleElimination struct {
	WinnersBracket *Node `json:"winnersBracket"`
	LosersBracket  *Node `json:"losersBracket"`
	GrandFinal     *Node `json:"grandFinal"`
}

type Pool struct {
	Name  string    `json:"name"`
	Teams []TeamRef `json:"teams"`
	Games []*Node   `json:"games"`
}

type PoolPlay struct {
	Pools     []*Pool               `json:"pools"`
	Playoffs  *Node                 `json:"playoffs"`
	Standings map[int]*PoolStanding `json:"standings"`
}

type RoundRobin struct {
	Games     []*Node           `json:"games"`
	Standings map[int]*Standing `json:"standings"`
	Rounds    int               `json:"rounds"`
}

// Ladder is the persisted root of a tournament bracket. Exactly one of the
// payload pointers is set, matching Type.
type Ladder struct {
	Type       models.LadderFormat
	Single     *SingleElimination
	Double     *DoubleElimination
	Pool       *PoolPlay
	RoundRobin *RoundRobin
}

func (l *Ladder) payload() (any, error) {
	switch {
	case l.Single != nil:
		return l.Single, nil
	case l.Double != nil:
		return l.Double, nil
	case l.Pool != nil:
		return l.Pool, nil
	case l.RoundRobin != nil:
		return l.RoundRobin, nil
	}
	return nil, fmt.Errorf("%w: ladder of type %q has no payload", ErrUnknownLadder, l.Type)
}

// MarshalJSON writes the active payload's fields next to a "type" field.
func (l Ladder) MarshalJSON() ([]byte, error) {
	p, err := l.payload()
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	typ, err := json.Marshal(l.Type)
	if err != nil {
		return nil, err
	}
	fields["type"] = typ
	return json.Marshal(fields)
}

// UnmarshalJSON reads a flattened ladder. Blobs written without a type are
// recognized by their fields.
func (l *Ladder) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode ladder: %w", err)
	}

	var typ models.LadderFormat
	if raw, ok := fields["type"]; ok {
		if err := json.Unmarshal(raw, &typ); err != nil {
			return fmt.Errorf("decode ladder type: %w", err)
		}
	}

	kind := typ
	switch typ {
	case models.FormatSingleElimination, models.FormatDoubleElimination, models.FormatPoolPlay, models.FormatRoundRobin:
	case models.FormatKnockout, models.FormatPlayoffs:
		kind = models.FormatDoubleElimination
	default:
		kind = inferKind(fields)
		if kind == "" {
			return ErrUnknownLadder
		}
	}
	if typ == "" {
		typ = kind
	}

	*l = Ladder{Type: typ}
	var target any
	switch kind {
	case models.FormatSingleElimination:
		l.Single = &SingleElimination{}
		target = l.Single
	case models.FormatDoubleElimination:
		l.Double = &DoubleElimination{}
		target = l.Double
	case models.FormatPoolPlay:
		l.Pool = &PoolPlay{}
		target = l.Pool
	case models.FormatRoundRobin:
		l.RoundRobin = &RoundRobin{}
		target = l.RoundRobin
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode %s ladder: %w", kind, err)
	}
	return nil
}

func inferKind(fields map[string]json.RawMessage) models.LadderFormat {
	has := func(k string) bool {
		_, ok := fields[k]
		return ok
	}
	switch {
	case has("mainLadder"):
		return models.FormatSingleElimination
	case has("winnersBracket"):
		return models.FormatDoubleElimination
	case has("pools"):
		return models.FormatPoolPlay
	case has("games"):
		return models.FormatRoundRobin
	}
	return ""
}

// DecodeLadder parses a persisted leader blob.
func DecodeLadder(blob []byte) (*Ladder, error) {
	var l Ladder
	if err := json.Unmarshal(blob, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Nodes returns every node of the ladder.
func (l *Ladder) Nodes() []*Node {
	switch {
	case l.Single != nil:
		return append(collectAll(l.Single.MainLadder), l.Single.PreGames...)
	case l.Double != nil:
		return collectAll(l.Double.WinnersBracket, l.Double.LosersBracket, l.Double.GrandFinal)
	case l.Pool != nil:
		var out []*Node
		for _, p := range l.Pool.Pools {
			out = append(out, p.Games...)
		}
		return append(out, collectAll(l.Pool.Playoffs)...)
	case l.RoundRobin != nil:
		return l.RoundRobin.Games
	}
	return nil
}
