package brackets

import (
	"github.com/PrimalTeam/sportsy-back/models"
	"github.com/google/uuid"
)

// TeamScore is the snapshot of a team and its score kept on a ladder node.
type TeamScore struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// TeamRef identifies a team inside a pool.
type TeamRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Node is one slot of a bracket: a game that was played, is being played or
// will be created once both children are decided. Children are either nil or
// exactly two nodes owned by this one.
type Node struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	RoundNumber int                `json:"roundNumber"`
	TeamIDs     []int              `json:"teamIds"`
	Teams       []TeamScore        `json:"teams"`
	GameID      *int               `json:"gameId"`
	Status      *models.GameStatus `json:"status"`
	Children    []*Node            `json:"childrens,omitempty"`
}

func newNode(name string, round int) *Node {
	return &Node{
		ID:          uuid.NewString(),
		Name:        name,
		RoundNumber: round,
		TeamIDs:     []int{},
		Teams:       []TeamScore{},
	}
}

// buildEmptyTree builds a complete binary tree whose root is round max and
// whose leaves are round 0. A negative depth yields a single leaf.
func buildEmptyTree(round, max int, name func(round, max int) string) *Node {
	if max < 0 {
		max = 0
	}
	if round < 0 {
		round = 0
	}
	n := newNode(name(round, max), round)
	if round > 0 {
		n.Children = []*Node{
			buildEmptyTree(round-1, max, name),
			buildEmptyTree(round-1, max, name),
		}
	}
	return n
}

func prefixedRoundName(prefix string) func(round, max int) string {
	return func(round, max int) string {
		return prefix + " " + RoundName(round, max)
	}
}

func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// IsBound reports whether a game is attached to the node.
func (n *Node) IsBound() bool { return n.GameID != nil }

// IsCompleted reports whether the attached game is finished.
func (n *Node) IsCompleted() bool {
	return n.GameID != nil && n.Status != nil && *n.Status == models.GameStatusCompleted
}

func (n *Node) bind(game *models.Game, teams []models.Team) {
	id := game.ID
	status := game.Status
	n.GameID = &id
	n.Status = &status
	n.TeamIDs = append([]int{}, game.TeamIDs...)
	n.Teams = make([]TeamScore, 0, len(teams))
	for _, team := range teams {
		ts := TeamScore{ID: team.ID, Name: team.Name}
		if st := game.StatusFor(team.ID); st != nil {
			ts.Score = st.Score
		}
		n.Teams = append(n.Teams, ts)
	}
}

func (n *Node) clear() {
	n.GameID = nil
	n.Status = nil
	n.TeamIDs = []int{}
	n.Teams = []TeamScore{}
}

// collectAll returns every node of the given trees, children before parents.
func collectAll(roots ...*Node) []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
		out = append(out, n)
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}

// collectRound returns the nodes of one round in left-to-right tree order.
func collectRound(round int, roots ...*Node) []*Node {
	var out []*Node
	for _, n := range collectAll(roots...) {
		if n.RoundNumber == round {
			out = append(out, n)
		}
	}
	return out
}

// findReady returns the shallowest unbound nodes whose two children are both
// completed. Bound nodes are not descended into.
func findReady(roots ...*Node) []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil || n.IsLeaf() || n.IsBound() {
			return
		}
		completed := 0
		for _, c := range n.Children {
			if c.IsCompleted() {
				completed++
			}
		}
		if completed >= 2 {
			out = append(out, n)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}

func allCompleted(nodes []*Node) bool {
	for _, n := range nodes {
		if !n.IsCompleted() {
			return false
		}
	}
	return true
}
