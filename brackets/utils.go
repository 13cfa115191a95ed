package brackets

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/PrimalTeam/sportsy-back/models"
)

// CalculateRounds returns the number of knockout rounds needed for n teams.
func CalculateRounds(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(n))))
}

// NextPowerOf2 returns the smallest power of two that is >= n.
func NextPowerOf2(n int) int {
	return 1 << uint(CalculateRounds(n))
}

// CalculateByes returns how many slots of a full bracket stay empty for n teams.
func CalculateByes(n int) int {
	if n <= 0 {
		return 0
	}
	return NextPowerOf2(n) - n
}

// ChunkIntoPairs groups consecutive elements into pairs; a trailing odd element is dropped.
func ChunkIntoPairs[T any](items []T) [][2]T {
	pairs := make([][2]T, 0, len(items)/2)
	for i := 0; i < len(items)-1; i += 2 {
		pairs = append(pairs, [2]T{items[i], items[i+1]})
	}
	return pairs
}

// RoundName labels a round by its distance from the last round.
func RoundName(current, max int) string {
	switch max - current {
	case 0:
		return "Final"
	case 1:
		return "Semi-Final"
	case 2:
		return "Quarter-Final"
	default:
		return fmt.Sprintf("Round %d", current+1)
	}
}

// Shuffler permutes team lists. It is safe for concurrent use.
type Shuffler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewShuffler wraps rnd; a nil rnd uses the global source.
func NewShuffler(rnd *rand.Rand) *Shuffler {
	return &Shuffler{rnd: rnd}
}

func (s *Shuffler) intN(n int) int {
	if s == nil || s.rnd == nil {
		return rand.IntN(n)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(n)
}

// Shuffle returns a Fisher-Yates permutation of a copy of teams.
func (s *Shuffler) Shuffle(teams []models.Team) []models.Team {
	out := make([]models.Team, len(teams))
	copy(out, teams)
	for i := len(out) - 1; i > 0; i-- {
		j := s.intN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
