// Package selector draws lottery winners from the candidate pool.
//
// Two regimes are supported. When a user may win more than once, every
// surviving comment is one ticket and K comments are drawn uniformly without
// replacement. Otherwise accounts are drawn without replacement, each weighted
// by its number of surviving comments, and each drawn account wins with its
// earliest surviving comment.
//
// Tier names are handed out in draw order from the flattened reward spec, and
// winners are renumbered 1..K in that same order. A given seed and input always
// produce the same result.
package selector

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/qepting91/comment-lottery/internal/domain"
	perr "github.com/qepting91/comment-lottery/internal/platform/errors"
	"github.com/qepting91/comment-lottery/internal/platform/validate"
)

// Select validates spec, draws spec.Total() winners from candidates and
// returns them annotated with their award. candidates is not modified.
func Select(candidates []domain.Comment, spec domain.RewardSpec, allowMultiWin bool, seed int64) ([]domain.Comment, error) {
	if err := ValidateSpec(spec); err != nil {
		return nil, perr.WithOp(err, "select")
	}
	k := spec.Total()
	rng := newRand(seed)

	var drawn []domain.Comment
	if allowMultiWin {
		if k > len(candidates) {
			return nil, perr.WithOp(perr.Capacityf("%d winners requested but only %d eligible comments", k, len(candidates)), "select")
		}
		drawn = drawComments(rng, candidates, k)
	} else {
		pool := Tickets(candidates)
		if k > len(pool) {
			return nil, perr.WithOp(perr.Capacityf("%d winners requested but only %d eligible accounts", k, len(pool)), "select")
		}
		drawn = drawAccounts(rng, candidates, pool, k)
	}

	for i, award := range spec.Flatten() {
		drawn[i].Award = award
	}
	domain.Renumber(drawn)
	return drawn, nil
}

// ValidateSpec rejects empty specs, tiers with a blank name or a non-positive
// count, and specs whose total winner count does not fit in an int
func ValidateSpec(spec domain.RewardSpec) error {
	if len(spec) == 0 {
		return perr.WithField(perr.Validationf("rewards: at least one tier is required"), "rewards")
	}
	total := 0
	for i, tier := range spec {
		field := fmt.Sprintf("rewards[%d]", i)
		if err := validate.Struct(tier, field); err != nil {
			return err
		}
		if tier.Count > math.MaxInt-total {
			return perr.WithField(perr.Capacityf("%s.count: total winners overflows", field), field+".count")
		}
		total += tier.Count
	}
	return nil
}

// AccountTickets is one distinct account in the pool with its ticket count
// and the index of its earliest surviving comment
type AccountTickets struct {
	Account string
	Tickets int
	First   int
}

// Tickets groups candidates by account in order of first appearance
func Tickets(candidates []domain.Comment) []AccountTickets {
	pos := make(map[string]int)
	var out []AccountTickets
	for i, c := range candidates {
		if j, ok := pos[c.Account]; ok {
			out[j].Tickets++
			continue
		}
		pos[c.Account] = len(out)
		out = append(out, AccountTickets{Account: c.Account, Tickets: 1, First: i})
	}
	return out
}

func newRand(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// drawComments is a partial Fisher-Yates shuffle over candidate indices
func drawComments(rng *rand.Rand, candidates []domain.Comment, k int) []domain.Comment {
	idx := make([]int, len(candidates))
	for i := range idx {
		idx[i] = i
	}
	out := make([]domain.Comment, 0, k)
	for i := range k {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out = append(out, candidates[idx[i]])
	}
	return out
}

// drawAccounts picks k accounts by cumulative ticket weight, removing each
// pick from the pool before the next draw
func drawAccounts(rng *rand.Rand, candidates []domain.Comment, pool []AccountTickets, k int) []domain.Comment {
	remaining := append([]AccountTickets(nil), pool...)
	total := 0
	for _, a := range remaining {
		total += a.Tickets
	}

	out := make([]domain.Comment, 0, k)
	for range k {
		r := rng.IntN(total)
		pick := 0
		for acc := 0; pick < len(remaining); pick++ {
			acc += remaining[pick].Tickets
			if r < acc {
				break
			}
		}
		chosen := remaining[pick]
		out = append(out, candidates[chosen.First])

		total -= chosen.Tickets
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}
	return out
}
