package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSeed keeps draws reproducible when the rules file does not pick one
const DefaultSeed int64 = 42

// Tier is a named reward category with a fixed winner quota
type Tier struct {
	Name  string `toml:"name" json:"name" validate:"required"`
	Count int    `toml:"count" json:"count" validate:"gt=0"`
}

// RewardSpec is the ordered list of tiers; its total is the number of winners
type RewardSpec []Tier

// Total returns the sum of all tier counts
func (s RewardSpec) Total() int {
	n := 0
	for _, t := range s {
		n += t.Count
	}
	return n
}

// Flatten expands the tiers into one tier name per winner slot, in tier order
func (s RewardSpec) Flatten() []string {
	out := make([]string, 0, max(s.Total(), 0))
	for _, t := range s {
		for range t.Count {
			out = append(out, t.Name)
		}
	}
	return out
}

// Params are the eligibility and uniqueness switches for one run
type Params struct {
	Keyword           string     `toml:"keyword" json:"keyword"`
	MinTags           int        `toml:"min_tags" json:"min_tags" validate:"gte=0"`
	Deadline          *time.Time `toml:"deadline" json:"deadline,omitempty"`
	AllowMultiComment bool       `toml:"allow_multi_comment" json:"allow_multi_comment"`
	AllowMultiWin     bool       `toml:"allow_multi_win" json:"allow_multi_win"`
}

// Rules bundles everything a draw needs besides the comments themselves
type Rules struct {
	Params
	Seed    int64      `toml:"seed" json:"seed"`
	Rewards RewardSpec `toml:"rewards" json:"rewards"`
}

// Result is the outcome of one successful draw
type Result struct {
	RunID      uuid.UUID `json:"run_id"`
	Seed       int64     `json:"seed"`
	Candidates int       `json:"candidates"`
	Winners    []Comment `json:"winners"`
	DrawnAt    time.Time `json:"drawn_at"`
}
