package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/qepting91/comment-lottery/internal/domain"
	perr "github.com/qepting91/comment-lottery/internal/platform/errors"
)

// deadlineLayouts are tried in order for a quoted deadline without an offset
var deadlineLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

type rulesFile struct {
	Keyword           string            `toml:"keyword"`
	MinTags           int               `toml:"min_tags"`
	Deadline          any               `toml:"deadline"`
	AllowMultiComment bool              `toml:"allow_multi_comment"`
	AllowMultiWin     bool              `toml:"allow_multi_win"`
	Seed              int64             `toml:"seed"`
	Rewards           domain.RewardSpec `toml:"rewards"`
}

// LoadLottery reads draw rules from a TOML file. A quoted deadline without an
// offset is read in loc; a TOML offset datetime is used as written.
// Seed falls back to domain.DefaultSeed when the file does not set it.
func LoadLottery(path string, loc *time.Location) (domain.Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Rules{}, perr.Wrapf(err, perr.ErrorCodeValidation, "open rules %s", path)
	}
	defer f.Close()
	return ReadLottery(f, loc)
}

// ReadLottery is LoadLottery over an arbitrary reader
func ReadLottery(r io.Reader, loc *time.Location) (domain.Rules, error) {
	var rf rulesFile
	md, err := toml.NewDecoder(r).Decode(&rf)
	if err != nil {
		return domain.Rules{}, perr.Wrap(err, perr.ErrorCodeValidation, "decode rules")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return domain.Rules{}, perr.WithField(perr.Validationf("rules: unknown key %q", undecoded[0].String()), undecoded[0].String())
	}

	rules := domain.Rules{
		Params: domain.Params{
			Keyword:           rf.Keyword,
			MinTags:           rf.MinTags,
			AllowMultiComment: rf.AllowMultiComment,
			AllowMultiWin:     rf.AllowMultiWin,
		},
		Seed:    domain.DefaultSeed,
		Rewards: rf.Rewards,
	}
	if md.IsDefined("seed") {
		rules.Seed = rf.Seed
	}
	if rf.Deadline != nil {
		d, err := parseDeadline(rf.Deadline, loc)
		if err != nil {
			return domain.Rules{}, perr.WithField(err, "deadline")
		}
		rules.Deadline = &d
	}
	return rules, nil
}

func parseDeadline(v any, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if d, err := time.Parse(time.RFC3339, s); err == nil {
			return d, nil
		}
		for _, layout := range deadlineLayouts {
			if d, err := time.ParseInLocation(layout, s, loc); err == nil {
				return d, nil
			}
		}
		return time.Time{}, perr.Validationf("deadline %q: expected YYYY-MM-DD HH:MM:SS", s)
	default:
		return time.Time{}, perr.Validationf("deadline: unsupported value %v", fmt.Sprint(v))
	}
}
