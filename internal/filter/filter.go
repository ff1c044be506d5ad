// Package filter narrows scraped comments down to the lottery's candidate pool.
//
// Every predicate preserves retrieval order and leaves ids untouched; the
// selector renumbers winners once the draw is done.
package filter

import (
	"slices"
	"strings"
	"time"

	"github.com/qepting91/comment-lottery/internal/domain"
)

// Apply runs the configured predicates in order: keyword, tag count,
// deadline, then one-comment-per-account. The input slice is not modified.
func Apply(records []domain.Comment, p domain.Params) []domain.Comment {
	out := slices.Clone(records)
	if p.Keyword != "" {
		out = ByKeyword(out, p.Keyword)
	}
	if p.MinTags > 0 {
		out = ByMinTags(out, p.MinTags)
	}
	if p.Deadline != nil {
		out = ByDeadline(out, *p.Deadline)
	}
	if !p.AllowMultiComment {
		out = FirstPerAccount(out)
	}
	return out
}

// ByKeyword keeps records whose text contains keyword literally (case-sensitive)
func ByKeyword(records []domain.Comment, keyword string) []domain.Comment {
	return keep(records, func(c domain.Comment) bool {
		return strings.Contains(c.Text, keyword)
	})
}

// ByMinTags keeps records that tag at least minTags accounts
func ByMinTags(records []domain.Comment, minTags int) []domain.Comment {
	return keep(records, func(c domain.Comment) bool {
		return CountTags(c.Text) >= minTags
	})
}

// ByDeadline keeps records posted at or before deadline
func ByDeadline(records []domain.Comment, deadline time.Time) []domain.Comment {
	return keep(records, func(c domain.Comment) bool {
		return !c.Timestamp.After(deadline)
	})
}

// FirstPerAccount keeps only the earliest-retrieved record of each account
func FirstPerAccount(records []domain.Comment) []domain.Comment {
	seen := make(map[string]struct{}, len(records))
	return keep(records, func(c domain.Comment) bool {
		if _, dup := seen[c.Account]; dup {
			return false
		}
		seen[c.Account] = struct{}{}
		return true
	})
}

// CountTags counts account mentions in text. A mention is '@' followed by one
// or more of [A-Za-z0-9_.], starting the text or following whitespace, and
// ending the text or followed by whitespace. "email@domain.com" has none.
func CountTags(text string) int {
	n := 0
	for _, tok := range strings.Fields(text) {
		if isTag(tok) {
			n++
		}
	}
	return n
}

func isTag(tok string) bool {
	if len(tok) < 2 || tok[0] != '@' {
		return false
	}
	for i := 1; i < len(tok); i++ {
		ch := tok[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '_', ch == '.':
		default:
			return false
		}
	}
	return true
}

func keep(records []domain.Comment, pred func(domain.Comment) bool) []domain.Comment {
	out := make([]domain.Comment, 0, len(records))
	for _, c := range records {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}
