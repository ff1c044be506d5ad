package collector

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"time"

	"github.com/qepting91/comment-lottery/internal/domain"
)

// MockClient implements domain.Fetcher over a synthetic, seeded comment set.
// Cursors are offsets into that set, so a client can serve any number of runs.
type MockClient struct {
	comments []domain.RawComment
	pageSize int
	calls    atomic.Int64
}

// NewMockClient generates total comments from seed and serves them pageSize at a time
func NewMockClient(total, pageSize int, seed int64) *MockClient {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &MockClient{
		comments: syntheticComments(total, seed),
		pageSize: pageSize,
	}
}

// Calls reports how many pages have been requested from this client
func (mc *MockClient) Calls() int { return int(mc.calls.Load()) }

// FetchPage implements domain.Fetcher
func (mc *MockClient) FetchPage(ctx context.Context, _ domain.PostRef, cursor string) (domain.Page, error) {
	mc.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return domain.Page{}, err
	}
	offset, err := decodeOffset(cursor)
	if err != nil {
		return domain.Page{}, err
	}
	offset = min(offset, len(mc.comments))
	end := min(offset+mc.pageSize, len(mc.comments))

	page := domain.Page{
		Edges:      append([]domain.RawComment(nil), mc.comments[offset:end]...),
		HasMore:    end < len(mc.comments),
		TotalCount: len(mc.comments),
	}
	if page.HasMore {
		page.NextCursor = encodeOffset(end)
	}
	return page, nil
}

// syntheticComments fabricates a plausible giveaway thread: a few regulars who
// comment many times, some tagging friends, spread over a few days
func syntheticComments(total int, seed int64) []domain.RawComment {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)+1))
	accounts := max(total/3, 1)
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC).Unix()

	out := make([]domain.RawComment, 0, total)
	for i := range total {
		var b strings.Builder
		if rng.IntN(4) != 0 {
			b.WriteString("抽獎 ")
		}
		fmt.Fprintf(&b, "comment %d", i+1)
		for range rng.IntN(4) {
			fmt.Fprintf(&b, " @friend_%d.%02d", rng.IntN(accounts), rng.IntN(100))
		}
		at += int64(rng.IntN(600) + 60)
		out = append(out, domain.RawComment{
			Username:  fmt.Sprintf("user_%03d", rng.IntN(accounts)),
			Text:      b.String(),
			CreatedAt: at,
		})
	}
	return out
}
