// Package aggregator walks every page of a post's comments and flattens them
// into numbered comment records
package aggregator

import (
	"context"
	"time"

	"github.com/qepting91/comment-lottery/internal/domain"
	perr "github.com/qepting91/comment-lottery/internal/platform/errors"
	"github.com/qepting91/comment-lottery/internal/platform/logger"
)

// DefaultLocation is the display zone of the accounts this tool was built for.
// Taiwan has no daylight saving, so a fixed offset is exact.
var DefaultLocation = time.FixedZone("Asia/Taipei", 8*60*60)

// Progress is called after every page with the number of comments collected
// so far and the total the upstream reports
type Progress func(fetched, total int)

// Aggregator drives a domain.Fetcher until the cursor is exhausted
type Aggregator struct {
	fetcher  domain.Fetcher
	location *time.Location
	progress Progress
	log      *logger.Logger
}

// Option customizes an Aggregator
type Option func(*Aggregator)

// WithLocation sets the zone timestamps are normalized to
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.location = loc
		}
	}
}

// WithProgress replaces the default progress logging
func WithProgress(p Progress) Option {
	return func(a *Aggregator) {
		if p != nil {
			a.progress = p
		}
	}
}

// New returns an Aggregator over f
func New(f domain.Fetcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher:  f,
		location: DefaultLocation,
		log:      logger.Named("aggregator"),
	}
	a.progress = a.logProgress
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Probe fetches the first page only and reports the comment count the
// upstream advertises, which doubles as a check that the headers still work
func (a *Aggregator) Probe(ctx context.Context, post domain.PostRef) (int, error) {
	page, err := a.fetcher.FetchPage(ctx, post, "")
	if err != nil {
		if ctx.Err() != nil {
			return 0, perr.FromContext(ctx.Err())
		}
		return 0, perr.WithOp(err, "probe")
	}
	return page.TotalCount, nil
}

// Aggregate fetches every page in order and returns the comments numbered
// 1..N in retrieval order. Any page failure or cancellation discards what
// was collected.
func (a *Aggregator) Aggregate(ctx context.Context, post domain.PostRef) ([]domain.Comment, error) {
	var raws []domain.RawComment
	cursor := ""
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, perr.WithOp(perr.Wrapf(err, perr.ErrorCodeCanceled, "canceled before page %d", page), "aggregate")
		}

		p, err := a.fetcher.FetchPage(ctx, post, cursor)
		if err != nil {
			if ctx.Err() != nil || perr.IsCode(err, perr.ErrorCodeCanceled) {
				return nil, perr.WithOp(perr.Wrapf(err, perr.ErrorCodeCanceled, "canceled during page %d", page), "aggregate")
			}
			return nil, perr.WithOp(perr.Wrapf(err, perr.ErrorCodePartialFetch, "page %d failed after %d comments", page, len(raws)), "aggregate")
		}

		raws = append(raws, p.Edges...)
		a.progress(len(raws), p.TotalCount)

		if !p.HasMore {
			break
		}
		if p.NextCursor == "" || p.NextCursor == cursor {
			return nil, perr.WithOp(perr.Newf(perr.ErrorCodePartialFetch, "page %d: cursor did not advance", page), "aggregate")
		}
		cursor = p.NextCursor
	}
	return a.records(raws), nil
}

func (a *Aggregator) records(raws []domain.RawComment) []domain.Comment {
	out := make([]domain.Comment, len(raws))
	for i, r := range raws {
		out[i] = domain.Comment{
			ID:        i + 1,
			Account:   r.Username,
			Text:      r.Text,
			Timestamp: time.Unix(r.CreatedAt, 0).In(a.location),
		}
	}
	return out
}

func (a *Aggregator) logProgress(fetched, total int) {
	a.log.Info().Int("fetched", fetched).Int("total", total).Msg("collecting comments")
}
