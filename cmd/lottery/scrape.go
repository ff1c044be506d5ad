package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qepting91/comment-lottery/internal/aggregator"
	"github.com/qepting91/comment-lottery/internal/collector"
	"github.com/qepting91/comment-lottery/internal/domain"
	"github.com/qepting91/comment-lottery/internal/ingest"
	"github.com/qepting91/comment-lottery/internal/storage"
)

var (
	scrapePost string
	scrapeOut  string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch every comment of a post into an NDJSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		post, comments, err := scrape(cmd.Context(), scrapePost)
		if err != nil {
			return err
		}
		if err := storage.SaveComments(scrapeOut, comments); err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(map[string]any{"shortcode": post.Shortcode, "comments": len(comments), "file": scrapeOut})
		}
		fmt.Printf("%s: %d comments saved to %s\n", post.Shortcode, len(comments), scrapeOut)
		return nil
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapePost, "post", "", "post bundle exported by the browser extension (required)")
	scrapeCmd.Flags().StringVar(&scrapeOut, "out", "data/comments.ndjson", "where to write the scraped comments")
	_ = scrapeCmd.MarkFlagRequired("post")
}

// scrape loads the post bundle and aggregates all of its comments
func scrape(ctx context.Context, bundlePath string) (domain.PostRef, []domain.Comment, error) {
	post, err := ingest.LoadPostBundle(bundlePath)
	if err != nil {
		return domain.PostRef{}, nil, err
	}
	fetcher, err := collector.NewCollector(settings.Collector())
	if err != nil {
		return domain.PostRef{}, nil, err
	}

	comments, err := newAggregator(fetcher).Aggregate(ctx, post)
	if err != nil {
		return domain.PostRef{}, nil, err
	}
	return post, comments, nil
}

// newAggregator builds an aggregator normalizing to the configured LOTTERY_TIMEZONE
func newAggregator(f domain.Fetcher) *aggregator.Aggregator {
	return aggregator.New(f, aggregator.WithLocation(settings.Location))
}
