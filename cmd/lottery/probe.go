package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qepting91/comment-lottery/internal/collector"
	"github.com/qepting91/comment-lottery/internal/ingest"
)

var probePost string

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check the captured headers and report how many comments a post has",
	RunE: func(cmd *cobra.Command, args []string) error {
		post, err := ingest.LoadPostBundle(probePost)
		if err != nil {
			return err
		}
		fetcher, err := collector.NewCollector(settings.Collector())
		if err != nil {
			return err
		}

		total, err := newAggregator(fetcher).Probe(cmd.Context(), post)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(map[string]any{"shortcode": post.Shortcode, "comments": total})
		}
		fmt.Printf("%s: %d comments found\n", post.Shortcode, total)
		return nil
	},
}

func init() {
	probeCmd.Flags().StringVar(&probePost, "post", "", "post bundle exported by the browser extension (required)")
	_ = probeCmd.MarkFlagRequired("post")
}
