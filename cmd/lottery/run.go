package main

import (
	"github.com/spf13/cobra"

	"github.com/qepting91/comment-lottery/internal/storage"
)

var (
	runOpts     drawFlags
	runPost     string
	runComments string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape a post and draw winners in one go",
	RunE: func(cmd *cobra.Command, args []string) error {
		// rules are checked before the scrape so a typo does not cost a full crawl
		rules, err := runOpts.load(cmd)
		if err != nil {
			return err
		}

		post, comments, err := scrape(cmd.Context(), runPost)
		if err != nil {
			return err
		}
		if err := storage.SaveComments(runComments, comments); err != nil {
			return err
		}
		return drawAndExport(cmd.Context(), post.Shortcode, comments, rules, runOpts.winners)
	},
}

func init() {
	runCmd.Flags().StringVar(&runPost, "post", "", "post bundle exported by the browser extension (required)")
	runCmd.Flags().StringVar(&runComments, "comments", "data/comments.ndjson", "where to keep the scraped comments")
	runOpts.register(runCmd)
	_ = runCmd.MarkFlagRequired("post")
}
