package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/qepting91/comment-lottery/internal/config"
	"github.com/qepting91/comment-lottery/internal/domain"
	"github.com/qepting91/comment-lottery/internal/ingest"
	"github.com/qepting91/comment-lottery/internal/lottery"
	"github.com/qepting91/comment-lottery/internal/storage"
)

// drawFlags are shared by draw and run
type drawFlags struct {
	rules   string
	rewards string
	seed    int64
	winners string
}

var (
	drawOpts      drawFlags
	drawComments  string
	drawShortcode string
)

var drawCmd = &cobra.Command{
	Use:   "draw",
	Short: "Filter scraped comments and draw winners per the rules file",
	RunE: func(cmd *cobra.Command, args []string) error {
		comments, err := storage.LoadComments(drawComments)
		if err != nil {
			return err
		}
		rules, err := drawOpts.load(cmd)
		if err != nil {
			return err
		}
		return drawAndExport(cmd.Context(), drawShortcode, comments, rules, drawOpts.winners)
	},
}

func init() {
	drawCmd.Flags().StringVar(&drawComments, "comments", "data/comments.ndjson", "scraped comments file")
	drawCmd.Flags().StringVar(&drawShortcode, "shortcode", "post", "shortcode used in the export file name")
	drawOpts.register(drawCmd)
}

func (f *drawFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.rules, "rules", "lottery.toml", "draw rules (TOML)")
	cmd.Flags().StringVar(&f.rewards, "rewards", "", "rewards table (CSV name,count); replaces [[rewards]] in the rules file")
	cmd.Flags().Int64Var(&f.seed, "seed", domain.DefaultSeed, "random seed; overrides the rules file")
	cmd.Flags().StringVar(&f.winners, "winners", "data/winners.ndjson", "where to write the winners for the dashboard")
}

func (f *drawFlags) load(cmd *cobra.Command) (domain.Rules, error) {
	rules, err := config.LoadLottery(f.rules, settings.Location)
	if err != nil {
		return domain.Rules{}, err
	}
	if f.rewards != "" {
		spec, err := ingest.LoadRewards(f.rewards)
		if err != nil {
			return domain.Rules{}, err
		}
		rules.Rewards = spec
	}
	if cmd.Flags().Changed("seed") {
		rules.Seed = f.seed
	}
	return rules, nil
}

// drawAndExport runs the draw, saves the winners for the dashboard and
// exports the CSV to every configured destination
func drawAndExport(ctx context.Context, shortcode string, comments []domain.Comment, rules domain.Rules, winnersPath string) error {
	res, err := lottery.NewService().Draw(comments, rules)
	if err != nil {
		return err
	}
	if err := storage.SaveComments(winnersPath, res.Winners); err != nil {
		return err
	}

	dests, err := settings.Destinations(ctx)
	if err != nil {
		return err
	}
	name, err := storage.NewExporter(dests...).Export(ctx, shortcode, res.DrawnAt.In(settings.Location), res.Winners)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(struct {
			*domain.Result
			Export string `json:"export"`
		}{res, name})
	}
	printResult(res, name)
	return nil
}
