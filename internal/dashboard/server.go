// Package dashboard serves a small report over the winners of the latest draw
package dashboard

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/qepting91/comment-lottery/internal/domain"
	"github.com/qepting91/comment-lottery/internal/platform/logger"
	"github.com/qepting91/comment-lottery/internal/storage"
)

// NewRouter mounts the report routes over the winners NDJSON at dataFile.
// The file is re-read on every request so a new draw shows up without a restart.
func NewRouter(dataFile string) *chi.Mux {
	m := chi.NewRouter()
	m.Use(middleware.Recoverer)
	m.Get("/", reportHandler(dataFile))
	m.Get("/winners.csv", csvHandler(dataFile))
	return m
}

// StartServer listens on port until ctx is done, then shuts down gracefully
func StartServer(ctx context.Context, dataFile, port string) error {
	log := logger.Named("dashboard")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           NewRouter(dataFile),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("winners", dataFile).Msg("dashboard listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func reportHandler(dataFile string) http.HandlerFunc {
	log := logger.Named("dashboard")
	return func(w http.ResponseWriter, r *http.Request) {
		winners, err := storage.LoadComments(dataFile)
		if err != nil {
			log.Error().Err(err).Str("file", dataFile).Msg("load winners")
			http.Error(w, "winners unavailable", http.StatusInternalServerError)
			return
		}

		// 1. Prize distribution
		pie := charts.NewPie()
		pie.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: "Prize Distribution", Subtitle: countLabel(len(winners))}),
			charts.WithThemeOpts(opts.Theme{Theme: types.ThemeWesteros}),
		)
		var pieItems []opts.PieData
		for _, tc := range tally(winners, func(c domain.Comment) string { return c.Award }) {
			pieItems = append(pieItems, opts.PieData{Name: tc.key, Value: tc.n})
		}
		pie.AddSeries("Winners", pieItems)

		// 2. Wins per account
		bar := charts.NewBar()
		bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Wins per Account"}))
		var barX []string
		var barY []opts.BarData
		for _, tc := range tally(winners, func(c domain.Comment) string { return c.Account }) {
			barX = append(barX, tc.key)
			barY = append(barY, opts.BarData{Value: tc.n})
		}
		bar.SetXAxis(barX).AddSeries("Wins", barY)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pie.Render(w); err != nil {
			log.Error().Err(err).Msg("render pie")
			return
		}
		if err := bar.Render(w); err != nil {
			log.Error().Err(err).Msg("render bar")
		}
	}
}

func csvHandler(dataFile string) http.HandlerFunc {
	log := logger.Named("dashboard")
	return func(w http.ResponseWriter, r *http.Request) {
		winners, err := storage.LoadComments(dataFile)
		if err != nil {
			log.Error().Err(err).Str("file", dataFile).Msg("load winners")
			http.Error(w, "winners unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="winners.csv"`)
		if err := storage.WriteCSV(w, winners); err != nil {
			log.Error().Err(err).Msg("write winners csv")
		}
	}
}

type keyCount struct {
	key string
	n   int
}

// tally counts winners by key in order of first appearance, which for awards
// is tier order
func tally(winners []domain.Comment, key func(domain.Comment) string) []keyCount {
	var out []keyCount
	for _, c := range winners {
		k := key(c)
		if i := slices.IndexFunc(out, func(kc keyCount) bool { return kc.key == k }); i >= 0 {
			out[i].n++
			continue
		}
		out = append(out, keyCount{key: k, n: 1})
	}
	return out
}

func countLabel(n int) string {
	if n == 1 {
		return "1 winner"
	}
	return strconv.Itoa(n) + " winners"
}
