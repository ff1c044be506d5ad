package config

import (
	"context"
	"errors"
	"io/fs"
	"time"
	_ "time/tzdata" // LOTTERY_TIMEZONE must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"

	"github.com/qepting91/comment-lottery/internal/collector"
	perr "github.com/qepting91/comment-lottery/internal/platform/errors"
	"github.com/qepting91/comment-lottery/internal/storage"
)

// Settings are the process-level knobs shared by every command
type Settings struct {
	CollectorMode string
	PageSize      int
	MinInterval   time.Duration
	MaxJitter     time.Duration
	HTTPTimeout   time.Duration
	Proxy         string
	MockComments  int
	MockSeed      int64
	FixtureDir    string
	Location      *time.Location

	ExportDir  string
	S3Bucket   string
	S3Prefix   string
	S3Region   string
	S3Endpoint string

	Port string
}

// Load reads .env (if present) and then the environment
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, perr.Wrap(err, perr.ErrorCodeConfig, "load .env")
	}
	return FromEnv(New())
}

// FromEnv builds Settings from c without touching .env
func FromEnv(c Conf) (Settings, error) {
	mode, err := c.MayEnum("COLLECTOR_MODE", collector.ModePublic,
		collector.ModePublic, collector.ModeStealth, collector.ModeMock, collector.ModeFixture)
	if err != nil {
		return Settings{}, err
	}

	lc := c.Prefix("LOTTERY_")
	zone := lc.MayString("TIMEZONE", "Asia/Taipei")
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Settings{}, perr.WithField(perr.Wrapf(err, perr.ErrorCodeConfig, "LOTTERY_TIMEZONE=%q", zone), "LOTTERY_TIMEZONE")
	}

	s3 := c.Prefix("EXPORT_S3_")
	s := Settings{
		CollectorMode: mode,
		PageSize:      lc.MayInt("PAGE_SIZE", collector.DefaultPageSize),
		MinInterval:   lc.MayDuration("MIN_INTERVAL", 500*time.Millisecond),
		MaxJitter:     lc.MayDuration("MAX_JITTER", 2*time.Second),
		HTTPTimeout:   lc.MayDuration("HTTP_TIMEOUT", 15*time.Second),
		Proxy:         lc.MayString("PROXY", ""),
		MockComments:  c.MayInt("MOCK_COMMENTS", 120),
		MockSeed:      c.MayInt64("MOCK_SEED", 1),
		FixtureDir:    c.MayString("MOCK_FIXTURE_DIR", "testdata"),
		Location:      loc,

		ExportDir:  c.MayString("EXPORT_DIR", "data"),
		S3Bucket:   s3.MayString("BUCKET", ""),
		S3Prefix:   s3.MayString("PREFIX", ""),
		S3Region:   s3.MayString("REGION", "us-east-1"),
		S3Endpoint: s3.MayString("ENDPOINT", ""),

		Port: c.MayString("PORT", "8080"),
	}
	if s.PageSize <= 0 || s.PageSize > 50 {
		return Settings{}, perr.WithField(perr.Configf("LOTTERY_PAGE_SIZE=%d: must be between 1 and 50", s.PageSize), "LOTTERY_PAGE_SIZE")
	}
	return s, nil
}

// Collector returns the fetcher options these settings describe
func (s Settings) Collector() collector.Options {
	return collector.Options{
		Mode:         s.CollectorMode,
		PageSize:     s.PageSize,
		MinInterval:  s.MinInterval,
		MaxJitter:    s.MaxJitter,
		HTTPTimeout:  s.HTTPTimeout,
		Proxy:        s.Proxy,
		MockComments: s.MockComments,
		MockSeed:     s.MockSeed,
		FixtureDir:   s.FixtureDir,
	}
}

// Destinations returns the export targets: always the local directory, plus
// the bucket when EXPORT_S3_BUCKET is set
func (s Settings) Destinations(ctx context.Context) ([]storage.Destination, error) {
	dests := []storage.Destination{storage.NewFileDestination(s.ExportDir)}
	if s.S3Bucket == "" {
		return dests, nil
	}
	d, err := storage.NewS3Destination(ctx, s.S3Bucket, s.S3Prefix, s.S3Region, s.S3Endpoint)
	if err != nil {
		return nil, err
	}
	return append(dests, d), nil
}
