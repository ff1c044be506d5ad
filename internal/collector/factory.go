package collector

import (
	"time"

	"github.com/qepting91/comment-lottery/internal/domain"
	perr "github.com/qepting91/comment-lottery/internal/platform/errors"
)

// Collector modes
const (
	ModePublic  = "public"
	ModeStealth = "stealth"
	ModeMock    = "mock"
	ModeFixture = "fixture"
)

// Options configures every collector implementation
type Options struct {
	Mode        string
	PageSize    int
	MinInterval time.Duration
	MaxJitter   time.Duration
	HTTPTimeout time.Duration
	Proxy       string
	Endpoint    string

	MockComments int
	MockSeed     int64
	FixtureDir   string
}

func (o *Options) defaults() {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.HTTPTimeout <= 0 {
		o.HTTPTimeout = 15 * time.Second
	}
	if o.Endpoint == "" {
		o.Endpoint = graphQLURL
	}
}

// NewCollector selects the implementation named by opts.Mode
func NewCollector(opts Options) (domain.Fetcher, error) {
	switch opts.Mode {
	case ModePublic, "":
		return NewPublicClient(opts)
	case ModeStealth:
		sc, err := NewStealthClient(opts)
		if err != nil {
			return nil, err
		}
		return sc, nil
	case ModeMock:
		return NewMockClient(opts.MockComments, opts.PageSize, opts.MockSeed), nil
	case ModeFixture:
		fc, err := NewFixtureClient(opts.FixtureDir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	default:
		return nil, perr.Configf("unknown COLLECTOR_MODE: %s (use 'public', 'stealth', 'mock' or 'fixture')", opts.Mode)
	}
}
