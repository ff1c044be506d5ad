// Package lottery runs one draw end to end over an already scraped comment set
package lottery

import (
	"time"

	"github.com/google/uuid"

	"github.com/qepting91/comment-lottery/internal/domain"
	"github.com/qepting91/comment-lottery/internal/filter"
	perr "github.com/qepting91/comment-lottery/internal/platform/errors"
	"github.com/qepting91/comment-lottery/internal/platform/logger"
	"github.com/qepting91/comment-lottery/internal/platform/validate"
	"github.com/qepting91/comment-lottery/internal/selector"
)

// Service validates rules, filters the comments and draws the winners
type Service struct {
	log *logger.Logger
	now func() time.Time
}

// Option customizes a Service
type Option func(*Service)

// WithClock overrides the time source used for Result.DrawnAt
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger replaces the component logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService returns a ready Service
func NewService(opts ...Option) *Service {
	s := &Service{
		log: logger.Named("lottery"),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Draw filters comments by rules.Params and draws rules.Rewards.Total() winners.
// comments is left untouched; the winners are fresh records numbered 1..K.
func (s *Service) Draw(comments []domain.Comment, rules domain.Rules) (*domain.Result, error) {
	if err := validate.Struct(rules.Params, ""); err != nil {
		return nil, perr.WithOp(err, "draw")
	}
	if err := selector.ValidateSpec(rules.Rewards); err != nil {
		return nil, perr.WithOp(err, "draw")
	}

	candidates := filter.Apply(comments, rules.Params)
	s.log.Info().
		Int("comments", len(comments)).
		Int("candidates", len(candidates)).
		Int("winners", rules.Rewards.Total()).
		Bool("allow_multi_win", rules.AllowMultiWin).
		Int64("seed", rules.Seed).
		Msg("drawing winners")

	winners, err := selector.Select(candidates, rules.Rewards, rules.AllowMultiWin, rules.Seed)
	if err != nil {
		return nil, err
	}

	res := &domain.Result{
		RunID:      uuid.New(),
		Seed:       rules.Seed,
		Candidates: len(candidates),
		Winners:    winners,
		DrawnAt:    s.now(),
	}
	s.log.Info().Str("run_id", res.RunID.String()).Int("winners", len(winners)).Msg("draw complete")
	return res, nil
}
