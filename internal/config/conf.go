// Package config loads process settings from the environment and draw rules
// from a TOML file
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	perr "github.com/qepting91/comment-lottery/internal/platform/errors"
	"github.com/qepting91/comment-lottery/internal/platform/logger"
)

// Conf is a namespaced view over environment variables (e.g. "LOTTERY_", "EXPORT_S3_").
// Use New() for global access, or Prefix for a scoped view.
type Conf struct{ prefix string }

// New creates a root Conf (no prefix)
func New() Conf { return Conf{} }

// Prefix creates a child Conf with an additional prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) raw(key string) string { return strings.TrimSpace(os.Getenv(c.key(key))) }

// MustString returns a Config error if the key is missing or empty
func (c Conf) MustString(key string) (string, error) {
	v := c.raw(key)
	if v == "" {
		return "", perr.WithField(perr.Configf("missing required env %s", c.key(key)), c.key(key))
	}
	return v, nil
}

// MayString returns the value or def if missing/empty
func (c Conf) MayString(key, def string) string {
	if v := c.raw(key); v != "" {
		return v
	}
	return def
}

// MayInt returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayInt(key string, def int) int {
	s := c.raw(key)
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Int("default", def).Msg("invalid int; using default")
	return def
}

// MayInt64 returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayInt64(key string, def int64) int64 {
	s := c.raw(key)
	if s == "" {
		return def
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Int64("default", def).Msg("invalid int64; using default")
	return def
}

// MayDuration returns the value or def if missing/empty; logs and returns def if invalid
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	s := c.raw(key)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Dur("default", def).Msg("invalid duration; using default")
	return def
}

// MayEnum returns the lower-cased value if it is one of allowed, def if empty,
// and a Config error otherwise
func (c Conf) MayEnum(key, def string, allowed ...string) (string, error) {
	v := strings.ToLower(c.MayString(key, def))
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", perr.WithField(perr.Configf("%s=%q: expected one of %s", c.key(key), v, strings.Join(allowed, ", ")), c.key(key))
}
