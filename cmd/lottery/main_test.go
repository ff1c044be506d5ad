package main

import (
	"context"
	"testing"
	"time"

	"github.com/qepting91/comment-lottery/internal/domain"
	perr "github.com/qepting91/comment-lottery/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOneLine(t *testing.T) {
	assert.Equal(t, "a b c", oneLine("a\nb\tc", 10))
	assert.Equal(t, "抽獎抽…", oneLine("抽獎抽獎抽獎", 4))
}

func TestReportExitCodes(t *testing.T) {
	assert.Equal(t, 2, report(perr.WithField(perr.Validationf("bad"), "rewards[0].count")))
	assert.Equal(t, 3, report(perr.Capacityf("short")))
	assert.Equal(t, 4, report(perr.Newf(perr.ErrorCodePartialFetch, "page 2")))
	assert.Equal(t, 130, report(perr.Newf(perr.ErrorCodeCanceled, "stop")))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"probe", "scrape", "draw", "run", "serve"} {
		assert.True(t, names[want], want)
	}
}

type onePage struct{}

func (onePage) FetchPage(context.Context, domain.PostRef, string) (domain.Page, error) {
	return domain.Page{Edges: []domain.RawComment{{Username: "amy", Text: "hi", CreatedAt: 1735689600}}, TotalCount: 1}, nil
}

func TestNewAggregatorUsesConfiguredZone(t *testing.T) {
	prev := settings.Location
	t.Cleanup(func() { settings.Location = prev })

	settings.Location = time.FixedZone("UTC-5", -5*60*60)
	got, err := newAggregator(onePage{}).Aggregate(context.Background(), domain.PostRef{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	_, offset := got[0].Timestamp.Zone()
	assert.Equal(t, -5*60*60, offset)
	assert.Equal(t, 19, got[0].Timestamp.Hour())
}
