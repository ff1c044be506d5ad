package collector

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	stealth "github.com/anatolykoptev/go-stealth"

	"github.com/qepting91/comment-lottery/internal/domain"
	perr "github.com/qepting91/comment-lottery/internal/platform/errors"
	"github.com/qepting91/comment-lottery/internal/platform/logger"
)

// igHeaderOrder matches the order a Chromium browser sends on the graphql call
var igHeaderOrder = []string{
	"accept",
	"accept-language",
	"cookie",
	"sec-ch-ua",
	"sec-ch-ua-mobile",
	"sec-ch-ua-platform",
	"sec-fetch-dest",
	"sec-fetch-mode",
	"sec-fetch-site",
	"user-agent",
	"x-csrftoken",
}

// StealthClient fetches the same pages as PublicClient through a
// browser-fingerprinted TLS client
type StealthClient struct {
	client   *stealth.BrowserClient
	pacer    *pacer
	endpoint string
	pageSize int
	log      *logger.Logger
}

// NewStealthClient builds a stealth client, optionally behind opts.Proxy
func NewStealthClient(opts Options) (*StealthClient, error) {
	opts.defaults()
	copts := []stealth.ClientOption{
		stealth.WithHeaderOrder(igHeaderOrder),
	}
	if opts.Proxy != "" {
		copts = append(copts, stealth.WithProxy(opts.Proxy))
	}
	bc, err := stealth.NewClient(copts...)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeConfig, "stealth client")
	}
	return &StealthClient{
		client:   bc,
		// the library's own jitter provides the randomized spacing
		pacer:    newPacer(opts.MinInterval, 0),
		endpoint: opts.Endpoint,
		pageSize: opts.PageSize,
		log:      logger.Named("collector"),
	}, nil
}

// FetchPage implements domain.Fetcher
func (sc *StealthClient) FetchPage(ctx context.Context, post domain.PostRef, cursor string) (domain.Page, error) {
	if cursor != "" {
		if err := stealth.DefaultJitter.Sleep(ctx); err != nil {
			return domain.Page{}, perr.FromContext(err)
		}
	}
	if err := sc.pacer.Wait(ctx, false); err != nil {
		return domain.Page{}, perr.FromContext(err)
	}

	u, err := commentsURL(sc.endpoint, post.Shortcode, cursor, sc.pageSize)
	if err != nil {
		return domain.Page{}, err
	}
	headers := make(map[string]string, len(post.Headers))
	for k, v := range post.Headers {
		headers[strings.ToLower(k)] = v
	}

	body, _, status, err := sc.client.DoWithHeaderOrder(http.MethodGet, u, headers, nil, igHeaderOrder)
	if err != nil {
		return domain.Page{}, perr.Wrap(err, perr.ErrorCodeFetch, "comments request")
	}
	sc.log.Info().Str("shortcode", post.Shortcode).Str("after", cursor).Int("status", status).Msg("fetched comments page")

	if status != http.StatusOK {
		return domain.Page{}, perr.Fetchf("instagram graphql status: %d", status)
	}
	page, err := parseCommentsPage(body)
	if err != nil {
		return domain.Page{}, fmt.Errorf("shortcode %s after %q: %w", post.Shortcode, cursor, err)
	}
	return page, nil
}
