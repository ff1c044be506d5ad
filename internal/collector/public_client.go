package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/qepting91/comment-lottery/internal/domain"
	perr "github.com/qepting91/comment-lottery/internal/platform/errors"
	"github.com/qepting91/comment-lottery/internal/platform/logger"
)

// maxPageBytes caps a single response body; a 50-comment page is a few hundred KB
const maxPageBytes = 8 << 20

// PublicClient fetches comment pages from the web GraphQL endpoint with net/http,
// replaying the browser headers carried by the PostRef
type PublicClient struct {
	httpClient *http.Client
	pacer      *pacer
	endpoint   string
	pageSize   int
	log        *logger.Logger
}

// NewPublicClient builds a client from opts; zero values fall back to defaults
func NewPublicClient(opts Options) (*PublicClient, error) {
	opts.defaults()
	return &PublicClient{
		httpClient: &http.Client{Timeout: opts.HTTPTimeout},
		pacer:      newPacer(opts.MinInterval, opts.MaxJitter),
		endpoint:   opts.Endpoint,
		pageSize:   opts.PageSize,
		log:        logger.Named("collector"),
	}, nil
}

// FetchPage implements domain.Fetcher
func (pc *PublicClient) FetchPage(ctx context.Context, post domain.PostRef, cursor string) (domain.Page, error) {
	if err := pc.pacer.Wait(ctx, cursor != ""); err != nil {
		return domain.Page{}, perr.FromContext(err)
	}

	u, err := commentsURL(pc.endpoint, post.Shortcode, cursor, pc.pageSize)
	if err != nil {
		return domain.Page{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Page{}, perr.Wrap(err, perr.ErrorCodeFetch, "build comments request")
	}
	for k, v := range post.Headers {
		req.Header.Set(k, v)
	}

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Page{}, perr.FromContext(ctx.Err())
		}
		return domain.Page{}, perr.Wrap(err, perr.ErrorCodeFetch, "comments request")
	}
	defer resp.Body.Close()

	pc.log.Info().Str("shortcode", post.Shortcode).Str("after", cursor).Int("status", resp.StatusCode).Msg("fetched comments page")

	if resp.StatusCode != http.StatusOK {
		return domain.Page{}, perr.Fetchf("instagram graphql status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return domain.Page{}, perr.Wrap(err, perr.ErrorCodeFetch, "read comments page")
	}
	page, err := parseCommentsPage(body)
	if err != nil {
		return domain.Page{}, fmt.Errorf("shortcode %s after %q: %w", post.Shortcode, cursor, err)
	}
	return page, nil
}
