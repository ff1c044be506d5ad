package collector

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/qepting91/comment-lottery/internal/domain"
	perr "github.com/qepting91/comment-lottery/internal/platform/errors"
)

// FixtureClient replays recorded GraphQL responses (mock_response_*.json),
// one file per call, wrapping around after the last one. The rotation index
// belongs to the client, so two clients never disturb each other.
type FixtureClient struct {
	pages [][]byte

	mu   sync.Mutex
	next int
}

// NewFixtureClient loads every mock_response_*.json under dir in name order
func NewFixtureClient(dir string) (*FixtureClient, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "mock_response_*.json"))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeConfig, "fixture glob")
	}
	if len(paths) == 0 {
		return nil, perr.Configf("no mock_response_*.json files in %s", dir)
	}
	sort.Strings(paths)

	fc := &FixtureClient{}
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeConfig, "read fixture %s", p)
		}
		fc.pages = append(fc.pages, b)
	}
	return fc, nil
}

// FetchPage implements domain.Fetcher; the cursor is ignored, as with a recording
func (fc *FixtureClient) FetchPage(ctx context.Context, _ domain.PostRef, _ string) (domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return domain.Page{}, err
	}
	fc.mu.Lock()
	body := fc.pages[fc.next]
	fc.next = (fc.next + 1) % len(fc.pages)
	fc.mu.Unlock()

	return parseCommentsPage(body)
}
