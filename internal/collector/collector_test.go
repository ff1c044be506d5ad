package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qepting91/comment-lottery/internal/domain"
	perr "github.com/qepting91/comment-lottery/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageBody = `{
	"data": {
		"shortcode_media": {
			"edge_media_to_comment": {
				"count": 3,
				"page_info": {"end_cursor": "QVFE", "has_next_page": true},
				"edges": [
					{"node": {"owner": {"username": "amy"}, "text": "抽我 @bob", "created_at": 1735689600}},
					{"node": {"owner": {"username": "bob"}, "text": "好想要", "created_at": 1735689660}}
				]
			}
		}
	},
	"status": "ok"
}`

const lastPageBody = `{
	"data": {"shortcode_media": {"edge_media_to_comment": {
		"count": 3,
		"page_info": {"end_cursor": null, "has_next_page": false},
		"edges": [{"node": {"owner": {"username": "carl"}, "text": "me", "created_at": 1735689720}}]
	}}},
	"status": "ok"
}`

func TestParseCommentsPage(t *testing.T) {
	page, err := parseCommentsPage([]byte(pageBody))
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	assert.True(t, page.HasMore)
	assert.Equal(t, "QVFE", page.NextCursor)
	require.Len(t, page.Edges, 2)
	assert.Equal(t, domain.RawComment{Username: "amy", Text: "抽我 @bob", CreatedAt: 1735689600}, page.Edges[0])

	last, err := parseCommentsPage([]byte(lastPageBody))
	require.NoError(t, err)
	assert.False(t, last.HasMore)
	assert.Empty(t, last.NextCursor)
}

func TestParseCommentsPageMalformed(t *testing.T) {
	cases := map[string]string{
		"invalid json":        `{invalid`,
		"missing data":        `{"status":"ok"}`,
		"missing media":       `{"data":{}}`,
		"missing edge":        `{"data":{"shortcode_media":{}}}`,
		"fail status":         `{"message":"Please wait a few minutes","status":"fail"}`,
		"next without cursor": `{"data":{"shortcode_media":{"edge_media_to_comment":{"count":1,"page_info":{"has_next_page":true},"edges":[]}}}}`,
	}
	for name, body := range cases {
		_, err := parseCommentsPage([]byte(body))
		require.Error(t, err, name)
		assert.True(t, perr.IsCode(err, perr.ErrorCodeFetch), name)
	}
}

func TestCommentsURL(t *testing.T) {
	u, err := commentsURL(graphQLURL, "DSYcV7ljazH", "QVFE", 50)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, u, nil)
	require.NoError(t, err)
	q := req.URL.Query()
	assert.Equal(t, commentsQueryHash, q.Get("query_hash"))

	var vars map[string]any
	require.NoError(t, json.Unmarshal([]byte(q.Get("variables")), &vars))
	assert.Equal(t, "DSYcV7ljazH", vars["shortcode"])
	assert.Equal(t, "QVFE", vars["after"])
	assert.EqualValues(t, 50, vars["first"])
}

func newTestPublicClient(t *testing.T, h http.HandlerFunc) *PublicClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	pc, err := NewPublicClient(Options{Endpoint: srv.URL + "/graphql/query/", PageSize: 2})
	require.NoError(t, err)
	return pc
}

func TestPublicClientFetchPage(t *testing.T) {
	var gotCookie, gotAfter string
	pc := newTestPublicClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		var vars map[string]any
		_ = json.Unmarshal([]byte(r.URL.Query().Get("variables")), &vars)
		gotAfter, _ = vars["after"].(string)
		_, _ = w.Write([]byte(pageBody))
	})

	post := domain.PostRef{Shortcode: "abc", Headers: map[string]string{"Cookie": "sessionid=1"}}
	page, err := pc.FetchPage(context.Background(), post, "")
	require.NoError(t, err)
	assert.Len(t, page.Edges, 2)
	assert.Equal(t, "sessionid=1", gotCookie)
	assert.Empty(t, gotAfter)
}

func TestPublicClientNon200IsFetchError(t *testing.T) {
	pc := newTestPublicClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})
	_, err := pc.FetchPage(context.Background(), domain.PostRef{Shortcode: "abc"}, "")
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeFetch))
	assert.Contains(t, err.Error(), "429")
}

func TestPublicClientMalformedBodyIsFetchError(t *testing.T) {
	pc := newTestPublicClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>login</html>`))
	})
	_, err := pc.FetchPage(context.Background(), domain.PostRef{Shortcode: "abc"}, "")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeFetch))
}

func TestPublicClientTransportErrorIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	pc, err := NewPublicClient(Options{Endpoint: endpoint})
	require.NoError(t, err)
	_, err = pc.FetchPage(context.Background(), domain.PostRef{Shortcode: "abc"}, "")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeFetch))
}

func TestPublicClientCanceled(t *testing.T) {
	pc := newTestPublicClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pageBody))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pc.FetchPage(ctx, domain.PostRef{Shortcode: "abc"}, "QVFE")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeCanceled))
}

func TestPacerJitterRespectsContext(t *testing.T) {
	p := newPacer(0, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.NoError(t, p.Wait(ctx, false))
	assert.ErrorIs(t, p.Wait(ctx, true), context.DeadlineExceeded)
}

func TestMockClientPaging(t *testing.T) {
	mc := NewMockClient(120, 50, 1)
	ctx := context.Background()

	var cursor string
	var got []domain.RawComment
	for {
		page, err := mc.FetchPage(ctx, domain.PostRef{}, cursor)
		require.NoError(t, err)
		assert.Equal(t, 120, page.TotalCount)
		got = append(got, page.Edges...)
		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}
	assert.Len(t, got, 120)
	assert.Equal(t, 3, mc.Calls())
}

func TestMockClientDeterministic(t *testing.T) {
	a, _ := NewMockClient(30, 10, 9).FetchPage(context.Background(), domain.PostRef{}, "")
	b, _ := NewMockClient(30, 10, 9).FetchPage(context.Background(), domain.PostRef{}, "")
	assert.Equal(t, a, b)
}

func TestMockClientBadCursor(t *testing.T) {
	_, err := NewMockClient(10, 5, 1).FetchPage(context.Background(), domain.PostRef{}, "nope")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeFetch))
}

func TestFixtureClientRotationIsPerInstance(t *testing.T) {
	dir := t.TempDir()
	for i, body := range []string{pageBody, lastPageBody} {
		name := filepath.Join(dir, fmt.Sprintf("mock_response_%d.json", i))
		require.NoError(t, os.WriteFile(name, []byte(body), 0o600))
	}

	first, err := NewFixtureClient(dir)
	require.NoError(t, err)
	second, err := NewFixtureClient(dir)
	require.NoError(t, err)
	ctx := context.Background()

	p1, err := first.FetchPage(ctx, domain.PostRef{}, "")
	require.NoError(t, err)
	assert.True(t, p1.HasMore)
	p2, err := first.FetchPage(ctx, domain.PostRef{}, p1.NextCursor)
	require.NoError(t, err)
	assert.False(t, p2.HasMore)

	// second client starts from the first recording regardless of the first client's progress
	q1, err := second.FetchPage(ctx, domain.PostRef{}, "")
	require.NoError(t, err)
	assert.True(t, q1.HasMore)

	p3, err := first.FetchPage(ctx, domain.PostRef{}, "")
	require.NoError(t, err)
	assert.True(t, p3.HasMore, "rotation wraps around")
}

func TestFixtureClientEmptyDir(t *testing.T) {
	_, err := NewFixtureClient(t.TempDir())
	assert.True(t, perr.IsCode(err, perr.ErrorCodeConfig))
}

func TestNewCollectorModes(t *testing.T) {
	f, err := NewCollector(Options{Mode: ModeMock, MockComments: 5})
	require.NoError(t, err)
	assert.IsType(t, &MockClient{}, f)

	f, err = NewCollector(Options{})
	require.NoError(t, err)
	assert.IsType(t, &PublicClient{}, f)

	_, err = NewCollector(Options{Mode: "carrier-pigeon"})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeConfig))
}
