package collector

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qepting91/comment-lottery/internal/domain"
	perr "github.com/qepting91/comment-lottery/internal/platform/errors"
)

const (
	graphQLURL = "https://www.instagram.com/graphql/query/"
	// persisted query for shortcode_media.edge_media_to_comment
	commentsQueryHash = "33ba35852cb50da46f5b5e889df7d159"

	// DefaultPageSize is the number of comments requested per page
	DefaultPageSize = 50
)

// commentsResponse mirrors the part of the GraphQL payload the lottery reads.
// Pointers distinguish a missing object from an empty one.
type commentsResponse struct {
	Data *struct {
		ShortcodeMedia *struct {
			EdgeMediaToComment *struct {
				Count    int `json:"count"`
				PageInfo struct {
					EndCursor   *string `json:"end_cursor"`
					HasNextPage bool    `json:"has_next_page"`
				} `json:"page_info"`
				Edges []struct {
					Node struct {
						Owner struct {
							Username string `json:"username"`
						} `json:"owner"`
						Text      string `json:"text"`
						CreatedAt int64  `json:"created_at"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"edge_media_to_comment"`
		} `json:"shortcode_media"`
	} `json:"data"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// commentsURL builds the GET url for one page
func commentsURL(endpoint, shortcode, after string, first int) (string, error) {
	vars, err := json.Marshal(map[string]any{
		"shortcode": shortcode,
		"after":     after,
		"first":     first,
	})
	if err != nil {
		return "", fmt.Errorf("encode variables: %w", err)
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeConfig, "invalid graphql endpoint")
	}
	q := u.Query()
	q.Set("query_hash", commentsQueryHash)
	q.Set("variables", string(vars))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// parseCommentsPage decodes one page. Anything that is not the expected shape is a fetch error.
func parseCommentsPage(body []byte) (domain.Page, error) {
	var raw commentsResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.Page{}, perr.Wrap(err, perr.ErrorCodeFetch, "decode comments page")
	}
	if raw.Data == nil || raw.Data.ShortcodeMedia == nil || raw.Data.ShortcodeMedia.EdgeMediaToComment == nil {
		if raw.Message != "" {
			return domain.Page{}, perr.Fetchf("unexpected comments payload (status=%q): %s", raw.Status, raw.Message)
		}
		return domain.Page{}, perr.Fetchf("unexpected comments payload: missing data.shortcode_media.edge_media_to_comment")
	}

	edge := raw.Data.ShortcodeMedia.EdgeMediaToComment
	page := domain.Page{
		Edges:      make([]domain.RawComment, 0, len(edge.Edges)),
		HasMore:    edge.PageInfo.HasNextPage,
		TotalCount: edge.Count,
	}
	if edge.PageInfo.EndCursor != nil {
		page.NextCursor = *edge.PageInfo.EndCursor
	}
	if page.HasMore && page.NextCursor == "" {
		return domain.Page{}, perr.Fetchf("has_next_page without end_cursor")
	}
	for _, e := range edge.Edges {
		page.Edges = append(page.Edges, domain.RawComment{
			Username:  e.Node.Owner.Username,
			Text:      e.Node.Text,
			CreatedAt: e.Node.CreatedAt,
		})
	}
	return page, nil
}

// encodeOffset and decodeOffset implement the cursors of the offline collectors
func encodeOffset(n int) string { return strconv.Itoa(n) }

func decodeOffset(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(cursor)
	if err != nil || n < 0 {
		return 0, perr.Fetchf("invalid cursor %q", cursor)
	}
	return n, nil
}
