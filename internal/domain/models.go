package domain

import (
	"context"
	"time"
)

// PostRef identifies the post to scrape and carries the caller-owned
// request headers captured from a logged-in browser session
type PostRef struct {
	Shortcode string
	Headers   map[string]string
}

// RawComment is one comment edge exactly as the upstream API returned it
type RawComment struct {
	Username  string
	Text      string
	CreatedAt int64 // unix seconds
}

// Page is one page of comment edges plus pagination state
type Page struct {
	Edges      []RawComment
	NextCursor string
	HasMore    bool
	TotalCount int
}

// Comment is one scraped comment record
type Comment struct {
	ID        int       `json:"id"`
	Account   string    `json:"account"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Award     string    `json:"award,omitempty"`
}

// Fetcher retrieves a single page of comments for a post.
// An empty cursor requests the first page.
type Fetcher interface {
	FetchPage(ctx context.Context, post PostRef, cursor string) (Page, error)
}

// Renumber assigns dense 1-based ids in slice order, in place
func Renumber(comments []Comment) {
	for i := range comments {
		comments[i].ID = i + 1
	}
}
