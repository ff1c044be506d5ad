package filter

import (
	"testing"
	"time"

	"github.com/qepting91/comment-lottery/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taipei = time.FixedZone("Asia/Taipei", 8*60*60)

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 1, hour, minute, 0, 0, taipei)
}

func fixture() []domain.Comment {
	return []domain.Comment{
		{ID: 1, Account: "amy", Text: "抽我 @bob @carl", Timestamp: at(10, 0)},
		{ID: 2, Account: "bob", Text: "抽我 @amy", Timestamp: at(11, 0)},
		{ID: 3, Account: "amy", Text: "再抽 @dan @eve", Timestamp: at(12, 0)},
		{ID: 4, Account: "carl", Text: "hello @x @y", Timestamp: at(23, 59)},
		{ID: 5, Account: "dan", Text: "抽我 @p.q @r_s @t", Timestamp: at(23, 59).Add(time.Second)},
	}
}

func ids(cs []domain.Comment) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestCountTags(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"hi @a.b @c there", 2},
		{"email@domain.com", 0},
		{"@start and end@ @end", 2},
		{"@", 0},
		{"@@double", 0},
		{"@bad! @ok", 1},
		{"@tab\t@nl\n@cr", 3},
		{"@中文", 0},
		{"", 0},
		{"no tags at all", 0},
		{"(@paren)", 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CountTags(c.text), "CountTags(%q)", c.text)
	}
}

func TestByKeywordIsLiteralAndCaseSensitive(t *testing.T) {
	recs := []domain.Comment{
		{ID: 1, Text: "Lucky draw"},
		{ID: 2, Text: "lucky draw"},
		{ID: 3, Text: "a.b"},
		{ID: 4, Text: "axb"},
	}
	assert.Equal(t, []int{1}, ids(ByKeyword(recs, "Lucky")))
	assert.Equal(t, []int{3}, ids(ByKeyword(recs, "a.b")))
}

func TestByDeadlineInclusive(t *testing.T) {
	got := ByDeadline(fixture(), at(23, 59))
	assert.Equal(t, []int{1, 2, 3, 4}, ids(got))
}

func TestByDeadlineComparesInstants(t *testing.T) {
	utcDeadline := at(11, 0).UTC()
	got := ByDeadline(fixture(), utcDeadline)
	assert.Equal(t, []int{1, 2}, ids(got))
}

func TestFirstPerAccountKeepsEarliest(t *testing.T) {
	got := FirstPerAccount(fixture())
	assert.Equal(t, []int{1, 2, 4, 5}, ids(got))
}

func TestApplyOrderAndDedupAfterPredicates(t *testing.T) {
	deadline := at(23, 59)
	p := domain.Params{Keyword: "抽", MinTags: 2, Deadline: &deadline}

	got := Apply(fixture(), p)
	// amy's first comment survives; her second is dropped by the dedup pass
	assert.Equal(t, []int{1}, ids(got))

	p.AllowMultiComment = true
	got = Apply(fixture(), p)
	assert.Equal(t, []int{1, 3}, ids(got))
}

func TestApplyDedupRunsLast(t *testing.T) {
	// the first amy comment fails the keyword, so the later one is the one kept
	recs := []domain.Comment{
		{ID: 1, Account: "amy", Text: "nope"},
		{ID: 2, Account: "amy", Text: "抽"},
	}
	got := Apply(recs, domain.Params{Keyword: "抽"})
	assert.Equal(t, []int{2}, ids(got))
}

func TestApplyNoPredicatesCopies(t *testing.T) {
	recs := fixture()
	got := Apply(recs, domain.Params{AllowMultiComment: true})
	require.Len(t, got, len(recs))
	got[0].Account = "mutated"
	assert.Equal(t, "amy", recs[0].Account)
}

func TestApplyEmptyInput(t *testing.T) {
	assert.Empty(t, Apply(nil, domain.Params{Keyword: "x", MinTags: 1}))
}
