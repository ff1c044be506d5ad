package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/qepting91/comment-lottery/internal/domain"
	perr "github.com/qepting91/comment-lottery/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taipei = time.FixedZone("Asia/Taipei", 8*60*60)

func winners() []domain.Comment {
	return []domain.Comment{
		{ID: 1, Account: "amy", Text: "抽獎 @bob, @carl", Timestamp: time.Date(2025, 1, 1, 8, 0, 0, 0, taipei), Award: "頭獎"},
		{ID: 2, Account: "bob", Text: "line one\nline two <3", Timestamp: time.Date(2025, 1, 2, 21, 30, 5, 0, taipei), Award: "二獎"},
	}
}

func TestCommentsRoundTripKeepsZone(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComments(&buf, winners()))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "<3")

	got, err := ReadComments(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[1].Timestamp.Equal(winners()[1].Timestamp))
	_, offset := got[1].Timestamp.Zone()
	assert.Equal(t, 8*60*60, offset)
	assert.Equal(t, "二獎", got[1].Award)
}

func TestReadCommentsBadLine(t *testing.T) {
	_, err := ReadComments(strings.NewReader("{\"id\":1}\n\nnot json\n"))
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation))
	assert.Contains(t, err.Error(), "line 3")
}

func TestSaveLoadComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "comments.ndjson")
	require.NoError(t, SaveComments(path, winners()))

	got, err := LoadComments(path)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, winners()))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}))

	rows, err := csv.NewReader(bytes.NewReader(raw[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "account", "text", "timestamp", "award"}, rows[0])
	assert.Equal(t, []string{"1", "amy", "抽獎 @bob, @carl", "2025-01-01 08:00:00+08:00", "頭獎"}, rows[1])
	assert.Equal(t, "line one\nline two <3", rows[2][2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "\uFEFFid,account,text,timestamp,award\n", buf.String())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "instagram_DSYcV7ljazH_20250301.csv", FileName("DSYcV7ljazH", time.Date(2025, 3, 1, 23, 0, 0, 0, taipei)))
}

type memDestination struct {
	files map[string][]byte
	err   error
}

func (m *memDestination) Write(_ context.Context, name string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[name] = append([]byte(nil), data...)
	return nil
}

func TestExporter(t *testing.T) {
	dir := t.TempDir()
	mem := &memDestination{}
	exp := NewExporter(NewFileDestination(dir), mem)

	date := time.Date(2025, 3, 1, 0, 0, 0, 0, taipei)
	name, err := exp.Export(context.Background(), "abc", date, winners())
	require.NoError(t, err)
	assert.Equal(t, "instagram_abc_20250301.csv", name)

	onDisk, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, onDisk, mem.files[name])
}

func TestExporterStopsOnFailure(t *testing.T) {
	bad := &memDestination{err: errors.New("bucket gone")}
	after := &memDestination{}
	_, err := NewExporter(bad, after).Export(context.Background(), "abc", time.Now(), winners())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket gone")
	assert.Empty(t, after.files)
}

func TestExporterNoDestinations(t *testing.T) {
	_, err := NewExporter().Export(context.Background(), "abc", time.Now(), nil)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeConfig))
}

func TestFileDestinationCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewFileDestination(t.TempDir()).Write(ctx, "x.csv", []byte("x"))
	assert.True(t, perr.IsCode(err, perr.ErrorCodeCanceled))
}

func TestS3DestinationKey(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	d, err := NewS3Destination(context.Background(), "bucket", "lottery/exports", "us-east-1", "http://127.0.0.1:9000")
	require.NoError(t, err)
	assert.Equal(t, "lottery/exports/a.csv", d.Key("a.csv"))
	assert.Equal(t, "s3://bucket/lottery/exports", d.String())
}
