// Package storage persists comment records between stages and exports winners
package storage

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/qepting91/comment-lottery/internal/domain"
	perr "github.com/qepting91/comment-lottery/internal/platform/errors"
)

// maxLine bounds a single NDJSON record; comments are capped at a few KB upstream
const maxLine = 1 << 20

// WriteComments encodes records as NDJSON, one comment per line
func WriteComments(w io.Writer, comments []domain.Comment) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, c := range comments {
		if err := enc.Encode(c); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "encode comment %d", c.ID)
		}
	}
	return bw.Flush()
}

// ReadComments decodes an NDJSON stream written by WriteComments; blank lines are skipped
func ReadComments(r io.Reader) ([]domain.Comment, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	var out []domain.Comment
	line := 0
	for sc.Scan() {
		line++
		b := sc.Bytes()
		if len(b) == 0 {
			continue
		}
		var c domain.Comment
		if err := json.Unmarshal(b, &c); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "comments line %d", line)
		}
		out = append(out, c)
	}
	if err := sc.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeValidation, "read comments")
	}
	return out, nil
}

// SaveComments writes comments to path, replacing it atomically
func SaveComments(path string, comments []domain.Comment) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return WriteComments(w, comments)
	})
}

// LoadComments reads a file written by SaveComments
func LoadComments(path string) ([]domain.Comment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "open comments %s", path)
	}
	defer f.Close()
	return ReadComments(f)
}

func writeFileAtomic(path string, fill func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "create temp for %s", path)
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "rename into %s", path)
	}
	return nil
}
