// Package ingest reads the user-supplied input files: the post bundle exported
// by the browser extension and the optional rewards table
package ingest

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/qepting91/comment-lottery/internal/domain"
	perr "github.com/qepting91/comment-lottery/internal/platform/errors"
	"github.com/qepting91/comment-lottery/internal/platform/validate"
)

// forwardedHeaders are the captured request headers replayed against the
// graphql endpoint; everything else in the bundle is dropped
var forwardedHeaders = []string{
	"Accept",
	"Accept-Language",
	"Cookie",
	"Sec-Fetch-Dest",
	"Sec-Fetch-Mode",
	"Sec-Fetch-Site",
	"User-Agent",
	"X-CSRFToken",
	"sec-ch-ua",
	"sec-ch-ua-mobile",
	"sec-ch-ua-platform",
}

type postBundle struct {
	Shortcode string            `json:"shortcode"`
	Headers   map[string]string `json:"request_headers_store"`
}

// LoadPostBundle reads the extension's JSON export into a PostRef
func LoadPostBundle(path string) (domain.PostRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.PostRef{}, perr.Wrapf(err, perr.ErrorCodeValidation, "open post bundle %s", path)
	}
	defer f.Close()
	return ReadPostBundle(f)
}

// ReadPostBundle is LoadPostBundle over an arbitrary reader
func ReadPostBundle(r io.Reader) (domain.PostRef, error) {
	var b postBundle
	if err := json.NewDecoder(stripBOM(r)).Decode(&b); err != nil {
		return domain.PostRef{}, perr.Wrap(err, perr.ErrorCodeValidation, "decode post bundle")
	}

	b.Shortcode = strings.TrimSpace(b.Shortcode)
	if b.Shortcode == "" {
		return domain.PostRef{}, perr.WithField(perr.Validationf("post bundle: shortcode is required"), "shortcode")
	}

	// the extension does not normalize header case
	byLower := make(map[string]string, len(b.Headers))
	for k, v := range b.Headers {
		byLower[strings.ToLower(k)] = v
	}
	headers := make(map[string]string, len(forwardedHeaders))
	for _, name := range forwardedHeaders {
		if v, ok := byLower[strings.ToLower(name)]; ok && v != "" {
			headers[name] = v
		}
	}
	if headers["Cookie"] == "" {
		return domain.PostRef{}, perr.WithField(perr.Validationf("post bundle: request_headers_store.Cookie is required"), "request_headers_store.Cookie")
	}

	return domain.PostRef{Shortcode: b.Shortcode, Headers: headers}, nil
}

// LoadRewards reads a "name,count" CSV (header row first) into a RewardSpec
func LoadRewards(path string) (domain.RewardSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "open rewards %s", path)
	}
	defer f.Close()
	return ReadRewards(f)
}

// ReadRewards is LoadRewards over an arbitrary reader. Blank rows are skipped;
// a count that is not a positive integer fails the whole table.
func ReadRewards(r io.Reader) (domain.RewardSpec, error) {
	cr := csv.NewReader(stripBOM(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var spec domain.RewardSpec
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "rewards line %d", line)
		}
		if line == 1 {
			continue
		}
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}

		field := fmt.Sprintf("rewards[%d]", len(spec))
		if len(rec) < 2 {
			return nil, perr.WithField(perr.Validationf("rewards line %d: expected name,count", line), field)
		}
		count, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			return nil, perr.WithField(perr.Validationf("rewards line %d: count %q must be numeric", line, rec[1]), field+".count")
		}

		tier := domain.Tier{Name: strings.TrimSpace(rec[0]), Count: count}
		if err := validate.Struct(tier, field); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "rewards line %d", line)
		}
		spec = append(spec, tier)
	}

	if len(spec) == 0 {
		return nil, perr.WithField(perr.Validationf("rewards: at least one tier is required"), "rewards")
	}
	return spec, nil
}

func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	rn, _, err := br.ReadRune()
	if err != nil {
		return br
	}
	if rn != '\uFEFF' {
		_ = br.UnreadRune()
	}
	return br
}
