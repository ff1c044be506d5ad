package storage

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/qepting91/comment-lottery/internal/domain"
	perr "github.com/qepting91/comment-lottery/internal/platform/errors"
)

// TimestampLayout is how comment times appear in the exported table
const TimestampLayout = "2006-01-02 15:04:05-07:00"

var csvHeader = []string{"id", "account", "text", "timestamp", "award"}

// FileName is the export name for a post on a given day
func FileName(shortcode string, date time.Time) string {
	return "instagram_" + shortcode + "_" + date.Format("20060102") + ".csv"
}

// WriteCSV writes winners as a BOM-prefixed UTF-8 table so spreadsheet apps
// pick the right encoding for non-ASCII comments
func WriteCSV(w io.Writer, winners []domain.Comment) error {
	tw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(tw)

	if err := cw.Write(csvHeader); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "write csv header")
	}
	for _, c := range winners {
		row := []string{
			strconv.Itoa(c.ID),
			c.Account,
			c.Text,
			c.Timestamp.Format(TimestampLayout),
			c.Award,
		}
		if err := cw.Write(row); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "write csv row %d", c.ID)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "flush csv")
	}
	return tw.Close()
}
