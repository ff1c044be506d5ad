package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/qepting91/comment-lottery/internal/domain"
	perr "github.com/qepting91/comment-lottery/internal/platform/errors"
	"github.com/qepting91/comment-lottery/internal/platform/logger"
)

// Exporter renders the winners table once and hands it to every destination
type Exporter struct {
	dests []Destination
	log   *logger.Logger
}

// NewExporter returns an exporter writing to dests in order
func NewExporter(dests ...Destination) *Exporter {
	return &Exporter{dests: dests, log: logger.Named("storage")}
}

// Export writes the winners CSV for shortcode to every destination and
// returns the file name used. Destinations after a failed one are skipped.
func (e *Exporter) Export(ctx context.Context, shortcode string, date time.Time, winners []domain.Comment) (string, error) {
	if len(e.dests) == 0 {
		return "", perr.Configf("export: no destinations configured")
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, winners); err != nil {
		return "", err
	}
	name := FileName(shortcode, date)

	for _, d := range e.dests {
		if err := d.Write(ctx, name, buf.Bytes()); err != nil {
			return name, perr.WithOp(perr.Wrapf(err, perr.CodeOf(err), "export to %s", describe(d)), "export")
		}
		e.log.Info().Str("file", name).Str("destination", describe(d)).Int("winners", len(winners)).Msg("exported winners")
	}
	return name, nil
}

func describe(d Destination) string {
	if s, ok := d.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", d)
}
