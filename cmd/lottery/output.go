package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/qepting91/comment-lottery/internal/domain"
	"github.com/qepting91/comment-lottery/internal/storage"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func printResult(res *domain.Result, export string) {
	fmt.Printf("Run %s  seed=%d  candidates=%d\n\n", res.RunID, res.Seed, res.Candidates)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAWARD\tACCOUNT\tTIME\tCOMMENT")
	for _, w := range res.Winners {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", w.ID, w.Award, w.Account, w.Timestamp.Format(storage.TimestampLayout), oneLine(w.Text, 60))
	}
	tw.Flush()

	fmt.Printf("\nExported %s\n", export)
}

// oneLine flattens newlines and truncates to limit runes
func oneLine(s string, limit int) string {
	r := []rune(s)
	for i, c := range r {
		if c == '\n' || c == '\r' || c == '\t' {
			r[i] = ' '
		}
	}
	if len(r) > limit {
		return string(r[:limit-1]) + "…"
	}
	return string(r)
}
