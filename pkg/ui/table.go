package ui

import (
	"fmt"
	"io"
	"strings"

	"feedscraper/pkg/models"

	"github.com/mattn/go-runewidth"
)

const (
	accountColumnMax = 20
	previewWidth     = 48
)

// AccountRow is one line of the run summary table
type AccountRow struct {
	Account string
	Items   int
	Reposts int
	Latest  string
}

// SummarizeResult builds one row per account in result order. Latest is
// the text of the account's newest item, on one line.
func SummarizeResult(result models.CollectionResult) []AccountRow {
	rows := make([]AccountRow, 0, len(result))
	for _, account := range result.Accounts() {
		items := result[account]
		row := AccountRow{Account: account, Items: len(items)}
		var newest *models.ContentItem
		for i := range items {
			if items[i].IsRepost {
				row.Reposts++
			}
			if newest == nil || items[i].CreatedAt.After(newest.CreatedAt) {
				newest = &items[i]
			}
		}
		if newest != nil {
			row.Latest = strings.Join(strings.Fields(newest.Text), " ")
		}
		rows = append(rows, row)
	}
	return rows
}

// Truncate shortens s to at most width terminal cells, marking the cut
// with an ellipsis. Wide characters count as two cells.
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// WriteAccountTable renders rows as an aligned table
func WriteAccountTable(w io.Writer, rows []AccountRow) {
	accountWidth := len("ACCOUNT")
	for _, row := range rows {
		if cw := runewidth.StringWidth("@" + row.Account); cw > accountWidth {
			accountWidth = cw
		}
	}
	if accountWidth > accountColumnMax {
		accountWidth = accountColumnMax
	}

	fmt.Fprintf(w, "%s  %5s  %7s  %s\n", runewidth.FillRight("ACCOUNT", accountWidth), "ITEMS", "REPOSTS", "LATEST")
	for _, row := range rows {
		account := runewidth.FillRight(Truncate("@"+row.Account, accountWidth), accountWidth)
		latest := Dim("-")
		if row.Latest != "" {
			latest = Truncate(row.Latest, previewWidth)
		}
		fmt.Fprintf(w, "%s  %5d  %7d  %s\n", account, row.Items, row.Reposts, latest)
	}
}

// PrintAccountTable prints the run summary table for result
func PrintAccountTable(result models.CollectionResult) {
	if quiet {
		return
	}
	WriteAccountTable(out, SummarizeResult(result))
}
