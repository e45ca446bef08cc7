// Package digest turns a CollectionResult into text for downstream
// consumers: a flat item list for summarization and length-bounded
// message chunks for delivery.
package digest

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"feedscraper/pkg/models"
)

// DefaultMessageLimit keeps chunks under common chat message limits
const DefaultMessageLimit = 1900

const (
	timestampLayout = "2006-01-02 15:04:05 UTC"
	separator       = "----------------------------------------"
)

// Flatten returns every item across accounts, newest first. Items with
// equal timestamps keep account order, then feed order.
func Flatten(result models.CollectionResult) []models.ContentItem {
	items := make([]models.ContentItem, 0, result.TotalItems())
	for _, account := range result.Accounts() {
		items = append(items, result[account]...)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

// newestFirst returns a sorted copy of items
func newestFirst(items []models.ContentItem) []models.ContentItem {
	sorted := append([]models.ContentItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}

func label(item models.ContentItem) string {
	if item.IsRepost && item.OriginalAuthor != "" {
		return fmt.Sprintf("(repost of @%s) ", item.OriginalAuthor)
	}
	return ""
}

// FormatForSummary renders one section per account with items newest
// first. Accounts without items are left out.
func FormatForSummary(result models.CollectionResult) string {
	var lines []string
	for _, account := range result.Accounts() {
		items := result[account]
		if len(items) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("## @%s (%d posts)", account, len(items)))
		for _, item := range newestFirst(items) {
			lines = append(lines,
				fmt.Sprintf("- **[%s]** %s%s", item.CreatedAt.UTC().Format(timestampLayout), label(item), item.Text),
				fmt.Sprintf("  %s", item.URL),
				"",
			)
		}
		lines = append(lines, separator, "")
	}
	return strings.Join(lines, "\n")
}

// FormatMessages renders the result as a sequence of messages, each at
// most limit characters long. Blocks are never split unless a single
// block is longer than limit on its own.
func FormatMessages(result models.CollectionResult, limit int) []string {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}

	var blocks []string
	for _, account := range result.Accounts() {
		items := result[account]
		if len(items) == 0 {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("**@%s** (%d posts)\n", account, len(items)))
		for _, item := range newestFirst(items) {
			blocks = append(blocks, fmt.Sprintf("• [%s] %s%s\n  %s\n",
				item.CreatedAt.UTC().Format(timestampLayout), label(item), item.Text, item.URL))
		}
		blocks = append(blocks, separator+"\n")
	}

	var messages []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			messages = append(messages, strings.TrimRight(current.String(), "\n"))
			current.Reset()
		}
	}

	for _, block := range blocks {
		for _, piece := range splitRunes(block, limit) {
			if utf8.RuneCountInString(current.String())+utf8.RuneCountInString(piece) > limit {
				flush()
			}
			current.WriteString(piece)
		}
	}
	flush()
	return messages
}

// splitRunes cuts s into pieces of at most n runes
func splitRunes(s string, n int) []string {
	if utf8.RuneCountInString(s) <= n {
		return []string{s}
	}
	var pieces []string
	runes := []rune(s)
	for len(runes) > n {
		pieces = append(pieces, string(runes[:n]))
		runes = runes[n:]
	}
	if len(runes) > 0 {
		pieces = append(pieces, string(runes))
	}
	return pieces
}
