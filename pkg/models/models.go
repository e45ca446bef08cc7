package models

import (
	"sort"
	"strings"
	"time"
)

// ContentItem is one collected post
type ContentItem struct {
	ID             string    `json:"id"`
	Author         string    `json:"author"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
	URL            string    `json:"url"`
	IsRepost       bool      `json:"is_repost"`
	OriginalAuthor string    `json:"original_author,omitempty"`
	MediaURLs      []string  `json:"media_urls"`
}

// CollectionResult maps a lower-cased account handle to its items in the
// order they were encountered.
type CollectionResult map[string][]ContentItem

// NormalizeAccount returns the canonical key for an account handle
func NormalizeAccount(account string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(account), "@"))
}

// NewCollectionResult returns a result with every account present and
// mapped to an empty, non-nil sequence.
func NewCollectionResult(accounts []string) CollectionResult {
	result := make(CollectionResult, len(accounts))
	for _, account := range accounts {
		result[NormalizeAccount(account)] = []ContentItem{}
	}
	return result
}

// Clone deep-copies the result so callers cannot mutate shared state
func (r CollectionResult) Clone() CollectionResult {
	if r == nil {
		return nil
	}
	out := make(CollectionResult, len(r))
	for account, items := range r {
		cp := make([]ContentItem, len(items))
		for i, item := range items {
			cp[i] = item
			cp[i].MediaURLs = append([]string{}, item.MediaURLs...)
		}
		out[account] = cp
	}
	return out
}

// Accounts returns the account keys in sorted order
func (r CollectionResult) Accounts() []string {
	accounts := make([]string, 0, len(r))
	for account := range r {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)
	return accounts
}

// TotalItems counts items across all accounts
func (r CollectionResult) TotalItems() int {
	total := 0
	for _, items := range r {
		total += len(items)
	}
	return total
}
