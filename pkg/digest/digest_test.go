package digest

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"feedscraper/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleResult() models.CollectionResult {
	return models.CollectionResult{
		"nasa": {
			{ID: "1", Author: "nasa", Text: "older", CreatedAt: base.Add(-3 * time.Hour), URL: "https://x.com/nasa/status/1"},
			{ID: "2", Author: "nasa", Text: "newer", CreatedAt: base.Add(-time.Hour), URL: "https://x.com/nasa/status/2"},
		},
		"esa": {
			{ID: "3", Author: "spacex", Text: "caught", CreatedAt: base.Add(-2 * time.Hour), URL: "https://x.com/spacex/status/3", IsRepost: true, OriginalAuthor: "spacex"},
		},
		"jaxa": {},
	}
}

func TestFlatten(t *testing.T) {
	items := Flatten(sampleResult())
	require.Len(t, items, 3)
	assert.Equal(t, "2", items[0].ID)
	assert.Equal(t, "3", items[1].ID)
	assert.Equal(t, "1", items[2].ID)

	assert.Empty(t, Flatten(models.CollectionResult{}))
}

func TestFormatForSummary(t *testing.T) {
	text := FormatForSummary(sampleResult())

	assert.NotContains(t, text, "@jaxa")
	assert.Contains(t, text, "## @esa (1 posts)")
	assert.Contains(t, text, "- **[2025-03-01 10:00:00 UTC]** (repost of @spacex) caught")
	assert.Contains(t, text, "## @nasa (2 posts)")
	assert.Less(t, strings.Index(text, "newer"), strings.Index(text, "older"))
	assert.Less(t, strings.Index(text, "@esa"), strings.Index(text, "@nasa"))
	assert.Equal(t, 2, strings.Count(text, separator))
}

func TestFormatForSummaryEmpty(t *testing.T) {
	assert.Equal(t, "", FormatForSummary(models.CollectionResult{"nasa": {}}))
}

func TestFormatMessagesRespectsLimit(t *testing.T) {
	result := models.CollectionResult{}
	for i := 0; i < 40; i++ {
		result["nasa"] = append(result["nasa"], models.ContentItem{
			ID:        "id",
			Text:      strings.Repeat("ünïcode ", 10),
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
			URL:       "https://x.com/nasa/status/1",
		})
	}

	messages := FormatMessages(result, 500)
	require.Greater(t, len(messages), 1)
	for _, msg := range messages {
		assert.LessOrEqual(t, utf8.RuneCountInString(msg), 500)
		assert.NotEmpty(t, msg)
	}
	assert.True(t, strings.HasPrefix(messages[0], "**@nasa** (40 posts)"))
}

func TestFormatMessagesSplitsOversizedBlock(t *testing.T) {
	result := models.CollectionResult{
		"nasa": {{ID: "1", Text: strings.Repeat("z", 250), CreatedAt: base, URL: "u"}},
	}

	messages := FormatMessages(result, 100)
	for _, msg := range messages {
		assert.LessOrEqual(t, utf8.RuneCountInString(msg), 100)
	}
	assert.Equal(t, 250, strings.Count(strings.Join(messages, ""), "z"))
}

func TestFormatMessagesDefaultLimit(t *testing.T) {
	messages := FormatMessages(sampleResult(), 0)
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "**@esa** (1 posts)")
}
