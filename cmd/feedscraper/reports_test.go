package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"feedscraper/pkg/config"
	"feedscraper/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportResult() models.CollectionResult {
	return models.CollectionResult{
		"nasa": {{
			ID:        "1",
			Author:    "nasa",
			Text:      "Liftoff",
			CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
			URL:       "https://x.com/nasa/status/1",
			MediaURLs: []string{},
		}},
		"esa": {},
	}
}

func TestWriteReportsDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.Directory = filepath.Join(t.TempDir(), "reports")
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	written, err := writeReports(cfg, reportResult(), 24, at, reportTargets{})
	require.NoError(t, err)
	require.Len(t, written, 2)
	assert.Equal(t, "feed_24h_20250301T120000Z.json", filepath.Base(written[0]))
	assert.Equal(t, "feed_24h_20250301T120000Z.md", filepath.Base(written[1]))
	for _, path := range written {
		assert.FileExists(t, path)
	}
}

func TestWriteReportsExplicitTargets(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Output.Directory = filepath.Join(dir, "unused")
	cfg.Output.JSON = false
	cfg.Output.Markdown = false

	targets := reportTargets{
		JSON:         filepath.Join(dir, "out", "feed.json"),
		SummaryInput: filepath.Join(dir, "digest", "summary.txt"),
	}
	written, err := writeReports(cfg, reportResult(), 6, time.Now(), targets)
	require.NoError(t, err)
	assert.Equal(t, []string{targets.JSON, targets.SummaryInput}, written)

	summary, err := os.ReadFile(targets.SummaryInput)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(summary), "## @nasa (1 posts)"))
	assert.NotContains(t, string(summary), "@esa")

	_, err = os.Stat(cfg.Output.Directory)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteReportsNothingRequested(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.JSON = false
	cfg.Output.Markdown = false

	written, err := writeReports(cfg, reportResult(), 24, time.Now(), reportTargets{})
	require.NoError(t, err)
	assert.Empty(t, written)
}

func TestCollectFlags(t *testing.T) {
	windowHours, concurrency, outputDir, sessionFile, logLevel = 6, 2, "out", "", ""
	t.Cleanup(func() { windowHours, concurrency, outputDir = 0, 0, "" })

	flags := collectFlags(collectCmd, []string{"@nasa,esa", "jaxa"})
	assert.Equal(t, []string{"nasa", "esa", "jaxa"}, flags["accounts"])
	assert.Equal(t, 6, flags["hours"])
	assert.Equal(t, 2, flags["concurrency"])
	assert.Equal(t, "out", flags["output"])
	_, hasHeadless := flags["headless"]
	assert.False(t, hasHeadless)
	_, hasSession := flags["session"]
	assert.False(t, hasSession)
}
