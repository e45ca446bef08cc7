package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"feedscraper/pkg/config"
	"feedscraper/pkg/digest"
	"feedscraper/pkg/models"
	"feedscraper/pkg/storage"
)

// reportTargets holds explicit report paths. Empty paths fall back to
// timestamped files in the configured output directory when that format
// is enabled.
type reportTargets struct {
	JSON         string
	Markdown     string
	SummaryInput string
}

// writeReports writes every requested report for one run and returns the
// paths written.
func writeReports(cfg *config.Config, result models.CollectionResult, windowHours int, at time.Time, targets reportTargets) ([]string, error) {
	name := storage.ReportName(windowHours, at)
	var written []string

	jsonPath := targets.JSON
	if jsonPath == "" && cfg.Output.JSON {
		jsonPath = filepath.Join(cfg.Output.Directory, name+".json")
	}
	if jsonPath != "" {
		manager, err := storage.NewManager(filepath.Dir(jsonPath))
		if err != nil {
			return written, err
		}
		path, err := manager.WriteJSON(filepath.Base(jsonPath), result)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	mdPath := targets.Markdown
	if mdPath == "" && cfg.Output.Markdown {
		mdPath = filepath.Join(cfg.Output.Directory, name+".md")
	}
	if mdPath != "" {
		manager, err := storage.NewManager(filepath.Dir(mdPath))
		if err != nil {
			return written, err
		}
		path, err := manager.WriteMarkdown(filepath.Base(mdPath), result, at)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if targets.SummaryInput != "" {
		if dir := filepath.Dir(targets.SummaryInput); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return written, fmt.Errorf("failed to create summary directory: %w", err)
			}
		}
		if err := os.WriteFile(targets.SummaryInput, []byte(digest.FormatForSummary(result)), 0644); err != nil {
			return written, fmt.Errorf("failed to write summary input: %w", err)
		}
		written = append(written, targets.SummaryInput)
	}

	return written, nil
}
