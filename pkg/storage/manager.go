package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
	"time"

	"feedscraper/pkg/models"
)

// Manager writes collection reports into an output directory
type Manager struct {
	outputDir string
	written   []string
	mu        sync.Mutex
}

// NewManager creates a report manager, creating outputDir if needed
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Manager{outputDir: outputDir}, nil
}

// ReportName returns the base file name for a run's reports
func ReportName(windowHours int, at time.Time) string {
	return fmt.Sprintf("feed_%dh_%s", windowHours, at.UTC().Format("20060102T150405Z"))
}

// WriteJSON writes the result as indented JSON and returns the file path
func (m *Manager) WriteJSON(name string, result models.CollectionResult) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(result); err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	return m.save(&buf, ensureExt(name, ".json"))
}

// WriteMarkdown writes a human-readable per-account report
func (m *Manager) WriteMarkdown(name string, result models.CollectionResult, generatedAt time.Time) (string, error) {
	var buf bytes.Buffer
	if err := RenderMarkdown(&buf, result, generatedAt); err != nil {
		return "", err
	}
	return m.save(&buf, ensureExt(name, ".md"))
}

// RenderMarkdown renders the Markdown report to w
func RenderMarkdown(w io.Writer, result models.CollectionResult, generatedAt time.Time) error {
	type account struct {
		Name  string
		Items []models.ContentItem
	}
	data := struct {
		GeneratedAt string
		Accounts    []account
	}{GeneratedAt: generatedAt.Format("2006-01-02 15:04:05")}

	for _, name := range result.Accounts() {
		data.Accounts = append(data.Accounts, account{Name: name, Items: result[name]})
	}

	if err := markdownTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render markdown report: %w", err)
	}
	return nil
}

var markdownTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"inc":  func(i int) int { return i + 1 },
	"time": func(t time.Time) string { return t.Format(time.RFC3339) },
	"kind": func(item models.ContentItem) string {
		if item.IsRepost {
			return "Repost"
		}
		return "Original"
	},
	"oneline": func(s string) string { return strings.Join(strings.Fields(s), " ") },
}).Parse(`# Feed Report

Generated: {{.GeneratedAt}}
{{range .Accounts}}
## @{{.Name}}

{{len .Items}} item(s)
{{range $i, $item := .Items}}
### Item {{inc $i}}

- **Type**: {{kind $item}}
{{- if $item.IsRepost}}
- **Original author**: @{{$item.OriginalAuthor}}
{{- end}}
- **ID**: {{$item.ID}}
- **Time**: {{time $item.CreatedAt}}
- **Text**: {{oneline $item.Text}}
- **Link**: {{$item.URL}}
{{- if $item.MediaURLs}}

#### Images ({{len $item.MediaURLs}})
{{range $j, $url := $item.MediaURLs}}
![Image {{inc $j}}]({{$url}})
{{end}}
{{- end}}

---
{{end}}
{{- end}}`))

// save writes r to filename atomically through a temporary file
func (m *Manager) save(r io.Reader, filename string) (string, error) {
	path := filepath.Join(m.outputDir, filename)
	tempFile := path + ".tmp"

	out, err := os.Create(tempFile)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.written = append(m.written, path)
	m.mu.Unlock()

	return path, nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// Written returns the paths written so far, in order
func (m *Manager) Written() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.written...)
}

func ensureExt(name, ext string) string {
	if filepath.Ext(name) == ext {
		return name
	}
	return name + ext
}
