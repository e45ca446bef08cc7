package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"feedscraper/pkg/config"

	"github.com/rs/zerolog"
)

func newBufferLogger(buf *bytes.Buffer) Logger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	return NewWithWriter(buf, zerolog.DebugLevel)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name:    "valid config with info level",
			cfg:     &config.LoggingConfig{Level: "info"},
			wantErr: false,
		},
		{
			name:    "json format",
			cfg:     &config.LoggingConfig{Level: "debug", Format: "json"},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			cfg:     &config.LoggingConfig{Level: "invalid"},
			wantErr: true,
		},
		{
			name: "config with file output",
			cfg: &config.LoggingConfig{
				Level: "info",
				File:  filepath.Join(t.TempDir(), "logs", "feedscraper.log"),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"verbose", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func TestUsePrettyOutput(t *testing.T) {
	// A regular file is never a terminal
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if usePrettyOutput("auto", f) {
		t.Error("auto format should not pretty print to a file")
	}
	if usePrettyOutput("json", f) {
		t.Error("json format should never pretty print")
	}
	if !usePrettyOutput("console", f) {
		t.Error("console format should always pretty print")
	}
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	cases := map[string]func(string){
		"debug message": logger.Debug,
		"info message":  logger.Info,
		"warn message":  logger.Warn,
		"error message": logger.Error,
	}
	for msg, fn := range cases {
		buf.Reset()
		fn(msg)
		if !strings.Contains(buf.String(), msg) {
			t.Errorf("%q not found in output %q", msg, buf.String())
		}
		if !strings.Contains(buf.String(), `"app":"feedscraper"`) {
			t.Error("app field not found in output")
		}
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.
		WithField("account", "nasa").
		WithFields(map[string]interface{}{
			"items":    3,
			"repost":   true,
			"duration": 2 * time.Second,
			"accounts": []string{"a", "b"},
		}).
		Info("chained fields")

	output := buf.String()
	for _, want := range []string{
		"chained fields",
		`"account":"nasa"`,
		`"items":3`,
		`"repost":true`,
		`"accounts":["a","b"]`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("%s not found in output %q", want, output)
		}
	}
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := newBufferLogger(&buf)
	_ = parent.WithField("child", "only")

	parent.Info("parent message")
	if strings.Contains(buf.String(), "child") {
		t.Error("child field leaked into parent logger")
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	if logger.WithError(nil) != logger {
		t.Error("WithError(nil) should return the same logger")
	}

	logger.WithError(errors.New("browser crashed")).Error("error occurred")
	output := buf.String()
	if !strings.Contains(output, "error occurred") || !strings.Contains(output, "browser crashed") {
		t.Errorf("error not found in output %q", output)
	}
}

func TestStructuredLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.WarnWithFields("account failed", map[string]interface{}{
		"account": "nasa",
		"index":   1,
	})

	output := buf.String()
	if !strings.Contains(output, `"level":"warn"`) {
		t.Errorf("level not found in output %q", output)
	}
	if !strings.Contains(output, `"index":1`) {
		t.Errorf("index not found in output %q", output)
	}
}

func TestHelpers(t *testing.T) {
	log := NewTestLogger()

	LogAccountStart(log, "nasa", 0)
	LogAccountResult(log, "nasa", 4, time.Second, nil)
	LogAccountResult(log, "esa", 0, time.Second, errors.New("boom"))
	LogCacheEvent(log, 24, true)
	LogRunSummary(log, 2, 4, 1, 3*time.Second)

	if !log.HasMessage("Account collection completed") {
		t.Error("expected completion message")
	}
	warns := log.GetMessagesByLevel("WARN")
	if len(warns) != 1 || warns[0].Fields["account"] != "esa" || warns[0].Fields["error"] != "boom" {
		t.Errorf("unexpected warnings: %+v", warns)
	}
	if !log.HasMessage("Collection run finished") {
		t.Error("expected run summary")
	}
}

func TestTestLoggerSharesSink(t *testing.T) {
	log := NewTestLogger()
	child := log.WithField("run_id", "abc")
	child.Info("from child")
	log.Info("from parent")

	msgs := log.GetMessages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Fields["run_id"] != "abc" {
		t.Error("child field missing")
	}
	if _, ok := msgs[1].Fields["run_id"]; ok {
		t.Error("parent should not carry child field")
	}

	log.Clear()
	if len(log.GetMessages()) != 0 {
		t.Error("Clear should drop all messages")
	}
}

func TestGlobalLogger(t *testing.T) {
	if err := Initialize(&config.LoggingConfig{Level: "debug", Format: "json"}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if GetLogger() == nil {
		t.Fatal("GetLogger() returned nil")
	}

	// Just ensure they don't panic
	Debug("debug message")
	Info("info message")
	WithField("key", "value").Info("with field")
	WithError(errors.New("test")).Warn("with error")
}
