package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// captureLogOutput redirects the global logger to a buffer while f runs.
func captureLogOutput(f func()) string {
	var buf bytes.Buffer

	oldLogger := defaultLogger
	defaultLogger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	f()

	defaultLogger = oldLogger
	return buf.String()
}

func decodeLine(t *testing.T, line string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &m); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", line, err)
	}
	return m
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{" error ", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("Text") != FormatText {
		t.Error("expected text format")
	}
	if ParseFormat("json") != FormatJSON || ParseFormat("") != FormatJSON {
		t.Error("expected JSON format")
	}
}

func TestInitLoggerTo(t *testing.T) {
	tests := []struct {
		name    string
		level   Level
		format  Format
		logFunc func()
		want    string
		empty   bool
	}{
		{"json info", LevelInfo, FormatJSON, func() { Info("hello") }, `"msg":"hello"`, false},
		{"text info", LevelInfo, FormatText, func() { Info("hello") }, "msg=hello", false},
		{"debug filtered at info", LevelInfo, FormatJSON, func() { Debug("hidden") }, "", true},
		{"warn passes at warn", LevelWarn, FormatJSON, func() { Warn("careful") }, `"level":"WARN"`, false},
		{"invalid level falls back to info", Level(999), FormatJSON, func() { Info("x") }, `"msg":"x"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			InitLoggerTo(&buf, tt.level, tt.format)
			defer InitLogger(LevelInfo, FormatJSON)

			tt.logFunc()
			out := buf.String()
			if tt.empty {
				if out != "" {
					t.Errorf("expected no output, got %q", out)
				}
				return
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output %q does not contain %q", out, tt.want)
			}
		})
	}
}

func TestTimestampFormat(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerTo(&buf, LevelInfo, FormatJSON)
	defer InitLogger(LevelInfo, FormatJSON)

	Info("stamp")
	m := decodeLine(t, buf.String())
	ts, ok := m["time"].(string)
	if !ok {
		t.Fatalf("time field missing: %v", m)
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("time %q is not RFC3339: %v", ts, err)
	}
}

func TestContextIDs(t *testing.T) {
	ctx := WithRunID(WithRequestID(context.Background(), "req-1"), "run-9")
	if GetRequestID(ctx) != "req-1" || GetRunID(ctx) != "run-9" {
		t.Fatal("context ids not round-tripped")
	}
	if GetRequestID(context.Background()) != "" || GetRunID(context.Background()) != "" {
		t.Error("empty context should carry no ids")
	}

	out := captureLogOutput(func() {
		InfoContext(ctx, "with ids")
	})
	m := decodeLine(t, out)
	if m["request_id"] != "req-1" || m["run_id"] != "run-9" {
		t.Errorf("log line = %v", m)
	}
}

func TestDomainHelpers(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-1")
	tests := []struct {
		name   string
		log    func()
		msg    string
		fields map[string]any
	}{
		{
			name:   "ingest started",
			log:    func() { IngestStarted(ctx, "bible", "MAT.usfm") },
			msg:    "ingest_started",
			fields: map[string]any{"kind": "bible", "source": "MAT.usfm", "run_id": "run-1"},
		},
		{
			name:   "ingest progress",
			log:    func() { IngestProgress(ctx, "bible", 500, 1071) },
			msg:    "ingest_progress",
			fields: map[string]any{"committed": float64(500), "total": float64(1071)},
		},
		{
			name:   "ingest finished",
			log:    func() { IngestFinished(ctx, "topics", "a_b.csv", 12, 2, time.Second) },
			msg:    "ingest_finished",
			fields: map[string]any{"documents": float64(12), "skipped": float64(2), "duration_ms": float64(1000)},
		},
		{
			name:   "entry skipped",
			log:    func() { EntrySkipped(ctx, "row 3", "empty topic label") },
			msg:    "entry_skipped",
			fields: map[string]any{"source": "row 3", "level": "WARN"},
		},
		{
			name:   "resolution miss",
			log:    func() { ResolutionMiss(ctx, "book", "Zzz", 66) },
			msg:    "resolution_miss",
			fields: map[string]any{"requested": "Zzz", "directory_size": float64(66)},
		},
		{
			name:   "server startup",
			log:    func() { ServerStartup("api", "http", 8080) },
			msg:    "server_startup",
			fields: map[string]any{"port": float64(8080)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := decodeLine(t, captureLogOutput(tt.log))
			if m["msg"] != tt.msg {
				t.Errorf("msg = %v, want %s", m["msg"], tt.msg)
			}
			for k, v := range tt.fields {
				if m[k] != v {
					t.Errorf("%s = %v, want %v", k, m[k], v)
				}
			}
		})
	}
}

func TestErrorContext(t *testing.T) {
	out := captureLogOutput(func() {
		ErrorContext(context.Background(), "failed", "error", errors.New("boom").Error())
	})
	if !strings.Contains(out, `"error":"boom"`) {
		t.Errorf("output = %s", out)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen == "" || rec.Header().Get("X-Request-ID") != seen {
		t.Errorf("generated id = %q, header = %q", seen, rec.Header().Get("X-Request-ID"))
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "given")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != "given" {
		t.Errorf("incoming id not reused: %q", seen)
	}
}

func TestCombinedMiddleware(t *testing.T) {
	handler := CombinedMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	}))

	out := captureLogOutput(func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bibles", nil))
		if rec.Code != http.StatusTeapot {
			t.Errorf("status = %d", rec.Code)
		}
	})
	m := decodeLine(t, out)
	if m["msg"] != "http_request" || m["status_code"] != float64(http.StatusTeapot) || m["path"] != "/bibles" {
		t.Errorf("log line = %v", m)
	}
	if m["request_id"] == nil {
		t.Error("request id missing from access log")
	}
}
