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

// captureLogOutput captures log output for testing by temporarily
// redirecting the logger to write to a buffer
func captureLogOutput(f func()) string {
	var buf bytes.Buffer

	oldLogger := defaultLogger
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	defaultLogger = slog.New(handler)

	f()

	defaultLogger = oldLogger
	return buf.String()
}

func TestInitLoggerWithWriter(t *testing.T) {
	tests := []struct {
		name     string
		level    Level
		format   Format
		logDebug bool
		want     string
	}{
		{"debug json", LevelDebug, FormatJSON, true, `"msg":"probe"`},
		{"info json drops debug", LevelInfo, FormatJSON, false, `"msg":"probe"`},
		{"text format", LevelInfo, FormatText, false, "msg=probe"},
		{"invalid level falls back to info", Level(999), FormatJSON, false, `"msg":"probe"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			InitLoggerWithWriter(&buf, tt.level, tt.format)
			defer InitLogger(LevelInfo, FormatJSON)

			Debug("debug-probe")
			Info("probe")

			out := buf.String()
			if !strings.Contains(out, tt.want) {
				t.Errorf("output %q does not contain %q", out, tt.want)
			}
			if got := strings.Contains(out, "debug-probe"); got != tt.logDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.logDebug)
			}
		})
	}
}

func TestReplaceAttrTimestamp(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerWithWriter(&buf, LevelInfo, FormatJSON)
	defer InitLogger(LevelInfo, FormatJSON)

	Info("timestamp")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	ts, ok := entry["time"].(string)
	if !ok {
		t.Fatalf("time field missing: %v", entry)
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("time %q is not RFC3339: %v", ts, err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{" warn ", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"", FormatJSON, false},
		{"Text", FormatText, false},
		{"xml", FormatJSON, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGetRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("GetRequestID() = %q, want req-123", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID(empty) = %q, want empty", got)
	}
	wrong := context.WithValue(context.Background(), RequestIDKey, 42)
	if got := GetRequestID(wrong); got != "" {
		t.Errorf("GetRequestID(non-string) = %q, want empty", got)
	}
}

func TestContextLoggingFunctions(t *testing.T) {
	ctx := WithRequestID(context.Background(), "ctx-req")

	tests := []struct {
		name  string
		fn    func()
		level string
	}{
		{"InfoContext", func() { InfoContext(ctx, "info message") }, "INFO"},
		{"WarnContext", func() { WarnContext(ctx, "warn message") }, "WARN"},
		{"ErrorContext", func() { ErrorContext(ctx, "error message") }, "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureLogOutput(tt.fn)
			if !strings.Contains(out, `"request_id":"ctx-req"`) {
				t.Errorf("output missing request_id: %s", out)
			}
			if !strings.Contains(out, `"level":"`+tt.level+`"`) {
				t.Errorf("output missing level %s: %s", tt.level, out)
			}
		})
	}
}

func TestLoggingFunctions(t *testing.T) {
	out := captureLogOutput(func() {
		Debug("d", "k", 1)
		Info("i")
		Warn("w")
		Error("e")
	})
	for _, want := range []string{`"msg":"d"`, `"k":1`, `"msg":"i"`, `"msg":"w"`, `"msg":"e"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestComponent(t *testing.T) {
	out := captureLogOutput(func() {
		Component("loader").Info("hello")
	})
	if !strings.Contains(out, `"component":"loader"`) {
		t.Errorf("output missing component: %s", out)
	}
}

func TestHTTPRequestContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "http-req")
	out := captureLogOutput(func() {
		HTTPRequestContext(ctx, "GET", "/api/translations", "127.0.0.1", 200, 15*time.Millisecond, "extra", "x")
	})
	for _, want := range []string{
		`"msg":"http_request"`,
		`"method":"GET"`,
		`"path":"/api/translations"`,
		`"status_code":200`,
		`"duration_ms":15`,
		`"request_id":"http-req"`,
		`"extra":"x"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestTranslationEvent(t *testing.T) {
	out := captureLogOutput(func() {
		TranslationEvent(nil, "loaded", "KJV", "books", 3)
	})
	for _, want := range []string{`"msg":"translation_event"`, `"event":"loaded"`, `"translation":"KJV"`, `"books":3`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	TranslationEvent(logger, "unloaded", "KJV")
	if !strings.Contains(buf.String(), `"event":"unloaded"`) {
		t.Errorf("explicit logger not used: %s", buf.String())
	}
}

func TestTranslationError(t *testing.T) {
	out := captureLogOutput(func() {
		TranslationError(nil, "NIV", "load", errors.New("no bundled assets"))
	})
	for _, want := range []string{`"level":"ERROR"`, `"translation":"NIV"`, `"operation":"load"`, `"error":"no bundled assets"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestServerStartup(t *testing.T) {
	out := captureLogOutput(func() {
		ServerStartup("api", "http", 8080, "translations", 1)
	})
	for _, want := range []string{`"server_type":"api"`, `"protocol":"http"`, `"port":8080`, `"translations":1`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestResponseWriter_WriteHeader(t *testing.T) {
	recorder := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: recorder, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)
	// Second call should be ignored
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, rw.statusCode)
	}
	if recorder.Code != http.StatusNotFound {
		t.Errorf("recorder code = %d", recorder.Code)
	}
}

func TestResponseWriter_Write(t *testing.T) {
	recorder := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: recorder, statusCode: http.StatusOK}

	n, err := rw.Write([]byte("test data"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != len("test data") {
		t.Errorf("wrote %d bytes", n)
	}
	if !rw.written || rw.statusCode != http.StatusOK {
		t.Errorf("written = %v, status = %d", rw.written, rw.statusCode)
	}
}

func TestGenerateRequestID(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := generateRequestID()
		if len(id) != 36 {
			t.Errorf("Expected request ID length 36, got %d", len(id))
		}
		if ids[id] {
			t.Error("Generated duplicate request ID")
		}
		ids[id] = true
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		existingHeader string
		wantLen        int
		want           string
	}{
		{name: "Generate new request ID", wantLen: 36},
		{name: "Use existing request ID from header", existingHeader: "existing-req-id-123", want: "existing-req-id-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.existingHeader != "" {
				req.Header.Set("X-Request-ID", tt.existingHeader)
			}
			w := httptest.NewRecorder()
			RequestIDMiddleware(handler).ServeHTTP(w, req)

			reqID := w.Header().Get("X-Request-ID")
			if reqID != seen {
				t.Errorf("header %q != context %q", reqID, seen)
			}
			if tt.want != "" && reqID != tt.want {
				t.Errorf("request ID = %q, want %q", reqID, tt.want)
			}
			if tt.wantLen != 0 && len(reqID) != tt.wantLen {
				t.Errorf("request ID length = %d, want %d", len(reqID), tt.wantLen)
			}
		})
	}
}

func TestCombinedMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	out := captureLogOutput(func() {
		req := httptest.NewRequest("GET", "/api/translations/KJV", nil)
		w := httptest.NewRecorder()
		CombinedMiddleware(handler).ServeHTTP(w, req)
		if w.Header().Get("X-Request-ID") == "" {
			t.Error("Expected X-Request-ID header")
		}
	})

	if !strings.Contains(out, `"status_code":418`) {
		t.Errorf("log missing status code: %s", out)
	}
	if !strings.Contains(out, `"request_id"`) {
		t.Errorf("log missing request id: %s", out)
	}
}
