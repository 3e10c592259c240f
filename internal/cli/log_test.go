package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("panel placed") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("stage done") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("stage done") }, true},
		{"warn at info level", log.InfoLevel, func(l *log.Logger) { l.Warn("unhandled pattern") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestParseLogFormat(t *testing.T) {
	for _, name := range []string{"text", "json", "LOGFMT"} {
		if _, err := parseLogFormat(name); err != nil {
			t.Errorf("parseLogFormat(%q) error: %v", name, err)
		}
	}
	if _, err := parseLogFormat("xml"); err == nil {
		t.Error("parseLogFormat(xml) should fail")
	}

	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	f, _ := parseLogFormat("json")
	logger.SetFormatter(f)
	logger.Info("laid out", "panels", 2)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("json record does not decode: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "laid out" || rec["panels"] != float64(2) {
		t.Errorf("record = %v", rec)
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("laid out", "panels", 3)

	out := buf.String()
	for _, want := range []string{"laid out", "panels=3", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("progress output %q misses %q", out, want)
		}
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := newLogger(&buf, log.InfoLevel)

	r := httptest.NewRequest("POST", "/v1/layout", nil)
	r = r.WithContext(context.WithValue(r.Context(), middleware.RequestIDKey, "req-7"))
	requestLogger(base, r).Info("request failed")

	out := buf.String()
	for _, want := range []string{"request=req-7", "method=POST", "path=/v1/layout"} {
		if !strings.Contains(out, want) {
			t.Errorf("request record %q misses %q", out, want)
		}
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext() without a logger should return the default logger")
	}

	custom := newLogger(&bytes.Buffer{}, log.InfoLevel)
	if loggerFromContext(withLogger(context.Background(), custom)) != custom {
		t.Error("loggerFromContext() should return the attached logger")
	}
}
