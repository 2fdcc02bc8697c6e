package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WarnLevel, &buf)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown", map[string]interface{}{"k": 1})
	logger.Error("also shown")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "shown", entries[0]["message"])
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, 1.0, entries[0]["k"])
	assert.Contains(t, entries[0]["caller"], "logging/logging_test.go")
	assert.Equal(t, "ERROR", entries[1]["level"])
}

func TestLoggerFieldsDoNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := New(DebugLevel, &buf)
	child := base.WithField("job", "a").WithError(errors.New("boom"))

	child.Info("child")
	base.Info("base")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0]["job"])
	assert.Equal(t, "boom", entries[0]["error"])
	assert.NotContains(t, entries[1], "job")
}

func TestLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(InfoLevel, &buf).WithFormat(TextFormat)

	logger.Info("search converged", map[string]interface{}{"iterations": 28, "method": "gradient"})

	line := buf.String()
	assert.Contains(t, line, "INFO  search converged")
	assert.Contains(t, line, " iterations=28")
	assert.Contains(t, line, " method=gradient")
	assert.Less(t, strings.Index(line, "iterations="), strings.Index(line, "method="))
}

func TestLoggerFatalExits(t *testing.T) {
	var buf bytes.Buffer
	logger := New(InfoLevel, &buf)
	code := -1
	logger.exit = func(c int) { code = c }

	logger.Fatal("giving up")

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "giving up")
}

func TestNewLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nlsearch.log")

	logger, err := NewLogger(&Config{Level: "warning", Format: "text", Output: path})
	require.NoError(t, err)
	assert.Equal(t, WarnLevel, logger.Level())

	logger.Warn("written to file")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")

	_, err = NewLogger(&Config{Format: "xml"})
	assert.Error(t, err)

	logger, err = NewLogger(nil)
	require.NoError(t, err)
	assert.Equal(t, InfoLevel, logger.Level())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"Warning": WarnLevel,
		"error":   ErrorLevel,
		"fatal":   FatalLevel,
		"verbose": InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestZapLogger(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(DebugLevel, &buf)).Named("optimization").With(zap.String("method", "edge"))

	zl.Info("search converged",
		zap.Float64("x", -0.99486),
		zap.Int("iterations", 28),
		zap.Duration("elapsed", 1500*time.Millisecond),
		zap.Error(errors.New("none")),
	)
	zl.Debug("visible at debug")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "search converged", entries[0]["message"])
	assert.Equal(t, "edge", entries[0]["method"])
	assert.Equal(t, "optimization", entries[0]["logger"])
	assert.Equal(t, -0.99486, entries[0]["x"])
	assert.Equal(t, 28.0, entries[0]["iterations"])
	assert.Equal(t, "none", entries[0]["error"])
	assert.Equal(t, "DEBUG", entries[1]["level"])
}

func TestZapAdapterEnabled(t *testing.T) {
	core := NewZapAdapter(New(ErrorLevel, &bytes.Buffer{}))

	assert.False(t, core.Enabled(zap.InfoLevel))
	assert.True(t, core.Enabled(zap.ErrorLevel))
	assert.True(t, core.Enabled(zap.DPanicLevel))
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := (&CtxLogger{New(InfoLevel, &buf).WithField("scope", "test")}).WithContext(context.Background())

	FromContext(ctx).Info("from context")
	assert.Contains(t, buf.String(), `"scope":"test"`)

	assert.NotNil(t, FromContext(context.Background()))
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := New(DebugLevel, &buf)

	var sawLogger bool
	handler := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawLogger = r.Context().Value(ctxLoggerKey{}).(*CtxLogger)
		w.WriteHeader(http.StatusNotFound)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/status/missing", nil))

	assert.True(t, sawLogger)
	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "Request started", entries[0]["message"])
	assert.Equal(t, "Request completed", entries[1]["message"])
	assert.Equal(t, 404.0, entries[1]["status"])
	assert.Equal(t, "Not Found", entries[1]["error"])
	assert.Equal(t, "/api/v1/status/missing", entries[1]["path"])
}
