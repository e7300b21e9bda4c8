package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// observe swaps the global logger for an observer until the test ends.
func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	original := log
	t.Cleanup(func() { log = original })

	core, observed := observer.New(zapcore.DebugLevel)
	Use(zap.New(core))
	return observed
}

func TestInit(t *testing.T) {
	original := log
	defer func() { log = original }()

	Init("production", "")
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))

	Init("development", "")
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	Init("production", "debug")
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	Init("development", "error")
	assert.False(t, log.Core().Enabled(zapcore.WarnLevel))

	Init("production", "chatty")
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestInitCLI(t *testing.T) {
	original := log
	defer func() { log = original }()

	InitCLI(false)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	InitCLI(true)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestL_LazyInit(t *testing.T) {
	original := log
	defer func() { log = original }()

	log = nil
	t.Setenv("APP_ENV", "test")

	assert.NotNil(t, L())
	assert.NotNil(t, log)
}

func TestFromCtx(t *testing.T) {
	t.Run("Bare context", func(t *testing.T) {
		observed := observe(t)

		FromCtx(context.Background()).Info("plain")

		logs := observed.TakeAll()
		require.Len(t, logs, 1)
		assert.Empty(t, logs[0].ContextMap())
	})

	t.Run("Request id", func(t *testing.T) {
		observed := observe(t)
		ctx := WithRequestID(context.Background(), "req-abc-123")

		assert.Equal(t, "req-abc-123", RequestIDFrom(ctx))
		FromCtx(ctx).Info("with id")

		logs := observed.TakeAll()
		require.Len(t, logs, 1)
		assert.Equal(t, "req-abc-123", logs[0].ContextMap()["request_id"])
	})

	t.Run("Fields accumulate", func(t *testing.T) {
		observed := observe(t)
		ctx := WithFields(context.Background(), zap.String("store", "local"))
		child := WithFields(ctx, zap.String("user", "admin"))

		FromCtx(ctx).Info("parent")
		FromCtx(child).Info("child")

		logs := observed.TakeAll()
		require.Len(t, logs, 2)
		assert.Equal(t, map[string]any{"store": "local"}, logs[0].ContextMap())
		assert.Equal(t, map[string]any{"store": "local", "user": "admin"}, logs[1].ContextMap())
	})

	t.Run("Sampled span adds trace id", func(t *testing.T) {
		observed := observe(t)
		sc := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    trace.TraceID{0x01, 0x02},
			SpanID:     trace.SpanID{0x03},
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), sc)

		FromCtx(ctx).Info("traced")

		logs := observed.TakeAll()
		require.Len(t, logs, 1)
		assert.Equal(t, sc.TraceID().String(), logs[0].ContextMap()["trace_id"])
	})
}

func TestCallerIsTheCallSite(t *testing.T) {
	original := log
	defer func() { log = original }()

	core, observed := observer.New(zapcore.DebugLevel)
	Use(zap.New(core, buildOptions...))

	FromCtx(context.Background()).Info("from ctx")
	L().Info("from global")

	logs := observed.TakeAll()
	require.Len(t, logs, 2)
	for _, entry := range logs {
		require.True(t, entry.Caller.Defined)
		assert.True(t, strings.HasSuffix(entry.Caller.File, "logger_test.go"), entry.Caller.File)
	}
}

func TestSync(t *testing.T) {
	assert.NotPanics(t, Sync)
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	serve := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/api/foods", nil)
		if header != "" {
			req.Header.Set(RequestIDHeader, header)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	t.Run("Generates ID when missing", func(t *testing.T) {
		w := serve("")

		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
		assert.Equal(t, w.Header().Get(RequestIDHeader), seen)
	})

	t.Run("Preserves a sane ID", func(t *testing.T) {
		w := serve("edge-7f3a:42")

		assert.Equal(t, "edge-7f3a:42", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "edge-7f3a:42", seen)
	})

	t.Run("Replaces unsafe IDs", func(t *testing.T) {
		for _, bad := range []string{"id with spaces", "a\"b", strings.Repeat("x", maxRequestIDLen+1)} {
			w := serve(bad)
			assert.NotEqual(t, bad, w.Header().Get(RequestIDHeader))
			assert.NotEqual(t, bad, seen)
		}
	})
}
