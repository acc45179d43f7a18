package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"assetgraph/internal/logging"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return &logging.Logger{Logger: zap.New(core)}, logs
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(logging.RequestIDKey).(string)
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Request-ID", "upstream-id")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "upstream-id", seen)
	})
}

func TestChain(t *testing.T) {
	logger, logs := observedLogger()

	handler := Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/panic" {
				panic("boom")
			}
			w.WriteHeader(http.StatusTeapot)
		}),
		Recover(logger),
		Logger(logger),
		RequestID,
	)

	t.Run("logs status and request id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/ok", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
		entries := logs.FilterMessage("request completed").All()
		if assert.Len(t, entries, 1) {
			fields := entries[0].ContextMap()
			assert.EqualValues(t, http.StatusTeapot, fields["status"])
			assert.Equal(t, rec.Header().Get("X-Request-ID"), fields["request_id"])
		}
	})

	t.Run("recovers panics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Len(t, logs.FilterMessage("panic recovered").All(), 1)
	})
}
