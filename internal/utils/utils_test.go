package utils

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBackoffRetriesThenSucceeds(t *testing.T) {
	calls := 0
	err := NewBackoff(time.Millisecond, 3).Do(context.Background(), func(i int) error {
		require.Equal(t, calls, i)
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestBackoffGivesUp(t *testing.T) {
	calls := 0
	err := NewBackoff(time.Millisecond, 2).Do(context.Background(), func(int) error {
		calls++
		return errors.New("down")
	})
	require.EqualError(t, err, "down")
	require.Equal(t, 3, calls)
}

func TestBackoffPermanentStops(t *testing.T) {
	calls := 0
	err := NewBackoff(time.Millisecond, 5).Do(context.Background(), func(int) error {
		calls++
		return Permanent(errors.New("404"))
	})
	require.EqualError(t, err, "404")
	require.Equal(t, 1, calls)
}

func TestRequestIDAndLogger(t *testing.T) {
	var seen string
	h := RequestID(Logger(slog.New(slog.NewTextHandler(io.Discard, nil)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.NotEmpty(t, seen)
	require.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "n8n-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "n8n-123", seen)
	require.Empty(t, RID(context.Background()))
}
