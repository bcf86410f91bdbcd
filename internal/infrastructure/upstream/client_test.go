package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	rediscache "github.com/baechuer/real-time-ressys/services/explore-service/internal/infrastructure/caching/redis"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/kudago"
	appCtx "github.com/baechuer/real-time-ressys/services/explore-service/internal/pkg/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func locationsSpec(t *testing.T) kudago.Spec {
	t.Helper()
	s, err := kudago.Build(kudago.Query{Op: kudago.OpLocations, Language: "ru"})
	require.NoError(t, err)
	return s
}

func TestFetch(t *testing.T) {
	t.Run("decodes_and_forwards_request_id", func(t *testing.T) {
		var gotPath, gotQuery, gotReqID string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.RawQuery
			gotReqID = r.Header.Get("X-Request-ID")
			_, _ = w.Write([]byte(`[{"slug":"msk","name":"Москва"}]`))
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL, Timeout: time.Second}, nil)
		ctx := appCtx.WithRequestID(context.Background(), "req-9")

		var out []kudago.LocationDTO
		require.NoError(t, c.Fetch(ctx, locationsSpec(t), &out))

		assert.Equal(t, "/public-api/v1.4/locations/", gotPath)
		assert.Equal(t, "lang=ru", gotQuery)
		assert.Equal(t, "req-9", gotReqID)
		require.Len(t, out, 1)
		assert.Equal(t, "msk", out[0].Slug)
	})

	t.Run("status_error_with_detail", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Неправильная страница"}`))
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL}, nil)
		var out []kudago.LocationDTO
		err := c.Fetch(context.Background(), locationsSpec(t), &out)

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusNotFound, se.StatusCode)
		assert.Equal(t, "Неправильная страница", se.Description)
		assert.True(t, IsNotFound(err))
	})

	t.Run("status_error_without_body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL}, nil)
		var out any
		err := c.Fetch(context.Background(), locationsSpec(t), &out)

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "Bad Gateway", se.Description)
		assert.False(t, IsNotFound(err))
	})

	t.Run("decode_error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL}, nil)
		var out []kudago.LocationDTO
		err := c.Fetch(context.Background(), locationsSpec(t), &out)
		assert.True(t, errors.Is(err, ErrDecode))
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer srv.Close()

		c := New(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, nil)
		var out any
		err := c.Fetch(context.Background(), locationsSpec(t), &out)
		assert.True(t, errors.Is(err, ErrTimeout))
	})

	t.Run("caller_canceled_is_not_a_timeout", func(t *testing.T) {
		started := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			close(started)
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-started
			cancel()
		}()

		c := New(Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, nil)
		var out any
		err := c.Fetch(ctx, locationsSpec(t), &out)
		assert.True(t, errors.Is(err, ErrCanceled))
		assert.True(t, errors.Is(err, context.Canceled))
		assert.False(t, errors.Is(err, ErrTimeout))
	})

	t.Run("unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		base := srv.URL
		srv.Close()

		c := New(Config{BaseURL: base}, nil)
		var out any
		err := c.Fetch(context.Background(), locationsSpec(t), &out)
		assert.True(t, errors.Is(err, ErrUnavailable))
	})

	t.Run("invalid_base_url", func(t *testing.T) {
		c := New(Config{BaseURL: "kudago.com"}, nil)
		var out any
		err := c.Fetch(context.Background(), locationsSpec(t), &out)
		assert.True(t, errors.Is(err, ErrInvalidURL))
	})
}

func TestFetch_Cache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`[{"slug":"spb","name":"Санкт-Петербург"}]`))
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	cache, err := rediscache.New("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer cache.Close()

	c := New(Config{BaseURL: srv.URL, CacheTTL: time.Minute}, cache)
	spec := locationsSpec(t)

	for i := 0; i < 3; i++ {
		var out []kudago.LocationDTO
		require.NoError(t, c.Fetch(context.Background(), spec, &out))
		require.Len(t, out, 1)
		assert.Equal(t, "spb", out[0].Slug)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	mr.FastForward(2 * time.Minute)

	var out []kudago.LocationDTO
	require.NoError(t, c.Fetch(context.Background(), spec, &out))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	cache, err := rediscache.New("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer cache.Close()

	c := New(Config{BaseURL: srv.URL, CacheTTL: time.Minute}, cache)

	var out []kudago.LocationDTO
	assert.Error(t, c.Fetch(context.Background(), locationsSpec(t), &out))
	assert.NoError(t, c.Fetch(context.Background(), locationsSpec(t), &out))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    error
		outcome string
	}{
		{"deadline", context.DeadlineExceeded, ErrTimeout, "timeout"},
		{"canceled", context.Canceled, ErrCanceled, "canceled"},
		{"refused", errors.New("connection refused"), ErrUnavailable, "unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.Equal(t, tt.outcome, outcome(got))
		})
	}
}
