package fetcher

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate() *Gate {
	cfg := DefaultConfig()
	cfg.MaxBodySize = 2048
	return NewGate(cfg, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGate_Fetch_Success(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<rss><channel></channel></rss>"))
	}))
	defer srv.Close()

	body, ok := newTestGate().Fetch(context.Background(), srv.URL, time.Second)

	require.True(t, ok)
	assert.Equal(t, "<rss><channel></channel></rss>", body)
	assert.True(t, strings.HasPrefix(gotUA, "Mozilla/5.0"))
}

func TestGate_Fetch_TimeoutIsAbsent(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		_, _ = w.Write([]byte("too late"))
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	body, ok := newTestGate().Fetch(context.Background(), srv.URL, 50*time.Millisecond)

	assert.False(t, ok)
	assert.Empty(t, body)
	assert.Less(t, time.Since(start), time.Second, "timer must bound the call")
}

func TestGate_Fetch_FailuresAreAbsent(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
		},
		{
			name: "body too large",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			body, ok := newTestGate().Fetch(context.Background(), srv.URL, time.Second)

			assert.False(t, ok)
			assert.Empty(t, body)
		})
	}
}

func TestGate_Fetch_InvalidURL(t *testing.T) {
	gate := newTestGate()

	for _, raw := range []string{"", "ftp://example.com/feed", "not a url", "https://"} {
		_, ok := gate.Fetch(context.Background(), raw, time.Second)
		assert.False(t, ok, "url %q", raw)
	}
}

func TestGate_Fetch_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := newTestGate().Fetch(ctx, srv.URL, time.Second)
	assert.False(t, ok)
}

func TestGate_Fetch_TooManyRedirects(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/loop", http.StatusFound)
	}))
	defer srv.Close()

	_, ok := newTestGate().Fetch(context.Background(), srv.URL, time.Second)
	assert.False(t, ok)
}

func TestGateConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.MaxRedirects = 11
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.UserAgent = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, validateURL("https://example.com/rss", false))
	assert.ErrorIs(t, validateURL("gopher://example.com", false), ErrInvalidURL)
	assert.ErrorIs(t, validateURL("http://127.0.0.1/feed", true), ErrPrivateIP)
}
