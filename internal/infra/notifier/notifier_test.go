package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{name: "empty", text: "  \n", limit: 10, want: nil},
		{name: "fits", text: "a\nb", limit: 10, want: []string{"a\nb"}},
		{name: "split on lines", text: "aaaa\nbbbb\ncccc", limit: 9, want: []string{"aaaa\nbbbb", "cccc"}},
		{name: "long line hard split", text: "abcdefgh", limit: 3, want: []string{"abc", "def", "gh"}},
		{name: "runes not bytes", text: "ééé\nééé", limit: 3, want: []string{"ééé", "ééé"}},
		{name: "blank edges trimmed", text: "aaa\n\nbbb", limit: 4, want: []string{"aaa", "bbb"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Chunk(tt.text, tt.limit))
		})
	}
}

func TestChunk_RespectsLimit(t *testing.T) {
	text := strings.Repeat("*Headline about something*\nBody line with detail.\n\n", 200)
	for _, c := range Chunk(text, SlackMessageLimit) {
		assert.LessOrEqual(t, len([]rune(c)), SlackMessageLimit)
	}
}

// fast removes the pacing so tests do not wait on the limiter or backoff.
func fast(w *webhook) {
	w.limiter = rate.NewLimiter(rate.Inf, 1)
	w.baseDelay = time.Millisecond
}

func TestSlackPublisher_PostsChunksInOrder(t *testing.T) {
	var mu sync.Mutex
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p slackPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		mu.Lock()
		got = append(got, p.Text)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewSlackPublisher(SlackConfig{Enabled: true, WebhookURL: srv.URL}, nil)
	fast(p.hook)

	digest := strings.Repeat("x", SlackMessageLimit) + "\n" + "tail"
	require.NoError(t, p.Publish(context.Background(), digest))
	assert.Equal(t, []string{strings.Repeat("x", SlackMessageLimit), "tail"}, got)
	assert.Equal(t, "slack", p.Name())
}

func TestDiscordPublisher_RateLimitRetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p discordPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "hello", p.Content)
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message":"You are being rate limited.","retry_after":0.01}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := NewDiscordPublisher(DiscordConfig{Enabled: true, WebhookURL: srv.URL}, nil)
	fast(p.hook)

	require.NoError(t, p.Publish(context.Background(), "hello"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestPublisher_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewSlackPublisher(SlackConfig{WebhookURL: srv.URL}, nil)
	fast(p.hook)

	err := p.Publish(context.Background(), "hello")
	require.Error(t, err)
	var clientErr *ClientError
	assert.ErrorAs(t, err, &clientErr)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPublisher_ServerErrorRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewSlackPublisher(SlackConfig{WebhookURL: srv.URL}, nil)
	fast(p.hook)

	err := p.Publish(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 2 attempts")
	assert.Equal(t, int32(2), calls.Load())
}

func TestPublisher_ErrorHidesWebhookURL(t *testing.T) {
	p := NewSlackPublisher(SlackConfig{WebhookURL: "http://127.0.0.1:1/services/T000/B000/secret-token"}, nil)
	fast(p.hook)
	p.hook.maxAttempts = 1

	err := p.Publish(context.Background(), "hello")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token")
}

func TestExtractRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	assert.Equal(t, 1500*time.Millisecond, extractRetryAfter(resp, []byte(`{"retry_after":1.5}`)))

	resp.Header.Set("Retry-After", "3")
	assert.Equal(t, 3*time.Second, extractRetryAfter(resp, []byte(`not json`)))

	assert.Equal(t, 5*time.Second, extractRetryAfter(&http.Response{Header: http.Header{}}, nil))
}

func TestNoOpPublisher(t *testing.T) {
	var p Publisher = NoOpPublisher{}
	assert.NoError(t, p.Publish(context.Background(), "x"))
	assert.Equal(t, "noop", p.Name())
}
