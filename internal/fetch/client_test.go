package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(opts ...Option) *Client {
	base := []Option{WithPacing(0), WithBackoffUnit(time.Millisecond)}
	return NewClient(append(base, opts...)...)
}

func TestGetSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if ua := r.Header.Get("User-Agent"); ua != "Mozilla/5.0" {
			t.Errorf("user agent = %q", ua)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	resp, err := newTestClient().Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	var decoded struct {
		OK bool `json:"ok"`
	}
	if err := resp.JSON(&decoded); err != nil || !decoded.OK {
		t.Fatalf("JSON decode = %+v, %v", decoded, err)
	}
}

func TestGetRetriesRateLimitThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	resp, err := newTestClient().Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get after rate limits: %v", err)
	}
	if resp.Text() != "ok" {
		t.Errorf("body = %q", resp.Text())
	}
	if got := calls.Load(); got != 4 {
		t.Errorf("server saw %d calls, want 4", got)
	}
}

func TestGetNotFoundFailsImmediately(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient().Get(context.Background(), server.URL)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d calls, want 1 (no retry on 404)", got)
	}
}

func TestGetExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient().Get(context.Background(), server.URL)
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("err = %v, want ExhaustedError", err)
	}
	if exhausted.Attempts != 5 {
		t.Errorf("attempts = %d, want 5", exhausted.Attempts)
	}
	if exhausted.LastStatus != http.StatusTooManyRequests {
		t.Errorf("last status = %d, want 429", exhausted.LastStatus)
	}
	if exhausted.URL != server.URL {
		t.Errorf("url = %q, want %q", exhausted.URL, server.URL)
	}
	if got := calls.Load(); got != 5 {
		t.Errorf("server saw %d calls, want 5", got)
	}
}

func TestServerErrorRetriesWithoutBackoff(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	resp, err := newTestClient().Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get after 500: %v", err)
	}
	if resp.Text() != "ok" {
		t.Errorf("body = %q", resp.Text())
	}
}

func TestPostJSONCarriesBodyInExhaustion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient().PostJSON(context.Background(), server.URL, map[string]string{"q": "talks"})
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("err = %v, want ExhaustedError", err)
	}
	if exhausted.Body != `{"q":"talks"}` {
		t.Errorf("exhausted body = %q", exhausted.Body)
	}
}

func TestCancelledContextStopsRetry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(WithPacing(0), WithBackoffUnit(time.Minute))
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := client.Get(ctx, server.URL)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
