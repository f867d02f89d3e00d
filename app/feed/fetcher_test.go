package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetcher_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "delphiwatch-test/1.0" {
			t.Errorf("Expected configured user agent, got %q", got)
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), NewParser(), server.URL, "delphiwatch-test/1.0", 5*time.Second)

	posts, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Expected successful fetch, got error: %v", err)
	}
	if len(posts) != 2 {
		t.Errorf("Expected 2 posts, got %d", len(posts))
	}
}

func TestFetcher_Fetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), NewParser(), server.URL, "test", 5*time.Second)

	_, err := fetcher.Fetch(context.Background())
	if err == nil {
		t.Fatal("Expected error for non-200 response")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("Expected FetchError, got %T", err)
	}
	if fetchErr.URL != server.URL {
		t.Errorf("Expected error to carry the feed URL, got %q", fetchErr.URL)
	}
}

func TestFetcher_Fetch_MalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance page</html>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), NewParser(), server.URL, "test", 5*time.Second)

	_, err := fetcher.Fetch(context.Background())
	if err == nil {
		t.Fatal("Expected error for a non-feed payload")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("Expected FetchError, got %T", err)
	}
}

func TestFetcher_Fetch_ConnectionRefused(t *testing.T) {
	fetcher := NewFetcher(&http.Client{}, NewParser(), "http://127.0.0.1:1/latest.rss", "test", 2*time.Second)

	_, err := fetcher.Fetch(context.Background())
	if err == nil {
		t.Fatal("Expected error for unreachable host")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("Expected FetchError, got %T", err)
	}
}

func TestFetcher_Fetch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), NewParser(), server.URL, "test", 10*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.Fetch(ctx)
	if err == nil {
		t.Fatal("Expected error for cancelled context")
	}
}
