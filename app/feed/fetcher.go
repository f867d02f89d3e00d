package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FetchError marks a transient feed retrieval failure: network errors,
// non-200 responses, and malformed payloads. The scheduler retries these with
// backoff; they never terminate the process.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves the current window of posts visible in the forum's
// latest-posts feed, in source order.
type Fetcher struct {
	httpClient *http.Client
	parser     *Parser
	url        string
	userAgent  string
	timeout    time.Duration
}

func NewFetcher(httpClient *http.Client, parser *Parser, url, userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		parser:     parser,
		url:        url,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (f *Fetcher) Fetch(ctx context.Context) ([]Post, error) {
	data, err := f.download(ctx)
	if err != nil {
		return nil, &FetchError{URL: f.url, Err: err}
	}

	posts, err := f.parser.Run(data)
	if err != nil {
		return nil, &FetchError{URL: f.url, Err: err}
	}

	return posts, nil
}

func (f *Fetcher) download(ctx context.Context) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
