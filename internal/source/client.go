package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/yegors/launchboard/pkg/logger"
)

// maxDatasetBytes caps a downloaded dataset
const maxDatasetBytes = 64 << 20

// Client downloads launch tables over HTTP
type Client struct {
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	logger     *logger.Logger
}

// NewClient creates a client. maxRetries counts total attempts.
func NewClient(timeout time.Duration, maxRetries int, log *logger.Logger) *Client {
	transport := &http.Transport{
		MaxIdleConns:    4,
		IdleConnTimeout: 30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		maxRetries: maxRetries,
		retryDelay: time.Second,
		logger:     log.Named("source-client"),
	}
}

// FetchCSV downloads url, retrying failed attempts with exponential backoff
func (c *Client) FetchCSV(ctx context.Context, url string) ([]byte, error) {
	delay := c.retryDelay
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		body, err := c.fetchOnce(ctx, url)
		if err == nil {
			c.logger.Debug("Fetched dataset",
				logger.String("url", url),
				logger.Int("bytes", len(body)),
				logger.Int("attempt", attempt),
			)
			return body, nil
		}
		lastErr = err

		if attempt == c.maxRetries {
			break
		}

		c.logger.Warn("Retrying dataset download",
			logger.String("url", url),
			logger.Int("attempt", attempt),
			logger.Int("max_attempts", c.maxRetries),
			logger.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}

	return nil, fmt.Errorf("failed to fetch dataset after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain, */*")
	req.Header.Set("User-Agent", "launchboard/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(resp.Body, maxDatasetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if n > maxDatasetBytes {
		return nil, fmt.Errorf("dataset exceeds %d bytes", maxDatasetBytes)
	}

	return buf.Bytes(), nil
}
