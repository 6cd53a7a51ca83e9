// Package entrez downloads GenBank and EMBL flat files from NCBI E-utilities.
package entrez

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	DefaultBaseURL    = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/"
	DefaultMaxRetries = 3
	DefaultBatchSize  = 200
	userAgent         = "insdckit/1.0"
)

// StatusError is returned for a response NCBI did not answer with 200.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("efetch returned status %d: %s", e.StatusCode, e.Body)
}

// Client calls efetch. The zero value is usable.
type Client struct {
	HTTP       *http.Client
	BaseURL    string
	APIKey     string
	Tool       string
	Email      string
	MaxRetries int
	Logger     *log.Logger

	// sleep waits between retries; tests replace it.
	sleep func(context.Context, time.Duration) error
}

// FetchRequest selects records to download.
type FetchRequest struct {
	DB      string   // nuccore by default
	IDs     []string // accessions or GI numbers
	RetType string   // gbwithparts by default; "embl" for EMBL
	RetMode string   // text by default
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 60 * time.Second}
}

func (c *Client) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.New(io.Discard)
}

func (c *Client) fetchURL(req FetchRequest) (string, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimSuffix(base, "/") + "/efetch.fcgi")
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	q := url.Values{}
	q.Set("db", valueOr(req.DB, "nuccore"))
	q.Set("id", strings.Join(req.IDs, ","))
	q.Set("rettype", valueOr(req.RetType, "gbwithparts"))
	q.Set("retmode", valueOr(req.RetMode, "text"))
	if c.APIKey != "" {
		q.Set("api_key", c.APIKey)
	}
	if c.Tool != "" {
		q.Set("tool", c.Tool)
	}
	if c.Email != "" {
		q.Set("email", c.Email)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Fetch downloads the flat files for req. The caller closes the body.
// Throttled (429) and server error responses are retried, honoring
// Retry-After when NCBI sends one.
func (c *Client) Fetch(ctx context.Context, req FetchRequest) (io.ReadCloser, error) {
	if len(req.IDs) == 0 {
		return nil, errors.New("fetch: no ids")
	}
	target, err := c.fetchURL(req)
	if err != nil {
		return nil, err
	}
	retries := c.MaxRetries
	if retries <= 0 {
		retries = DefaultMaxRetries
	}
	sleep := c.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("User-Agent", userAgent)
		resp, err := c.httpClient().Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			c.logger().Warn("efetch request failed", "attempt", attempt, "err", err)
			if attempt == retries {
				break
			}
			if err := sleep(ctx, time.Duration(attempt*300)*time.Millisecond); err != nil {
				return nil, err
			}
			continue
		}
		if resp.StatusCode == http.StatusOK {
			return resp.Body, nil
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		lastErr = &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			return nil, lastErr
		}
		if attempt == retries {
			c.logger().Warn("efetch throttled", "status", resp.StatusCode, "attempt", attempt)
			break
		}
		wait := retryAfter(resp.Header.Get("Retry-After"))
		if wait == 0 {
			wait = time.Duration(attempt*500) * time.Millisecond
		}
		c.logger().Warn("efetch throttled", "status", resp.StatusCode, "attempt", attempt, "wait", wait)
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("efetch failed after %d attempts: %w", retries, lastErr)
}

// FetchAll downloads ids in batches and copies the concatenated flat files
// to w. It returns the number of bytes written.
func (c *Client) FetchAll(ctx context.Context, req FetchRequest, batchSize int, w io.Writer) (int64, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	var total int64
	ids := req.IDs
	for start := 0; start < len(ids); start += batchSize {
		end := min(start+batchSize, len(ids))
		batch := req
		batch.IDs = ids[start:end]
		c.logger().Info("fetching batch", "from", start+1, "to", end, "of", len(ids))
		body, err := c.Fetch(ctx, batch)
		if err != nil {
			return total, err
		}
		n, err := io.Copy(w, body)
		_ = body.Close()
		total += n
		if err != nil {
			return total, fmt.Errorf("copy efetch response: %w", err)
		}
	}
	return total, nil
}

// retryAfter parses the delay-seconds form of Retry-After.
func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
