// Package linkedin fetches public LinkedIn job pages, search results and
// guest API responses.
package linkedin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://www.linkedin.com"

	rateLimitWait = 10 * time.Second
)

var (
	ErrForbidden        = errors.New("linkedin: forbidden")
	ErrNotFound         = errors.New("linkedin: not found")
	ErrRetriesExhausted = errors.New("linkedin: retries exhausted")
)

// DefaultUserAgents is rotated per request when no pool is configured.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.0.0",
}

type Options struct {
	BaseURL       string
	Timeout       time.Duration
	MinDelay      time.Duration
	MaxDelay      time.Duration
	MaxRetries    int
	MaxEmptyPages int
	ProxyURL      string
	UserAgents    []string
}

// Client fetches LinkedIn guest pages and API responses.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	userAgents []string

	minDelay      time.Duration
	maxDelay      time.Duration
	maxRetries    int
	maxEmptyPages int

	sleep func(ctx context.Context, d time.Duration) error

	mu          sync.Mutex
	lastPosting *postingResult
}

// postingResult is the outcome of the latest job posting request.
type postingResult struct {
	jobID string
	body  []byte
	err   error
}

func New(opts Options, logger *zap.Logger) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.MaxEmptyPages < 1 {
		opts.MaxEmptyPages = 3
	}
	if opts.MaxDelay < opts.MinDelay {
		opts.MaxDelay = opts.MinDelay
	}
	if len(opts.UserAgents) == 0 {
		opts.UserAgents = DefaultUserAgents
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	if opts.ProxyURL != "" {
		proxy, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
		logger.Info("using proxy", zap.String("host", proxy.Host))
	}

	return &Client{
		baseURL: opts.BaseURL,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		logger:        logger,
		userAgents:    opts.UserAgents,
		minDelay:      opts.MinDelay,
		maxDelay:      opts.MaxDelay,
		maxRetries:    opts.MaxRetries,
		maxEmptyPages: opts.MaxEmptyPages,
		sleep:         sleepContext,
	}, nil
}

// FetchJobPosting asks the guest job posting endpoint. The answer is either
// JSON or an HTML fragment depending on what LinkedIn decides to serve.
func (c *Client) FetchJobPosting(ctx context.Context, jobID string) ([]byte, error) {
	headers := http.Header{}
	headers.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	headers.Set("X-Requested-With", "XMLHttpRequest")

	data, err := c.get(ctx, c.baseURL+"/jobs-guest/jobs/api/jobPosting/"+jobID, headers)
	if err != nil {
		err = fmt.Errorf("fetch job posting %s: %w", jobID, err)
		if ctx.Err() == nil {
			c.remember(&postingResult{jobID: jobID, err: err})
		}
		return nil, err
	}

	c.remember(&postingResult{jobID: jobID, body: data})
	return data, nil
}

func (c *Client) remember(r *postingResult) {
	c.mu.Lock()
	c.lastPosting = r
	c.mu.Unlock()
}

// recall hands out the remembered posting outcome for jobID once.
func (c *Client) recall(jobID string) (*postingResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.lastPosting
	if r == nil || r.jobID != jobID {
		return nil, false
	}
	c.lastPosting = nil
	return r, true
}

// FetchJobPage downloads the public job page.
func (c *Client) FetchJobPage(ctx context.Context, jobID string) ([]byte, error) {
	data, err := c.get(ctx, c.JobPageURL(jobID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch job page %s: %w", jobID, err)
	}
	return data, nil
}

// Fetch downloads an arbitrary page, such as a search result page.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	data, err := c.get(ctx, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	return data, nil
}

func (c *Client) JobPageURL(jobID string) string {
	return c.baseURL + "/jobs/view/" + jobID + "/"
}

// get runs a GET with pacing, retries and status handling. 403 and 404 are
// final; 429, 5xx and transport errors are retried.
func (c *Client) get(ctx context.Context, rawURL string, headers http.Header) ([]byte, error) {
	if err := c.sleep(ctx, c.delay()); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.delay() * time.Duration(1<<attempt)
			c.logger.Debug("retrying request",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			if err := c.sleep(ctx, backoff); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		c.setHeaders(req, headers)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("request failed", zap.String("url", rawURL), zap.Error(err))
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response body: %w", err)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			c.logger.Debug("successful request",
				zap.String("url", rawURL),
				zap.Int("status", resp.StatusCode),
				zap.Int("bytes", len(body)),
			)
			return body, nil
		}

		switch {
		case resp.StatusCode == http.StatusForbidden:
			c.logger.Error("access forbidden, LinkedIn may be blocking requests", zap.String("url", rawURL))
			return nil, ErrForbidden
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := rateLimitWait * time.Duration(1<<attempt)
			c.logger.Warn("rate limit hit, backing off",
				zap.String("url", rawURL),
				zap.Duration("wait", wait),
			)
			lastErr = fmt.Errorf("rate limited: status %d", resp.StatusCode)
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
		case resp.StatusCode >= 500:
			c.logger.Warn("server error",
				zap.String("url", rawURL),
				zap.Int("status", resp.StatusCode),
			)
			lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		default:
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, c.maxRetries, lastErr)
}

func (c *Client) setHeaders(req *http.Request, extra http.Header) {
	req.Header.Set("User-Agent", c.userAgents[rand.Intn(len(c.userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,it;q=0.8")
	req.Header.Set("Referer", c.baseURL+"/jobs/")
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	for k, values := range extra {
		req.Header.Del(k)
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
}

// delay is uniform in [minDelay, maxDelay].
func (c *Client) delay() time.Duration {
	if c.maxDelay <= c.minDelay {
		return c.minDelay
	}
	return c.minDelay + time.Duration(rand.Int63n(int64(c.maxDelay-c.minDelay)+1))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
