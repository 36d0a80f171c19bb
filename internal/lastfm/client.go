package lastfm

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/lfmgenre/internal/ratelimit"
	"github.com/desertthunder/lfmgenre/internal/shared"
)

const (
	DefaultBaseURL   = "http://ws.audioscrobbler.com:80/2.0/"
	DefaultUserAgent = "lfmgenre/0.5"

	maxBodyBytes = 1 << 20
	redacted     = "REDACTED"
)

// Client performs rate limited GET requests against the web service.
type Client struct {
	apiKey     string
	userAgent  string
	baseURL    *url.URL
	hostKey    string
	httpClient *http.Client
	limiter    *ratelimit.Keyed
	logger     *log.Logger
}

// NewClient creates a client from cfg. A nil httpClient gets one with cfg's timeout;
// a nil limiter gets one spacing requests by cfg's minimum delay.
func NewClient(cfg shared.LastFMConfig, httpClient *http.Client, limiter *ratelimit.Keyed, logger *log.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: lastfm api key", shared.ErrMissingCredentials)
	}

	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("%w: lastfm.base_url %q", shared.ErrInvalidConfig, raw)
	}

	if httpClient == nil {
		timeout := cfg.Timeout()
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if limiter == nil {
		limiter = ratelimit.New(cfg.MinDelay())
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		apiKey:     cfg.APIKey,
		userAgent:  userAgent,
		baseURL:    base,
		hostKey:    ratelimit.HostKey(base),
		httpClient: httpClient,
		limiter:    limiter,
		logger:     shared.WithLogger(logger, "component", "lastfm"),
	}, nil
}

// TopTags calls one of the *.gettoptags methods with params.
//
// A status="failed" reply is returned as [*APIError]. Network errors, a
// cancelled ctx and non-200 replies without an error element wrap
// [ErrRequestFailed]. A 200 reply that cannot be parsed, or lacks a
// <toptags> element, yields an empty TopTags and no error.
func (c *Client) TopTags(ctx context.Context, method string, params url.Values) (*TopTags, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("method", method)
	query.Set("api_key", c.apiKey)

	reqURL := *c.baseURL
	reqURL.RawQuery = query.Encode()
	logURL := c.redact(reqURL)

	if err := c.limiter.Wait(ctx, c.hostKey); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrRequestFailed, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("request", "method", method, "url", logURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRequestFailed, method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrRequestFailed, err)
	}

	var env response
	decodeErr := xml.NewDecoder(bytes.NewReader(body)).Decode(&env)

	if decodeErr == nil && env.Status == statusFailed {
		apiErr := newAPIError(env.Error, logURL)
		c.logger.Error("lastfm api error", "code", apiErr.Code, "message", apiErr.Message, "url", logURL)
		return nil, apiErr
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrRequestFailed, method, resp.StatusCode)
	}

	if decodeErr != nil {
		c.logger.Warn("unparseable response, treating as no tags", "url", logURL, "err", decodeErr)
		return &TopTags{}, nil
	}
	if env.TopTags == nil {
		c.logger.Warn("response without toptags, treating as no tags", "url", logURL, "status", env.Status)
		return &TopTags{}, nil
	}

	return env.TopTags, nil
}

func (c *Client) redact(u url.URL) string {
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", redacted)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
