package espn

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fortuna/gridiron/internal/league"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	// BaseURL is the ESPN fantasy football v3 read API.
	BaseURL = "https://lm-api-reads.fantasy.espn.com/apis/v3/games/ffl"

	// DefaultTimeout bounds every upstream request.
	DefaultTimeout = 15 * time.Second

	// DefaultCacheTTL is used when a cache is configured without a TTL.
	DefaultCacheTTL = 5 * time.Minute

	filterHeader = "x-fantasy-filter"
	userAgent    = "gridiron/1.0"
)

// Cache stores raw upstream response bodies.
type Cache interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Store(ctx context.Context, key string, body []byte, ttl time.Duration) error
}

// ClientOptions configures the HTTP client.
type ClientOptions struct {
	BaseURL  string
	ESPNS2   string
	SWID     string
	Timeout  time.Duration
	Retries  int
	Cache    Cache
	CacheTTL time.Duration
	Logger   zerolog.Logger
}

// Client issues authenticated reads against the ESPN fantasy API.
type Client struct {
	http     *resty.Client
	cache    Cache
	cacheTTL time.Duration
	log      zerolog.Logger
}

// NewClient creates a client. Credentials are sent as the espn_s2 and SWID
// cookies on every request.
func NewClient(opts ClientOptions) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = BaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(opts.Retries).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetCookies([]*http.Cookie{
			{Name: "espn_s2", Value: opts.ESPNS2},
			{Name: "SWID", Value: opts.SWID},
		})

	log := opts.Logger.With().Str("component", "espn-client").Logger()
	log.Debug().Str("base_url", baseURL).Dur("timeout", timeout).Msg("client created")

	return &Client{
		http:     httpClient,
		cache:    opts.Cache,
		cacheTTL: ttl,
		log:      log,
	}
}

// get fetches path relative to the base URL and decodes the JSON body into out.
// filter, when non-nil, is JSON-encoded into the x-fantasy-filter header.
func (c *Client) get(ctx context.Context, path string, params url.Values, filter any, out any) error {
	body, err := c.fetch(ctx, path, params, filter)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v (body: %s)", league.ErrSession, path, err, snippet(body))
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, path string, params url.Values, filter any) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParamsFromValues(params)
	}

	var header string
	if filter != nil {
		raw, err := json.Marshal(filter)
		if err != nil {
			return nil, fmt.Errorf("%w: encoding filter: %v", league.ErrSession, err)
		}
		header = string(raw)
		req.SetHeader(filterHeader, header)
	}

	key := cacheKey(path, params, header)
	if c.cache != nil {
		body, ok, err := c.cache.Load(ctx, key)
		if err != nil {
			c.log.Warn().Err(err).Str("path", path).Msg("cache read failed")
		} else if ok {
			c.log.Debug().Str("path", path).Msg("cache hit")
			return body, nil
		}
	}

	c.log.Debug().Str("path", path).Str("query", params.Encode()).Msg("GET")
	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", league.ErrSession, path, err)
	}

	body := resp.Body()
	switch status := resp.StatusCode(); {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, fmt.Errorf("%w: access denied (%d): check espn_s2 and SWID", league.ErrSession, status)
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("%w: league not found (404): %s", league.ErrSession, path)
	case !resp.IsSuccess():
		return nil, fmt.Errorf("%w: GET %s failed: %d body=%s", league.ErrSession, path, status, snippet(body))
	}

	// ESPN answers some failures with an HTML page and a 200.
	if len(body) > 0 && body[0] == '<' {
		return nil, fmt.Errorf("%w: ESPN returned HTML error page: %s", league.ErrSession, snippet(body))
	}

	if c.cache != nil {
		if err := c.cache.Store(ctx, key, body, c.cacheTTL); err != nil {
			c.log.Warn().Err(err).Str("path", path).Msg("cache write failed")
		}
	}
	return body, nil
}

func cacheKey(path string, params url.Values, filter string) string {
	sum := sha256.Sum256([]byte(path + "?" + params.Encode() + "#" + filter))
	return "espn:" + hex.EncodeToString(sum[:])
}

func snippet(body []byte) string {
	return string(body[:min(len(body), 200)])
}
