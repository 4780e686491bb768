package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// GameResult is one catalog hit from the metadata provider.
type GameResult struct {
	ExternalID  int64  `json:"id"`
	Title       string `json:"name"`
	CoverURL    string `json:"cover_url"`
	ReleaseYear int32  `json:"release_year"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Client talks to the third-party game metadata API. Tokens are
// client-credential grants refreshed shortly before expiry; responses
// are cached through an optional Cache.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	cache       *Cache

	baseURL      string
	clientID     string
	clientSecret string

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// NewClient reads the provider endpoint and credentials from the
// environment. cache may be nil to disable response caching.
func NewClient(cache *Cache) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// 4 requests per second, the provider's documented ceiling
		rateLimiter:  rate.NewLimiter(rate.Every(250*time.Millisecond), 4),
		cache:        cache,
		baseURL:      os.Getenv("METADATA_API_URL"),
		clientID:     os.Getenv("METADATA_CLIENT_ID"),
		clientSecret: os.Getenv("METADATA_CLIENT_SECRET"),
	}
}

// ensureToken refreshes the access token when missing or within a
// minute of expiry.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Until(c.tokenExp) > time.Minute {
		return c.token, nil
	}

	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("client_secret", c.clientSecret)
	params.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed: status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}

	c.token = tok.AccessToken
	c.tokenExp = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	log.Infof("metadata token refreshed, expires %s", c.tokenExp.Format(time.RFC3339))
	return c.token, nil
}

// Search queries the provider for games matching q, serving cached
// results when available.
func (c *Client) Search(ctx context.Context, q string) ([]GameResult, error) {
	cacheKey := "search:" + q
	if c.cache != nil {
		var cached []GameResult
		if ok, _ := c.cache.Get(ctx, cacheKey, &cached); ok {
			return cached, nil
		}
	}

	var results []GameResult
	params := url.Values{}
	params.Set("q", q)
	params.Set("limit", "10")
	if err := c.getJSON(ctx, "/v4/games?"+params.Encode(), &results); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, results); err != nil {
			log.Warnf("metadata cache write failed: %v", err)
		}
	}
	return results, nil
}

// GetByExternalID looks one game up by the provider's id.
func (c *Client) GetByExternalID(ctx context.Context, externalID int64) (*GameResult, error) {
	cacheKey := "game:" + strconv.FormatInt(externalID, 10)
	if c.cache != nil {
		var cached GameResult
		if ok, _ := c.cache.Get(ctx, cacheKey, &cached); ok {
			return &cached, nil
		}
	}

	var result GameResult
	if err := c.getJSON(ctx, fmt.Sprintf("/v4/games/%d", externalID), &result); err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, result); err != nil {
			log.Warnf("metadata cache write failed: %v", err)
		}
	}
	return &result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("metadata request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("metadata request failed: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse metadata response: %w", err)
	}
	return nil
}
