// Package finnhub provides symbol search against the Finnhub API.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aristath/advisor/internal/clientdata"
	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://finnhub.io/api/v1"

// SearchResult is a single symbol match.
type SearchResult struct {
	Symbol        string `json:"symbol"`
	Description   string `json:"description"`
	DisplaySymbol string `json:"displaySymbol"`
	Type          string `json:"type"`
}

// SearchResponse is the symbol lookup response.
type SearchResponse struct {
	Count  int            `json:"count"`
	Result []SearchResult `json:"result"`
}

// Client for the Finnhub API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
	cacheRepo  *clientdata.Repository
}

// NewClient creates a new Finnhub client.
// baseURL may be empty to use the public API endpoint.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(baseURL, apiKey string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With().Str("client", "finnhub").Logger(),
		cacheRepo:  cacheRepo,
	}
}

// Search looks up symbols matching a free-text query.
// Results are cached briefly; on API failure stale results are served
// if available.
func (c *Client) Search(ctx context.Context, query string) (*SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}

	cacheKey := strings.ToLower(query)

	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh("finnhub_search", cacheKey)
		if err == nil && data != nil {
			var cached SearchResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().Str("query", query).Msg("Cache hit")
				return &cached, nil
			}
		}
	}

	reqURL := fmt.Sprintf("%s/search?q=%s&token=%s", c.baseURL, url.QueryEscape(query), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if stale, ok := c.getStale(cacheKey); ok {
			c.log.Warn().Err(err).Str("query", query).Msg("API failed, using stale cached results")
			return stale, nil
		}
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if stale, ok := c.getStale(cacheKey); ok {
			c.log.Warn().Int("status", resp.StatusCode).Str("query", query).Msg("API error, using stale cached results")
			return stale, nil
		}
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("finnhub_search", cacheKey, result, clientdata.TTLSymbolSearch); err != nil {
			c.log.Warn().Err(err).Str("query", query).Msg("Failed to cache search results")
		}
	}

	c.log.Debug().Str("query", query).Int("count", result.Count).Msg("Symbol search complete")
	return &result, nil
}

// getStale retrieves cached results even if expired.
func (c *Client) getStale(cacheKey string) (*SearchResponse, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}

	data, err := c.cacheRepo.Get("finnhub_search", cacheKey)
	if err != nil || data == nil {
		return nil, false
	}

	var cached SearchResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}

	return &cached, true
}
