// Package trends provides the client for the upstream trend-data provider.
//
// The provider returns a ranked list of trending meme items; this client
// converts them into TrendItems with a popularity-derived base odds value.
// Less popular items pay more: popularity is normalized against the batch
// maximum and mapped linearly into [1.0, 2.5].
package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/atarjan/memebet/internal/models"
)

// oddsSpread is the width of the base odds band above the 1.0 floor.
const oddsSpread = 1.5

// ProviderError reports a trend provider failure, distinguishable from a
// generic transport error by carrying the upstream HTTP status.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("trend provider error (status %d): %s", e.StatusCode, e.Message)
}

// ClientConfig tunes retry behavior.
type ClientConfig struct {
	MaxRetries     int
	RetryDelayBase time.Duration
}

// Client provides access to the trend provider API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a trend provider client. Timeout bounds every request;
// timeouts surface as transport errors after retries are exhausted.
func NewClient(baseURL string, timeout time.Duration, cfg ClientConfig) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelayBase <= 0 {
		cfg.RetryDelayBase = time.Second
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{Timeout: timeout},
		maxRetries:     cfg.MaxRetries,
		retryDelayBase: cfg.RetryDelayBase,
	}
}

// trendingItem is the provider's wire format for one trending entry.
type trendingItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Popularity float64 `json:"popularity"`
}

// trendingResponse is the provider's wire format for the trending endpoint.
type trendingResponse struct {
	Data []trendingItem `json:"data"`
}

// FetchTrending retrieves the current ranked trend items. The returned set
// replaces the previous one wholesale; items are immutable until the next
// refresh.
func (c *Client) FetchTrending(ctx context.Context, limit int) ([]models.TrendItem, error) {
	url := fmt.Sprintf("%s/trending?limit=%d", c.baseURL, limit)

	resp, err := c.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trending items: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: "unexpected response fetching trending items"}
	}

	var response trendingResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode trending items: %w", err)
	}

	now := time.Now()
	maxPop := 0.0
	for _, it := range response.Data {
		if it.Popularity > maxPop {
			maxPop = it.Popularity
		}
	}

	items := make([]models.TrendItem, 0, len(response.Data))
	for _, it := range response.Data {
		items = append(items, models.TrendItem{
			ID:         it.ID,
			Name:       it.Title,
			Symbol:     SymbolFor(it.Title),
			BaseOdds:   baseOddsFor(it.Popularity, maxPop),
			Popularity: it.Popularity,
			FetchedAt:  now,
		})
	}
	return items, nil
}

// baseOddsFor maps popularity onto the base odds band. The most popular item
// of a batch sits at the 1.0 floor; unranked batches (max popularity 0) fall
// back to the middle of the band.
func baseOddsFor(popularity, maxPopularity float64) float64 {
	if maxPopularity <= 0 {
		return 1.0 + oddsSpread/2
	}
	if popularity < 0 {
		popularity = 0
	}
	return 1.0 + oddsSpread*(1.0-popularity/maxPopularity)
}

// SymbolFor derives a ticker-style symbol from an item name: the first four
// letters or digits, uppercased. Names with no usable characters get "MEME".
func SymbolFor(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			if b.Len() >= 4 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "MEME"
	}
	return b.String()
}

// doRequest performs an HTTP GET with linear-backoff retries on transport
// errors and 5xx responses.
func (c *Client) doRequest(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelayBase * time.Duration(i+1)):
			}
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = &ProviderError{StatusCode: resp.StatusCode, Message: "server error"}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelayBase * time.Duration(i+1)):
			}
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
