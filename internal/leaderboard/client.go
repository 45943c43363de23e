package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atarjan/memebet/internal/models"
)

// ProviderError reports a leaderboard provider failure, distinguishable
// from a generic transport error by carrying the upstream HTTP status.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("leaderboard provider error (status %d): %s", e.StatusCode, e.Message)
}

// Client fetches raw standings from the leaderboard data provider over HTTP.
// It implements Provider.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a leaderboard provider client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// standingsResponse is the provider's wire format.
type standingsResponse struct {
	Data []models.Standing `json:"data"`
}

// FetchStandings retrieves per-user settled-bet outcomes for a window. The
// window filter is applied upstream; the response is passed through after
// validation.
func (c *Client) FetchStandings(ctx context.Context, window models.Window) ([]models.Standing, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/leaderboard?window=%s", c.baseURL, window)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build standings request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch standings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: "unexpected response fetching standings"}
	}

	var response standingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode standings: %w", err)
	}

	for i := range response.Data {
		if err := response.Data[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid standing for user %q: %w", response.Data[i].UserID, err)
		}
	}
	return response.Data, nil
}
