package trends

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchTrending(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trending" {
			t.Errorf("Expected path /trending, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "25" {
			t.Errorf("Expected limit=25, got %s", r.URL.Query().Get("limit"))
		}

		response := trendingResponse{
			Data: []trendingItem{
				{ID: "1", Title: "Much Wow!", Popularity: 1000},
				{ID: "2", Title: "Rare Pepe", Popularity: 850},
				{ID: "3", Title: "Diamond Hands", Popularity: 1200},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			t.Errorf("Failed to encode response: %v", err)
		}
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, 5*time.Second, ClientConfig{})
	items, err := client.FetchTrending(context.Background(), 25)
	if err != nil {
		t.Fatalf("FetchTrending failed: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}

	// The most popular item sits at the 1.0 floor.
	if math.Abs(items[2].BaseOdds-1.0) > 1e-9 {
		t.Errorf("Expected base odds 1.0 for most popular item, got %v", items[2].BaseOdds)
	}
	// Less popular items pay more.
	if items[1].BaseOdds <= items[0].BaseOdds {
		t.Errorf("Expected item with popularity 850 to pay more than 1000: %v vs %v",
			items[1].BaseOdds, items[0].BaseOdds)
	}
	for _, item := range items {
		if item.BaseOdds < 1.0 {
			t.Errorf("Base odds below 1.0 for %s: %v", item.ID, item.BaseOdds)
		}
		if err := item.Validate(); err != nil {
			t.Errorf("Item %s failed validation: %v", item.ID, err)
		}
	}

	if items[0].Symbol != "MUCH" {
		t.Errorf("Expected symbol MUCH, got %s", items[0].Symbol)
	}
	if items[1].Symbol != "RARE" {
		t.Errorf("Expected symbol RARE, got %s", items[1].Symbol)
	}
}

func TestFetchTrendingServerErrorRetries(t *testing.T) {
	var calls int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, 5*time.Second, ClientConfig{MaxRetries: 3, RetryDelayBase: time.Millisecond})
	_, err := client.FetchTrending(context.Background(), 25)
	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Errorf("Expected ProviderError in chain, got %v", err)
	} else if provErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", provErr.StatusCode)
	}

	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestFetchTrendingClientErrorNoRetry(t *testing.T) {
	var calls int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, 5*time.Second, ClientConfig{MaxRetries: 3, RetryDelayBase: time.Millisecond})
	_, err := client.FetchTrending(context.Background(), 25)

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Expected ProviderError, got %v", err)
	}
	if provErr.StatusCode != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", provErr.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 attempt (no retry on 4xx), got %d", got)
	}
}

func TestFetchTrendingEmptyBatch(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer mockServer.Close()

	client := NewClient(mockServer.URL, 5*time.Second, ClientConfig{})
	items, err := client.FetchTrending(context.Background(), 25)
	if err != nil {
		t.Fatalf("FetchTrending failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected empty batch, got %d items", len(items))
	}
}

func TestBaseOddsFor(t *testing.T) {
	tests := []struct {
		name       string
		popularity float64
		maxPop     float64
		want       float64
	}{
		{"top of batch at floor", 1200, 1200, 1.0},
		{"bottom of band", 0, 1200, 2.5},
		{"midpoint", 600, 1200, 1.75},
		{"unranked batch falls back to band middle", 0, 0, 1.75},
		{"negative popularity clamped", -10, 1200, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := baseOddsFor(tt.popularity, tt.maxPop)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("baseOddsFor(%v, %v) = %v, want %v", tt.popularity, tt.maxPop, got, tt.want)
			}
		})
	}
}

func TestSymbolFor(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Much Wow!", "MUCH"},
		{"Rare Pepe", "RARE"},
		{"ok", "OK"},
		{"!!!", "MEME"},
		{"", "MEME"},
		{"a b c d e", "ABCD"},
	}
	for _, tt := range tests {
		if got := SymbolFor(tt.name); got != tt.want {
			t.Errorf("SymbolFor(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
