// Package server exposes the engine over a JSON API plus a websocket feed.
//
// All monetary-looking numbers (odds, payouts) are rounded to two decimal
// places at this boundary and nowhere else; internal arithmetic stays
// float64 end to end.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/atarjan/memebet/internal/acceptance"
	"github.com/atarjan/memebet/internal/betting"
	"github.com/atarjan/memebet/internal/feed"
	"github.com/atarjan/memebet/internal/history"
	"github.com/atarjan/memebet/internal/leaderboard"
	"github.com/atarjan/memebet/internal/logger"
	"github.com/atarjan/memebet/internal/models"
	"github.com/atarjan/memebet/internal/odds"
)

// TrendSource serves the latest trend item set to the API.
type TrendSource interface {
	Current() []models.TrendItem
	Lookup(id string) (models.TrendItem, bool)
}

// Server is the HTTP front end: bet placement and history, current trends,
// the activity feed (snapshot and websocket push), and the leaderboard.
type Server struct {
	httpServer *http.Server
	engine     *betting.Engine
	store      *history.Store
	feed       *feed.Generator
	board      *leaderboard.Poller
	trends     TrendSource
	hub        *Hub
	upgrader   websocket.Upgrader
}

// New creates the API server. The caller wires the feed generator's
// subscriber to PublishActivity so socket clients see new events.
func New(
	addr string,
	engine *betting.Engine,
	store *history.Store,
	feedGen *feed.Generator,
	board *leaderboard.Poller,
	trends TrendSource,
) *Server {
	s := &Server{
		engine: engine,
		store:  store,
		feed:   feedGen,
		board:  board,
		trends: trends,
		hub:    NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/bets", s.handlePlaceBet)
	mux.HandleFunc("GET /api/bets", s.handleListBets)
	mux.HandleFunc("GET /api/trends", s.handleTrends)
	mux.HandleFunc("GET /api/feed", s.handleFeed)
	mux.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /ws/feed", s.handleFeedSocket)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s
}

// Handler exposes the routed handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the hub and serves HTTP until Shutdown. Blocks.
func (s *Server) Start() error {
	go s.hub.Run()
	logger.Info("API server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

// PublishActivity forwards a feed event to connected socket clients.
func (s *Server) PublishActivity(event models.ActivityEvent) {
	s.hub.Broadcast(event)
}

// Shutdown drains in-flight requests and closes socket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	return s.httpServer.Shutdown(ctx)
}

// placeBetRequest is the placement wire format. Balance accompanies the
// request because balances live client-side in this system.
type placeBetRequest struct {
	UserID    string           `json:"user_id"`
	ItemID    string           `json:"item_id"`
	Amount    int64            `json:"amount"`
	Direction models.Direction `json:"direction"`
	Balance   int64            `json:"balance"`
}

type placeBetResponse struct {
	Success         bool    `json:"success"`
	Message         string  `json:"message"`
	BetID           string  `json:"bet_id,omitempty"`
	Odds            float64 `json:"odds,omitempty"`
	PotentialPayout float64 `json:"potential_payout,omitempty"`
}

func (s *Server) handlePlaceBet(w http.ResponseWriter, r *http.Request) {
	var req placeBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if err := req.Direction.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, ok := s.trends.Lookup(req.ItemID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown trend item")
		return
	}

	result, err := s.engine.PlaceBet(r.Context(), req.UserID, item, req.Amount, req.Direction, req.Balance)
	if err != nil {
		writeError(w, placementStatus(err), result.Message)
		return
	}

	priced := odds.PriceDirection(item.BaseOdds, req.Direction)
	writeJSON(w, http.StatusCreated, placeBetResponse{
		Success:         true,
		Message:         result.Message,
		BetID:           result.BetID,
		Odds:            roundDisplay(priced),
		PotentialPayout: roundDisplay(odds.PotentialPayout(req.Amount, priced)),
	})
}

// placementStatus maps lifecycle failures onto HTTP statuses: bad input 400,
// balance conflicts 409, cap violations 422, collaborator failures 502,
// collaborator timeouts 504. Anything else is an internal fault (e.g. a
// history append failure), never the client's.
func placementStatus(err error) int {
	switch {
	case errors.Is(err, odds.ErrInsufficientBalance):
		return http.StatusConflict
	case errors.Is(err, odds.ErrAmountExceedsLimit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, odds.ErrInvalidAmount):
		return http.StatusBadRequest
	}

	var accErr *acceptance.AcceptanceError
	if errors.As(err, &accErr) {
		if accErr.Timeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// betView is a BetRecord with display-rounded odds and payout attached.
type betView struct {
	models.BetRecord
	Odds            float64 `json:"odds"`
	PotentialPayout float64 `json:"potential_payout"`
}

func (s *Server) handleListBets(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user query parameter is required")
		return
	}

	records, err := s.store.ListForUser(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to list bets for %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "failed to load bet history")
		return
	}

	views := make([]betView, 0, len(records))
	for _, rec := range records {
		views = append(views, betView{
			BetRecord:       rec,
			Odds:            roundDisplay(rec.Odds),
			PotentialPayout: roundDisplay(odds.PotentialPayout(rec.Amount, rec.Odds)),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": views})
}

// trendView carries direction-adjusted odds alongside each item so the UI
// does not reimplement pricing.
type trendView struct {
	models.TrendItem
	BaseOdds float64 `json:"base_odds"`
	OddsUp   float64 `json:"odds_up"`
	OddsDown float64 `json:"odds_down"`
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	items := s.trends.Current()
	views := make([]trendView, 0, len(items))
	for _, item := range items {
		views = append(views, trendView{
			TrendItem: item,
			BaseOdds:  roundDisplay(item.BaseOdds),
			OddsUp:    roundDisplay(odds.PriceDirection(item.BaseOdds, models.DirectionUp)),
			OddsDown:  roundDisplay(odds.PriceDirection(item.BaseOdds, models.DirectionDown)),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": views})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": s.feed.Events()})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("window"); raw != "" {
		window := models.Window(raw)
		if err := window.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if window != s.board.Window() {
			if err := s.board.SetWindow(r.Context(), window); err != nil {
				logger.Warn("Leaderboard window change refresh failed: %v", err)
			}
		}
	}

	entries, summary := s.board.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"window":  s.board.Window(),
		"data":    entries,
		"summary": summary,
	})
}

func (s *Server) handleFeedSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("Feed socket upgrade failed: %v", err)
		return
	}

	// Catch-up: the current snapshot first, oldest of it last, then live
	// events via the hub.
	for _, event := range s.feed.Events() {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(event); err != nil {
			conn.Close()
			return
		}
	}

	select {
	case s.hub.register <- conn:
	case <-s.hub.done:
		conn.Close()
		return
	}

	// Drain reads so close frames and pings are processed; the feed never
	// accepts client data.
	go func() {
		defer func() {
			select {
			case s.hub.unregister <- conn:
			case <-s.hub.done:
			}
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// roundDisplay rounds a display value to two decimal places.
func roundDisplay(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
