// Package api exposes the research pipeline over HTTP: the memo
// inbox, investment lifecycle, analyst leaderboard, watchlists, scan
// triggers and the live progress websocket.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-scout/internal/config"
	"github.com/yourusername/stock-scout/internal/metrics"
	"github.com/yourusername/stock-scout/internal/models"
	"github.com/yourusername/stock-scout/internal/realtime"
	"github.com/yourusername/stock-scout/internal/repository"
	"github.com/yourusername/stock-scout/internal/service"
)

// Inbox is the memo review surface the API exposes.
type Inbox interface {
	List(ctx context.Context, filter repository.MemoFilter, page, pageSize int) ([]*models.InvestmentMemo, int, error)
	ListPending(ctx context.Context, filter repository.MemoFilter, page, pageSize int) ([]*models.InvestmentMemo, int, error)
	GetMemo(ctx context.Context, id uuid.UUID) (*models.InvestmentMemo, error)
	Approve(ctx context.Context, memoID uuid.UUID, entryPriceOverride *float64) (*models.Investment, error)
	Reject(ctx context.Context, memoID uuid.UUID) error
}

// Investments is the position lifecycle surface.
type Investments interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Investment, error)
	List(ctx context.Context, filter repository.InvestmentFilter, page, pageSize int) ([]*models.Investment, int, error)
	Close(ctx context.Context, id uuid.UUID, exitPrice float64, exitDate time.Time) (*service.ClosedInvestment, error)
	CurrentReturn(ctx context.Context, id uuid.UUID) (float64, error)
}

// Stats is the analyst performance surface.
type Stats interface {
	Get(ctx context.Context, analyst string) (*models.AnalystStatsWithRates, error)
	Refresh(ctx context.Context, analyst string) (*models.AnalystStatsWithRates, error)
	Leaderboard(ctx context.Context, orderBy string, count int) ([]models.AnalystStatsWithRates, error)
}

// Watchlists is the ticker set surface.
type Watchlists interface {
	Get(ctx context.Context, name string) (*models.Watchlist, error)
	AddTickers(ctx context.Context, name string, tickers []string) (*models.Watchlist, error)
	RemoveTickers(ctx context.Context, name string, tickers []string) (*models.Watchlist, error)
	Replace(ctx context.Context, name string, tickers []string) (*models.Watchlist, error)
	Delete(ctx context.Context, name string) error
}

// ScanTrigger starts research runs on demand.
type ScanTrigger interface {
	RunWatchlistScan(ctx context.Context) (*models.ScanResult, error)
}

// Server routes HTTP traffic to the services.
type Server struct {
	inbox       Inbox
	investments Investments
	stats       Stats
	watchlists  Watchlists
	scans       ScanTrigger
	hub         *realtime.Hub

	router   *mux.Router
	server   *http.Server
	upgrader websocket.Upgrader
	logger   *logrus.Logger
}

// NewServer wires the routes. The hub may be nil when realtime is
// disabled.
func NewServer(
	inbox Inbox,
	investments Investments,
	stats Stats,
	watchlists Watchlists,
	scans ScanTrigger,
	hub *realtime.Hub,
	log *logrus.Logger,
) *Server {
	s := &Server{
		inbox:       inbox,
		investments: investments,
		stats:       stats,
		watchlists:  watchlists,
		scans:       scans,
		hub:         hub,
		logger:      log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	r := mux.NewRouter()

	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/memos", s.handleListMemos).Methods(http.MethodGet)
	v1.HandleFunc("/memos/pending", s.handleListPending).Methods(http.MethodGet)
	v1.HandleFunc("/memos/{id}", s.handleGetMemo).Methods(http.MethodGet)
	v1.HandleFunc("/memos/{id}/approve", s.handleApproveMemo).Methods(http.MethodPost)
	v1.HandleFunc("/memos/{id}/reject", s.handleRejectMemo).Methods(http.MethodPost)

	v1.HandleFunc("/investments", s.handleListInvestments).Methods(http.MethodGet)
	v1.HandleFunc("/investments/{id}", s.handleGetInvestment).Methods(http.MethodGet)
	v1.HandleFunc("/investments/{id}/close", s.handleCloseInvestment).Methods(http.MethodPost)
	v1.HandleFunc("/investments/{id}/return", s.handleCurrentReturn).Methods(http.MethodGet)

	v1.HandleFunc("/analysts/{analyst}/stats", s.handleGetStats).Methods(http.MethodGet)
	v1.HandleFunc("/analysts/{analyst}/refresh", s.handleRefreshStats).Methods(http.MethodPost)
	v1.HandleFunc("/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)

	v1.HandleFunc("/watchlists/{name}", s.handleGetWatchlist).Methods(http.MethodGet)
	v1.HandleFunc("/watchlists/{name}", s.handleReplaceWatchlist).Methods(http.MethodPut)
	v1.HandleFunc("/watchlists/{name}", s.handleDeleteWatchlist).Methods(http.MethodDelete)
	v1.HandleFunc("/watchlists/{name}/tickers", s.handleAddTickers).Methods(http.MethodPost)
	v1.HandleFunc("/watchlists/{name}/tickers", s.handleRemoveTickers).Methods(http.MethodDelete)

	v1.HandleFunc("/scans", s.handleTriggerScan).Methods(http.MethodPost)

	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	s.router = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until the context is cancelled.
func (s *Server) Start(ctx context.Context, cfg config.ServerConfig) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.WithError(err).Error("API server shutdown error")
		}
	}()

	s.logger.WithField("addr", s.server.Addr).Info("API server starting")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

var (
	_ Inbox       = (*service.InboxService)(nil)
	_ Investments = (*service.InvestmentService)(nil)
	_ Stats       = (*service.StatsService)(nil)
	_ Watchlists  = (*service.WatchlistService)(nil)
)

// handleTriggerScan kicks off a watchlist scan in the background and
// returns immediately. Progress streams over the websocket.
func (s *Server) handleTriggerScan(w http.ResponseWriter, r *http.Request) {
	if s.scans == nil {
		writeErrorMessage(w, http.StatusServiceUnavailable, "scanning is not configured")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()
		if _, err := s.scans.RunWatchlistScan(ctx); err != nil {
			s.logger.WithError(err).Error("Triggered scan failed")
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "scan started"})
}

// handleWebSocket upgrades the connection and registers it for scan
// progress broadcasts. Reads are drained only to detect disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeErrorMessage(w, http.StatusServiceUnavailable, "realtime is disabled")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	s.hub.AddClient(conn)

	go func() {
		defer s.hub.RemoveClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
