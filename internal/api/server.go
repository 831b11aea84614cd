// Package api serves the bot's monitoring and control surface: health,
// risk accounting, open trades/positions, and a WebSocket event stream,
// plus a prometheus /metrics handler.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/victorious243/scalper/internal/broker"
	"github.com/victorious243/scalper/internal/risk"
	"github.com/victorious243/scalper/internal/store"
	"github.com/victorious243/scalper/internal/tradebook"
	"github.com/victorious243/scalper/pkg/utils"
)

// Config controls the HTTP/WebSocket listener.
type Config struct {
	Host          string
	Port          int
	WebSocketPath string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

// DefaultConfig mirrors the bot's own sensible-default posture: bind all
// interfaces on port 8090, short timeouts, a conventional ws path.
func DefaultConfig() Config {
	return Config{
		Host:          "0.0.0.0",
		Port:          8090,
		WebSocketPath: "/ws",
		ReadTimeout:   10 * time.Second,
		WriteTimeout:  10 * time.Second,
	}
}

// Server is the HTTP/WebSocket API server exposing the running bot's
// risk, trade, and position state.
type Server struct {
	mu         sync.RWMutex
	logger     *zap.Logger
	config     Config
	router     *mux.Router
	httpServer *http.Server
	upgrader   websocket.Upgrader
	clients    map[string]*Client

	risk      *risk.Manager
	trades    *tradebook.TradeBook
	adapter   broker.Adapter
	store     *store.Store
	startedAt time.Time
}

// SetStore attaches the trade store, enabling the /performance handler.
// Optional: without it, /performance reports only a zero trade count.
func (s *Server) SetStore(st *store.Store) { s.store = st }

// Message is a WebSocket envelope: server-pushed events and client
// subscribe/unsubscribe requests share this shape.
type Message struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"` // event, subscribe, unsubscribe
	Method    string      `json:"method"`
	Payload   interface{} `json:"payload,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// NewServer builds a Server bound to the engine's risk manager, trade
// book, and broker adapter. Routes are registered immediately.
func NewServer(logger *zap.Logger, cfg Config, riskManager *risk.Manager, trades *tradebook.TradeBook, adapter broker.Adapter) *Server {
	s := &Server{
		logger:    logger.Named("api"),
		config:    cfg,
		router:    mux.NewRouter(),
		clients:   make(map[string]*Client),
		risk:      riskManager,
		trades:    trades,
		adapter:   adapter,
		startedAt: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/risk/stats", s.handleRiskStats).Methods("GET")
	s.router.HandleFunc("/trades/open", s.handleOpenTrades).Methods("GET")
	s.router.HandleFunc("/positions", s.handlePositions).Methods("GET")
	s.router.HandleFunc("/performance", s.handlePerformance).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	s.router.HandleFunc(s.config.WebSocketPath, s.handleWebSocket)
}

// Start runs the HTTP server. It blocks until Stop shuts it down or it
// fails to bind.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.router)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("starting api server", zap.String("addr", addr))
	return s.httpServer.ListenAndServe()
}

// Stop closes every WebSocket client and shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	for _, client := range s.clients {
		client.Conn.Close()
	}
	s.mu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(s.startedAt)
	account := s.adapter.GetAccountInfo()
	writeJSON(w, map[string]interface{}{
		"status":      "healthy",
		"time":        time.Now().Unix(),
		"uptime_secs": int64(uptime.Seconds()),
		"uptime":      utils.FormatDuration(uptime),
		"broker_up":   s.adapter.IsConnected(),
		"equity":      utils.FormatMoney(account.Equity, account.Currency),
		"clients":     s.ClientCount(),
	})
}

func (s *Server) handleRiskStats(w http.ResponseWriter, r *http.Request) {
	global, ok := s.risk.GlobalStats()
	resp := map[string]interface{}{
		"symbols": s.risk.Stats(),
	}
	if ok {
		resp["global"] = global
	}
	writeJSON(w, resp)
}

func (s *Server) handleOpenTrades(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"trades": s.trades.Open(),
	})
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	writeJSON(w, map[string]interface{}{
		"positions": s.adapter.GetOpenPositions(symbol),
	})
}

// handlePerformance reports win rate, profit factor, Sharpe ratio, and
// max drawdown over the most recent 200 closed trades from the store.
// Sharpe and drawdown are derived from a cumulative-PnL equity curve
// starting at 0, oldest trade first.
func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, map[string]interface{}{"trades": 0})
		return
	}
	pnls, err := s.store.RecentPnLs(200)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	equity := make([]decimal.Decimal, len(pnls)+1)
	equity[0] = decimal.Zero
	for i := len(pnls) - 1; i >= 0; i-- {
		equity[len(pnls)-i] = equity[len(pnls)-i-1].Add(pnls[i])
	}

	writeJSON(w, map[string]interface{}{
		"trades":       len(pnls),
		"winRate":      utils.CalculateWinRate(pnls),
		"profitFactor": utils.CalculateProfitFactor(pnls),
		"sharpeRatio":  utils.CalculateSharpeRatio(utils.CalculateReturns(equity), decimal.Zero, 252),
		"maxDrawdown":  utils.CalculateMaxDrawdown(equity),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// handleWebSocket upgrades the connection and starts its read/write
// pumps. Subscriptions default to "events", the channel Broadcast
// pushes every engine-level notification to.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan []byte, 256),
		Subs: map[string]bool{"events": true},
	}

	s.mu.Lock()
	s.clients[client.ID] = client
	s.mu.Unlock()

	s.logger.Info("websocket client connected", zap.String("id", client.ID))

	go s.readPump(client)
	go s.writePump(client)
}

func (s *Server) readPump(client *Client) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, client.ID)
		s.mu.Unlock()
		client.Conn.Close()
		s.logger.Info("websocket client disconnected", zap.String("id", client.ID))
	}()

	client.Conn.SetReadLimit(64 * 1024)
	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, raw, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Warn("invalid websocket message", zap.Error(err))
			continue
		}

		client.mu.Lock()
		switch msg.Type {
		case "subscribe":
			client.Subs[msg.Method] = true
		case "unsubscribe":
			delete(client.Subs, msg.Method)
		}
		client.mu.Unlock()
	}
}

func (s *Server) writePump(client *Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Broadcast pushes an event to every client currently subscribed to
// channel. New clients start subscribed to "events" and may unsubscribe.
func (s *Server) Broadcast(channel, method string, payload interface{}) {
	msg := Message{
		ID:        uuid.New().String(),
		Type:      "event",
		Method:    method,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to marshal broadcast", zap.Error(err))
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, client := range s.clients {
		client.mu.RLock()
		subscribed := client.Subs[channel]
		client.mu.RUnlock()
		if !subscribed {
			continue
		}
		select {
		case client.Send <- data:
		default:
			s.logger.Warn("client send buffer full, dropping message", zap.String("client", client.ID))
		}
	}
}

// Router exposes the underlying handler for tests; production code
// should call Start instead.
func (s *Server) Router() http.Handler {
	return s.router
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
