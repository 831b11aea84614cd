// Package execution places sized signals through the broker adapter,
// with idempotent client order ids and a single retry on transient
// broker rejections.
package execution

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/victorious243/scalper/internal/broker"
	"github.com/victorious243/scalper/internal/logging"
	"github.com/victorious243/scalper/pkg/types"
)

var retryableStatuses = map[string]bool{
	"10004":      true,
	"10006":      true,
	"OFF_QUOTES": true,
	"REQUOTE":    true,
}

// Engine places orders through a broker.Adapter, guarding against
// duplicate client order ids and retrying once on a transient status.
type Engine struct {
	mu          sync.Mutex
	adapter     broker.Adapter
	logger      *zap.Logger
	idempotency map[string]string
}

// New builds an Engine bound to adapter.
func New(adapter broker.Adapter, logger *zap.Logger) *Engine {
	return &Engine{
		adapter:     adapter,
		logger:      logger.Named("execution"),
		idempotency: make(map[string]string),
	}
}

// Place submits signal at volume, generating a fresh idempotent client
// order id. A duplicate id (which should not occur given the fresh
// suffix, but guards against a caller retrying a stale id) is rejected
// without touching the broker.
func (e *Engine) Place(signal types.Signal, volume decimal.Decimal) types.OrderResult {
	clientOrderID := signal.Symbol + "-" + signal.Strategy + "-" + uuid.New().String()[:8]

	e.mu.Lock()
	if _, seen := e.idempotency[clientOrderID]; seen {
		e.mu.Unlock()
		return types.OrderResult{Success: false, Status: "DUPLICATE", Message: "Duplicate order blocked"}
	}
	e.mu.Unlock()

	order := types.OrderRequest{
		Symbol:        signal.Symbol,
		Side:          signal.Side,
		OrderType:     signal.OrderType,
		Volume:        volume,
		EntryPrice:    signal.EntryPrice,
		StopLoss:      signal.StopLoss,
		TakeProfit:    signal.TakeProfit,
		ClientOrderID: clientOrderID,
		Time:          signal.Time,
	}

	var result types.OrderResult
	for attempt := 0; attempt < 2; attempt++ {
		result = e.adapter.PlaceOrder(order)
		if result.Success {
			break
		}
		if !retryableStatuses[strings.ToUpper(result.Status)] && !retryableStatuses[strings.ToUpper(result.Message)] {
			break
		}
	}

	e.mu.Lock()
	e.idempotency[clientOrderID] = result.Status
	e.mu.Unlock()

	return result
}

// CanOpen reports whether symbol has fewer than maxPositions open
// positions.
func (e *Engine) CanOpen(symbol string, maxPositions int) bool {
	return len(e.adapter.GetOpenPositions(symbol)) < maxPositions
}

// LogResult emits the order_result event for signal/result.
func (e *Engine) LogResult(signal types.Signal, result types.OrderResult, volume decimal.Decimal) {
	logging.Event(e.logger, "order_result",
		zap.String("symbol", signal.Symbol),
		zap.String("strategy", signal.Strategy),
		zap.String("side", string(signal.Side)),
		zap.String("volume", volume.String()),
		zap.String("status", result.Status),
		zap.String("message", result.Message),
		zap.Bool("success", result.Success),
	)
}
