// Package engine wires every subsystem together into the single
// entrypoint the CLI drives: RunOnce evaluates every configured symbol,
// arbitrates among the cycle's candidate signals, places at most one
// order, then supervises and reconciles the positions already open.
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/victorious243/scalper/internal/broker"
	"github.com/victorious243/scalper/internal/config"
	"github.com/victorious243/scalper/internal/execution"
	"github.com/victorious243/scalper/internal/logging"
	"github.com/victorious243/scalper/internal/metrics"
	"github.com/victorious243/scalper/internal/mlfilter"
	"github.com/victorious243/scalper/internal/news"
	"github.com/victorious243/scalper/internal/observer"
	"github.com/victorious243/scalper/internal/risk"
	"github.com/victorious243/scalper/internal/store"
	"github.com/victorious243/scalper/internal/strategy"
	"github.com/victorious243/scalper/internal/supervisor"
	"github.com/victorious243/scalper/internal/tradebook"
	"github.com/victorious243/scalper/pkg/types"
)

// Broadcaster pushes a named event to connected monitoring clients. The
// engine depends only on this interface, not on the api package, to
// avoid wiring the HTTP surface into every caller (tests, backtests).
type Broadcaster interface {
	Broadcast(channel, method string, payload interface{})
}

// candidate is one symbol's winning signal for the cycle, carried
// through arbitration alongside its risk decision and ML score.
type candidate struct {
	signal  types.Signal
	state   types.MarketState
	risk    types.RiskDecision
	mlScore decimal.Decimal
}

// Engine is the evaluation loop's orchestration root.
type Engine struct {
	cfg         config.BotConfig
	adapter     broker.Adapter
	logger      *zap.Logger
	store       *store.Store
	observer    *observer.Observer
	risk        *risk.Manager
	execution   *execution.Engine
	supervisor  *supervisor.Supervisor
	news        *news.Filter
	mlFilter    mlfilter.Filter
	strategies  *strategy.Registry
	tradeBook   *tradebook.TradeBook
	metrics     *metrics.Registry
	broadcaster Broadcaster
}

// Option configures optional Engine collaborators.
type Option func(*Engine)

// WithMetrics attaches a prometheus registry the engine updates every
// cycle.
func WithMetrics(m *metrics.Registry) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithBroadcaster attaches the monitoring API server so run-cycle events
// reach connected WebSocket clients.
func WithBroadcaster(b Broadcaster) Option {
	return func(e *Engine) { e.broadcaster = b }
}

// WithMLFilter overrides the default pass-through ML filter.
func WithMLFilter(f mlfilter.Filter) Option {
	return func(e *Engine) { e.mlFilter = f }
}

// New builds an Engine from its configuration and collaborators. The risk
// manager gets no drawdown override, so it uses cfg.DrawdownKillSwitch.
func New(logger *zap.Logger, cfg config.BotConfig, adapter broker.Adapter, st *store.Store, opts ...Option) *Engine {
	riskManager := risk.New(logger, cfg, adapter, nil)
	newsFilter := news.NewFilter(cfg.NewsWindowPreMinutes, cfg.NewsWindowPostMinutes)
	if cfg.NewsSchedulePath != "" {
		if err := newsFilter.LoadSchedule(cfg.NewsSchedulePath); err != nil {
			logger.Warn("failed to load news schedule", zap.Error(err))
		}
	}

	registry := strategy.NewRegistry()
	registry.Register(strategy.NewTrendPullback(0.0006, 1.6))
	registry.Register(strategy.NewRangeMeanRevert(20, 1.3))
	if cfg.EnableSupplyDemand {
		sdCfg := strategy.DefaultSupplyDemandConfig()
		sdCfg.Enabled = true
		registry.Register(strategy.NewSupplyDemand(sdCfg))
	}

	e := &Engine{
		cfg:        cfg,
		adapter:    adapter,
		logger:     logger.Named("engine"),
		store:      st,
		observer:   observer.New(logger, cfg.Sessions, cfg.DefaultTimezone),
		risk:       riskManager,
		execution:  execution.New(adapter, logger),
		supervisor: supervisor.New(adapter, riskManager, cfg.CloseOnGoodProfit, cfg.GoodProfitRR),
		news:       newsFilter,
		mlFilter:   mlfilter.PassThrough{},
		strategies: registry,
		tradeBook:  tradebook.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Risk exposes the engine's risk manager, for the monitoring API to
// report stats on.
func (e *Engine) Risk() *risk.Manager { return e.risk }

// TradeBook exposes the engine's trade book, for the monitoring API to
// list open trades from.
func (e *Engine) TradeBook() *tradebook.TradeBook { return e.tradeBook }

// SetBroadcaster attaches the monitoring API server after construction,
// since the server itself is built from the engine's risk manager and
// trade book.
func (e *Engine) SetBroadcaster(b Broadcaster) { e.broadcaster = b }

func (e *Engine) insertEvent(now time.Time, eventType, payload string) {
	if e.store == nil {
		return
	}
	if err := e.store.InsertEvent(now, eventType, payload); err != nil {
		e.logger.Warn("failed to persist event", zap.Error(err))
	}
}

// RunOnce evaluates every configured symbol, arbitrates the winning
// candidate, places it unless dry-run, then supervises and reconciles
// every symbol's open positions. It does not sleep or loop; the caller
// supplies the cadence.
func (e *Engine) RunOnce(ctx context.Context, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.metrics != nil {
		start := time.Now()
		defer func() { e.metrics.RunCycleDuration.Observe(time.Since(start).Seconds()) }()
	}
	if !e.adapter.IsConnected() {
		logging.Event(e.logger, "health", zap.String("status", "disconnected"))
		return nil
	}

	var pool []candidate
	for _, symCfg := range e.cfg.Symbols {
		symbol := symCfg.Symbol
		barsM15 := e.adapter.GetBars(symbol, "M15", 200)
		barsH1 := e.adapter.GetBars(symbol, "H1", 200)
		if len(barsM15) < 50 || len(barsH1) < 50 {
			e.insertEvent(now, "no_trade", symbol+":insufficient_bars")
			continue
		}

		stratCtx := strategy.Context{
			BarsByTimeframe: map[string][]types.Bar{"M15": barsM15, "H1": barsH1},
			SymbolInfo:      e.adapter.SymbolInfo(symbol),
			Logger:          e.logger,
		}
		if e.cfg.EnableSupplyDemand {
			for _, tf := range []string{"H1", "H4"} {
				if _, ok := stratCtx.BarsByTimeframe[tf]; !ok {
					stratCtx.BarsByTimeframe[tf] = e.adapter.GetBars(symbol, tf, 300)
				}
			}
		}

		state := e.observer.Evaluate(symbol, barsM15, barsH1, now)
		logging.Event(e.logger, "market_state",
			zap.String("symbol", symbol),
			zap.String("regime", string(state.RegimePrimary)),
			zap.String("vol", state.Volatility.String()),
			zap.String("session", state.Session),
		)
		if e.metrics != nil {
			e.metrics.EquityGauge.Set(mustFloat(e.adapter.GetAccountInfo().Equity))
		}

		if e.news.InRiskWindow(now, symbol, symCfg.NewsSensitivity) {
			e.noTrade(now, symbol, "news_window")
			continue
		}
		if !e.execution.CanOpen(symbol, e.cfg.MaxPositionsPerSymbol) {
			e.noTrade(now, symbol, "position_exists")
			continue
		}

		var candidates []types.Signal
		for _, strat := range e.strategies.All() {
			if sig := strat.Generate(state, barsM15, barsH1, stratCtx); sig != nil {
				candidates = append(candidates, *sig)
				if e.metrics != nil {
					e.metrics.SignalsGenerated.WithLabelValues(symbol, strat.Name()).Inc()
				}
			}
		}
		if len(candidates) == 0 {
			e.noTrade(now, symbol, "no_signal")
			continue
		}
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].Confidence.GreaterThan(candidates[j].Confidence) })
		signal := candidates[0]

		mlDecision := e.mlFilter.Score(signal, state)
		if !mlDecision.Approved {
			e.noTrade(now, symbol, "ml_filter")
			continue
		}

		riskDecision := e.risk.Approve(signal, state)
		if !riskDecision.Approved {
			e.noTrade(now, symbol, riskDecision.Reason)
			if e.metrics != nil {
				e.metrics.RiskRejections.WithLabelValues(symbol, riskDecision.Reason).Inc()
			}
			continue
		}

		pool = append(pool, candidate{signal: signal, state: state, risk: riskDecision, mlScore: mlDecision.Score})
	}

	if len(pool) > 0 {
		sort.Slice(pool, func(i, j int) bool {
			return pool[i].signal.Confidence.Mul(pool[i].mlScore).GreaterThan(pool[j].signal.Confidence.Mul(pool[j].mlScore))
		})
		best := pool[0]
		for _, loser := range pool[1:] {
			e.noTrade(now, loser.signal.Symbol, "lower_quality_candidate")
		}

		if e.cfg.DryRun {
			logging.Event(e.logger, "dry_run", zap.String("symbol", best.signal.Symbol), zap.String("reason", "dry_run_enabled"))
			e.insertEvent(now, "no_trade", best.signal.Symbol+":dry_run_enabled")
		} else {
			e.place(now, best)
		}
	}

	e.manageOpenPositions(now)
	return nil
}

func (e *Engine) noTrade(now time.Time, symbol, reason string) {
	logging.Event(e.logger, "no_trade", zap.String("symbol", symbol), zap.String("reason", reason))
	e.insertEvent(now, "no_trade", symbol+":"+reason)
}

func (e *Engine) place(now time.Time, best candidate) {
	result := e.execution.Place(best.signal, best.risk.AdjustedSize)
	e.execution.LogResult(best.signal, result, best.risk.AdjustedSize)
	if e.metrics != nil {
		e.metrics.OrdersPlaced.WithLabelValues(best.signal.Symbol, result.Status).Inc()
	}

	if result.Success && result.BrokerPositionID != nil {
		e.risk.RegisterTradeOpen(best.signal.Symbol, best.signal.Time)
		e.supervisor.Register(*result.BrokerPositionID, types.PositionMeta{
			MaxHoldMinutes: best.signal.MaxHoldMinutes,
			EntryTime:      best.signal.Time,
			EntryPrice:     best.signal.EntryPrice,
			ATRAtEntry:     best.state.Volatility,
		})

		symbolInfo := e.adapter.SymbolInfo(best.signal.Symbol)
		contractSize := symbolInfo.ContractSize
		if contractSize.IsZero() {
			contractSize = decimal.NewFromInt(100000)
		}
		e.tradeBook.RegisterOpen(*result.BrokerPositionID, types.TradeRecord{
			Symbol:       best.signal.Symbol,
			Strategy:     best.signal.Strategy,
			Side:         best.signal.Side,
			Volume:       best.risk.AdjustedSize,
			ContractSize: contractSize,
			EntryPrice:   best.signal.EntryPrice,
			EntryTime:    best.signal.Time,
			StopLoss:     best.signal.StopLoss,
			TakeProfit:   best.signal.TakeProfit,
			Reason:       "open",
			Tags:         best.signal.Rationale,
		})

		if e.broadcaster != nil {
			e.broadcaster.Broadcast("events", "order_placed", result)
		}
	}

	e.insertEvent(now, "order", fmt.Sprintf("%s:%s", best.signal.Strategy, result.Status))
}

func (e *Engine) manageOpenPositions(now time.Time) {
	var allPositions []types.Position
	tickPrice := make(map[string]decimal.Decimal)

	for _, symCfg := range e.cfg.Symbols {
		symbol := symCfg.Symbol
		positions := e.adapter.GetOpenPositions(symbol)
		if len(positions) > 0 {
			barsM15 := e.adapter.GetBars(symbol, "M15", 200)
			barsH1 := e.adapter.GetBars(symbol, "H1", 200)
			state := e.observer.Evaluate(symbol, barsM15, barsH1, now)
			e.supervisor.Evaluate(state, positions)
			if e.metrics != nil {
				e.metrics.OpenPositions.WithLabelValues(symbol).Set(float64(len(positions)))
			}
		} else if e.metrics != nil {
			e.metrics.OpenPositions.WithLabelValues(symbol).Set(0)
		}
		allPositions = append(allPositions, positions...)
		if tick, ok := e.adapter.GetTick(symbol); ok {
			tickPrice[symbol] = tick.Bid
		}
	}

	closed := e.tradeBook.Reconcile(allPositions, tickPrice, now)
	for _, trade := range closed {
		if e.store != nil {
			if err := e.store.InsertTrade(trade); err != nil {
				e.logger.Warn("failed to persist trade", zap.Error(err))
			}
		}
		e.risk.RegisterTradeResult(trade)
		if e.broadcaster != nil {
			e.broadcaster.Broadcast("events", "trade_closed", trade)
		}
		if e.metrics != nil {
			pnl, _ := trade.PnL.Float64()
			e.metrics.DailyPnL.WithLabelValues(trade.Symbol).Add(pnl)
		}
	}

	global, ok := e.risk.GlobalStats()
	if ok && e.metrics != nil {
		if global.KillSwitch {
			e.metrics.KillSwitchActive.Set(1)
		} else {
			e.metrics.KillSwitchActive.Set(0)
		}
	}
}

func mustFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
