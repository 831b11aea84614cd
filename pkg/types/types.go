// Package types holds the shared data model for the scalper engine: bars,
// ticks, signals, orders, positions, zones, and the risk/account snapshots
// that flow between the observer, strategies, risk manager, and supervisor.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide is the direction of a signal, order, or position.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// OrderType is the execution style requested for an order.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// Regime is the shared tagged variant for both the primary (trend/range)
// and secondary (volatility bucket) dimensions of market state.
type Regime string

const (
	RegimeTrend   Regime = "TREND"
	RegimeRange   Regime = "RANGE"
	RegimeHighVol Regime = "HIGH_VOL"
	RegimeLowVol  Regime = "LOW_VOL"
	RegimeMixed   Regime = "MIXED"
)

// ZoneType distinguishes a demand (support) zone from a supply (resistance)
// zone.
type ZoneType string

const (
	ZoneTypeDemand ZoneType = "DEMAND"
	ZoneTypeSupply ZoneType = "SUPPLY"
)

// Bar is a single OHLCV candle.
type Bar struct {
	Time   time.Time       `json:"time"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume decimal.Decimal `json:"volume"`
}

// Tick is a best bid/ask snapshot for a symbol.
type Tick struct {
	Time time.Time       `json:"time"`
	Bid  decimal.Decimal `json:"bid"`
	Ask  decimal.Decimal `json:"ask"`
}

// Spread returns ask minus bid.
func (t Tick) Spread() decimal.Decimal {
	return t.Ask.Sub(t.Bid)
}

// MarketState is the cycle-local output of the market observer for one
// symbol.
type MarketState struct {
	Symbol           string          `json:"symbol"`
	Time             time.Time       `json:"time"`
	RegimePrimary    Regime          `json:"regimePrimary"`
	RegimeSecondary  Regime          `json:"regimeSecondary"`
	TrendStrength    decimal.Decimal `json:"trendStrength"`
	Volatility       decimal.Decimal `json:"volatility"`
	RangeCompression decimal.Decimal `json:"rangeCompression"`
	Return1          decimal.Decimal `json:"return1"`
	Session          string          `json:"session"`
	Confidence       decimal.Decimal `json:"confidence"`
	Notes            []string        `json:"notes"`
}

// Signal is a candidate entry proposed by a strategy for a single symbol.
type Signal struct {
	Symbol         string          `json:"symbol"`
	Time           time.Time       `json:"time"`
	Strategy       string          `json:"strategy"`
	Side           OrderSide       `json:"side"`
	OrderType      OrderType       `json:"orderType"`
	EntryPrice     decimal.Decimal `json:"entryPrice"`
	StopLoss       decimal.Decimal `json:"stopLoss"`
	TakeProfit     decimal.Decimal `json:"takeProfit"`
	MaxHoldMinutes int             `json:"maxHoldMinutes"`
	Confidence     decimal.Decimal `json:"confidence"`
	Rationale      []string        `json:"rationale"`
}

// RR is the signal's reward-to-risk ratio, 0 if the stop distance is
// invalid (non-positive).
func (s Signal) RR() decimal.Decimal {
	var risk, reward decimal.Decimal
	if s.Side == OrderSideBuy {
		risk = s.EntryPrice.Sub(s.StopLoss)
		reward = s.TakeProfit.Sub(s.EntryPrice)
	} else {
		risk = s.StopLoss.Sub(s.EntryPrice)
		reward = s.EntryPrice.Sub(s.TakeProfit)
	}
	if risk.Sign() <= 0 {
		return decimal.Zero
	}
	return reward.Abs().Div(risk)
}

// OrderRequest is what the execution engine submits to a broker adapter.
type OrderRequest struct {
	Symbol        string          `json:"symbol"`
	Side          OrderSide       `json:"side"`
	OrderType     OrderType       `json:"orderType"`
	Volume        decimal.Decimal `json:"volume"`
	EntryPrice    decimal.Decimal `json:"entryPrice"`
	StopLoss      decimal.Decimal `json:"stopLoss"`
	TakeProfit    decimal.Decimal `json:"takeProfit"`
	ClientOrderID string          `json:"clientOrderId"`
	Time          time.Time       `json:"time"`
}

// OrderResult is the broker's response to an OrderRequest, modify, or
// close call.
type OrderResult struct {
	Success         bool    `json:"success"`
	BrokerPositionID *string `json:"brokerPositionId,omitempty"`
	Status          string  `json:"status"`
	Message         string  `json:"message"`
}

// Position is a broker-reported open position.
type Position struct {
	Symbol           string          `json:"symbol"`
	Side             OrderSide       `json:"side"`
	Volume           decimal.Decimal `json:"volume"`
	EntryPrice       decimal.Decimal `json:"entryPrice"`
	StopLoss         decimal.Decimal `json:"stopLoss"`
	TakeProfit       decimal.Decimal `json:"takeProfit"`
	OpenTime         time.Time       `json:"openTime"`
	BrokerPositionID *string         `json:"brokerPositionId,omitempty"`
}

// TradeRecord is the full lifecycle record of one trade, from fill to
// close. ExitPrice/ExitTime/PnL/Reason are populated at close.
type TradeRecord struct {
	Symbol       string          `json:"symbol"`
	Strategy     string          `json:"strategy"`
	Side         OrderSide       `json:"side"`
	Volume       decimal.Decimal `json:"volume"`
	ContractSize decimal.Decimal `json:"contractSize"`
	EntryPrice   decimal.Decimal `json:"entryPrice"`
	EntryTime    time.Time       `json:"entryTime"`
	StopLoss     decimal.Decimal `json:"stopLoss"`
	TakeProfit   decimal.Decimal `json:"takeProfit"`
	ExitPrice    decimal.Decimal `json:"exitPrice,omitempty"`
	ExitTime     time.Time       `json:"exitTime,omitempty"`
	HoldMinutes  float64         `json:"holdMinutes"`
	PnL          decimal.Decimal `json:"pnl"`
	Reason       string          `json:"reason,omitempty"`
	Tags         []string        `json:"tags,omitempty"`
}

// AccountInfo is the broker's account snapshot.
type AccountInfo struct {
	Equity     decimal.Decimal `json:"equity"`
	Balance    decimal.Decimal `json:"balance"`
	MarginFree decimal.Decimal `json:"marginFree"`
	Currency   string          `json:"currency"`
}

// SymbolInfo is broker-reported contract metadata for a symbol.
type SymbolInfo struct {
	Point            decimal.Decimal `json:"point"`
	Digits           int             `json:"digits"`
	ContractSize     decimal.Decimal `json:"contractSize"`
	TickSize         decimal.Decimal `json:"tickSize"`
	TickValue        decimal.Decimal `json:"tickValue"`
	VolumeMin        decimal.Decimal `json:"volumeMin"`
	VolumeMax        decimal.Decimal `json:"volumeMax"`
	VolumeStep       decimal.Decimal `json:"volumeStep"`
	TradeStopsLevel  decimal.Decimal `json:"tradeStopsLevel"`
	TradeFreezeLevel decimal.Decimal `json:"tradeFreezeLevel"`
	TradeMode        int             `json:"tradeMode"`
}

// Zone is a supply or demand price band detected on a higher timeframe.
type Zone struct {
	ID          string          `json:"id"`
	Symbol      string          `json:"symbol"`
	Timeframe   string          `json:"timeframe"`
	ZoneType    ZoneType        `json:"zoneType"`
	CreatedAt   time.Time       `json:"createdAt"`
	Lower       decimal.Decimal `json:"lower"`
	Upper       decimal.Decimal `json:"upper"`
	BaseStart   time.Time       `json:"baseStart"`
	BaseEnd     time.Time       `json:"baseEnd"`
	ImpulseSize decimal.Decimal `json:"impulseSize"`
	ATR         decimal.Decimal `json:"atr"`
	Score       decimal.Decimal `json:"score"`
	Touches     int             `json:"touches"`
	Active      bool            `json:"active"`
	Notes       []string        `json:"notes,omitempty"`
}

// Width is upper minus lower.
func (z Zone) Width() decimal.Decimal {
	return z.Upper.Sub(z.Lower)
}

// Contains reports whether price falls within [lower, upper].
func (z Zone) Contains(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(z.Lower) && price.LessThanOrEqual(z.Upper)
}

// RiskStats is the per-symbol daily risk accounting ledger.
type RiskStats struct {
	Date                string
	DailyLoss           decimal.Decimal
	TradesToday         int
	ConsecutiveLosses   int
	PeakEquity          decimal.Decimal
	KillSwitch          bool
	SpreadSpikeCount    int
	SpreadCooldownUntil *time.Time
	LastCloseTime       *time.Time
}

// GlobalRiskStats is the cross-symbol counterpart of RiskStats.
type GlobalRiskStats struct {
	Date              string
	DailyLoss         decimal.Decimal
	TradesToday       int
	ConsecutiveLosses int
	PeakEquity        decimal.Decimal
	KillSwitch        bool
}

// RiskDecision is the outcome of a risk gate evaluation.
type RiskDecision struct {
	Approved     bool
	Reason       string
	AdjustedSize decimal.Decimal
	Warnings     []string
}

// PositionMeta is engine-attached bookkeeping for a filled order, keyed by
// broker position id.
type PositionMeta struct {
	MaxHoldMinutes int
	EntryTime      time.Time
	EntryPrice     decimal.Decimal
	ATRAtEntry     decimal.Decimal
}

// MLDecision is the ML filter's verdict on a candidate signal.
type MLDecision struct {
	Approved bool
	Score    decimal.Decimal
	Reason   string
}
