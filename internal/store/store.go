// Package store persists closed trades and run-cycle events to a
// SQLite database, the Go equivalent of the bot's sqlite trade/event
// ledger.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/victorious243/scalper/pkg/types"
)

// Store wraps a sqlite-backed trades/events ledger.
type Store struct {
	db *sql.DB
}

// Open creates path's parent directory if needed, opens (or creates)
// the sqlite database at path, and ensures its tables exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.initTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT,
			strategy TEXT,
			side TEXT,
			entry_time TEXT,
			entry_price REAL,
			exit_time TEXT,
			exit_price REAL,
			volume REAL,
			pnl REAL,
			reason TEXT,
			rr REAL,
			tags TEXT,
			hold_minutes REAL
		)
	`)
	if err != nil {
		return fmt.Errorf("store: create trades table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			time TEXT,
			event_type TEXT,
			payload TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("store: create events table: %w", err)
	}
	return nil
}

// InsertTrade records a closed trade.
func (s *Store) InsertTrade(trade types.TradeRecord) error {
	var exitTime interface{}
	if !trade.ExitTime.IsZero() {
		exitTime = trade.ExitTime.Format(time.RFC3339)
	}
	rr := floatOf(tradeRR(trade))
	_, err := s.db.Exec(`
		INSERT INTO trades (symbol, strategy, side, entry_time, entry_price, exit_time, exit_price, volume, pnl, reason, rr, tags, hold_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		trade.Symbol,
		trade.Strategy,
		string(trade.Side),
		trade.EntryTime.Format(time.RFC3339),
		floatOf(trade.EntryPrice),
		exitTime,
		floatOf(trade.ExitPrice),
		floatOf(trade.Volume),
		floatOf(trade.PnL),
		trade.Reason,
		rr,
		strings.Join(trade.Tags, ","),
		trade.HoldMinutes,
	)
	if err != nil {
		return fmt.Errorf("store: insert trade: %w", err)
	}
	return nil
}

// InsertEvent records a run-cycle event, e.g. "no_trade" or "order".
func (s *Store) InsertEvent(t time.Time, eventType, payload string) error {
	_, err := s.db.Exec(
		`INSERT INTO events (time, event_type, payload) VALUES (?, ?, ?)`,
		t.Format(time.RFC3339), eventType, payload,
	)
	if err != nil {
		return fmt.Errorf("store: insert event: %w", err)
	}
	return nil
}

// RecentPnLs returns the most recent limit closed trades' PnL values,
// newest first, for performance-summary reporting.
func (s *Store) RecentPnLs(limit int) ([]decimal.Decimal, error) {
	rows, err := s.db.Query(`SELECT pnl FROM trades ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: query recent pnls: %w", err)
	}
	defer rows.Close()

	var out []decimal.Decimal
	for rows.Next() {
		var pnl float64
		if err := rows.Scan(&pnl); err != nil {
			return nil, fmt.Errorf("store: scan pnl: %w", err)
		}
		out = append(out, decimal.NewFromFloat(pnl))
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func floatOf(d interface{ Float64() (float64, bool) }) float64 {
	f, _ := d.Float64()
	return f
}

// tradeRR is the reward-to-risk ratio of a closed trade's original stop
// and take levels, the same formula as types.Signal.RR.
func tradeRR(trade types.TradeRecord) decimal.Decimal {
	var risk, reward decimal.Decimal
	if trade.Side == types.OrderSideBuy {
		risk = trade.EntryPrice.Sub(trade.StopLoss)
		reward = trade.TakeProfit.Sub(trade.EntryPrice)
	} else {
		risk = trade.StopLoss.Sub(trade.EntryPrice)
		reward = trade.EntryPrice.Sub(trade.TakeProfit)
	}
	if risk.Sign() <= 0 {
		return decimal.Zero
	}
	return reward.Abs().Div(risk)
}
