// Package journal records closed trades and per-bar equity snapshots.
package journal

import "time"

// TradeRecord describes one closed position.
type TradeRecord struct {
	TradeID     string
	Side        string // "long" or "short"
	Quantity    float64
	EntryPrice  float64
	ExitPrice   float64
	OpenTime    time.Time
	CloseTime   time.Time
	RealizedPnL float64 // net of both legs' commission
	Reason      string  // StopLoss, TakeProfit, Liquidation
}

// EquitySnapshot is the state of the portfolio after one bar.
type EquitySnapshot struct {
	Time           time.Time
	Cash           float64
	PortfolioValue float64
	TradePnL       float64
}

// Journal persists trade and equity records.
type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}
