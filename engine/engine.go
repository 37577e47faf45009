// Package engine simulates signal-driven trading over an ordered bar series.
package engine

import (
	"math"
	"strconv"
	"time"

	"github.com/quantbench/backtester/internal/id"
	"github.com/quantbench/backtester/journal"
	"github.com/quantbench/backtester/market"
)

// Engine replays a signal-carrying price series, opening and closing
// fixed-size long/short positions with stop-loss/take-profit exits and
// commission-adjusted cash flows.
//
// Per-bar order is fixed: exits are evaluated first, then entries, then the
// portfolio is valued. A position therefore never opens and closes on the
// same bar, and cash freed by a same-bar exit can fund a same-bar entry.
//
// The engine is single-threaded and deterministic: every bar's decisions
// depend on the cash and position state left by all prior bars, so bars are
// processed strictly in input order.
type Engine struct {
	cfg Config

	cash   float64
	longs  []*openPosition
	shorts []*openPosition

	journal journal.Journal
}

// New creates an engine. Pass DefaultConfig() for the standard parameters.
func New(cfg Config) *Engine {
	if cfg.PriceField == "" {
		cfg.PriceField = "close"
	}
	return &Engine{cfg: cfg}
}

// SetJournal attaches a journal that receives a TradeRecord for every close
// and an EquitySnapshot for every bar. A nil journal disables recording.
func (e *Engine) SetJournal(j journal.Journal) { e.journal = j }

// Config returns the engine's parameters.
func (e *Engine) Config() Config { return e.cfg }

// Run simulates trading over the series and returns one record per bar plus
// the final cash after forced liquidation. The input series is not mutated.
//
// An empty series yields an empty result with the starting capital intact.
// A missing price or signal field, or a non-finite or non-positive price,
// aborts the run with no partial output.
func (e *Engine) Run(series *market.Series) (Result, error) {
	e.cash = e.cfg.StartingCapital
	e.longs = nil
	e.shorts = nil

	if series == nil || series.Len() == 0 {
		return Result{FinalCash: e.cash}, nil
	}
	if !series.Has(e.cfg.PriceField) {
		return Result{}, &market.MissingFieldError{Field: e.cfg.PriceField}
	}
	if !series.Has("signal") {
		return Result{}, &market.MissingFieldError{Field: "signal"}
	}

	records := make([]Record, 0, series.Len())
	snaps := make([]journal.EquitySnapshot, 0, series.Len())
	lastPrice := 0.0

	for i := range series.Bars {
		bar := series.Bars[i]

		price, err := bar.Field(e.cfg.PriceField)
		if err != nil {
			return Result{}, err
		}
		if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
			return Result{}, &market.InvalidValueError{
				Field: e.cfg.PriceField,
				Row:   i,
				Value: strconv.FormatFloat(price, 'g', -1, 64),
			}
		}
		lastPrice = price

		pnl, err := e.closeTriggered(bar.Time, price)
		if err != nil {
			return Result{}, err
		}
		e.dispatchEntries(bar.Time, price, bar.Signal)

		records = append(records, Record{
			Time:           bar.Time,
			PortfolioValue: e.valuate(price),
			TradePnL:       pnl,
		})
		snaps = append(snaps, journal.EquitySnapshot{
			Time:           bar.Time,
			Cash:           e.cash,
			PortfolioValue: records[len(records)-1].PortfolioValue,
			TradePnL:       pnl,
		})
	}

	last := series.Bars[series.Len()-1].Time
	if err := e.liquidate(last, lastPrice); err != nil {
		return Result{}, err
	}

	// The final bar keeps its pre-liquidation TradePnL: the forced closes
	// adjust only the valuation. Downstream consumers depend on this shape.
	records[len(records)-1].PortfolioValue = e.cash
	snaps[len(snaps)-1].Cash = e.cash
	snaps[len(snaps)-1].PortfolioValue = e.cash

	if e.journal != nil {
		for _, s := range snaps {
			if err := e.journal.RecordEquity(s); err != nil {
				return Result{}, err
			}
		}
	}

	return Result{Records: records, FinalCash: e.cash}, nil
}

// closeTriggered scans a snapshot of both open sets and closes every
// position whose stop or take level the bar's price has reached. Removals
// are collected during the scan and applied afterwards, so the iteration
// never observes its own edits. Returns the summed realized PnL.
func (e *Engine) closeTriggered(t time.Time, price float64) (float64, error) {
	c := e.cfg.CommissionRate
	pnl := 0.0

	var keepLongs []*openPosition
	for _, p := range e.longs {
		if price >= p.TakeProfit || price <= p.StopLoss {
			realized := (price-p.EntryPrice)*p.Quantity - e.fees(p.EntryPrice, price, p.Quantity)
			e.cash += price * p.Quantity * (1 - c)
			pnl += realized
			if err := e.recordClose(p, t, price, realized, exitReason(price >= p.TakeProfit)); err != nil {
				return 0, err
			}
			continue
		}
		keepLongs = append(keepLongs, p)
	}
	e.longs = keepLongs

	var keepShorts []*openPosition
	for _, p := range e.shorts {
		if price <= p.TakeProfit || price >= p.StopLoss {
			gross := (p.EntryPrice - price) * p.Quantity
			realized := gross - e.fees(p.EntryPrice, price, p.Quantity)
			// A short never credited sale proceeds at entry, so the close
			// returns the reserved notional plus the commission-adjusted gain.
			e.cash += gross*(1-c) + p.EntryPrice*p.Quantity
			pnl += realized
			if err := e.recordClose(p, t, price, realized, exitReason(price <= p.TakeProfit)); err != nil {
				return 0, err
			}
			continue
		}
		keepShorts = append(keepShorts, p)
	}
	e.shorts = keepShorts

	return pnl, nil
}

// dispatchEntries opens at most one long and/or one short for this bar.
// Each side checks affordability independently; an unaffordable signal is
// silently dropped. Signals outside {-1, 0, +1} are treated as hold.
func (e *Engine) dispatchEntries(t time.Time, price float64, signal int) {
	cost := price * e.cfg.LotSize * (1 + e.cfg.CommissionRate)

	if signal == 1 && e.cash > cost {
		e.cash -= cost
		e.longs = append(e.longs, &openPosition{
			Position: Position{
				Side:       Long,
				Quantity:   e.cfg.LotSize,
				EntryPrice: price,
				StopLoss:   price * (1 - e.cfg.StopLossFraction),
				TakeProfit: price * (1 + e.cfg.TakeProfitFraction),
			},
			id:       id.New(),
			openTime: t,
		})
	}

	if signal == -1 && e.cash > cost {
		e.cash -= cost
		e.shorts = append(e.shorts, &openPosition{
			Position: Position{
				Side:       Short,
				Quantity:   e.cfg.LotSize,
				EntryPrice: price,
				StopLoss:   price * (1 + e.cfg.StopLossFraction),
				TakeProfit: price * (1 - e.cfg.TakeProfitFraction),
			},
			id:       id.New(),
			openTime: t,
		})
	}
}

// valuate marks the portfolio to the bar's price: cash plus open longs at
// market plus each short's reserved notional and unrealized gain. Commission
// is realized only at close, never in the running valuation.
func (e *Engine) valuate(price float64) float64 {
	v := e.cash
	for _, p := range e.longs {
		v += p.Quantity * price
	}
	for _, p := range e.shorts {
		v += (p.EntryPrice-price)*p.Quantity + p.EntryPrice*p.Quantity
	}
	return v
}

// liquidate force-closes everything at the final bar's price. Longs are
// batched into a single commission-adjusted credit; shorts settle one by one
// because each carries its own entry price.
func (e *Engine) liquidate(t time.Time, price float64) error {
	c := e.cfg.CommissionRate

	if len(e.longs) > 0 {
		total := 0.0
		for _, p := range e.longs {
			total += p.Quantity
		}
		e.cash += price * total * (1 - c)
		for _, p := range e.longs {
			realized := (price-p.EntryPrice)*p.Quantity - e.fees(p.EntryPrice, price, p.Quantity)
			if err := e.recordClose(p, t, price, realized, "Liquidation"); err != nil {
				return err
			}
		}
		e.longs = nil
	}

	for _, p := range e.shorts {
		gross := (p.EntryPrice - price) * p.Quantity
		e.cash += gross*(1-c) + p.EntryPrice*p.Quantity
		realized := gross - e.fees(p.EntryPrice, price, p.Quantity)
		if err := e.recordClose(p, t, price, realized, "Liquidation"); err != nil {
			return err
		}
	}
	e.shorts = nil

	return nil
}

// fees is the combined entry and exit commission for a round trip.
func (e *Engine) fees(entry, exit, qty float64) float64 {
	return entry*qty*e.cfg.CommissionRate + exit*qty*e.cfg.CommissionRate
}

func exitReason(takeProfit bool) string {
	if takeProfit {
		return "TakeProfit"
	}
	return "StopLoss"
}

func (e *Engine) recordClose(p *openPosition, t time.Time, price, realized float64, reason string) error {
	if e.journal == nil {
		return nil
	}
	return e.journal.RecordTrade(journal.TradeRecord{
		TradeID:     p.id,
		Side:        p.Side.String(),
		Quantity:    p.Quantity,
		EntryPrice:  p.EntryPrice,
		ExitPrice:   price,
		OpenTime:    p.openTime,
		CloseTime:   t,
		RealizedPnL: realized,
		Reason:      reason,
	})
}
