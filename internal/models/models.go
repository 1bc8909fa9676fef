package models

import "time"

// Rule carries the execution policy attached to a position or a trade order.
// The rebalancer never interprets it; the broker side decides what to do with it.
// Percentages are fractions (0.1 = 10%).
type Rule struct {
	StopLossPct   *float64 `json:"stop_loss_pct"`   // Sell to limit loss, relative to entry
	TakeProfitPct *float64 `json:"take_profit_pct"` // Sell to take profit, relative to entry
}

// Position is a single holding in the current (absolute) portfolio.
type Position struct {
	Symbol string  `json:"symbol"` // The stock symbol (e.g., "AAPL")
	Shares float64 `json:"shares"` // Number of shares held
	Value  float64 `json:"value"`  // Current market value of the held shares, >= 0
	Rules  *Rule   `json:"rules"`  // nil when no rule is attached
}

// Portfolio is the current state of the brokerage account.
//
// TotalValue should equal Cash + the sum of position values. The rebalancer
// trusts the supplied TotalValue rather than recomputing it, so whoever builds
// a Portfolio must keep the two consistent.
type Portfolio struct {
	Positions  []Position `json:"positions"` // Unique symbols
	Cash       float64    `json:"cash"`      // >= 0
	TotalValue float64    `json:"total_value"`
	Timestamp  time.Time  `json:"timestamp"`
}

// RelativePosition is one line of a desired allocation.
type RelativePosition struct {
	Symbol             string  `json:"symbol"`
	PercentOfPortfolio float64 `json:"percent_of_portfolio"` // Fraction of total value, in [0,1]
	Rules              *Rule   `json:"rules"`
}

// RelativePortfolio is the target allocation produced by the LLM. The position
// percentages plus PercentCash are assumed (not enforced) to sum to ~1.0.
type RelativePortfolio struct {
	Positions   []RelativePosition `json:"positions"` // Unique symbols
	PercentCash float64            `json:"percent_cash"`
}

// OrderSide is the direction of a trade order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// TradeOrder is produced by the rebalancer (or directly by the orchestrator)
// and handed to the broker. Never mutated after creation.
//
// Amount is a share count unless Notional is set, in which case it is a
// currency amount (used for brand-new symbols when no price was supplied).
type TradeOrder struct {
	Type      OrderSide  `json:"type"` // buy or sell
	Symbol    string     `json:"symbol"`
	Amount    float64    `json:"amount"`
	Notional  bool       `json:"notional,omitempty"`
	TradeTime *time.Time `json:"trade_time"` // nil: execution time is the broker's call
	Rules     *Rule      `json:"rules"`
}

// StrategyResponse is the answer the LLM must fill for strategy generation.
type StrategyResponse struct {
	StrategyReport      string   `json:"strategy_report"`
	StockSymbolsToWatch []string `json:"stock_symbols_to_watch"`
}

// ActionRecord is one append-only entry of the action log. The latest record
// per (user, category) is the effective current decision.
type ActionRecord struct {
	ID        uint           `json:"id"`
	TraceID   string         `json:"trace_id"`
	User      string         `json:"user"`
	Timestamp time.Time      `json:"timestamp"`
	Category  string         `json:"category"`
	Action    map[string]any `json:"action"`
}
