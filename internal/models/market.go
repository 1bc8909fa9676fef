package models

import "time"

// Stock is a point-in-time price quote for a symbol.
type Stock struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Time   time.Time `json:"time"`
}

// StockBar is a single candlestick of historic price data.
type StockBar struct {
	Symbol     string    `json:"symbol"`
	Time       time.Time `json:"time"`
	Open       float64   `json:"open"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Close      float64   `json:"close"`
	Volume     uint64    `json:"volume"`
	TradeCount uint64    `json:"trade_count"`
	VWAP       float64   `json:"volume_weighted_avg_price"`
}

// SymbolHistory groups the bars fetched for one watched symbol so the whole
// window can be handed to the LLM as a single context item.
type SymbolHistory struct {
	Symbol string     `json:"symbol"`
	Bars   []StockBar `json:"bars"`
}
