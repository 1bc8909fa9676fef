package trader

import (
	"math"
	"testing"

	"giga_trading/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestMakeTradeOrders(t *testing.T) {
	currentRule := &models.Rule{StopLossPct: floatPtr(0.05)}
	desiredRule := &models.Rule{StopLossPct: floatPtr(0.1), TakeProfitPct: floatPtr(0.2)}

	tests := []struct {
		name    string
		current models.Portfolio
		desired models.RelativePortfolio
		prices  map[string]float64
		want    []models.TradeOrder
	}{
		{
			name: "liquidate everything when desired is all cash",
			current: models.Portfolio{
				Positions: []models.Position{
					{Symbol: "AAPL", Shares: 10, Value: 1500, Rules: currentRule},
					{Symbol: "GOOGL", Shares: 5, Value: 2000},
					{Symbol: "EMPTY", Shares: 0, Value: 0},
				},
				Cash:       1000,
				TotalValue: 4500,
			},
			desired: models.RelativePortfolio{PercentCash: 1.0},
			want: []models.TradeOrder{
				{Type: models.OrderSideSell, Symbol: "AAPL", Amount: 10, Rules: currentRule},
				{Type: models.OrderSideSell, Symbol: "GOOGL", Amount: 5},
			},
		},
		{
			name: "no orders when allocation already matches",
			current: models.Portfolio{
				Positions: []models.Position{
					// 1500 of 3000 total at 150/share = 10 shares, exactly held.
					{Symbol: "AAPL", Shares: 10, Value: 1500},
				},
				Cash:       1500,
				TotalValue: 3000,
			},
			desired: models.RelativePortfolio{
				Positions:   []models.RelativePosition{{Symbol: "AAPL", PercentOfPortfolio: 0.5}},
				PercentCash: 0.5,
			},
			want: nil,
		},
		{
			name: "adjustment scenario buys into both holdings",
			current: models.Portfolio{
				Positions: []models.Position{
					{Symbol: "AAPL", Shares: 10, Value: 1500},
					{Symbol: "GOOGL", Shares: 5, Value: 2000},
				},
				Cash:       1000,
				TotalValue: 4500,
			},
			desired: models.RelativePortfolio{
				Positions: []models.RelativePosition{
					{Symbol: "AAPL", PercentOfPortfolio: 0.5},
					{Symbol: "GOOGL", PercentOfPortfolio: 0.5},
				},
				PercentCash: 0,
			},
			want: []models.TradeOrder{
				// AAPL: (0.5*4500)/150 = 15 desired, 10 held -> buy 5
				{Type: models.OrderSideBuy, Symbol: "AAPL", Amount: 5},
				// GOOGL: (0.5*4500)/400 = 5.625 desired, 5 held -> buy 0.625
				{Type: models.OrderSideBuy, Symbol: "GOOGL", Amount: 0.625},
			},
		},
		{
			name: "overweight holding is trimmed",
			current: models.Portfolio{
				Positions: []models.Position{
					{Symbol: "AAPL", Shares: 20, Value: 3000, Rules: currentRule},
				},
				Cash:       1000,
				TotalValue: 4000,
			},
			desired: models.RelativePortfolio{
				Positions:   []models.RelativePosition{{Symbol: "AAPL", PercentOfPortfolio: 0.25}},
				PercentCash: 0.75,
			},
			want: []models.TradeOrder{
				// desired shares = (0.25*4000)/150 = 6.6667 -> sell 13.3333
				{Type: models.OrderSideSell, Symbol: "AAPL", Amount: 20 - (0.25*4000)/150, Rules: currentRule},
			},
		},
		{
			name: "desired rule wins over current rule",
			current: models.Portfolio{
				Positions: []models.Position{
					{Symbol: "AAPL", Shares: 10, Value: 1500, Rules: currentRule},
				},
				Cash:       0,
				TotalValue: 1500,
			},
			desired: models.RelativePortfolio{
				Positions: []models.RelativePosition{
					{Symbol: "AAPL", PercentOfPortfolio: 0.5, Rules: desiredRule},
				},
				PercentCash: 0.5,
			},
			want: []models.TradeOrder{
				{Type: models.OrderSideSell, Symbol: "AAPL", Amount: 5, Rules: desiredRule},
			},
		},
		{
			name: "new symbol with price buys share quantity",
			current: models.Portfolio{
				Cash:       1000,
				TotalValue: 1000,
			},
			desired: models.RelativePortfolio{
				Positions:   []models.RelativePosition{{Symbol: "MSFT", PercentOfPortfolio: 0.5, Rules: desiredRule}},
				PercentCash: 0.5,
			},
			prices: map[string]float64{"MSFT": 250},
			want: []models.TradeOrder{
				// 0.5*1000 = 500 notional at 250/share
				{Type: models.OrderSideBuy, Symbol: "MSFT", Amount: 2, Rules: desiredRule},
			},
		},
		{
			name: "new symbol without price buys notional",
			current: models.Portfolio{
				Cash:       1000,
				TotalValue: 1000,
			},
			desired: models.RelativePortfolio{
				Positions:   []models.RelativePosition{{Symbol: "MSFT", PercentOfPortfolio: 0.4}},
				PercentCash: 0.6,
			},
			want: []models.TradeOrder{
				{Type: models.OrderSideBuy, Symbol: "MSFT", Amount: 400, Notional: true},
			},
		},
		{
			name: "zero position value is skipped, not divided by",
			current: models.Portfolio{
				Positions: []models.Position{
					{Symbol: "AAPL", Shares: 10, Value: 0},
				},
				Cash:       1000,
				TotalValue: 1000,
			},
			desired: models.RelativePortfolio{
				Positions:   []models.RelativePosition{{Symbol: "AAPL", PercentOfPortfolio: 0.5}},
				PercentCash: 0.5,
			},
			want: nil,
		},
		{
			name: "zero total value produces degenerate zero-amount buy",
			current: models.Portfolio{
				TotalValue: 0,
			},
			desired: models.RelativePortfolio{
				Positions:   []models.RelativePosition{{Symbol: "AAPL", PercentOfPortfolio: 1.0}},
				PercentCash: 0,
			},
			prices: map[string]float64{"AAPL": 150},
			want: []models.TradeOrder{
				{Type: models.OrderSideBuy, Symbol: "AAPL", Amount: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MakeTradeOrders(tt.current, tt.desired, tt.prices)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d orders, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				want := tt.want[i]
				if got[i].Type != want.Type || got[i].Symbol != want.Symbol {
					t.Errorf("order %d = %s %s, want %s %s", i, got[i].Type, got[i].Symbol, want.Type, want.Symbol)
				}
				if !almostEqual(got[i].Amount, want.Amount) {
					t.Errorf("order %d amount = %v, want %v", i, got[i].Amount, want.Amount)
				}
				if got[i].Notional != want.Notional {
					t.Errorf("order %d notional = %v, want %v", i, got[i].Notional, want.Notional)
				}
				if got[i].Rules != want.Rules {
					t.Errorf("order %d rules = %+v, want %+v", i, got[i].Rules, want.Rules)
				}
				if got[i].TradeTime != nil {
					t.Errorf("order %d has trade time set; execution time is the broker's call", i)
				}
			}
		})
	}
}

func TestMakeTradeOrdersOrdering(t *testing.T) {
	current := models.Portfolio{
		Positions: []models.Position{
			{Symbol: "OLD", Shares: 3, Value: 300},
			{Symbol: "KEEP", Shares: 10, Value: 1000},
		},
		Cash:       700,
		TotalValue: 2000,
	}
	desired := models.RelativePortfolio{
		Positions: []models.RelativePosition{
			{Symbol: "NEW", PercentOfPortfolio: 0.25},
			{Symbol: "KEEP", PercentOfPortfolio: 0.25},
		},
		PercentCash: 0.5,
	}

	got := MakeTradeOrders(current, desired, map[string]float64{"NEW": 50})
	if len(got) != 3 {
		t.Fatalf("got %d orders, want 3: %+v", len(got), got)
	}

	// Closures first, then adjustments, then new-position buys.
	if got[0].Symbol != "OLD" || got[0].Type != models.OrderSideSell {
		t.Errorf("order 0 = %s %s, want sell OLD", got[0].Type, got[0].Symbol)
	}
	if got[1].Symbol != "KEEP" || got[1].Type != models.OrderSideSell {
		t.Errorf("order 1 = %s %s, want sell KEEP", got[1].Type, got[1].Symbol)
	}
	if got[2].Symbol != "NEW" || got[2].Type != models.OrderSideBuy {
		t.Errorf("order 2 = %s %s, want buy NEW", got[2].Type, got[2].Symbol)
	}
}
