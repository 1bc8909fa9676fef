package trader

import (
	"math"

	"giga_trading/internal/models"
)

// sharesEpsilon is the smallest share delta worth trading.
const sharesEpsilon = 1e-6

// MakeTradeOrders diffs the current portfolio against a desired relative
// allocation and returns the orders that would transform one into the other.
//
// prices supplies price-per-share for symbols that appear only in the desired
// allocation; the rebalancer does no I/O of its own. A new symbol with a
// positive price gets a share-quantity buy; without one the buy is emitted
// with the target notional in currency units instead.
//
// Orders come out closures first, then adjustments in current-position order,
// then new-position buys in desired order -- selling before buying keeps cash
// non-negative in the common case, though cash flow across the list is not
// simulated. The function never fails on well-formed input: degenerate
// numbers (zero total value, zero position value) produce zero or near-zero
// amounts rather than errors.
func MakeTradeOrders(current models.Portfolio, desired models.RelativePortfolio, prices map[string]float64) []models.TradeOrder {
	desiredBySymbol := make(map[string]models.RelativePosition, len(desired.Positions))
	for _, dp := range desired.Positions {
		desiredBySymbol[dp.Symbol] = dp
	}
	held := make(map[string]bool, len(current.Positions))
	for _, pos := range current.Positions {
		held[pos.Symbol] = true
	}

	var orders []models.TradeOrder

	// Closures: full sell of anything no longer wanted, keeping its rule so
	// the broker side can still honor whatever policy was attached.
	for _, pos := range current.Positions {
		if _, wanted := desiredBySymbol[pos.Symbol]; wanted {
			continue
		}
		if pos.Shares <= sharesEpsilon {
			continue
		}
		orders = append(orders, models.TradeOrder{
			Type:   models.OrderSideSell,
			Symbol: pos.Symbol,
			Amount: pos.Shares,
			Rules:  pos.Rules,
		})
	}

	// Adjustments for symbols held on both sides.
	for _, pos := range current.Positions {
		dp, wanted := desiredBySymbol[pos.Symbol]
		if !wanted {
			continue
		}
		if pos.Value <= 0 || pos.Shares == 0 {
			// No usable price-per-share; treat the delta as zero.
			continue
		}
		pricePerShare := pos.Value / pos.Shares
		desiredShares := dp.PercentOfPortfolio * current.TotalValue / pricePerShare
		diff := desiredShares - pos.Shares
		if math.Abs(diff) <= sharesEpsilon {
			continue
		}

		side := models.OrderSideBuy
		if diff < 0 {
			side = models.OrderSideSell
		}
		rules := dp.Rules
		if rules == nil {
			rules = pos.Rules
		}
		orders = append(orders, models.TradeOrder{
			Type:   side,
			Symbol: pos.Symbol,
			Amount: math.Abs(diff),
			Rules:  rules,
		})
	}

	// New positions: one buy per desired symbol we do not hold yet.
	for _, dp := range desired.Positions {
		if held[dp.Symbol] {
			continue
		}
		notional := dp.PercentOfPortfolio * current.TotalValue
		order := models.TradeOrder{
			Type:   models.OrderSideBuy,
			Symbol: dp.Symbol,
			Rules:  dp.Rules,
		}
		if price := prices[dp.Symbol]; price > 0 {
			order.Amount = notional / price
		} else {
			order.Amount = notional
			order.Notional = true
		}
		orders = append(orders, order)
	}

	return orders
}
