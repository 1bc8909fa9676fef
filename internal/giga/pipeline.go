package giga

import (
	"context"
	"fmt"
	"log"

	"giga_trading/internal/models"
	"giga_trading/internal/scheduler"
	"giga_trading/internal/trader"
)

// UpdatePortfolioPipeline runs the full rebalancing cycle: ask the LLM for
// the desired allocation, clamp its rules to the configured limits, look up
// prices for symbols not yet held, diff against the current portfolio and
// hand the resulting orders to the broker. Execution outcomes are not
// tracked; a rejected order is logged and the cycle continues.
func (g *Giga) UpdatePortfolioPipeline(ctx context.Context) ([]models.TradeOrder, error) {
	desired, err := g.UpdatePortfolio(ctx, nil)
	if err != nil {
		return nil, err
	}
	g.clampRules(desired)

	if g.cfg.MaxPortfolioSize > 0 && len(desired.Positions) > g.cfg.MaxPortfolioSize {
		log.Printf("Warning: desired portfolio has %d positions, configured max is %d",
			len(desired.Positions), g.cfg.MaxPortfolioSize)
	}

	portfolio, err := g.broker.GetPortfolio()
	if err != nil {
		return nil, fmt.Errorf("update pipeline: %w", err)
	}

	orders := trader.MakeTradeOrders(portfolio, *desired, g.newSymbolPrices(portfolio, desired))
	for _, order := range orders {
		if err := g.broker.CreateOrder(order); err != nil {
			log.Printf("Order failed: %s %s amount=%f: %v", order.Type, order.Symbol, order.Amount, err)
		}
	}
	return orders, nil
}

// Pipeline generates a fresh strategy and immediately rebalances on it.
func (g *Giga) Pipeline(ctx context.Context) (*models.StrategyResponse, []models.TradeOrder, error) {
	strategy, err := g.GenerateStrategy(ctx)
	if err != nil {
		return nil, nil, err
	}
	orders, err := g.UpdatePortfolioPipeline(ctx)
	if err != nil {
		return strategy, nil, err
	}
	return strategy, orders, nil
}

// Jobs exposes the two pipelines at their configured cadence.
func (g *Giga) Jobs() []scheduler.Job {
	return []scheduler.Job{
		{
			Name:  "generate_strategy",
			Every: scheduler.FrequencyDuration(g.cfg.StrategyUpdateFrequency),
			Run: func(ctx context.Context) error {
				_, err := g.GenerateStrategy(ctx)
				return err
			},
		},
		{
			Name:  "update_portfolio",
			Every: scheduler.FrequencyDuration(g.cfg.PortfolioUpdateFrequency),
			Run: func(ctx context.Context) error {
				_, err := g.UpdatePortfolioPipeline(ctx)
				return err
			},
		},
	}
}

// newSymbolPrices resolves price-per-share for desired symbols we do not hold
// yet. The rebalancer wants these supplied up front since it does no I/O; a
// symbol without a usable quote falls back to a notional buy.
func (g *Giga) newSymbolPrices(current models.Portfolio, desired *models.RelativePortfolio) map[string]float64 {
	held := make(map[string]bool, len(current.Positions))
	for _, pos := range current.Positions {
		held[pos.Symbol] = true
	}

	prices := make(map[string]float64)
	for _, dp := range desired.Positions {
		if held[dp.Symbol] {
			continue
		}
		stock, err := g.market.GetCurrentValue(dp.Symbol)
		if err != nil {
			log.Printf("No price for new symbol %s, order will be notional: %v", dp.Symbol, err)
			continue
		}
		if stock.Price > 0 {
			prices[dp.Symbol] = stock.Price
		}
	}
	return prices
}

// clampRules caps LLM-proposed stop-loss/take-profit percentages at the
// configured limits. The rules stay advisory for execution; clamping only
// keeps a hallucinated 500% take-profit from reaching the broker.
func (g *Giga) clampRules(desired *models.RelativePortfolio) {
	for i := range desired.Positions {
		rules := desired.Positions[i].Rules
		if rules == nil {
			continue
		}
		if rules.TakeProfitPct != nil && *rules.TakeProfitPct > g.cfg.MaxTakeProfitPct {
			clamped := g.cfg.MaxTakeProfitPct
			rules.TakeProfitPct = &clamped
		}
		if rules.StopLossPct != nil && *rules.StopLossPct > g.cfg.MaxStopLossPct {
			clamped := g.cfg.MaxStopLossPct
			rules.StopLossPct = &clamped
		}
	}
}
