package market

import (
	"fmt"
	"log"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"

	"giga_trading/internal/models"
)

// CreateOrder submits a trade order as a day market order. Share amounts
// become fractional quantities; notional orders spend a currency amount.
//
// When a buy carries both a stop-loss and a take-profit rule and the quantity
// is whole (Alpaca rejects fractional brackets), the order is placed as a
// bracket around the latest trade price so the broker enforces the rule.
// Otherwise the rule stays advisory.
func (a *AlpacaProvider) CreateOrder(order models.TradeOrder) error {
	if order.Amount <= 0 {
		return fmt.Errorf("invalid order for %s: amount must be > 0, got %f", order.Symbol, order.Amount)
	}

	req := alpaca.PlaceOrderRequest{
		Symbol:      order.Symbol,
		Side:        alpaca.Side(order.Type),
		Type:        alpaca.Market,
		TimeInForce: alpaca.Day,
	}

	if order.Notional {
		notional := decimal.NewFromFloat(order.Amount).Round(2)
		req.Notional = &notional
	} else {
		qty := decimal.NewFromFloat(order.Amount).Round(9)
		req.Qty = &qty
	}

	if legs, ok := a.bracketLegs(order, req.Qty); ok {
		req.OrderClass = alpaca.Bracket
		req.TakeProfit = legs.takeProfit
		req.StopLoss = legs.stopLoss
	}

	placed, err := a.tradeClient.PlaceOrder(req)
	if err != nil {
		return fmt.Errorf("place %s %s: %w", order.Type, order.Symbol, err)
	}
	log.Printf("Order placed: %s %s amount=%f id=%s", order.Type, order.Symbol, order.Amount, placed.ID)
	return nil
}

type bracket struct {
	takeProfit *alpaca.TakeProfit
	stopLoss   *alpaca.StopLoss
}

func (a *AlpacaProvider) bracketLegs(order models.TradeOrder, qty *decimal.Decimal) (bracket, bool) {
	if order.Type != models.OrderSideBuy || order.Rules == nil {
		return bracket{}, false
	}
	if order.Rules.TakeProfitPct == nil || order.Rules.StopLossPct == nil {
		return bracket{}, false
	}
	if qty == nil || !qty.IsInteger() {
		return bracket{}, false
	}

	quote, err := a.GetCurrentValue(order.Symbol)
	if err != nil || quote.Price <= 0 {
		log.Printf("Skipping bracket for %s: no usable price (%v)", order.Symbol, err)
		return bracket{}, false
	}

	limit := decimal.NewFromFloat(quote.Price * (1 + *order.Rules.TakeProfitPct)).Round(2)
	stop := decimal.NewFromFloat(quote.Price * (1 - *order.Rules.StopLossPct)).Round(2)
	return bracket{
		takeProfit: &alpaca.TakeProfit{LimitPrice: &limit},
		stopLoss:   &alpaca.StopLoss{StopPrice: &stop},
	}, true
}
