package market

import (
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"giga_trading/internal/models"
)

// Broker is the brokerage collaborator: order creation and the current
// portfolio snapshot. The orchestrator only ever talks to this interface, so
// Alpaca can be swapped for a mock (or another broker) without touching it.
type Broker interface {
	CreateOrder(order models.TradeOrder) error
	GetPortfolio() (models.Portfolio, error)
}

// MarketData is the market-data collaborator: spot quotes and historic bars.
type MarketData interface {
	GetCurrentValue(symbol string) (models.Stock, error)
	GetHistoricValue(symbol string, start, end time.Time, aggregation string) ([]models.StockBar, error)
}

// AlpacaProvider implements both Broker and MarketData against the Alpaca
// API. The clients pick up APCA_API_KEY_ID / APCA_API_SECRET_KEY /
// APCA_API_BASE_URL from the environment.
type AlpacaProvider struct {
	tradeClient *alpaca.Client
	mdClient    *marketdata.Client
}

func NewAlpacaProvider() *AlpacaProvider {
	return &AlpacaProvider{
		tradeClient: alpaca.NewClient(alpaca.ClientOpts{}),
		mdClient:    marketdata.NewClient(marketdata.ClientOpts{}),
	}
}

// GetPortfolio assembles the current absolute portfolio from the account and
// open positions. TotalValue comes from account equity, which Alpaca keeps
// consistent with cash + market value of the positions.
func (a *AlpacaProvider) GetPortfolio() (models.Portfolio, error) {
	acct, err := a.tradeClient.GetAccount()
	if err != nil {
		return models.Portfolio{}, fmt.Errorf("get account: %w", err)
	}
	positions, err := a.tradeClient.GetPositions()
	if err != nil {
		return models.Portfolio{}, fmt.Errorf("get positions: %w", err)
	}

	pf := models.Portfolio{
		Positions:  make([]models.Position, 0, len(positions)),
		Cash:       acct.Cash.InexactFloat64(),
		TotalValue: acct.Equity.InexactFloat64(),
		Timestamp:  time.Now().UTC(),
	}
	for _, pos := range positions {
		value := 0.0
		if pos.MarketValue != nil {
			value = pos.MarketValue.InexactFloat64()
		}
		pf.Positions = append(pf.Positions, models.Position{
			Symbol: pos.Symbol,
			Shares: pos.Qty.InexactFloat64(),
			Value:  value,
		})
	}
	return pf, nil
}

// GetCurrentValue fetches the latest trade price for a symbol.
func (a *AlpacaProvider) GetCurrentValue(symbol string) (models.Stock, error) {
	trade, err := a.mdClient.GetLatestTrade(symbol, marketdata.GetLatestTradeRequest{})
	if err != nil {
		return models.Stock{}, err
	}
	if trade == nil {
		return models.Stock{}, fmt.Errorf("no trade found for %s", symbol)
	}
	return models.Stock{
		Symbol: symbol,
		Price:  trade.Price,
		Time:   trade.Timestamp,
	}, nil
}

var aggregationTimeFrames = map[string]marketdata.TimeFrame{
	"hour": marketdata.OneHour,
	"day":  marketdata.OneDay,
	"week": marketdata.NewTimeFrame(1, marketdata.Week),
}

// GetHistoricValue fetches candlesticks for a symbol over [start, end].
// Aggregation is one of "hour", "day", "week".
func (a *AlpacaProvider) GetHistoricValue(symbol string, start, end time.Time, aggregation string) ([]models.StockBar, error) {
	timeFrame, ok := aggregationTimeFrames[aggregation]
	if !ok {
		return nil, fmt.Errorf("unsupported aggregation %q", aggregation)
	}

	bars, err := a.mdClient.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: timeFrame,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.StockBar, 0, len(bars))
	for _, bar := range bars {
		out = append(out, models.StockBar{
			Symbol:     symbol,
			Time:       bar.Timestamp,
			Open:       bar.Open,
			High:       bar.High,
			Low:        bar.Low,
			Close:      bar.Close,
			Volume:     bar.Volume,
			TradeCount: bar.TradeCount,
			VWAP:       bar.VWAP,
		})
	}
	return out, nil
}
