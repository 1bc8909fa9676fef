package giga

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"giga_trading/internal/brain"
	"giga_trading/internal/config"
	"giga_trading/internal/market"
	"giga_trading/internal/models"
	"giga_trading/internal/storage"
)

// Action-log categories. The latest record per (user, category) is the
// effective current decision.
const (
	CategoryStrategy        = "strategy"
	CategoryPortfolioUpdate = "portfolio_update"
)

const defaultResearchPrompt = `You are a seasoned investment banker with a track record of
outsized returns. Perform market research and produce an investment
strategy to be followed by automated agents until the next strategy update.
Name the specific stock symbols worth watching.`

const defaultUpdatePrompt = `Given the strategy, the recent price history of the watched
symbols and the current portfolio, return the desired relative allocation
of the portfolio. Percentages are fractions of total portfolio value and
should sum to 1.0 together with percent_cash.`

const defaultBackground = `Options and crypto are not allowed.
Only buy/sell stocks that are available on public markets.
No leverage; only use cash available in the portfolio or made
available through the sale of stocks.`

// Giga composes the broker, the market-data source, the LLM brains and the
// action log into the two decision pipelines: strategy generation and
// portfolio-update generation. Every pipeline step blocks the caller; there
// is no internal parallelism.
type Giga struct {
	broker        market.Broker
	market        market.MarketData
	researchBrain brain.Brain
	updateBrain   brain.Brain
	log           storage.ActionLog
	user          string
	cfg           *config.Config
}

func New(
	cfg *config.Config,
	broker market.Broker,
	marketData market.MarketData,
	researchBrain brain.Brain,
	updateBrain brain.Brain,
	actionLog storage.ActionLog,
) *Giga {
	return &Giga{
		broker:        broker,
		market:        marketData,
		researchBrain: researchBrain,
		updateBrain:   updateBrain,
		log:           actionLog,
		user:          cfg.User,
		cfg:           cfg,
	}
}

// GenerateStrategy asks the research brain for a fresh investment strategy,
// giving it the current portfolio, the previously recorded strategy (when one
// exists) and the configured cadence as context. The decision is persisted
// before it is returned; a failed call persists nothing.
func (g *Giga) GenerateStrategy(ctx context.Context) (*models.StrategyResponse, error) {
	portfolio, err := g.broker.GetPortfolio()
	if err != nil {
		return nil, fmt.Errorf("generate strategy: %w", err)
	}

	contextItems := []any{portfolio}
	if previous, err := g.PreviousStrategy(); err != nil {
		return nil, fmt.Errorf("generate strategy: %w", err)
	} else if previous != nil {
		contextItems = append(contextItems,
			brain.ApplyInlineTag("previous_strategy", previous.StrategyReport))
	}
	contextItems = append(contextItems, brain.ApplyInlineTag("update_frequency",
		fmt.Sprintf("strategy updates %s, portfolio updates %s",
			g.cfg.StrategyUpdateFrequency, g.cfg.PortfolioUpdateFrequency)))

	answer, err := g.ask(ctx, g.researchBrain, brain.LLMRequest{
		Prompt:         g.researchPrompt(),
		Background:     defaultBackground,
		Context:        contextItems,
		ExpectedFormat: brain.StrategyResponseSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("generate strategy: %w", err)
	}
	strategy := answer.Value.(*models.StrategyResponse)

	if err := g.persist(CategoryStrategy, answer, strategy); err != nil {
		return nil, fmt.Errorf("generate strategy: %w", err)
	}
	return strategy, nil
}

// UpdatePortfolio asks the update brain for the desired relative allocation.
// A nil strategy falls back to the latest persisted one; with a cold action
// log the context degenerates to "no strategy" rather than failing.
func (g *Giga) UpdatePortfolio(ctx context.Context, strategy *models.StrategyResponse) (*models.RelativePortfolio, error) {
	if strategy == nil {
		previous, err := g.PreviousStrategy()
		if err != nil {
			return nil, fmt.Errorf("update portfolio: %w", err)
		}
		if previous == nil {
			previous = &models.StrategyResponse{}
		}
		strategy = previous
	}

	portfolio, err := g.broker.GetPortfolio()
	if err != nil {
		return nil, fmt.Errorf("update portfolio: %w", err)
	}

	now := time.Now().UTC()
	contextItems := []any{
		brain.ApplyInlineTag("strategy", strategy.StrategyReport),
		brain.ApplyInlineTag("current_time", now.Format(time.RFC3339)),
	}
	start := now.AddDate(0, 0, -lookbackDays(g.cfg.PortfolioUpdateFrequency))
	for _, symbol := range strategy.StockSymbolsToWatch {
		bars, err := g.market.GetHistoricValue(symbol, start, now, barAggregation(g.cfg.PortfolioUpdateFrequency))
		if err != nil {
			log.Printf("Skipping price history for %s: %v", symbol, err)
			continue
		}
		contextItems = append(contextItems, models.SymbolHistory{Symbol: symbol, Bars: bars})
	}
	contextItems = append(contextItems, portfolio)

	answer, err := g.ask(ctx, g.updateBrain, brain.LLMRequest{
		Prompt:         g.updatePrompt(),
		Background:     defaultBackground,
		Context:        contextItems,
		ExpectedFormat: brain.RelativePortfolioSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("update portfolio: %w", err)
	}
	desired := answer.Value.(*models.RelativePortfolio)

	if err := g.persist(CategoryPortfolioUpdate, answer, desired); err != nil {
		return nil, fmt.Errorf("update portfolio: %w", err)
	}
	return desired, nil
}

// PreviousStrategy loads the most recently persisted strategy, nil when none
// has been recorded yet. A missing strategy is a cold start, not an error.
func (g *Giga) PreviousStrategy() (*models.StrategyResponse, error) {
	record, err := g.log.Latest(g.user, CategoryStrategy)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	serialized, _ := record.Action["response"].(string)
	if serialized == "" {
		return nil, nil
	}
	var strategy models.StrategyResponse
	if err := json.Unmarshal([]byte(serialized), &strategy); err != nil {
		log.Printf("Ignoring unreadable previous strategy (record %d): %v", record.ID, err)
		return nil, nil
	}
	return &strategy, nil
}

func (g *Giga) ask(ctx context.Context, b brain.Brain, req brain.LLMRequest) (*brain.Answer, error) {
	answer, err := b.Ask(ctx, req)
	if err != nil {
		return nil, err
	}
	if answer.Value == nil {
		return nil, fmt.Errorf("brain returned no typed value for %s", req.ExpectedFormat.Name)
	}
	return answer, nil
}

// persist appends the decision to the action log: the rendered prompt for
// auditability plus the serialized typed response.
func (g *Giga) persist(category string, answer *brain.Answer, response any) error {
	serialized, err := json.Marshal(response)
	if err != nil {
		return err
	}
	return g.log.Write(g.user, category, map[string]any{
		"query":    answer.Query,
		"response": string(serialized),
	})
}

func (g *Giga) researchPrompt() string {
	if g.cfg.ResearchPrompt != "" {
		return g.cfg.ResearchPrompt
	}
	return defaultResearchPrompt
}

func (g *Giga) updatePrompt() string {
	if g.cfg.PortfolioUpdatePrompt != "" {
		return g.cfg.PortfolioUpdatePrompt
	}
	return defaultUpdatePrompt
}

// lookbackDays derives the historical window from the update frequency.
func lookbackDays(frequency string) int {
	switch frequency {
	case "hourly", "daily":
		return 1
	case "weekly":
		return 7
	default:
		return 7
	}
}

// barAggregation picks the candle size to match the lookback window.
func barAggregation(frequency string) string {
	switch frequency {
	case "hourly", "daily":
		return "hour"
	default:
		return "day"
	}
}
