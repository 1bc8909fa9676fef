package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"giga_trading/internal/brain"
	"giga_trading/internal/config"
	"giga_trading/internal/giga"
	"giga_trading/internal/logger"
	"giga_trading/internal/market"
	"giga_trading/internal/scheduler"
	"giga_trading/internal/storage"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogFile, cfg.MaxLogSizeMB, cfg.MaxLogBackups)

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("CRITICAL: Could not open action log: %v", err)
	}
	defer store.Close()

	provider := market.NewAlpacaProvider()
	brainClient := brain.NewClient(newTransport(cfg))

	g := giga.New(cfg, provider, provider, brainClient, brainClient, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Println("Shutting down: system signal received")
		cancel()
	}()

	log.Printf("gigatrader starting (user=%s, trade_type=%s, llm=%s)", cfg.User, cfg.TradeType, cfg.LLMBackend)
	log.Printf("Strategy updates %s, portfolio updates %s", cfg.StrategyUpdateFrequency, cfg.PortfolioUpdateFrequency)

	scheduler.NewRunner(g.Jobs()...).Run(ctx)
}

func newTransport(cfg *config.Config) brain.Transport {
	if cfg.LLMBackend == "console" {
		return brain.NewConsoleTransport()
	}
	return brain.NewOpenAITransport(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
}
