// Binary server runs the paper-trading engine: price ingestion, the shared
// market/ledger state, and the bot supervisor. HTTP request handling lives
// outside this binary and talks to the same engine surfaces.
package main

import (
	"context"
	"os"
	ossignal "os/signal"
	"path/filepath"
	"syscall"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/joho/godotenv"

	"papertrade-go/internal/bot"
	"papertrade-go/internal/config"
	"papertrade-go/internal/exchange"
	"papertrade-go/internal/ledger"
	"papertrade-go/internal/metrics"
	"papertrade-go/internal/model"
	"papertrade-go/internal/state"
	"papertrade-go/internal/storage"
	"papertrade-go/internal/util"
)

func main() {
	_ = godotenv.Load() // best-effort

	configPath := os.Getenv("PAPERTRADE_CONFIG")
	if configPath == "" {
		configPath = "internal/config/config.yaml"
	}

	log := util.NewLogger("info")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	log = util.NewLogger(cfg.App.LogLevel)

	if cfg.Profiling.Enabled {
		_, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: cfg.App.Name,
			ServerAddress:   cfg.Profiling.ServerAddress,
		})
		if err != nil {
			log.Warn().Err(err).Msg("profiler start failed")
		}
	}

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		log.Fatal().Err(err).Msg("create data dir")
	}
	store, err := storage.Open(cfg.Storage.Path, util.Component(log, "storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("open storage")
	}

	// The demo account lives in memory only; drop any stale mirror row so a
	// fresh one is seeded on every start.
	if err := store.Delete(model.DemoUserID); err != nil {
		log.Warn().Err(err).Msg("reset demo user row")
	}
	loaded, err := store.LoadAll()
	if err != nil {
		log.Fatal().Err(err).Msg("load users")
	}
	log.Info().Int("users", len(loaded)).Msg("accounts loaded")

	st := state.New(loaded, store, util.Component(log, "state"))

	var recorder ledger.TransactionRecorder
	if cfg.Storage.TransactionsLog != "" {
		jsonl, err := ledger.NewJSONLRecorder(cfg.Storage.TransactionsLog)
		if err != nil {
			log.Fatal().Err(err).Msg("open transaction log")
		}
		defer jsonl.Close()
		recorder = jsonl
	}
	book := ledger.New(st, recorder, util.Component(log, "ledger"))

	clientOpts := []exchange.ClientOption{}
	if cfg.Feed.SpotBaseURL != "" {
		clientOpts = append(clientOpts, exchange.WithSpotBaseURL(cfg.Feed.SpotBaseURL))
	}
	if cfg.Feed.CandleBaseURL != "" {
		clientOpts = append(clientOpts, exchange.WithCandleBaseURL(cfg.Feed.CandleBaseURL))
	}
	feedOpts := []exchange.Option{
		exchange.WithClient(exchange.NewClient(clientOpts...)),
		exchange.WithBackfill(cfg.Feed.Backfill),
	}
	if cfg.Feed.PollIntervalSecs > 0 {
		feedOpts = append(feedOpts, exchange.WithPollInterval(time.Duration(cfg.Feed.PollIntervalSecs)*time.Second))
	}
	if cfg.Feed.WSURL != "" {
		feedOpts = append(feedOpts, exchange.WithWSURL(cfg.Feed.WSURL))
	}
	feed := exchange.NewFeed(cfg.Feed.Provider, cfg.Feed.Assets, util.Component(log, "feed"), feedOpts...)

	ticks := make(chan model.PriceTick, 1024)
	go func() {
		if err := feed.Run(ctx, ticks); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("feed stopped")
			cancel()
		}
	}()
	go exchange.RunIngest(ctx, st, ticks, util.Component(log, "ingest"))

	supervisor := bot.NewSupervisor(st, book, util.Component(log, "bots"))
	if cfg.Bots.TickIntervalSecs > 0 {
		supervisor.WithTickInterval(time.Duration(cfg.Bots.TickIntervalSecs) * time.Second)
	}
	if cfg.Bots.Demo.Enabled {
		demo := cfg.Bots.Demo
		if err := supervisor.Start(model.DemoUserID, demo.Strategy, demo.BaseAsset, demo.QuoteAsset, demo.StoplossAmount); err != nil {
			log.Warn().Err(err).Msg("demo bot start failed")
		}
	}

	log.Info().Str("env", cfg.App.Env).Msg("engine started")
	<-ctx.Done()
	log.Info().Msg("shutting down")
}
