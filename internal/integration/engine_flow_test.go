package integration

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"papertrade-go/internal/bot"
	"papertrade-go/internal/exchange"
	"papertrade-go/internal/ledger"
	"papertrade-go/internal/model"
	"papertrade-go/internal/state"
)

// TestEngineFlowEndToEnd wires the real collaborators together: the stub feed
// streams ticks through ingestion into shared state, a manual trade settles
// through the ledger, and a momentum bot trades autonomously on the rising
// stub prices until stopped.
func TestEngineFlowEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st := state.New(nil, nil, zerolog.Nop())
	lg := ledger.New(st, nil, zerolog.Nop())

	feed := exchange.NewFeed(exchange.ProviderStub, []string{"BTC"}, zerolog.Nop(),
		exchange.WithPollInterval(5*time.Millisecond))
	ticks := make(chan model.PriceTick, 64)
	go func() { _ = feed.Run(ctx, ticks) }()
	go exchange.RunIngest(ctx, st, ticks, zerolog.Nop())

	waitFor(t, ctx, func() bool {
		_, ok := st.LatestPrice("BTC")
		return ok
	}, "first tick ingested")

	// manual trade through the ledger
	tx, err := lg.ExecuteTrade(model.DemoUserID, "BTC", model.ReferenceAsset, model.Buy, 1)
	if err != nil {
		t.Fatalf("ExecuteTrade returned error: %v", err)
	}
	account, ok := st.GetUser(model.DemoUserID)
	if !ok {
		t.Fatal("demo user missing")
	}
	if account.Balance("BTC") != 1 {
		t.Fatalf("expected 1 BTC, got %v", account.Balance("BTC"))
	}
	wantUSD := model.SeedBalance - tx.Price*tx.Quantity
	if got := account.Balance(model.ReferenceAsset); got != wantUSD {
		t.Fatalf("expected %v USD, got %v", wantUSD, got)
	}

	// autonomous bot on the same state; stub prices rise steadily, so the
	// momentum strategy buys once its history fills
	sup := bot.NewSupervisor(st, lg, zerolog.Nop()).WithTickInterval(5 * time.Millisecond)
	if err := sup.Start(model.DemoUserID, "momentum", "BTC", model.ReferenceAsset, 5000); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if !st.BotActive(model.DemoUserID) {
		t.Fatal("expected an active bot")
	}

	waitFor(t, ctx, func() bool {
		account, _ := st.GetUser(model.DemoUserID)
		for _, entry := range account.History {
			if entry.ExecutedBy == "momentum" {
				return true
			}
		}
		return false
	}, "bot trade recorded")

	if !sup.Stop(model.DemoUserID) {
		t.Fatal("expected Stop to find a running bot")
	}
	if st.BotActive(model.DemoUserID) {
		t.Fatal("bot record must be gone after Stop")
	}
}

func waitFor(t *testing.T, ctx context.Context, cond func() bool, what string) {
	t.Helper()
	for {
		if cond() {
			return
		}
		select {
		case <-ctx.Done():
			t.Fatalf("timed out waiting for %s", what)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
