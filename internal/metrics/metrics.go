package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ticks_total", Help: "Count of price ticks ingested"},
		[]string{"asset"},
	)
	CandlesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "candles_total", Help: "Closed OHLC candles"},
		[]string{"asset", "resolution"},
	)
	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trades_total", Help: "Executed trades"},
		[]string{"side", "origin"},
	)
	TradeRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trade_rejections_total", Help: "Rejected balance mutations"},
		[]string{"reason"},
	)
	BotTicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bot_ticks_total", Help: "Bot supervision ticks"},
		[]string{"strategy"},
	)
	BotStopsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bot_stops_total", Help: "Bot terminations by reason"},
		[]string{"reason"},
	)
	PersistFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "persist_failures_total", Help: "Best-effort account saves that failed"},
	)
)

func init() {
	prometheus.MustRegister(TicksTotal, CandlesTotal, TradesTotal, TradeRejectionsTotal, BotTicksTotal, BotStopsTotal, PersistFailuresTotal)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
