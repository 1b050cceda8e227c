package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	betTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roulette_bets_total",
			Help: "Committed bet requests by result and bet type",
		},
		[]string{"result", "bet_type"},
	)

	betDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roulette_bet_duration_ms",
			Help:    "Commit bet duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
		[]string{"result"},
	)

	sessionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roulette_session_saves_total",
			Help: "Session batch settlements by result",
		},
		[]string{"result"},
	)

	sessionBets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roulette_session_bets_total",
		Help: "Bets settled through session batches",
	})

	spinTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roulette_spins_total",
		Help: "Rounds created by spins",
	})

	ledgerMismatch = promauto.NewCounter(prometheus.CounterOpts{
		Name: "roulette_ledger_mismatch_total",
		Help: "Players whose ledger replay disagreed with their funds",
	})

	httpReqTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpReqDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "HTTP request duration in ms",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
		[]string{"path", "method"},
	)
)

// RecordBet records one commit attempt. result is "won", "lost" or "fail".
func RecordBet(result, betType string, started time.Time) {
	if betType == "" {
		betType = "unknown"
	}
	betTotal.WithLabelValues(result, strings.ToLower(betType)).Inc()
	betDuration.WithLabelValues(result).Observe(float64(time.Since(started).Milliseconds()))
}

func RecordSession(success bool, bets int) {
	if !success {
		sessionTotal.WithLabelValues("fail").Inc()
		return
	}
	sessionTotal.WithLabelValues("success").Inc()
	sessionBets.Add(float64(bets))
}

func RecordSpin() { spinTotal.Inc() }

func RecordLedgerMismatch() { ledgerMismatch.Inc() }

func RecordHTTP(path, method string, status int, started time.Time) {
	httpReqTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	httpReqDuration.WithLabelValues(path, method).Observe(float64(time.Since(started).Milliseconds()))
}
