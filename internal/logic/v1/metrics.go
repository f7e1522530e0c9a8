package v1

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pos",
		Subsystem: "sessions",
		Name:      "created_total",
		Help:      "Sessions issued on login",
	})

	sessionsDestroyed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pos",
		Subsystem: "sessions",
		Name:      "destroyed_total",
		Help:      "Sessions destroyed on logout",
	})

	csrfTokensBound = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pos",
		Subsystem: "csrf",
		Name:      "tokens_bound_total",
		Help:      "CSRF tokens bound lazily to sessions persisted without one",
	})

	rosterMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pos",
		Subsystem: "roster",
		Name:      "mutations_total",
		Help:      "Committed roster mutations, labeled by operation",
	}, []string{"op"})

	transactionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pos",
		Subsystem: "ledger",
		Name:      "transactions_total",
		Help:      "Transactions recorded, labeled by payment method",
	}, []string{"payment_method"})
)
