package jobs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var jobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pos",
	Subsystem: "jobs",
	Name:      "runs_total",
	Help:      "Housekeeping job runs, labeled by job and outcome",
}, []string{"job", "outcome"})
