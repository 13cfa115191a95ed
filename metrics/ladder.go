package metrics

import (
	"time"

	"github.com/PrimalTeam/sportsy-back/models"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sportsy"

// Ladder holds the counters of the ladder engine.
type Ladder struct {
	GamesCreated   *prometheus.CounterVec
	Operations     *prometheus.CounterVec
	SaveConflicts  prometheus.Counter
	OperationTimes *prometheus.HistogramVec
}

// NewLadder creates the ladder metrics and registers them on reg.
func NewLadder(reg prometheus.Registerer) *Ladder {
	m := &Ladder{
		GamesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ladder",
			Name:      "games_created_total",
			Help:      "Games created by the ladder engine.",
		}, []string{"format"}),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ladder",
			Name:      "operations_total",
			Help:      "Ladder operations by outcome.",
		}, []string{"operation", "result"}),
		SaveConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ladder",
			Name:      "save_conflicts_total",
			Help:      "Ladder saves rejected because the stored version moved.",
		}),
		OperationTimes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ladder",
			Name:      "operation_duration_seconds",
			Help:      "Duration of ladder operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.GamesCreated, m.Operations, m.SaveConflicts, m.OperationTimes)
	}
	return m
}

func (m *Ladder) RecordGamesCreated(format models.LadderFormat, n int) {
	if m == nil {
		return
	}
	m.GamesCreated.WithLabelValues(string(format)).Add(float64(n))
}

// Observe records the outcome and duration of one operation.
func (m *Ladder) Observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Operations.WithLabelValues(operation, result).Inc()
	m.OperationTimes.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Ladder) RecordConflict() {
	if m == nil {
		return
	}
	m.SaveConflicts.Inc()
}
