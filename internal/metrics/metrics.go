package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gokatarajesh/dsa-vault/internal/question"
)

const namespace = "dsa_vault"

// Collector exports mutation counts and the per-difficulty collection size.
type Collector struct {
	mutations *prometheus.CounterVec
	failures  *prometheus.CounterVec
	questions *prometheus.GaugeVec
}

// New registers the vault metrics with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "question_mutations_total",
			Help:      "Persisted question mutations by operation.",
		}, []string{"op"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "question_mutation_failures_total",
			Help:      "Rejected question mutations by operation and reason.",
		}, []string{"op", "reason"}),
		questions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "questions",
			Help:      "Questions currently stored, by difficulty.",
		}, []string{"difficulty"}),
	}
	reg.MustRegister(c.mutations, c.failures, c.questions)
	return c
}

// Observe is a question.Repository subscriber.
func (c *Collector) Observe(ev question.Event) {
	c.mutations.WithLabelValues(string(ev.Op)).Inc()
	c.SetSnapshot(ev.Snapshot)
}

// SetSnapshot refreshes the gauges from a full collection.
func (c *Collector) SetSnapshot(questions []question.Question) {
	stats := question.Stats(questions)
	c.questions.WithLabelValues(string(question.DifficultyEasy)).Set(float64(stats.Easy))
	c.questions.WithLabelValues(string(question.DifficultyMedium)).Set(float64(stats.Medium))
	c.questions.WithLabelValues(string(question.DifficultyHard)).Set(float64(stats.Hard))
}

// Failed counts a mutation that did not go through.
func (c *Collector) Failed(op question.Op, reason string) {
	c.failures.WithLabelValues(string(op), reason).Inc()
}
