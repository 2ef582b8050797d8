package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/tactic/pkg/domain"
)

// Metrics holds the collectors fed by the lifecycle hooks.
type Metrics struct {
	GoalActivations *prometheus.CounterVec
	GoalOutcomes    *prometheus.CounterVec
	Arbitrations    *prometheus.CounterVec
	Searches        *prometheus.CounterVec
	SearchSteps     prometheus.Histogram
	SearchCost      prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		GoalActivations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tactic_goal_activations_total",
				Help: "Total number of goal activations",
			},
			[]string{"kind"},
		),
		GoalOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tactic_goal_outcomes_total",
				Help: "Goals terminated, by final status",
			},
			[]string{"kind", "status"},
		),
		Arbitrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tactic_arbitrations_total",
				Help: "Arbitration rounds, by winning evaluator",
			},
			[]string{"evaluator"},
		),
		Searches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tactic_searches_total",
				Help: "Resolved path searches",
			},
			[]string{"algorithm", "outcome"},
		),
		SearchSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tactic_search_steps",
			Help:    "Nodes expanded per resolved search",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		SearchCost: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tactic_search_cost",
			Help:    "Cost of found paths",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}
	reg.MustRegister(m.GoalActivations, m.GoalOutcomes, m.Arbitrations, m.Searches, m.SearchSteps, m.SearchCost)
	return m
}

// Hooks returns lifecycle hooks that record into m. Combine them with other
// hooks through domain.LifecycleHooks.Merge.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGoalActivate: func(_ context.Context, e *domain.GoalEvent) {
			m.GoalActivations.WithLabelValues(e.Kind).Inc()
		},
		OnGoalTerminate: func(_ context.Context, e *domain.GoalEvent) {
			m.GoalOutcomes.WithLabelValues(e.Kind, e.Status.String()).Inc()
		},
		OnArbitrate: func(_ context.Context, e *domain.ArbitrationEvent) {
			m.Arbitrations.WithLabelValues(e.Evaluator).Inc()
		},
		OnSearchResolve: func(_ context.Context, e *domain.SearchEvent) {
			m.Searches.WithLabelValues(e.Algorithm, e.Outcome).Inc()
			m.SearchSteps.Observe(float64(e.Steps))
			if e.Outcome == "found" {
				m.SearchCost.Observe(e.Cost)
			}
		},
	}
}
