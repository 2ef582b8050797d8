/*
Package observability turns scheduler lifecycle hooks into Prometheus metrics.

	m := observability.NewMetrics(prometheus.NewRegistry())
	s, _ := tactic.New(sc, tactic.WithLifecycleHooks(m.Hooks()))

Goal activations and outcomes are counted per kind, arbitrations per winning
evaluator, and resolved searches per algorithm and outcome, with histograms of
expanded steps and path cost.
*/
package observability
