/*
Package observability turns lifecycle hooks into Prometheus metrics and
structured log lines.

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	hooks := metrics.Hooks().Merge(observability.LogHooks(logger))
	s := surface.New(host, surface.WithLifecycleHooks(hooks))
*/
package observability
