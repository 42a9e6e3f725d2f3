package perf

// Insights classifies the headline metrics into human-readable
// observations.
func Insights(a *Analysis) []string {
	var out []string

	switch {
	case a.P95ResponseTime > 1000:
		out = append(out, "P95 response time exceeds 1 second, consider optimization")
	case a.P95ResponseTime > 500:
		out = append(out, "P95 response time is acceptable but could be improved")
	default:
		out = append(out, "Excellent response time performance")
	}

	switch {
	case a.SuccessRate < 95:
		out = append(out, "Success rate below 95%, investigate error causes")
	case a.SuccessRate < 99:
		out = append(out, "Success rate could be improved")
	default:
		out = append(out, "Excellent success rate")
	}

	switch {
	case a.Throughput < 10:
		out = append(out, "Low throughput, consider scaling or optimization")
	case a.Throughput < 50:
		out = append(out, "Moderate throughput, room for improvement")
	default:
		out = append(out, "Good throughput performance")
	}

	return out
}

// Recommendations derives optimization advice from the metrics.
func Recommendations(a *Analysis) []string {
	var out []string

	if a.P95ResponseTime > 500 {
		out = append(out,
			"Implement caching for frequently accessed data",
			"Optimize database queries and add appropriate indexes",
			"Consider implementing the DataLoader pattern for N+1 query prevention",
			"Enable query result caching at the gateway level",
		)
	}
	if a.SuccessRate < 99 {
		out = append(out,
			"Implement circuit breakers for external service calls",
			"Add retry logic with exponential backoff",
			"Improve error handling and graceful degradation",
			"Monitor and alert on error rate spikes",
		)
	}

	out = append(out,
		"Monitor federated query performance separately",
		"Implement query complexity analysis",
		"Consider query allowlisting for production",
		"Optimize subgraph communication patterns",
	)
	return out
}
