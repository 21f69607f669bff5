package metrics

// SimMetrics bundles the metrics the simulation service reports.
type SimMetrics struct {
	// SimulationsTotal counts simulation requests received
	SimulationsTotal *Counter

	// SimulationsFailed counts simulation requests that ended in error
	SimulationsFailed *Counter

	// SamplesGenerated counts trajectory samples produced
	SamplesGenerated *Counter

	// LastDuration is the duration of the most recent trajectory, in seconds
	LastDuration *Gauge

	// LastSampleCount is the sample count of the most recent trajectory
	LastSampleCount *Gauge
}

// NewSimMetrics registers the simulation metrics on the given registry.
func NewSimMetrics(r *Registry) *SimMetrics {
	return &SimMetrics{
		SimulationsTotal:  r.NewCounter("armsim_simulations_total", "Simulation requests received"),
		SimulationsFailed: r.NewCounter("armsim_simulations_failed_total", "Simulation requests that failed"),
		SamplesGenerated:  r.NewCounter("armsim_samples_generated_total", "Trajectory samples produced"),
		LastDuration:      r.NewGauge("armsim_last_trajectory_duration_seconds", "Duration of the most recent trajectory"),
		LastSampleCount:   r.NewGauge("armsim_last_trajectory_samples", "Sample count of the most recent trajectory"),
	}
}
