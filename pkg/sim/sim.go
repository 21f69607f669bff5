// Package sim is the request/response orchestration layer over the
// kinematics core. A Simulator accepts one request at a time, validates
// it, runs trajectory generation, and reports structured events through an
// injected sink. A rejected request is terminal; corrected parameters
// start a fresh run.
package sim

import (
	"armsim/pkg/arm"
	"armsim/pkg/errors"
	"armsim/pkg/log"
	"armsim/pkg/metrics"
	"armsim/pkg/trajectory"
)

// Request carries the parameters for one simulation run.
type Request struct {
	L1    float64 `json:"l1"`
	L2    float64 `json:"l2"`
	BaseX float64 `json:"base_x"`
	BaseY float64 `json:"base_y"`

	Circle   trajectory.Circle   `json:"circle"`
	Sampling trajectory.Sampling `json:"sampling"`
}

// Result is the outcome of a successful run.
type Result struct {
	Arm        *arm.Arm
	Trajectory trajectory.Trajectory
}

// Simulator runs simulation requests against the kinematics core.
type Simulator struct {
	sink    log.EventSink
	metrics *metrics.SimMetrics
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithEventSink sets the sink receiving simulation events.
func WithEventSink(sink log.EventSink) Option {
	return func(s *Simulator) { s.sink = sink }
}

// WithMetrics sets the metrics the simulator reports to.
func WithMetrics(m *metrics.SimMetrics) Option {
	return func(s *Simulator) { s.metrics = m }
}

// New creates a Simulator. Without options it emits no events and
// records no metrics.
func New(opts ...Option) *Simulator {
	s := &Simulator{sink: log.NopSink{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one simulation request. On failure no partial result is
// returned; the error is always a *errors.SimError.
func (s *Simulator) Run(req Request) (*Result, error) {
	s.sink.Emit("simulation_requested", log.Fields{
		"l1":        req.L1,
		"l2":        req.L2,
		"base_x":    req.BaseX,
		"base_y":    req.BaseY,
		"center_x":  req.Circle.CenterX,
		"center_y":  req.Circle.CenterY,
		"radius":    req.Circle.Radius,
		"speed":     req.Sampling.Speed,
		"time_step": req.Sampling.TimeStep,
	})
	if s.metrics != nil {
		s.metrics.SimulationsTotal.Inc()
	}

	a, err := arm.New(req.L1, req.L2, req.BaseX, req.BaseY)
	if err != nil {
		return nil, s.fail(err)
	}
	if err := req.Circle.Validate(); err != nil {
		return nil, s.fail(err)
	}
	if err := req.Sampling.Validate(); err != nil {
		return nil, s.fail(err)
	}

	reachable := trajectory.ValidateCircle(a, req.Circle)
	s.sink.Emit("circle_validated", log.Fields{
		"reachable": reachable,
		"min_reach": a.MinReach(),
		"max_reach": a.MaxReach(),
	})

	tr, err := trajectory.Generate(a, req.Circle, req.Sampling)
	if err != nil {
		return nil, s.fail(err)
	}

	if s.metrics != nil {
		s.metrics.SamplesGenerated.Add(float64(len(tr)))
		s.metrics.LastSampleCount.Set(float64(len(tr)))
		s.metrics.LastDuration.Set(tr.Duration())
	}
	s.sink.Emit("simulation_completed", log.Fields{
		"samples":  len(tr),
		"duration": tr.Duration(),
	})

	return &Result{Arm: a, Trajectory: tr}, nil
}

// ValidateCircle runs the cheap pre-flight reachability check for a
// request, for callers that want a verdict before committing to a run.
func (s *Simulator) ValidateCircle(req Request) (bool, error) {
	a, err := arm.New(req.L1, req.L2, req.BaseX, req.BaseY)
	if err != nil {
		return false, err
	}
	if err := req.Circle.Validate(); err != nil {
		return false, err
	}
	return trajectory.ValidateCircle(a, req.Circle), nil
}

func (s *Simulator) fail(err error) error {
	if s.metrics != nil {
		s.metrics.SimulationsFailed.Inc()
	}
	fields := log.Fields{"error": err.Error()}
	if simErr := errors.AsSimError(err); simErr != nil {
		fields["code"] = string(simErr.Code)
	}
	s.sink.Emit("simulation_failed", fields)
	return err
}
