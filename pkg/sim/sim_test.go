package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"armsim/pkg/errors"
	"armsim/pkg/log"
	"armsim/pkg/metrics"
	"armsim/pkg/trajectory"
)

// recordingSink captures emitted events for assertions.
type recordingSink struct {
	events []recordedEvent
}

type recordedEvent struct {
	name   string
	fields log.Fields
}

func (s *recordingSink) Emit(event string, fields log.Fields) {
	s.events = append(s.events, recordedEvent{name: event, fields: fields})
}

func (s *recordingSink) names() []string {
	names := make([]string, len(s.events))
	for i, e := range s.events {
		names[i] = e.name
	}
	return names
}

func validRequest() Request {
	return Request{
		L1: 100, L2: 80,
		Circle:   trajectory.Circle{CenterX: 150, CenterY: 0, Radius: 30},
		Sampling: trajectory.Sampling{Speed: 50, TimeStep: 0.1},
	}
}

func TestRunSuccess(t *testing.T) {
	sink := &recordingSink{}
	reg := metrics.NewRegistry()
	m := metrics.NewSimMetrics(reg)
	s := New(WithEventSink(sink), WithMetrics(m))

	result, err := s.Run(validRequest())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Len(t, result.Trajectory, 39)

	assert.Equal(t,
		[]string{"simulation_requested", "circle_validated", "simulation_completed"},
		sink.names())

	completed := sink.events[2]
	assert.Equal(t, 39, completed.fields["samples"])

	validated := sink.events[1]
	assert.Equal(t, true, validated.fields["reachable"])

	assert.Equal(t, 1.0, m.SimulationsTotal.Value())
	assert.Equal(t, 0.0, m.SimulationsFailed.Value())
	assert.Equal(t, 39.0, m.SamplesGenerated.Value())
	assert.Equal(t, 39.0, m.LastSampleCount.Value())
}

func TestRunInvalidGeometry(t *testing.T) {
	sink := &recordingSink{}
	reg := metrics.NewRegistry()
	m := metrics.NewSimMetrics(reg)
	s := New(WithEventSink(sink), WithMetrics(m))

	req := validRequest()
	req.L1 = 0

	result, err := s.Run(req)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsInvalidParameter(err))

	assert.Equal(t, []string{"simulation_requested", "simulation_failed"}, sink.names())
	failed := sink.events[1]
	assert.Equal(t, string(errors.ErrInvalidParameter), failed.fields["code"])

	assert.Equal(t, 1.0, m.SimulationsFailed.Value())
}

func TestRunUnreachableCircle(t *testing.T) {
	sink := &recordingSink{}
	s := New(WithEventSink(sink))

	req := validRequest()
	req.Circle = trajectory.Circle{CenterX: 300, CenterY: 0, Radius: 10}

	result, err := s.Run(req)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsOutOfReach(err))

	assert.Equal(t,
		[]string{"simulation_requested", "circle_validated", "simulation_failed"},
		sink.names())
	assert.Equal(t, false, sink.events[1].fields["reachable"])
	assert.Equal(t, string(errors.ErrOutOfReach), sink.events[2].fields["code"])
}

func TestRunWithoutOptions(t *testing.T) {
	s := New()

	result, err := s.Run(validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, result.Trajectory)
}

func TestValidateCircle(t *testing.T) {
	s := New()

	ok, err := s.ValidateCircle(validRequest())
	require.NoError(t, err)
	assert.True(t, ok)

	req := validRequest()
	req.Circle.CenterX = 300
	ok, err = s.ValidateCircle(req)
	require.NoError(t, err)
	assert.False(t, ok)

	req = validRequest()
	req.L2 = -1
	_, err = s.ValidateCircle(req)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidParameter(err))
}
