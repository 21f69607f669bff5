package log

// EventSink receives the structured events the simulation service emits:
// request received, validation verdict, completion, failure. The core
// kinematics packages never log; the service layer reports through an
// injected sink and the application decides where the events go. No
// behavior may depend on a sink succeeding.
type EventSink interface {
	Emit(event string, fields Fields)
}

// NopSink discards all events. It is the default sink so the core stays
// silent unless the application asks otherwise.
type NopSink struct{}

// Emit implements EventSink
func (NopSink) Emit(string, Fields) {}

// LoggerSink forwards events to a Logger at INFO level.
type LoggerSink struct {
	logger *Logger
}

// NewLoggerSink creates a sink backed by the given logger.
func NewLoggerSink(logger *Logger) *LoggerSink {
	return &LoggerSink{logger: logger}
}

// Emit implements EventSink
func (s *LoggerSink) Emit(event string, fields Fields) {
	s.logger.WithFields(fields).Info(event)
}
