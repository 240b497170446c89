package events

import "github.com/rs/zerolog"

// LogSink mirrors events into a structured log.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a sink that logs each event at info level.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Emit(e Event) {
	s.log.Info().
		Str("tx", e.TxHash).
		Fields(e.Fields).
		Msg(e.Name)
}

func (s *LogSink) Close() error { return nil }
