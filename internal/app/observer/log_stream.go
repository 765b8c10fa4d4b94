package observer

import (
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playerfsm/internal/app/notification"
	"github.com/osa030/playerfsm/internal/infra/logger"
)

// LogStreamConfig holds settings of the log observer.
type LogStreamConfig struct {
	Level string `mapstructure:"level" default:"info" validate:"oneof=debug info warn warning error"`
}

// LogStream writes every notification to a zerolog logger.
type LogStream struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

// NewLogStream creates a log observer writing to the global logger.
func NewLogStream(settings map[string]any) (*LogStream, error) {
	var cfg LogStreamConfig
	if err := decodeSettings(settings, &cfg); err != nil {
		return nil, err
	}
	return &LogStream{logger: &zlog.Logger, level: logger.ParseLevel(cfg.Level)}, nil
}

// Send logs the notification.
func (s *LogStream) Send(n *notification.Notification) error {
	s.logger.WithLevel(s.level).
		Uint64("seq", n.SequenceNo).
		Str("from", n.From.String()).
		Str("to", n.To.String()).
		Str("event", n.Event.String()).
		Bool("changed", n.Changed()).
		Time("at", n.At).
		Msg("player state")
	return nil
}
