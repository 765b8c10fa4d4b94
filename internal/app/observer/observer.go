// Package observer provides built-in subscribers for player state changes.
package observer

import (
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playerfsm/internal/app/notification"
	"github.com/osa030/playerfsm/internal/infra/config"
)

// Observer types accepted in configuration.
const (
	TypeLog     = "log"
	TypeHistory = "history"
)

// Named pairs a stream with the configured observer type.
type Named struct {
	Type   string
	Stream notification.Stream
}

// NewFromConfig creates the observers listed in configuration.
func NewFromConfig(cfgs []config.ObserverConfig) ([]Named, error) {
	observers := make([]Named, 0, len(cfgs))
	for i, ocfg := range cfgs {
		var stream notification.Stream
		var err error
		zlog.Debug().Msgf("creating observer: index=%d type=%s settings=%+v", i+1, ocfg.Type, ocfg.Settings)
		switch ocfg.Type {
		case TypeLog:
			stream, err = NewLogStream(ocfg.Settings)
		case TypeHistory:
			stream, err = NewHistory(ocfg.Settings)
		default:
			return nil, errors.Newf("unsupported observer type: %s (observer index %d)", ocfg.Type, i)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create observer (index %d, type %s)", i, ocfg.Type)
		}
		observers = append(observers, Named{Type: ocfg.Type, Stream: stream})
	}
	return observers, nil
}

// decodeSettings decodes, defaults and validates observer settings into out.
func decodeSettings(settings map[string]any, out any) error {
	if err := mapstructure.Decode(settings, out); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(out); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	return nil
}
