package platform

import (
	"log/slog"

	"github.com/mbrock/hostenv/internal/config"
	"github.com/mbrock/hostenv/internal/environment"
)

// Override returns a source reporting an operator-supplied value.
// Unrecognised values are ambiguous and reported as unknown.
func Override(value string) environment.Source {
	return environment.SourceFunc{
		Label: config.SourceOverride,
		Fn: func() environment.Signal {
			sig, ok := environment.ParseSignal(value)
			if !ok {
				slog.Warn("ignoring unrecognised environment override", "value", value)
			}
			return sig
		},
	}
}
