package app

import (
	"log/slog"

	"zkl/internal/config"
	"zkl/internal/metrics"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home     string        // state directory, e.g. $HOME/.zkl
	Settings config.Config // resolved network and retry settings
	Keyring  bool          // allow identities sealed in the platform keyring
	Metrics  *metrics.Metrics
	Log      *slog.Logger
}
