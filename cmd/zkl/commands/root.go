package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"zkl/internal/app"
	"zkl/internal/config"
	"zkl/internal/logging"
	"zkl/internal/metrics"
)

var (
	home        string
	passphrase  string
	configPath  string
	metricsFile string
	useKeyring  bool
	index       uint32

	wire *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:           "zkl",
		Short:         "Send encrypted files to a ledger identity's inbox",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".zkl")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			settings, err := config.Load(configPath, home)
			if err != nil {
				return err
			}
			log, err := logging.New(os.Stderr, settings.LogLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(log)

			wire, err = app.NewWire(app.Config{
				Home:     home,
				Settings: settings,
				Keyring:  useKeyring,
				Metrics:  metrics.New(),
				Log:      log,
			})
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if wire == nil {
				return nil
			}
			return wire.Metrics.WriteTextfile(metricsFile)
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "state dir (default ~/.zkl)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the identity (or $ZKL_PASSPHRASE)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $ZKL_CONFIG or <home>/config.yaml)")
	root.PersistentFlags().StringVar(&metricsFile, "metrics-textfile", "", "write Prometheus metrics to this file on exit")
	root.PersistentFlags().BoolVar(&useKeyring, "keyring", false, "seal the identity with a key held in the OS keyring")

	root.AddCommand(initCmd(), registerCmd(), resolveCmd(), sendCmd(), inboxCmd(), fingerprintCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return root.ExecuteContext(ctx)
}
