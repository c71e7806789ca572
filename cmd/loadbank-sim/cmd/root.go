package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/loadbank-hmi/internal/config"
	"github.com/oshokin/loadbank-hmi/internal/service/simulator"
	"github.com/oshokin/loadbank-hmi/internal/version"
)

var (
	// options are filled from the command line flags.
	options simulator.Options

	// rootCmd represents the base command for running the controller simulator.
	rootCmd = &cobra.Command{
		Use:   "loadbank-sim [listen-address]",
		Short: "Run a simulated load-bank controller.",
		Long: `Serves the controller variables of the alarm page over gRPC.

Only the port of controller_addr from the settings is used for listening
unless a listen address is given as argument (e.g. :50051, 0.0.0.0:50051).
The alarm memory is loaded from and persisted to the scenario file, and
--raise-every raises demo alarms periodically.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if len(args) > 0 {
				options.ListenAddress = args[0]
			}

			return simulator.Run(ctx, &options)
		},
	}
)

// Execute runs the loadbank-sim CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVarP(&options.ScenarioFile, "scenario", "s", "", "controller image file, overrides scenario_file")
	flags.DurationVar(&options.RaiseInterval, "raise-every", 0, "raise the next demo alarm at this interval, 0 disables")
}
