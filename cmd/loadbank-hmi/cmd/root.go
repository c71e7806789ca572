package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/loadbank-hmi/internal/config"
	"github.com/oshokin/loadbank-hmi/internal/service/hmi"
	"github.com/oshokin/loadbank-hmi/internal/version"
)

var (
	// options are filled from the command line flags.
	options hmi.Options

	// rootCmd represents the base command for running the operator display.
	rootCmd = &cobra.Command{
		Use:   "loadbank-hmi [controller-address]",
		Short: "Run the load-bank alarm display.",
		Long: `Mirrors the controller's active alarms and alarm history onto the alarm page.

The display polls the controller over gRPC, repaints the alarm rows, blinks
unacknowledged alarms and pulses operator commands back to the controller.
The page is served as JSON on the operator API and, with --console, drawn on
the terminal. The controller address argument overrides the settings file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if len(args) > 0 {
				options.ControllerAddress = args[0]
			}

			return hmi.Run(ctx, &options)
		},
	}
)

// Execute runs the loadbank-hmi CLI and exits with non-zero status on error.
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
	flags.StringVar(&options.HTTPAddress, "http", "", "operator API listen address, overrides http_addr")
	flags.BoolVar(&options.Console, "console", false, "draw the alarm page on the terminal")
	flags.BoolVar(&options.AllowMultiple, "allow-multiple", false, "skip the single-instance check")
}
