package hmi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/oshokin/loadbank-hmi/internal/api/rest"
	"github.com/oshokin/loadbank-hmi/internal/config"
	"github.com/oshokin/loadbank-hmi/internal/logger"
	"github.com/oshokin/loadbank-hmi/internal/observability/metrics"
	"github.com/oshokin/loadbank-hmi/internal/remote"
	"github.com/oshokin/loadbank-hmi/internal/render/panel"
	"github.com/oshokin/loadbank-hmi/internal/service/alarms"
	"github.com/oshokin/loadbank-hmi/internal/service/common"
	"github.com/oshokin/loadbank-hmi/internal/version"
)

const (
	// consoleRefresh is how often the console panel checks for changes.
	consoleRefresh = 100 * time.Millisecond
	// shutdownTimeout bounds the graceful HTTP shutdown.
	shutdownTimeout = 5 * time.Second
	// readHeaderTimeout protects the operator API from slow clients.
	readHeaderTimeout = 5 * time.Second
)

// Options controls the loadbank-hmi process.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ControllerAddress overrides the controller address from the settings.
	ControllerAddress string
	// HTTPAddress overrides the operator API address from the settings.
	HTTPAddress string
	// Console draws the panel on stdout; logs below error level are muted.
	Console bool
	// AllowMultiple skips the single-instance guard.
	AllowMultiple bool
}

// Run starts the display and blocks until ctx is canceled or a component fails.
func Run(ctx context.Context, opts *Options) error {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if opts.ControllerAddress != "" {
		settings.ControllerAddress = opts.ControllerAddress
	}

	if opts.HTTPAddress != "" {
		settings.HTTPAddress = opts.HTTPAddress
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	if opts.Console {
		logger.SetLogger(logger.Logger().WithOptions(logger.WithLevel(zapcore.ErrorLevel)))
	}

	ctx = logger.WithName(ctx, "loadbank-hmi")
	logger.InfoKV(ctx, "Starting operator display", version.Fields()...)

	if !opts.AllowMultiple {
		if err = common.EnsureSingleInstance(); err != nil {
			return err
		}
	}

	actor, err := common.DetectActor()
	if err != nil {
		logger.WarnKV(ctx, "Unable to detect operator identity", "error", err)
	}

	client, err := common.Dial(ctx, settings.ControllerAddress,
		common.WithCallTimeout(settings.Timeout),
		common.WithActor(actor))
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Unable to close controller connection", "error", closeErr)
		}
	}()

	var stdout io.Writer
	if opts.Console {
		stdout = os.Stdout
	}

	return run(ctx, settings, client, stdout)
}

// run drives the session, the optional HTTP listener and the optional console
// until ctx is done.
func run(ctx context.Context, settings *config.Config, access remote.Access, console io.Writer) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	board := panel.NewBoard(settings.MaxActiveRows, settings.MaxHistoryRows)
	session := alarms.NewSession(access, board, alarms.OptionsFromConfig(settings),
		alarms.WithMetrics(metrics.New(registry)))

	ctx = logger.WithKV(ctx, "controller", settings.ControllerAddress)
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return session.Run(groupCtx)
	})

	if settings.HTTPAddress != "" {
		server := &http.Server{
			Addr:              settings.HTTPAddress,
			Handler:           rest.NewRouter(groupCtx, session, board, registry),
			ReadHeaderTimeout: readHeaderTimeout,
			BaseContext:       func(net.Listener) context.Context { return groupCtx },
		}

		group.Go(func() error {
			logger.InfoKV(groupCtx, "Operator API listening", "http_address", settings.HTTPAddress)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve operator API: %w", err)
			}

			return nil
		})

		group.Go(func() error {
			<-groupCtx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(groupCtx), shutdownTimeout)
			defer cancel()

			//nolint:contextcheck // Shutdown must outlive the cancelled group context.
			return server.Shutdown(shutdownCtx)
		})
	}

	if console != nil {
		group.Go(func() error {
			return panel.RunConsole(groupCtx, console, board, consoleRefresh)
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	logger.Info(ctx, "Operator display stopped")

	return nil
}
