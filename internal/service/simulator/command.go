package simulator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"

	"github.com/oshokin/loadbank-hmi/internal/api/grpc/variables"
	"github.com/oshokin/loadbank-hmi/internal/config"
	"github.com/oshokin/loadbank-hmi/internal/logger"
	repository "github.com/oshokin/loadbank-hmi/internal/repository/controller"
)

// Options controls the loadbank-sim process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// ScenarioFile overrides the controller image file from the settings.
	ScenarioFile string
	// RaiseInterval raises the next catalog alarm periodically; zero disables it.
	RaiseInterval time.Duration
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the gRPC server and blocks until context is canceled or server stops.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "loadbank-sim")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	scenarioFile := settings.ScenarioFile
	if opts.ScenarioFile != "" {
		scenarioFile = opts.ScenarioFile
	}

	listenAddress, err := resolveListenAddress(settings.ControllerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	ctrl, err := newController(ctx, repository.NewFileRepository(scenarioFile))
	if err != nil {
		return fmt.Errorf("initialise controller: %w", err)
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	logger.InfoKV(ctx, "Controller simulator listening",
		"listen_address", listenAddress,
		"scenario_file", scenarioFile)

	return serve(ctx, lis, ctrl, opts.RaiseInterval)
}

// serve runs the gRPC server on lis until ctx is done.
func serve(ctx context.Context, lis net.Listener, ctrl *controller, raiseInterval time.Duration) error {
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(logCalls))
	variables.RegisterVariableServiceServer(grpcServer, variables.NewServer(ctrl))

	if raiseInterval > 0 {
		go raiseLoop(ctx, ctrl, raiseInterval)
	}

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// raiseLoop raises catalog alarms one by one every interval.
func raiseLoop(ctx context.Context, ctrl *controller, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			entry := catalog[i%len(catalog)]
			ctrl.Raise(ctx, entry.severity, entry.name, entry.description)
		}
	}
}

// logCalls logs every variable call at debug level.
func logCalls(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)

	logger.DebugKV(ctx, "Variable call", "method", info.FullMethod, "request", req, "error", err)

	return resp, err
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Port-only listen address binds on all interfaces.
	return ":" + port, nil
}
