//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/loadbank-hmi/internal/api/grpc/variables"
	"github.com/oshokin/loadbank-hmi/internal/config"
	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
	"github.com/oshokin/loadbank-hmi/internal/remote"
)

// Client wraps the VariableService client and implements remote.Access.
type Client struct {
	// conn is the underlying gRPC connection to the controller.
	conn *grpc.ClientConn
	// api is the VariableService client.
	api variables.VariableServiceClient

	// callTimeout bounds every single read or write.
	callTimeout time.Duration
	// actor identifies this station on writes.
	actor *alarm.Actor
	// dialOptions are appended to the default transport options.
	dialOptions []grpc.DialOption
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor sends actor as the operator identity of every write.
func WithActor(actor *alarm.Actor) Option {
	return func(c *Client) {
		c.actor = actor.Clone()
	}
}

// WithDialOptions appends gRPC dial options, e.g. a custom dialer.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *Client) {
		c.dialOptions = append(c.dialOptions, opts...)
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial establishes a gRPC connection to the controller.
// Note: this uses insecure transport credentials; controllers live on the
// plant network next to the operator station.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	client := &Client{
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	dialOptions := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, client.dialOptions...)

	// grpc.NewClient connects lazily, the first call dials.
	conn, err := grpc.NewClient(address, dialOptions...)
	if err != nil {
		return nil, fmt.Errorf("dial controller: %w", err)
	}

	client.conn = conn
	client.api = variables.NewVariableServiceClient(conn)

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// Read implements remote.Reader. Every failure, missing variable or broken
// transport alike, wraps remote.ErrAbsent.
func (c *Client) Read(ctx context.Context, name string) (any, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	value, err := c.api.Read(callCtx, wrapperspb.String(name))
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("read %s: %w", name, remote.ErrAbsent)
	}

	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", name, remote.ErrAbsent, err)
	}

	if _, isNull := value.GetKind().(*structpb.Value_NullValue); isNull || value.GetKind() == nil {
		return nil, fmt.Errorf("read %s: %w", name, remote.ErrAbsent)
	}

	return value.AsInterface(), nil
}

// Write implements remote.Writer.
func (c *Client) Write(ctx context.Context, name string, value any) error {
	request, err := variables.NewWriteRequest(name, value)
	if err != nil {
		return err
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err = c.api.Write(variables.AppendActor(callCtx, c.actor), request); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	return nil
}

// Subscribe implements remote.Subscriber by polling name every interval.
func (c *Client) Subscribe(ctx context.Context, name string, interval time.Duration, onChange func(any)) {
	remote.Poll(ctx, c, name, interval, onChange)
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
