package variables

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/loadbank-hmi/internal/domain/alarm"
	"github.com/oshokin/loadbank-hmi/internal/remote"
)

// Store abstracts the variable table the transport layer serves.
type Store interface {
	Read(ctx context.Context, name string) (any, error)
	Write(ctx context.Context, actor *alarm.Actor, name string, value any) error
}

// Server implements the VariableService gRPC API.
type Server struct {
	store Store
}

// NewServer wires store into a gRPC handler.
func NewServer(store Store) *Server {
	return &Server{
		store: store,
	}
}

// Read returns the value of one variable. Missing variables are NotFound.
func (s *Server) Read(ctx context.Context, name *wrapperspb.StringValue) (*structpb.Value, error) {
	if name.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "variable name is required")
	}

	v, err := s.store.Read(ctx, name.GetValue())
	if errors.Is(err, remote.ErrAbsent) {
		return nil, status.Errorf(codes.NotFound, "variable %q not found", name.GetValue())
	}

	if err != nil {
		return nil, status.Error(codes.Internal, "unable to read variable")
	}

	value, err := structpb.NewValue(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "variable %q has unsupported type", name.GetValue())
	}

	return value, nil
}

// Write stores one variable on behalf of the calling operator.
func (s *Server) Write(ctx context.Context, request *structpb.Struct) (*emptypb.Empty, error) {
	name, value, err := ParseWriteRequest(request)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	err = s.store.Write(ctx, ActorFromIncoming(ctx), name, value)
	if errors.Is(err, remote.ErrAbsent) {
		return nil, status.Errorf(codes.NotFound, "variable %q not found", name)
	}

	if err != nil {
		return nil, status.Error(codes.Internal, "unable to write variable")
	}

	return new(emptypb.Empty), nil
}
