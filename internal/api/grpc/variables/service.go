package variables

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "loadbank.v1.VariableService"
	// ReadMethod is the full method name of Read.
	ReadMethod = "/" + ServiceName + "/Read"
	// WriteMethod is the full method name of Write.
	WriteMethod = "/" + ServiceName + "/Write"

	fieldName  = "name"
	fieldValue = "value"
)

var (
	// errNameRequired is returned for a write request without a variable name.
	errNameRequired = errors.New("variable name is required")
	// errValueRequired is returned for a write request without a value.
	errValueRequired = errors.New("variable value is required")
)

// VariableServiceServer is the server API of the variable service.
type VariableServiceServer interface {
	Read(ctx context.Context, name *wrapperspb.StringValue) (*structpb.Value, error)
	Write(ctx context.Context, request *structpb.Struct) (*emptypb.Empty, error)
}

// VariableServiceClient is the client API of the variable service.
type VariableServiceClient interface {
	Read(ctx context.Context, name *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Value, error)
	Write(ctx context.Context, request *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

// RegisterVariableServiceServer registers srv on s.
func RegisterVariableServiceServer(s grpc.ServiceRegistrar, srv VariableServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// NewVariableServiceClient creates a client over cc.
//
//nolint:ireturn,nolintlint // Mirrors generated gRPC constructors.
func NewVariableServiceClient(cc grpc.ClientConnInterface) VariableServiceClient {
	return &variableServiceClient{cc: cc}
}

// NewWriteRequest builds the request of a write of value to name.
func NewWriteRequest(name string, value any) (*structpb.Struct, error) {
	if name == "" {
		return nil, errNameRequired
	}

	v, err := structpb.NewValue(value)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldName:  structpb.NewStringValue(name),
			fieldValue: v,
		},
	}, nil
}

// ParseWriteRequest is the inverse of NewWriteRequest.
func ParseWriteRequest(request *structpb.Struct) (string, any, error) {
	name := request.GetFields()[fieldName].GetStringValue()
	if name == "" {
		return "", nil, errNameRequired
	}

	v, ok := request.GetFields()[fieldValue]
	if !ok || v == nil {
		return "", nil, errValueRequired
	}

	return name, v.AsInterface(), nil
}

type variableServiceClient struct {
	cc grpc.ClientConnInterface
}

func (c *variableServiceClient) Read(
	ctx context.Context,
	name *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*structpb.Value, error) {
	out := new(structpb.Value)
	if err := c.cc.Invoke(ctx, ReadMethod, name, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *variableServiceClient) Write(
	ctx context.Context,
	request *structpb.Struct,
	opts ...grpc.CallOption,
) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, WriteMethod, request, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

//nolint:gochecknoglobals // Service descriptors are package-level by convention.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VariableServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Read", Handler: readHandler},
		{MethodName: "Write", Handler: writeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "loadbank/v1/variables.proto",
}

func readHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(VariableServiceServer).Read(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ReadMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VariableServiceServer).Read(ctx, req.(*wrapperspb.StringValue))
	}

	return interceptor(ctx, in, info, handler)
}

func writeHandler(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(VariableServiceServer).Write(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: WriteMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VariableServiceServer).Write(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}
