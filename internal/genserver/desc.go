// Package genserver exposes mineshaft generation over gRPC.
//
// The service has a single unary method whose request and response are
// google.protobuf.Struct messages, so clients in any language can call it
// with the well-known types alone.
package genserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "mineshaft.v1.Generator"

// GenerateMethod is the full method name of Generate.
const GenerateMethod = "/" + ServiceName + "/Generate"

// GeneratorServer is the server API of the generation service.
type GeneratorServer interface {
	Generate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the generation service to grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GeneratorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Generate", Handler: generateHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func generateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GeneratorServer).Generate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GenerateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GeneratorServer).Generate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterGeneratorServer registers srv on s.
func RegisterGeneratorServer(s grpc.ServiceRegistrar, srv GeneratorServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// GeneratorClient calls the generation service.
type GeneratorClient struct {
	cc grpc.ClientConnInterface
}

// NewGeneratorClient returns a client over cc.
func NewGeneratorClient(cc grpc.ClientConnInterface) *GeneratorClient {
	return &GeneratorClient{cc: cc}
}

// Generate sends a raw request.
func (c *GeneratorClient) Generate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GenerateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateStart encodes req, calls Generate and decodes the response.
func (c *GeneratorClient) GenerateStart(ctx context.Context, req Request, opts ...grpc.CallOption) (Response, error) {
	in, err := req.Struct()
	if err != nil {
		return Response{}, err
	}
	out, err := c.Generate(ctx, in, opts...)
	if err != nil {
		return Response{}, err
	}
	return ParseResponse(out)
}
