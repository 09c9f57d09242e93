package addergrpc

import (
	"context"
	"fmt"

	"github.com/blockberries/adder/types"

	"google.golang.org/grpc"
)

const serviceName = "github.com/blockberries/adder.v1.Validator"

// ValidatorServer is the server-side interface for the validator
// gRPC service.
type ValidatorServer interface {
	Validate(context.Context, *types.ValidationParams) (*types.Outcome, error)
	Stats(context.Context, *StatsRequest) (*types.Stats, error)
}

// RegisterValidatorServer registers the ValidatorServer on a gRPC server.
func RegisterValidatorServer(s *grpc.Server, srv ValidatorServer) {
	s.RegisterService(&serviceDesc, srv)
}

// --- Handler functions ---

func handlerValidate(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(types.ValidationParams)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(ValidatorServer).Validate(ctx, req)
}

func handlerStats(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(StatsRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(ValidatorServer).Stats(ctx, req)
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// serviceDesc is the manual gRPC service descriptor for the validator.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ValidatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Validate", Handler: handlerValidate},
		{MethodName: "Stats", Handler: handlerStats},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "github.com/blockberries/adder/v1/service.cram",
}
