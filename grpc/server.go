package addergrpc

import (
	"context"
	"net"

	"github.com/blockberries/adder"
	"github.com/blockberries/adder/logging"
	"github.com/blockberries/adder/server"
	"github.com/blockberries/adder/types"

	"google.golang.org/grpc"
)

// Compile-time interface check.
var _ ValidatorServer = (*GRPCServer)(nil)

// GRPCServer exposes a validator as a gRPC service. Every call goes
// through a server.Server, so outcomes are classified and counted the
// same way as for in-process hosts.
type GRPCServer struct {
	srv *server.Server
}

// NewGRPCServer creates a gRPC server wrapping the given validator.
func NewGRPCServer(v adder.Validator, logger *logging.Logger) *GRPCServer {
	return &GRPCServer{
		srv: server.New(v, logger),
	}
}

// Register adds the validator service to a gRPC server.
func (s *GRPCServer) Register(gs *grpc.Server) {
	RegisterValidatorServer(gs, s)
}

// Serve starts the gRPC server on the given listener.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	return gs.Serve(lis)
}

// Server returns the underlying server for advanced use.
func (s *GRPCServer) Server() *server.Server {
	return s.srv
}

func (s *GRPCServer) Validate(ctx context.Context, params *types.ValidationParams) (*types.Outcome, error) {
	outcome := s.srv.Validate(ctx, *params)
	return &outcome, nil
}

func (s *GRPCServer) Stats(_ context.Context, _ *StatsRequest) (*types.Stats, error) {
	stats := s.srv.Stats()
	return &stats, nil
}
