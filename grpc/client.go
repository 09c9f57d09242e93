package addergrpc

import (
	"context"
	"fmt"

	"github.com/blockberries/adder"
	"github.com/blockberries/adder/types"

	"google.golang.org/grpc"
)

// Compile-time interface check.
var _ adder.Connection = (*Client)(nil)

// Client implements adder.Connection for a remote validator over gRPC
// using cramberry serialization.
type Client struct {
	cc *grpc.ClientConn
}

// Dial connects to a remote validator.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(CramberryCodec{}),
	))
	cc, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("adder client: dial %s: %w", addr, err)
	}
	return &Client{cc: cc}, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

// Outcome validates params remotely and returns the tagged outcome.
// The error is non-nil only if the call did not complete.
func (c *Client) Outcome(ctx context.Context, params types.ValidationParams) (types.Outcome, error) {
	resp := new(types.Outcome)
	if err := c.cc.Invoke(ctx, fullMethod("Validate"), &params, resp); err != nil {
		return types.Outcome{}, err
	}
	return *resp, nil
}

// Validate implements adder.Validator. Rejections and malformed input
// come back as the same errors a local validator returns.
func (c *Client) Validate(ctx context.Context, params types.ValidationParams) (types.ValidationResult, error) {
	outcome, err := c.Outcome(ctx, params)
	if err != nil {
		return types.ValidationResult{}, err
	}
	if err := adder.ErrorOf(outcome); err != nil {
		return types.ValidationResult{}, err
	}
	return types.ValidationResult{HeadData: outcome.HeadData}, nil
}

// Stats returns the remote server's outcome counters.
func (c *Client) Stats(ctx context.Context) (types.Stats, error) {
	resp := new(types.Stats)
	if err := c.cc.Invoke(ctx, fullMethod("Stats"), &StatsRequest{}, resp); err != nil {
		return types.Stats{}, err
	}
	return *resp, nil
}
