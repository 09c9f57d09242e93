package server

import (
	"context"
	"sync/atomic"

	"github.com/blockberries/adder"
	"github.com/blockberries/adder/logging"
	"github.com/blockberries/adder/types"
)

// Server wraps a validator for hosts that want a tagged outcome rather
// than an error. Every call is classified and counted; rejections and
// malformed input are data, never errors.
type Server struct {
	v      adder.Validator
	logger *logging.Logger

	validated atomic.Uint64
	rejected  atomic.Uint64
	malformed atomic.Uint64
}

// New creates a new Server wrapping the given validator. A nil logger
// discards output.
func New(v adder.Validator, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{v: v, logger: logger}
}

// Validate validates params and returns the tagged outcome. Safe for
// concurrent use if the wrapped validator is.
func (s *Server) Validate(ctx context.Context, params types.ValidationParams) types.Outcome {
	res, err := s.v.Validate(ctx, params)
	code := adder.CodeOf(err)

	switch code.Status() {
	case types.StatusValid:
		s.validated.Add(1)
		s.logger.Debugf("server: accepted block (%d bytes head)", len(res.HeadData))
		return types.Outcome{Code: code, HeadData: res.HeadData}

	case types.StatusRejected:
		s.rejected.Add(1)
		s.logger.Warnf("server: rejected block: %v", err)

	default:
		s.malformed.Add(1)
		s.logger.Errorf("server: validator fault: %v", err)
	}

	return types.Outcome{Code: code, Info: err.Error()}
}

// Stats returns the outcome counters.
func (s *Server) Stats() types.Stats {
	return types.Stats{
		Validated: s.validated.Load(),
		Rejected:  s.rejected.Load(),
		Malformed: s.malformed.Load(),
	}
}

// Validator returns the wrapped validator.
func (s *Server) Validator() adder.Validator {
	return s.v
}

// Close closes the wrapped validator if it is a connection.
func (s *Server) Close() error {
	if c, ok := s.v.(adder.Connection); ok {
		return c.Close()
	}
	return nil
}
