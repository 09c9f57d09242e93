package addergrpc

// StatsRequest is the (empty) request for the Stats RPC.
type StatsRequest struct{}
