package types

import "fmt"

// ValidationParams is the parameter block a host hands to the
// validation function: the encoded parent head and the encoded block
// body, each exactly as the host received them.
type ValidationParams struct {
	ParentHead []byte `cramberry:"1"`
	BlockData  []byte `cramberry:"2"`
}

// NewValidationParams encodes a parent head and a block body into a
// parameter block.
func NewValidationParams(parent HeadData, block BlockData) ValidationParams {
	return ValidationParams{
		ParentHead: parent.Encode(),
		BlockData:  block.Encode(),
	}
}

// ValidationResult carries the encoded head produced by a successful
// validation.
type ValidationResult struct {
	HeadData []byte `cramberry:"1"`
}

// Head decodes the head carried by the result.
func (r ValidationResult) Head() (HeadData, error) {
	return DecodeHead(r.HeadData)
}

// Status is the coarse classification of a validation call.
type Status uint8

const (
	// StatusValid: the block is a valid successor.
	StatusValid Status = iota
	// StatusRejected: the block was well-formed but breaks the
	// transition rule. The host should log it as an invalid block.
	StatusRejected
	// StatusMalformed: the input could not be decoded or did not fit
	// the validator's fixed resources. The host should treat it as a
	// validator fault.
	StatusMalformed
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusRejected:
		return "rejected"
	case StatusMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Code is the tagged outcome of a validation call.
type Code uint32

const (
	CodeOK                 Code = 0
	CodeStateMismatch      Code = 1
	CodeParentHashMismatch Code = 2
	CodeHeightOverflow     Code = 3
	CodeMalformed          Code = 100
)

// Status folds the code into its coarse classification.
func (c Code) Status() Status {
	switch {
	case c == CodeOK:
		return StatusValid
	case c < CodeMalformed:
		return StatusRejected
	default:
		return StatusMalformed
	}
}

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeStateMismatch:
		return "state mismatch"
	case CodeParentHashMismatch:
		return "parent hash mismatch"
	case CodeHeightOverflow:
		return "height overflow"
	case CodeMalformed:
		return "malformed input"
	default:
		return fmt.Sprintf("code(%d)", uint32(c))
	}
}

// Outcome is the tagged result delivered to hosts that can receive one.
// Rejections and malformed input are data here, not errors.
type Outcome struct {
	Code Code `cramberry:"1"`
	// Encoded new head. Only set when Code is CodeOK.
	HeadData []byte `cramberry:"2"`
	// Human-readable detail (non-deterministic, for logs).
	Info string `cramberry:"3"`
}

// OK returns true if the block was accepted.
func (o Outcome) OK() bool { return o.Code == CodeOK }

// Stats counts validation outcomes seen by a server.
type Stats struct {
	Validated uint64 `cramberry:"1"`
	Rejected  uint64 `cramberry:"2"`
	Malformed uint64 `cramberry:"3"`
}

// Total returns the number of calls counted.
func (s Stats) Total() uint64 {
	return s.Validated + s.Rejected + s.Malformed
}
