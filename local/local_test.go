package local

import (
	"bytes"
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/blockberries/adder"
	"github.com/blockberries/adder/config"
	"github.com/blockberries/adder/stf"
	addertest "github.com/blockberries/adder/testing"
	"github.com/blockberries/adder/types"
)

func newConn(t *testing.T) *Connection {
	t.Helper()
	conn, err := NewConnection(config.DefaultConfig())
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestLocalConnection_Chain(t *testing.T) {
	conn := newConn(t)
	ctx := context.Background()

	genesis := stf.Genesis(0)
	res, err := conn.Validate(ctx, types.NewValidationParams(genesis, types.BlockData{State: 0, Add: 5}))
	if err != nil {
		t.Fatalf("block 1: %v", err)
	}
	head1, err := res.Head()
	if err != nil {
		t.Fatalf("decode head 1: %v", err)
	}
	if head1.Number != 1 || head1.ParentHash != genesis.Hash() || head1.PostState != types.HashState(5) {
		t.Fatalf("unexpected head 1: %v", head1)
	}

	res, err = conn.Validate(ctx, types.NewValidationParams(head1, types.BlockData{State: 5, Add: math.MaxUint64}))
	if err != nil {
		t.Fatalf("block 2: %v", err)
	}
	head2, err := res.Head()
	if err != nil {
		t.Fatalf("decode head 2: %v", err)
	}
	if head2.Number != 2 || head2.ParentHash != head1.Hash() || head2.PostState != types.HashState(4) {
		t.Fatalf("unexpected head 2: %v", head2)
	}
}

func TestLocalConnection_ResultIsCopied(t *testing.T) {
	conn := newConn(t)
	ctx := context.Background()

	first, err := conn.Validate(ctx, types.NewValidationParams(stf.Genesis(1), types.BlockData{State: 1, Add: 1}))
	if err != nil {
		t.Fatal(err)
	}
	kept := append([]byte(nil), first.HeadData...)

	if _, err := conn.Validate(ctx, types.NewValidationParams(stf.Genesis(9), types.BlockData{State: 9, Add: 9})); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(kept, first.HeadData) {
		t.Error("first result changed after a second call")
	}
}

func TestLocalConnection_Rejection(t *testing.T) {
	conn := newConn(t)

	_, err := conn.Validate(context.Background(), types.NewValidationParams(stf.Genesis(3), types.BlockData{State: 4, Add: 1}))
	if !errors.Is(err, adder.ErrStateMismatch) {
		t.Fatalf("expected ErrStateMismatch, got %v", err)
	}

	// The connection stays usable.
	if _, err := conn.Validate(context.Background(), types.NewValidationParams(stf.Genesis(3), types.BlockData{State: 3, Add: 1})); err != nil {
		t.Fatalf("valid block after rejection: %v", err)
	}
}

func TestLocalConnection_Malformed(t *testing.T) {
	conn := newConn(t)

	cases := map[string]types.ValidationParams{
		"empty":      {},
		"short head": {ParentHead: make([]byte, types.HeadSize-1), BlockData: types.BlockData{}.Encode()},
		"long block": {ParentHead: stf.Genesis(0).Encode(), BlockData: make([]byte, types.BlockDataSize+1)},
		"too large":  {ParentHead: make([]byte, config.DefaultConfig().InputSize), BlockData: types.BlockData{}.Encode()},
	}
	for name, params := range cases {
		_, err := conn.Validate(context.Background(), params)
		if _, ok := adder.IsMalformed(err); !ok {
			t.Errorf("%s: expected MalformedError, got %v", name, err)
		}
	}
}

func TestLocalConnection_Closed(t *testing.T) {
	conn := newConn(t)
	if err := conn.Close(); err != nil {
		t.Fatal(err)
	}
	_, err := conn.Validate(context.Background(), types.NewValidationParams(stf.Genesis(0), types.BlockData{}))
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestLocalConnection_Canceled(t *testing.T) {
	conn := newConn(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conn.Validate(ctx, types.NewValidationParams(stf.Genesis(0), types.BlockData{}))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLocalConnection_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ArenaSize = 1
	if _, err := NewConnection(cfg); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestLocalConnection_Concurrent(t *testing.T) {
	conn := newConn(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(state uint64) {
			defer wg.Done()
			parent := stf.Genesis(state)
			res, err := conn.Validate(context.Background(), types.NewValidationParams(parent, types.BlockData{State: state, Add: 1}))
			if err != nil {
				t.Errorf("state %d: %v", state, err)
				return
			}
			head, err := res.Head()
			if err != nil {
				t.Errorf("state %d: %v", state, err)
				return
			}
			if head.PostState != types.HashState(state+1) {
				t.Errorf("state %d: wrong post state", state)
			}
		}(uint64(i))
	}
	wg.Wait()
}

func TestLocalConnection_Compliance(t *testing.T) {
	addertest.RunComplianceSuite(t, func() adder.Validator {
		conn, err := NewConnection(config.DefaultConfig())
		if err != nil {
			t.Fatalf("NewConnection: %v", err)
		}
		return conn
	})
}
