// Package chain imports blocks of the adder child-chain on top of a
// stored tip.
//
// The importer drives a validator the way a relay-chain host does: it
// hands the validator the current tip and a candidate block, stages
// the successor head it gets back, and persists it on Commit. A block
// that fails validation leaves the tip untouched.
package chain

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/blockberries/adder"
	"github.com/blockberries/adder/logging"
	"github.com/blockberries/adder/server"
	"github.com/blockberries/adder/stf"
	"github.com/blockberries/adder/store"
	"github.com/blockberries/adder/types"
)

var (
	// ErrGenesisMismatch: the stored genesis head does not commit to
	// the configured genesis state.
	ErrGenesisMismatch = errors.New("chain: stored genesis does not match")
	// ErrUnexpectedHead: the validator returned a head that is not a
	// successor of the tip.
	ErrUnexpectedHead = errors.New("chain: validator returned an unexpected head")
	// ErrRevertAboveTip: the revert target is above the tip.
	ErrRevertAboveTip = errors.New("chain: revert target above tip")
)

// Importer validates blocks against the tip and persists the results.
type Importer struct {
	v      adder.Validator
	store  store.Store
	logger *logging.Logger
	guard  *server.LifecycleGuard

	mu  sync.RWMutex
	tip types.HeadData

	// Held between Execute and Commit. Only touched under the guard's
	// sequential lock.
	staged types.HeadData
}

// NewImporter creates an importer. A nil logger discards output.
func NewImporter(v adder.Validator, s store.Store, logger *logging.Logger) *Importer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Importer{
		v:      v,
		store:  s,
		logger: logger,
		guard:  server.NewLifecycleGuard(),
	}
}

// Open restores the tip from the store, writing the genesis head for
// genesisState if the store is empty.
func (im *Importer) Open(_ context.Context, genesisState uint64) (types.HeadData, error) {
	im.guard.AcquireOpen()

	tip, err := im.open(genesisState)
	if err != nil {
		im.guard.FailOpen()
		return types.HeadData{}, err
	}

	im.mu.Lock()
	im.tip = tip
	im.mu.Unlock()

	im.guard.CompleteOpen()
	return tip, nil
}

func (im *Importer) open(genesisState uint64) (types.HeadData, error) {
	genesis := stf.Genesis(genesisState)

	tip, ok, err := im.store.Tip()
	if err != nil {
		return types.HeadData{}, fmt.Errorf("chain: load tip: %w", err)
	}
	if !ok {
		if err := im.store.Append(genesis); err != nil {
			return types.HeadData{}, fmt.Errorf("chain: write genesis: %w", err)
		}
		im.logger.Infof("chain: initialised genesis %s (state %d)", genesis.Hash(), genesisState)
		return genesis, nil
	}

	stored, ok, err := im.store.Head(0)
	if err != nil {
		return types.HeadData{}, fmt.Errorf("chain: load genesis: %w", err)
	}
	if !ok || stored != genesis {
		return types.HeadData{}, fmt.Errorf("%w: expected %s", ErrGenesisMismatch, genesis.Hash())
	}

	im.logger.Infof("chain: restored tip #%d %s", tip.Number, tip.Hash())
	return tip, nil
}

// Execute validates block on top of the tip and stages the successor.
// On error nothing is staged and the tip is unchanged.
func (im *Importer) Execute(ctx context.Context, block types.BlockData) (types.HeadData, error) {
	im.guard.AcquireExecute()

	head, err := im.execute(ctx, block)
	if err != nil {
		im.guard.FailExecute()
		return types.HeadData{}, err
	}

	im.staged = head
	im.guard.CompleteExecute()
	return head, nil
}

func (im *Importer) execute(ctx context.Context, block types.BlockData) (types.HeadData, error) {
	tip := im.Tip()

	res, err := im.v.Validate(ctx, types.NewValidationParams(tip, block))
	if err != nil {
		if adder.IsRejected(err) {
			im.logger.Warnf("chain: block on #%d rejected: %v", tip.Number, err)
		}
		return types.HeadData{}, fmt.Errorf("chain: block on #%d: %w", tip.Number, err)
	}

	head, err := res.Head()
	if err != nil {
		return types.HeadData{}, fmt.Errorf("chain: block on #%d: %w", tip.Number, adder.NewMalformedError("decode result", err))
	}
	if head.Number != tip.Number+1 || head.ParentHash != tip.Hash() {
		return types.HeadData{}, fmt.Errorf("%w: %s on tip #%d", ErrUnexpectedHead, head, tip.Number)
	}

	im.logger.Debugf("chain: staged #%d %s", head.Number, head.Hash())
	return head, nil
}

// Commit persists the staged head and makes it the tip. If the store
// fails, the head stays staged and Commit may be retried.
func (im *Importer) Commit(_ context.Context) (types.HeadData, error) {
	im.guard.AcquireCommit()

	head := im.staged
	if err := im.store.Append(head); err != nil {
		im.guard.FailCommit()
		return types.HeadData{}, fmt.Errorf("chain: commit #%d: %w", head.Number, err)
	}

	im.mu.Lock()
	im.tip = head
	im.mu.Unlock()

	im.guard.CompleteCommit()
	im.logger.Infof("chain: imported #%d %s", head.Number, head.Hash())
	return head, nil
}

// Discard drops the staged head.
func (im *Importer) Discard() {
	im.guard.Discard()
}

// Import executes and commits one block.
func (im *Importer) Import(ctx context.Context, block types.BlockData) (types.HeadData, error) {
	if _, err := im.Execute(ctx, block); err != nil {
		return types.HeadData{}, err
	}
	head, err := im.Commit(ctx)
	if err != nil {
		im.Discard()
		return types.HeadData{}, err
	}
	return head, nil
}

// Tip returns the committed tip.
func (im *Importer) Tip() types.HeadData {
	im.guard.CheckConcurrent()
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.tip
}

// HeadAt returns the committed head with the given number.
func (im *Importer) HeadAt(number uint64) (types.HeadData, bool, error) {
	im.guard.CheckConcurrent()
	return im.store.Head(number)
}

// Revert drops every head above number and makes that head the tip.
func (im *Importer) Revert(_ context.Context, number uint64) (types.HeadData, error) {
	im.guard.AcquireSequential("Revert")
	defer im.guard.ReleaseSequential()

	tip := im.Tip()
	if number > tip.Number {
		return types.HeadData{}, fmt.Errorf("%w: #%d > #%d", ErrRevertAboveTip, number, tip.Number)
	}

	if err := im.store.Truncate(number); err != nil {
		return types.HeadData{}, fmt.Errorf("chain: revert to #%d: %w", number, err)
	}
	head, ok, err := im.store.Head(number)
	if err != nil {
		return types.HeadData{}, fmt.Errorf("chain: revert to #%d: %w", number, err)
	}
	if !ok {
		return types.HeadData{}, fmt.Errorf("chain: revert to #%d: %w", number, store.ErrCorrupt)
	}

	im.mu.Lock()
	im.tip = head
	im.mu.Unlock()

	im.logger.Warnf("chain: reverted %d heads, tip now #%d %s", tip.Number-number, head.Number, head.Hash())
	return head, nil
}
