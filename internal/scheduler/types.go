package scheduler

import (
	"context"

	"github.com/tensorplex-labs/yuma/pkg/chain"
)

// BlockCallback is a callback that triggers every N blocks
// WARN: if the block updater hangs, i.e. we have a callback that triggers every N blocks,
// and the current block VS last trigger block is multiples of N, it will only trigger once
// instead of calling (current block - last trigger block) / N times.
type BlockCallback struct {
	LastTriggerAtBlock int
	// interval is the number of blocks between triggers
	interval  int
	executeFn func(ctx context.Context, block int) error
}

type CallbackHandler interface {
	// Determines if the callback should trigger based on the current chain state
	ShouldTrigger(*chain.ChainState) bool
	// Executes the callback logic for block and returns an error if it fails
	Execute(ctx context.Context, block int) error
	// Returns the name of the callback, which may be inferred from the function name
	GetName() string
}

// SyncFunc refreshes the chain state before callbacks are checked.
type SyncFunc func(ctx context.Context, state *chain.ChainState) error
