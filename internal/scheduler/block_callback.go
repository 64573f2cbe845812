package scheduler

import (
	"context"

	"github.com/tensorplex-labs/yuma/pkg/chain"
)

// NewBlockCallback creates a new BlockCallback that triggers every N blocks
func NewBlockCallback(interval int, execute func(ctx context.Context, block int) error) *BlockCallback {
	return &BlockCallback{
		LastTriggerAtBlock: -1,
		interval:           max(interval, 1),
		executeFn:          execute,
	}
}

// ShouldTrigger checks if the callback should trigger based on block interval and missed blocks
func (bc *BlockCallback) ShouldTrigger(state *chain.ChainState) bool {
	currentBlock := state.Block()

	// If this is the first time, trigger if we're at the right interval
	if bc.LastTriggerAtBlock <= 0 {
		return currentBlock%bc.interval == 0
	}

	blocksSinceLastTrigger := currentBlock - bc.LastTriggerAtBlock
	return blocksSinceLastTrigger >= bc.interval
}

// Execute runs the callback and records block as the last trigger. Failed
// executions leave it untouched so they retry on the next block.
func (bc *BlockCallback) Execute(ctx context.Context, block int) error {
	if err := bc.executeFn(ctx, block); err != nil {
		return err
	}
	bc.LastTriggerAtBlock = block
	return nil
}

// GetName returns the callback name
func (bc *BlockCallback) GetName() string {
	return InferNameFromFunc(bc.executeFn)
}
