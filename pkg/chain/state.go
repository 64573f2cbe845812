package chain

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// ChainState holds what the evaluator last read from the chain for one subnet: the
// latest block, the metagraph and the hyperparameters. It is safe for concurrent use.
type ChainState struct {
	mu          sync.RWMutex
	netuid      int
	block       int
	metagraph   SubnetMetagraph
	hyperparams SubnetHyperparams
}

func NewChainState(netuid int) *ChainState {
	return &ChainState{netuid: netuid}
}

func (cs *ChainState) Netuid() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.netuid
}

// Block safely reads the current block number
func (cs *ChainState) Block() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.block
}

// Metagraph safely reads the current metagraph
func (cs *ChainState) Metagraph() SubnetMetagraph {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.metagraph
}

func (cs *ChainState) Hyperparams() SubnetHyperparams {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.hyperparams
}

// UpdateBlock moves the state forward. Blocks that are not newer than the current one
// are ignored and reported as false.
func (cs *ChainState) UpdateBlock(block int) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if block <= cs.block {
		log.Warn().
			Int("current_block", cs.block).
			Int("new_block", block).
			Msg("new block is <= current block, not updating state")
		return false
	}
	cs.block = block
	return true
}

// UpdateMetagraph replaces the metagraph. A metagraph for another subnet is rejected.
func (cs *ChainState) UpdateMetagraph(metagraph SubnetMetagraph) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if metagraph.Netuid != cs.netuid {
		log.Warn().
			Int("netuid", cs.netuid).
			Int("metagraph_netuid", metagraph.Netuid).
			Msg("metagraph belongs to another subnet, not updating state")
		return false
	}
	cs.metagraph = metagraph
	return true
}

func (cs *ChainState) UpdateHyperparams(hyperparams SubnetHyperparams) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.hyperparams = hyperparams
}

// Stake returns the metagraph's total stake in rao together with the kappa the
// hyperparameters carry.
func (cs *ChainState) Stake() ([]uint64, uint16) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.metagraph.StakeRao(), cs.hyperparams.KappaU16()
}
