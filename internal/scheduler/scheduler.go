// Package scheduler runs callbacks as the chain advances.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/yuma/pkg/chain"
)

type Scheduler struct {
	state     *chain.ChainState
	sync      SyncFunc
	callbacks []CallbackHandler
}

func NewScheduler(state *chain.ChainState, sync SyncFunc) *Scheduler {
	return &Scheduler{state: state, sync: sync}
}

func (s *Scheduler) Register(cb CallbackHandler) {
	s.callbacks = append(s.callbacks, cb)
}

// Tick syncs the chain state once and executes every callback that is due. A
// failing callback does not stop the others; the first error is returned.
func (s *Scheduler) Tick(ctx context.Context) error {
	if err := s.sync(ctx, s.state); err != nil {
		return fmt.Errorf("sync chain state: %w", err)
	}

	block := s.state.Block()
	var first error
	for _, cb := range s.callbacks {
		if !cb.ShouldTrigger(s.state) {
			continue
		}
		log.Debug().Str("callback", cb.GetName()).Int("block", block).Msg("triggering callback")
		if err := cb.Execute(ctx, block); err != nil {
			log.Error().Err(err).Str("callback", cb.GetName()).Int("block", block).Msg("callback failed")
			if first == nil {
				first = fmt.Errorf("callback %s: %w", cb.GetName(), err)
			}
		}
	}
	return first
}

// Run ticks every d until ctx is canceled. Tick errors are logged and retried on the
// next tick.
func (s *Scheduler) Run(ctx context.Context, d time.Duration) {
	t := time.NewTicker(d)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.Tick(ctx); err != nil && ctx.Err() == nil {
				log.Warn().Err(err).Msg("scheduler tick failed")
			}
		}
	}
}
