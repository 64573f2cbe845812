package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/yuma/internal/config"
	"github.com/tensorplex-labs/yuma/internal/consensus"
	"github.com/tensorplex-labs/yuma/internal/kami"
	"github.com/tensorplex-labs/yuma/internal/scheduler"
	"github.com/tensorplex-labs/yuma/internal/utils/logger"
	"github.com/tensorplex-labs/yuma/pkg/chain"
)

const defaultTempo = 360

var (
	snapshotPath = flag.String("snapshot", "", "path to the epoch snapshot (.json or .json.zst)")
	dense        = flag.Bool("dense", false, "evaluate with dense matrices")
	live         = flag.Bool("live", false, "take stake, permits and kappa from the live subnet through Kami")
	watch        = flag.Bool("watch", false, "with -live, re-evaluate every tempo blocks until interrupted")
	savePath     = flag.String("save", "", "write the evaluated snapshot to this path")
	outPath      = flag.String("out", "", "write the encoded result to this path instead of stdout")
)

type report struct {
	Netuid int `json:"netuid"`
	Block  int `json:"block"`
	*consensus.Output
}

func main() {
	logger.Init()

	if *snapshotPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("yuma failed")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		return err
	}
	level := logger.SetEnvironment(cfg.Environment)
	log.Debug().Str("environment", cfg.Environment).Str("level", level.String()).Msg("config loaded")

	s, err := consensus.LoadSnapshot(*snapshotPath)
	if err != nil {
		return err
	}
	log.Info().Str("path", *snapshotPath).Int("uids", len(s.Stake)).Msg("snapshot loaded")

	if !*live {
		_, err := evaluate(ctx, cfg, s)
		return err
	}

	k, err := kami.NewKami(&cfg.Kami)
	if err != nil {
		return err
	}
	state := chain.NewChainState(cfg.Chain.Netuid)
	if err := k.Sync(ctx, state); err != nil {
		return err
	}

	epoch := func(ctx context.Context, block int) error {
		s.ApplyChainState(state)
		log.Info().Int("netuid", s.Netuid).Int("block", block).Msg("evaluating live epoch")
		out, err := evaluate(ctx, cfg, s)
		if err != nil {
			return err
		}
		// the next epoch starts from these bonds
		s.Bonds = out.Bonds
		return nil
	}
	if err := epoch(ctx, state.Block()); err != nil || !*watch {
		return err
	}

	tempo := state.Hyperparams().Tempo
	if tempo <= 0 {
		tempo = defaultTempo
	}
	cb := scheduler.NewBlockCallback(tempo, epoch)
	cb.LastTriggerAtBlock = state.Block()

	sched := scheduler.NewScheduler(state, k.Sync)
	sched.Register(cb)
	log.Info().Int("tempo", tempo).Dur("poll", cfg.Chain.BlockInterval).Msg("watching subnet")
	sched.Run(ctx, cfg.Chain.BlockInterval)
	return nil
}

func evaluate(ctx context.Context, cfg *config.AppConfig, s *consensus.Snapshot) (*consensus.Output, error) {
	in, err := consensus.BuildInputs(s, consensus.Params{
		Kappa:     cfg.Consensus.Kappa,
		BondAlpha: cfg.Consensus.BondAlpha,
		MinStake:  cfg.Consensus.MinStake,
	})
	if err != nil {
		return nil, err
	}

	res, err := consensus.Evaluate(ctx, in, consensus.Options{Dense: *dense || !cfg.Consensus.Sparse})
	if err != nil {
		return nil, err
	}

	out := consensus.Encode(res)
	data, err := sonic.Marshal(report{Netuid: s.Netuid, Block: s.Block, Output: out})
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	if *savePath != "" {
		if err := consensus.SaveSnapshot(*savePath, s); err != nil {
			return nil, err
		}
		log.Info().Str("path", *savePath).Msg("snapshot saved")
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, data, 0o644); err != nil {
			return nil, fmt.Errorf("write result: %w", err)
		}
		log.Info().Str("path", *outPath).Msg("result written")
		return out, nil
	}
	if _, err := os.Stdout.Write(append(data, '\n')); err != nil {
		return nil, err
	}
	return out, nil
}
