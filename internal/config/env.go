// Package config defines environment configuration structs and loaders.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type AppConfig struct {
	Environment string `env:"ENVIRONMENT, default=prod"`

	Chain     ChainEnvConfig
	Kami      KamiEnvConfig
	Consensus ConsensusEnvConfig
}

// LoadConfig reads the application configuration from the process environment.
func LoadConfig(ctx context.Context) (*AppConfig, error) {
	return LoadConfigWith(ctx, envconfig.OsLookuper())
}

// LoadConfigWith reads the configuration through l.
func LoadConfigWith(ctx context.Context, l envconfig.Lookuper) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// ChainEnvConfig holds chain-specific environment values.
type ChainEnvConfig struct {
	Netuid        int           `env:"NETUID, default=98"`
	BlockInterval time.Duration `env:"BLOCK_INTERVAL, default=12s"`
}

// KamiEnvConfig contains the Kami service target.
type KamiEnvConfig struct {
	SubtensorNetwork string `env:"SUBTENSOR_NETWORK, default=test"`
	KamiHost         string `env:"KAMI_HOST, default=127.0.0.1"`
	KamiPort         string `env:"KAMI_PORT, default=3000"`
}

// ConsensusEnvConfig configures the evaluator. Kappa and BondAlpha are u16
// proportions of 65535, MinStake is in rao.
type ConsensusEnvConfig struct {
	Kappa     uint16 `env:"CONSENSUS_KAPPA, default=32767"`
	Sparse    bool   `env:"CONSENSUS_SPARSE, default=true"`
	BondAlpha uint16 `env:"CONSENSUS_BOND_ALPHA, default=6554"`
	MinStake  uint64 `env:"CONSENSUS_MIN_STAKE, default=0"`
}
