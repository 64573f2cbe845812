// Package kami provides a read-only Bittensor subtensor client which relies on Kami as
// the RPC endpoint.
package kami

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/yuma/internal/config"
	"github.com/tensorplex-labs/yuma/pkg/chain"
)

const (
	retryMax     = 5
	retryWaitMin = 500 * time.Millisecond
	retryWaitMax = 20 * time.Second
	timeout      = 30 * time.Second
)

// Kami is a client wrapper for the Kami HTTP API. Transient failures (connection
// errors, 5xx, 429) are retried with exponential backoff.
type Kami struct {
	client  *resty.Client
	Host    string
	Port    string
	BaseURL string
}

// NewKami creates a new Kami client using the provided environment configuration.
func NewKami(cfg *config.KamiEnvConfig) (*Kami, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	url := fmt.Sprintf("http://%s:%s", cfg.KamiHost, cfg.KamiPort)

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = retryMax
	retryClient.RetryWaitMin = retryWaitMin
	retryClient.RetryWaitMax = retryWaitMax
	retryClient.HTTPClient.Timeout = timeout
	retryClient.Logger = nil

	client := resty.NewWithClient(retryClient.StandardClient()).
		SetBaseURL(url).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	return &Kami{
		client:  client,
		Host:    cfg.KamiHost,
		Port:    cfg.KamiPort,
		BaseURL: url,
	}, nil
}

func getJSON[T any](ctx context.Context, client *resty.Client, path string) (chain.KamiResponse[T], error) {
	var result chain.KamiResponse[T]
	resp, err := client.R().
		SetContext(ctx).
		SetResult(&result).
		Get(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("get request failed")
		return chain.KamiResponse[T]{}, fmt.Errorf("get %s: %w", path, err)
	}
	if resp.IsError() {
		log.Error().Int("status", resp.StatusCode()).Str("body", resp.String()).Str("path", path).Msg("get non-2xx")
		return chain.KamiResponse[T]{}, fmt.Errorf("request returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if result.Error != nil {
		log.Error().Interface("error", result.Error).Str("path", path).Msg("response contains error")
		return chain.KamiResponse[T]{}, fmt.Errorf("response error: %v", result.Error)
	}
	return result, nil
}

// GetMetagraph fetches the subnet metagraph for the given netuid.
func (k *Kami) GetMetagraph(ctx context.Context, netuid int) (chain.SubnetMetagraphResponse, error) {
	path := fmt.Sprintf("/chain/subnet-metagraph/%d", netuid)
	return getJSON[chain.SubnetMetagraph](ctx, k.client, path)
}

// GetSubnetHyperparams fetches the subnet hyperparams for the given netuid.
func (k *Kami) GetSubnetHyperparams(ctx context.Context, netuid int) (chain.SubnetHyperparamsResponse, error) {
	path := fmt.Sprintf("/chain/subnet-hyperparameters/%d", netuid)
	return getJSON[chain.SubnetHyperparams](ctx, k.client, path)
}

// GetLatestBlock retrieves the latest block details from the chain.
func (k *Kami) GetLatestBlock(ctx context.Context) (chain.LatestBlockResponse, error) {
	return getJSON[chain.LatestBlock](ctx, k.client, "/chain/latest-block")
}

// Sync refreshes state with the latest block, metagraph and hyperparameters of its
// subnet.
func (k *Kami) Sync(ctx context.Context, state *chain.ChainState) error {
	netuid := state.Netuid()

	block, err := k.GetLatestBlock(ctx)
	if err != nil {
		return fmt.Errorf("sync latest block: %w", err)
	}
	metagraph, err := k.GetMetagraph(ctx, netuid)
	if err != nil {
		return fmt.Errorf("sync metagraph for netuid %d: %w", netuid, err)
	}
	hyperparams, err := k.GetSubnetHyperparams(ctx, netuid)
	if err != nil {
		return fmt.Errorf("sync hyperparams for netuid %d: %w", netuid, err)
	}

	state.UpdateBlock(block.Data.BlockNumber)
	if !state.UpdateMetagraph(metagraph.Data) {
		return fmt.Errorf("sync metagraph: got netuid %d, want %d", metagraph.Data.Netuid, netuid)
	}
	state.UpdateHyperparams(hyperparams.Data)

	log.Debug().
		Int("netuid", netuid).
		Int("block", state.Block()).
		Int("uids", len(metagraph.Data.TotalStake)).
		Msg("chain state synced")
	return nil
}
