// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-router/internal/utils/metrics"
)

// AccountFetcher is the subset of the RPC API the loader needs.
type AccountFetcher interface {
	GetMultipleAccountsWithOpts(ctx context.Context, accounts []solana.PublicKey, opts *rpc.GetMultipleAccountsOpts) (*rpc.GetMultipleAccountsResult, error)
}

// Client – тонкий адаптер для взаимодействия с блокчейном Solana через solana-go.
type Client struct {
	rpc     AccountFetcher
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewClient создаёт новый клиент, принимая RPC URL и логгер через dependency injection.
func NewClient(rpcURL string, logger *zap.Logger, m *metrics.Collector) *Client {
	return NewClientWithFetcher(rpc.New(rpcURL), logger, m)
}

func NewClientWithFetcher(fetcher AccountFetcher, logger *zap.Logger, m *metrics.Collector) *Client {
	return &Client{
		rpc:     fetcher,
		logger:  logger.Named("solbc-client"),
		metrics: m,
	}
}

// GetMultipleAccounts получает информацию о нескольких аккаунтах за один запрос
func (c *Client) GetMultipleAccounts(
	ctx context.Context,
	pubkeys []solana.PublicKey,
) (*rpc.GetMultipleAccountsResult, error) {
	if len(pubkeys) == 0 {
		return &rpc.GetMultipleAccountsResult{}, nil
	}

	opts := rpc.GetMultipleAccountsOpts{
		Commitment: rpc.CommitmentConfirmed,
		Encoding:   solana.EncodingBase64,
	}

	start := time.Now()
	res, err := c.rpc.GetMultipleAccountsWithOpts(ctx, pubkeys, &opts)
	c.metrics.RecordRPCLatency("getMultipleAccounts", time.Since(start))
	if err != nil {
		c.logger.Debug("GetMultipleAccounts error",
			zap.Int("accounts", len(pubkeys)),
			zap.Error(err))
		return nil, err
	}

	return res, nil
}
