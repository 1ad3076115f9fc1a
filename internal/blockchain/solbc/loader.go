// internal/blockchain/solbc/loader.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solana-router/internal/runtime"
)

// MaxAccountsPerRequest is the getMultipleAccounts limit.
const MaxAccountsPerRequest = 100

const maxParallelRequests = 4

var ErrNilResult = errors.New("rpc returned no result")

// Loader snapshots cluster accounts for local simulation.
type Loader struct {
	client     *Client
	logger     *zap.Logger
	retries    int
	retryDelay time.Duration
}

func NewLoader(client *Client, logger *zap.Logger, retries int, retryDelay time.Duration) *Loader {
	return &Loader{
		client:     client,
		logger:     logger.Named("loader"),
		retries:    retries,
		retryDelay: retryDelay,
	}
}

// Load fetches keys in chunks. Accounts that do not exist on the cluster are
// absent from the result.
func (l *Loader) Load(ctx context.Context, keys []solana.PublicKey) (map[solana.PublicKey]*runtime.Account, error) {
	var (
		mu  sync.Mutex
		out = make(map[solana.PublicKey]*runtime.Account, len(keys))
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelRequests)

	for _, chunk := range chunkKeys(keys, MaxAccountsPerRequest) {
		g.Go(func() error {
			res, err := l.fetchWithRetry(gCtx, chunk)
			if err != nil {
				return err
			}
			if len(res.Value) != len(chunk) {
				return fmt.Errorf("rpc returned %d accounts for %d keys", len(res.Value), len(chunk))
			}

			mu.Lock()
			defer mu.Unlock()
			for i, acc := range res.Value {
				if acc == nil {
					continue
				}
				out[chunk[i]] = convertAccount(acc)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.logger.Debug("Accounts loaded",
		zap.Int("requested", len(keys)),
		zap.Int("found", len(out)))
	return out, nil
}

// LoadInto loads keys and seeds them into rt. It returns the keys the cluster
// does not know.
func (l *Loader) LoadInto(ctx context.Context, rt *runtime.Runtime, keys []solana.PublicKey) ([]solana.PublicKey, error) {
	accounts, err := l.Load(ctx, keys)
	if err != nil {
		return nil, err
	}

	var missing []solana.PublicKey
	for _, key := range keys {
		acc, ok := accounts[key]
		if !ok {
			missing = append(missing, key)
			continue
		}
		rt.SetAccount(key, acc)
	}
	return missing, nil
}

func (l *Loader) fetchWithRetry(ctx context.Context, keys []solana.PublicKey) (*rpc.GetMultipleAccountsResult, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = l.retryDelay
	policy.MaxInterval = l.retryDelay * 10

	notify := func(err error, d time.Duration) {
		l.logger.Info("Повтор запроса аккаунтов", zap.Error(err), zap.Duration("backoff", d))
	}

	operation := func() (*rpc.GetMultipleAccountsResult, error) {
		res, err := l.client.GetMultipleAccounts(ctx, keys)
		if err != nil {
			return nil, err
		}
		if res == nil {
			return nil, backoff.Permanent(ErrNilResult)
		}
		return res, nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(l.retries+1)),
		backoff.WithNotify(notify))
}

func chunkKeys(keys []solana.PublicKey, size int) [][]solana.PublicKey {
	var chunks [][]solana.PublicKey
	for len(keys) > size {
		chunks = append(chunks, keys[:size])
		keys = keys[size:]
	}
	if len(keys) > 0 {
		chunks = append(chunks, keys)
	}
	return chunks
}

func convertAccount(acc *rpc.Account) *runtime.Account {
	var data []byte
	if acc.Data != nil {
		data = append([]byte(nil), acc.Data.GetBinary()...)
	}
	return &runtime.Account{
		Lamports:   acc.Lamports,
		Data:       data,
		Owner:      acc.Owner,
		Executable: acc.Executable,
	}
}
