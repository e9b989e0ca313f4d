package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"stakerScope/internal/dex"
	"stakerScope/internal/model"
)

var (
	ErrBlockMismatch = errors.New("export block does not match pinned block")
	ErrTokenMismatch = errors.New("export pool tokens do not match chain")
)

// ChainReader is the subset of chain.Client used to freeze a snapshot.
type ChainReader interface {
	dex.Caller
	ChainID(ctx context.Context) (uint64, error)
	HeaderByNumber(ctx context.Context, number uint64) (*types.Header, error)
}

// FreezeConfig controls RPC behavior while freezing.
type FreezeConfig struct {
	Block      uint64
	MaxRetries uint
	RetryDelay time.Duration
	Timeout    time.Duration
}

// Freezer pins one block and stamps chain state read at that block onto an indexer
// export, so that tick, timestamp and incentive data share one height.
type Freezer struct {
	cfg    FreezeConfig
	chain  ChainReader
	tokens *dex.TokenMetaCache
	logger *zap.Logger
}

func NewFreezer(cfg FreezeConfig, chainReader ChainReader, logger *zap.Logger) *Freezer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 1
	}
	return &Freezer{
		cfg:    cfg,
		chain:  chainReader,
		tokens: dex.NewTokenMetaCache(),
		logger: logger,
	}
}

// Freeze returns a copy of export completed with chain id, block, timestamp, pool tokens,
// fee tier and current tick, plus metadata for the pool and reward tokens.
func (f *Freezer) Freeze(ctx context.Context, export model.PoolSnapshot) (model.PoolSnapshot, error) {
	if f.chain == nil {
		return model.PoolSnapshot{}, fmt.Errorf("chain reader is nil")
	}
	pool, err := ParseAddress("pool", export.Pool)
	if err != nil {
		return model.PoolSnapshot{}, err
	}

	pinned := f.cfg.Block
	if pinned == 0 {
		pinned = export.BlockNumber
	}
	header, err := withRetry(ctx, f, "header", func(ctx context.Context) (*types.Header, error) {
		return f.chain.HeaderByNumber(ctx, pinned)
	})
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("pin block: %w", err)
	}
	block := header.Number.Uint64()
	if export.BlockNumber != 0 && export.BlockNumber != block {
		return model.PoolSnapshot{}, fmt.Errorf("%w: export=%d pinned=%d", ErrBlockMismatch, export.BlockNumber, block)
	}

	chainID, err := withRetry(ctx, f, "chain id", f.chain.ChainID)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("get chain id: %w", err)
	}

	blockNumber := new(big.Int).SetUint64(block)
	meta, err := withRetry(ctx, f, "pool state", func(ctx context.Context) (model.PoolMeta, error) {
		return dex.FetchPoolState(ctx, f.chain, pool, blockNumber)
	})
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("pool state: %w", err)
	}
	if err := checkTokens(export, meta); err != nil {
		return model.PoolSnapshot{}, err
	}

	frozen := export
	frozen.ChainID = chainID
	frozen.Pool = pool.Hex()
	frozen.BlockNumber = block
	frozen.Timestamp = header.Time
	frozen.CurrentTick = meta.Slot0.Tick
	frozen.Token0 = meta.Token0
	frozen.Token1 = meta.Token1
	frozen.Fee = meta.Fee
	frozen.TickSpacing = meta.TickSpacing
	frozen.Tokens = f.tokenMetas(ctx, rewardTokens(frozen))

	f.logger.Info("snapshot frozen",
		zap.String("pool", frozen.Pool),
		zap.Uint64("block", block),
		zap.Uint64("timestamp", header.Time),
		zap.Int32("tick", frozen.CurrentTick),
		zap.Int("incentives", len(frozen.Incentives)),
		zap.Int("users", len(frozen.Users)),
	)
	return frozen, nil
}

func (f *Freezer) tokenMetas(ctx context.Context, tokens []common.Address) []model.TokenMeta {
	metas := make([]model.TokenMeta, 0, len(tokens))
	for _, token := range tokens {
		if meta, ok := f.tokens.Get(token); ok {
			metas = append(metas, meta)
			continue
		}
		meta, err := withRetry(ctx, f, "token meta", func(ctx context.Context) (model.TokenMeta, error) {
			return dex.FetchTokenMeta(ctx, f.chain, token, f.logger)
		})
		if err != nil {
			f.logger.Warn("token metadata fetch failed", zap.String("token", token.Hex()), zap.Error(err))
			continue
		}
		f.tokens.Set(token, meta)
		metas = append(metas, meta)
	}
	return metas
}

func withRetry[T any](ctx context.Context, f *Freezer, what string, fn func(context.Context) (T, error)) (T, error) {
	return retry.DoWithData(func() (T, error) {
		callCtx := ctx
		if f.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
			defer cancel()
		}
		return fn(callCtx)
	},
		retry.Context(ctx),
		retry.Attempts(f.cfg.MaxRetries),
		retry.Delay(f.cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			f.logger.Warn("rpc read failed", zap.String("read", what), zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
}

func checkTokens(export model.PoolSnapshot, meta model.PoolMeta) error {
	if meta.Slot0 == nil {
		return fmt.Errorf("pool state missing slot0")
	}
	if export.Token0 != "" && !strings.EqualFold(export.Token0, meta.Token0) {
		return fmt.Errorf("%w: token0 export=%s chain=%s", ErrTokenMismatch, export.Token0, meta.Token0)
	}
	if export.Token1 != "" && !strings.EqualFold(export.Token1, meta.Token1) {
		return fmt.Errorf("%w: token1 export=%s chain=%s", ErrTokenMismatch, export.Token1, meta.Token1)
	}
	return nil
}

// rewardTokens lists the pool tokens and every incentive reward token, sorted and
// deduplicated. Malformed addresses are left for Decode to reject.
func rewardTokens(record model.PoolSnapshot) []common.Address {
	seen := make(map[common.Address]struct{})
	add := func(input string) {
		if common.IsHexAddress(input) {
			seen[common.HexToAddress(input)] = struct{}{}
		}
	}
	add(record.Token0)
	add(record.Token1)
	for _, incentive := range record.Incentives {
		add(incentive.RewardToken)
	}

	tokens := make([]common.Address, 0, len(seen))
	for token := range seen {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool { return bytes.Compare(tokens[i][:], tokens[j][:]) < 0 })
	return tokens
}
