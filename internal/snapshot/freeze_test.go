package snapshot

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"stakerScope/internal/dex"
	"stakerScope/internal/model"
)

type fakeChain struct {
	chainID     uint64
	head        uint64
	time        uint64
	headerErrs  int
	responses   map[string][]byte
	headerCalls []uint64
	callBlocks  []*big.Int
}

func newFakeChain() *fakeChain {
	return &fakeChain{chainID: 56, head: 200, time: 1700000000, responses: make(map[string][]byte)}
}

func (f *fakeChain) set(t *testing.T, target common.Address, parsed abi.ABI, method string, outputs ...interface{}) {
	t.Helper()
	data, err := parsed.Methods[method].Outputs.Pack(outputs...)
	if err != nil {
		t.Fatalf("pack %s: %v", method, err)
	}
	f.responses[target.Hex()+hexutil.Encode(parsed.Methods[method].ID)] = data
}

func (f *fakeChain) ChainID(context.Context) (uint64, error) {
	return f.chainID, nil
}

func (f *fakeChain) HeaderByNumber(_ context.Context, number uint64) (*types.Header, error) {
	f.headerCalls = append(f.headerCalls, number)
	if f.headerErrs > 0 {
		f.headerErrs--
		return nil, fmt.Errorf("connection reset")
	}
	if number == 0 {
		number = f.head
	}
	return &types.Header{Number: new(big.Int).SetUint64(number), Time: f.time + number}, nil
}

func (f *fakeChain) CallContract(_ context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	if block != nil {
		f.callBlocks = append(f.callBlocks, block)
	}
	resp, ok := f.responses[msg.To.Hex()+hexutil.Encode(msg.Data[:4])]
	if !ok {
		return nil, fmt.Errorf("execution reverted")
	}
	return resp, nil
}

func seededChain(t *testing.T) *fakeChain {
	t.Helper()
	poolABI, err := dex.V3PoolABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	erc20ABI, err := dex.ERC20ABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	chain := newFakeChain()
	pool := common.HexToAddress(testPool)
	chain.set(t, pool, poolABI, "token0", common.HexToAddress(testToken0))
	chain.set(t, pool, poolABI, "token1", common.HexToAddress(testToken1))
	chain.set(t, pool, poolABI, "fee", big.NewInt(500))
	chain.set(t, pool, poolABI, "tickSpacing", big.NewInt(10))
	chain.set(t, pool, poolABI, "slot0",
		big.NewInt(79228162514264337), big.NewInt(42), uint16(0), uint16(1), uint16(1), uint8(0), true)

	for i, token := range []string{testToken0, testToken1, testReward} {
		addr := common.HexToAddress(token)
		chain.set(t, addr, erc20ABI, "decimals", uint8(18))
		chain.set(t, addr, erc20ABI, "symbol", fmt.Sprintf("TK%d", i))
		chain.set(t, addr, erc20ABI, "name", fmt.Sprintf("Token %d", i))
	}
	return chain
}

func exportRecord() model.PoolSnapshot {
	record := testRecord()
	record.ChainID = 0
	record.BlockNumber = 0
	record.Timestamp = 0
	record.CurrentTick = 0
	record.Tokens = nil
	return record
}

func TestFreezeStampsChainState(t *testing.T) {
	chain := seededChain(t)
	freezer := NewFreezer(FreezeConfig{Block: 150, MaxRetries: 1}, chain, nil)

	frozen, err := freezer.Freeze(context.Background(), exportRecord())
	if err != nil {
		t.Fatalf("freeze: %v", err)
	}

	if frozen.ChainID != 56 || frozen.BlockNumber != 150 || frozen.Timestamp != chain.time+150 {
		t.Fatalf("header mismatch: chain=%d block=%d ts=%d", frozen.ChainID, frozen.BlockNumber, frozen.Timestamp)
	}
	if frozen.CurrentTick != 42 || frozen.Fee != 500 || frozen.TickSpacing != 10 {
		t.Fatalf("pool state mismatch: %+v", frozen)
	}
	if len(frozen.Tokens) != 3 {
		t.Fatalf("tokens = %d, want 3", len(frozen.Tokens))
	}
	for i, block := range chain.callBlocks {
		if block.Uint64() != 150 {
			t.Fatalf("pool call %d used block %s", i, block)
		}
	}
	if _, err := Decode(frozen); err != nil {
		t.Fatalf("frozen snapshot does not decode: %v", err)
	}
}

func TestFreezeUsesLatestWhenUnpinned(t *testing.T) {
	chain := seededChain(t)
	freezer := NewFreezer(FreezeConfig{}, chain, nil)

	frozen, err := freezer.Freeze(context.Background(), exportRecord())
	if err != nil {
		t.Fatalf("freeze: %v", err)
	}
	if frozen.BlockNumber != chain.head {
		t.Fatalf("block = %d, want %d", frozen.BlockNumber, chain.head)
	}
}

func TestFreezeRejectsBlockMismatch(t *testing.T) {
	chain := seededChain(t)
	freezer := NewFreezer(FreezeConfig{Block: 150}, chain, nil)

	export := exportRecord()
	export.BlockNumber = 149
	if _, err := freezer.Freeze(context.Background(), export); !errors.Is(err, ErrBlockMismatch) {
		t.Fatalf("expected block mismatch, got %v", err)
	}
}

func TestFreezeRejectsTokenMismatch(t *testing.T) {
	chain := seededChain(t)
	freezer := NewFreezer(FreezeConfig{Block: 150}, chain, nil)

	export := exportRecord()
	export.Token0, export.Token1 = export.Token1, export.Token0
	if _, err := freezer.Freeze(context.Background(), export); !errors.Is(err, ErrTokenMismatch) {
		t.Fatalf("expected token mismatch, got %v", err)
	}
}

func TestFreezeRetriesTransientErrors(t *testing.T) {
	chain := seededChain(t)
	chain.headerErrs = 2
	freezer := NewFreezer(FreezeConfig{Block: 150, MaxRetries: 3}, chain, nil)

	if _, err := freezer.Freeze(context.Background(), exportRecord()); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	if len(chain.headerCalls) != 3 {
		t.Fatalf("header calls = %d, want 3", len(chain.headerCalls))
	}
}

func TestFreezeGivesUpAfterRetries(t *testing.T) {
	chain := seededChain(t)
	chain.headerErrs = 5
	freezer := NewFreezer(FreezeConfig{Block: 150, MaxRetries: 2}, chain, nil)

	if _, err := freezer.Freeze(context.Background(), exportRecord()); err == nil {
		t.Fatalf("expected error after retries")
	}
	if len(chain.headerCalls) != 2 {
		t.Fatalf("header calls = %d, want 2", len(chain.headerCalls))
	}
}
