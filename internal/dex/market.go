// Package dex provides the chain-backed collaborators: the read-only pool
// surface, ERC-20 custody, and the NonfungiblePositionManager writer.
package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"rangeProvisioner/internal/chain"
	"rangeProvisioner/internal/model"
	"rangeProvisioner/internal/tickmath"
)

// Market reads pool state through eth_call against one V3 pool.
type Market struct {
	client *chain.Client
	pool   common.Address
}

// NewMarket builds a pool reader for the given pool address.
func NewMarket(client *chain.Client, pool common.Address) *Market {
	return &Market{client: client, pool: pool}
}

// Pool returns the pool address.
func (m *Market) Pool() common.Address {
	return m.pool
}

// TokenAddresses returns the pool's two token addresses.
func (m *Market) TokenAddresses(ctx context.Context) (common.Address, common.Address, error) {
	values, err := m.call(ctx, "token0")
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("token0: %w", err)
	}

	values, err = m.call(ctx, "token1")
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	token1, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("token1: %w", err)
	}

	return token0, token1, nil
}

// FeeTier returns the pool's fee tier.
func (m *Market) FeeTier(ctx context.Context) (model.FeeTier, error) {
	values, err := m.call(ctx, "fee")
	if err != nil {
		return 0, err
	}
	fee, err := asBigInt(values[0])
	if err != nil {
		return 0, fmt.Errorf("fee: %w", err)
	}
	return model.FeeTier(fee.Uint64()), nil
}

// CurrentState returns the pool's current sqrt price and tick from slot0.
func (m *Market) CurrentState(ctx context.Context) (*big.Int, int32, error) {
	values, err := m.call(ctx, "slot0")
	if err != nil {
		return nil, 0, err
	}
	if len(values) < 2 {
		return nil, 0, fmt.Errorf("slot0: unexpected result length %d", len(values))
	}
	sqrtPrice, err := asBigInt(values[0])
	if err != nil {
		return nil, 0, fmt.Errorf("slot0 sqrt price: %w", err)
	}
	tickBig, err := asBigInt(values[1])
	if err != nil {
		return nil, 0, fmt.Errorf("slot0 tick: %w", err)
	}
	tick, err := int24FromBig(tickBig)
	if err != nil {
		return nil, 0, fmt.Errorf("slot0 tick: %w", err)
	}
	return sqrtPrice, tick, nil
}

// TickAtSqrtPrice maps a sqrt price to its tick via the canonical primitive.
func (m *Market) TickAtSqrtPrice(sqrtPriceX96 *big.Int) (int32, error) {
	return tickmath.TickAtSqrtRatio(sqrtPriceX96)
}

func (m *Market) call(ctx context.Context, method string) ([]interface{}, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	data, err := poolABI.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	pool := m.pool
	msg := ethereum.CallMsg{To: &pool, Data: data}
	resp, err := m.client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := poolABI.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

func asAddress(value interface{}) (common.Address, error) {
	addr, ok := value.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected type %T", value)
	}
	return addr, nil
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch typed := value.(type) {
	case *big.Int:
		return typed, nil
	case uint8:
		return new(big.Int).SetUint64(uint64(typed)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(typed)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(typed)), nil
	case uint64:
		return new(big.Int).SetUint64(typed), nil
	default:
		return nil, fmt.Errorf("unexpected type %T", value)
	}
}

func int24FromBig(value *big.Int) (int32, error) {
	if !value.IsInt64() {
		return 0, fmt.Errorf("value %s out of int24 range", value)
	}
	v := value.Int64()
	if v < -(1<<23) || v >= (1<<23) {
		return 0, fmt.Errorf("value %d out of int24 range", v)
	}
	return int32(v), nil
}
