package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"rangeProvisioner/internal/chain"
	"rangeProvisioner/internal/provision"
)

// Positions submits mints to the NonfungiblePositionManager and reads the
// fill back from the IncreaseLiquidity receipt log.
type Positions struct {
	client  *chain.Client
	address common.Address
	auth    *bind.TransactOpts
	logger  *zap.Logger
}

// NewPositions builds a position-manager writer.
func NewPositions(client *chain.Client, address common.Address, auth *bind.TransactOpts, logger *zap.Logger) *Positions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Positions{client: client, address: address, auth: auth, logger: logger}
}

// Address returns the position manager contract address.
func (p *Positions) Address() common.Address {
	return p.address
}

// mintCall mirrors INonfungiblePositionManager.MintParams for ABI packing.
type mintCall struct {
	Token0         common.Address
	Token1         common.Address
	Fee            *big.Int
	TickLower      *big.Int
	TickUpper      *big.Int
	Amount0Desired *big.Int
	Amount1Desired *big.Int
	Amount0Min     *big.Int
	Amount1Min     *big.Int
	Recipient      common.Address
	Deadline       *big.Int
}

// Mint submits one mint instruction and returns the minted position.
func (p *Positions) Mint(ctx context.Context, params provision.MintParams) (provision.MintResult, error) {
	parsed, err := PositionManagerABI()
	if err != nil {
		return provision.MintResult{}, fmt.Errorf("parse position manager abi: %w", err)
	}

	eth := p.client.Eth()
	bound := bind.NewBoundContract(p.address, parsed, eth, eth, eth)

	opts := *p.auth
	opts.Context = ctx

	tx, err := bound.Transact(&opts, "mint", mintCall{
		Token0:         params.Token0,
		Token1:         params.Token1,
		Fee:            new(big.Int).SetUint64(uint64(params.Fee)),
		TickLower:      big.NewInt(int64(params.TickLower)),
		TickUpper:      big.NewInt(int64(params.TickUpper)),
		Amount0Desired: params.Amount0Desired,
		Amount1Desired: params.Amount1Desired,
		Amount0Min:     params.Amount0Min,
		Amount1Min:     params.Amount1Min,
		Recipient:      params.Recipient,
		Deadline:       params.Deadline,
	})
	if err != nil {
		return provision.MintResult{}, fmt.Errorf("mint: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, eth, tx)
	if err != nil {
		return provision.MintResult{}, fmt.Errorf("mint: wait mined: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return provision.MintResult{}, fmt.Errorf("mint: transaction %s reverted", tx.Hash().Hex())
	}

	result, err := p.mintResultFromReceipt(parsed, receipt)
	if err != nil {
		return provision.MintResult{}, err
	}

	p.logger.Debug("mint mined",
		zap.String("tx", tx.Hash().Hex()),
		zap.String("position_id", result.PositionID.String()),
		zap.String("liquidity", result.Liquidity.String()),
	)
	return result, nil
}

func (p *Positions) mintResultFromReceipt(parsed abi.ABI, receipt *types.Receipt) (provision.MintResult, error) {
	eventID := parsed.Events["IncreaseLiquidity"].ID
	for _, logEntry := range receipt.Logs {
		if logEntry.Address != p.address || len(logEntry.Topics) < 2 || logEntry.Topics[0] != eventID {
			continue
		}

		values, err := parsed.Unpack("IncreaseLiquidity", logEntry.Data)
		if err != nil {
			return provision.MintResult{}, fmt.Errorf("unpack IncreaseLiquidity: %w", err)
		}
		if len(values) != 3 {
			return provision.MintResult{}, fmt.Errorf("IncreaseLiquidity: unexpected value count %d", len(values))
		}
		liquidity, err := asBigInt(values[0])
		if err != nil {
			return provision.MintResult{}, fmt.Errorf("IncreaseLiquidity liquidity: %w", err)
		}
		amount0, err := asBigInt(values[1])
		if err != nil {
			return provision.MintResult{}, fmt.Errorf("IncreaseLiquidity amount0: %w", err)
		}
		amount1, err := asBigInt(values[2])
		if err != nil {
			return provision.MintResult{}, fmt.Errorf("IncreaseLiquidity amount1: %w", err)
		}

		return provision.MintResult{
			PositionID: new(big.Int).SetBytes(logEntry.Topics[1].Bytes()),
			Liquidity:  liquidity,
			Amount0:    amount0,
			Amount1:    amount1,
		}, nil
	}
	return provision.MintResult{}, fmt.Errorf("mint: no IncreaseLiquidity log in receipt")
}
