// Package provision orchestrates one liquidity-provisioning flow: validate,
// derive tick bounds, escrow caller assets, mint against the external
// position manager, and refund whatever the mint did not consume.
package provision

import (
	"context"
	"fmt"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"rangeProvisioner/internal/model"
	"rangeProvisioner/internal/ticks"
)

// Provisioner holds no balances across calls; escrow exists only for the
// duration of one AddLiquidity invocation.
type Provisioner struct {
	market    Market
	positions PositionManager
	custody   AssetCustody
	notifier  Notifier
	logger    *zap.Logger

	inFlight atomic.Bool
	now      func() time.Time
}

// NewProvisioner wires a provisioner from its collaborators. notifier and
// logger may be nil.
func NewProvisioner(market Market, positions PositionManager, custody AssetCustody, notifier Notifier, logger *zap.Logger) *Provisioner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provisioner{
		market:    market,
		positions: positions,
		custody:   custody,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// AddLiquidity runs one provisioning flow end to end. Every failure aborts
// the whole call; escrowed funds are returned to the caller on any failure
// after transfer-in, so no asset movement is ever left half-applied.
func (p *Provisioner) AddLiquidity(ctx context.Context, req model.LiquidityRequest) (*model.ProvisionResult, error) {
	if req.Amount0Desired == nil || req.Amount0Desired.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount0", ErrZeroAmount)
	}
	if req.Amount1Desired == nil || req.Amount1Desired.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount1", ErrZeroAmount)
	}

	if !p.inFlight.CompareAndSwap(false, true) {
		return nil, ErrReentrantCall
	}
	defer p.inFlight.Store(false)

	token0, token1, err := p.market.TokenAddresses(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve tokens: %w", err)
	}
	fee, err := p.market.FeeTier(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve fee tier: %w", err)
	}
	sqrtPriceX96, tick, err := p.market.CurrentState(ctx)
	if err != nil {
		return nil, fmt.Errorf("read market state: %w", err)
	}

	state := model.MarketState{SqrtPriceX96: sqrtPriceX96, Tick: tick, Fee: fee}
	bounds, err := ticks.ComputeBounds(state, req.WidthBps, p.market)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("tick bounds derived",
		zap.Int32("tick_lower", bounds.Lower),
		zap.Int32("tick_upper", bounds.Upper),
		zap.Int32("current_tick", tick),
		zap.Uint64("width_bps", req.WidthBps),
	)

	if err := p.custody.TransferFrom(ctx, token0, req.Caller, req.Amount0Desired); err != nil {
		return nil, fmt.Errorf("%w: token0: %s", ErrTransferInFailed, err)
	}
	if err := p.custody.TransferFrom(ctx, token1, req.Caller, req.Amount1Desired); err != nil {
		if backErr := p.custody.Transfer(ctx, token0, req.Caller, req.Amount0Desired); backErr != nil {
			return nil, fmt.Errorf("%w: token0 return after failed token1 transfer-in (%s): %s", ErrRefundFailed, err, backErr)
		}
		return nil, fmt.Errorf("%w: token1: %s", ErrTransferInFailed, err)
	}

	result, err := p.mintEscrowed(ctx, req, token0, token1, fee, bounds)
	if err != nil {
		if backErr := p.returnEscrow(ctx, req, token0, token1); backErr != nil {
			return nil, fmt.Errorf("%w: escrow return after %s: %s", ErrRefundFailed, err, backErr)
		}
		return nil, err
	}

	if err := p.refundShortfall(ctx, token0, req.Caller, req.Amount0Desired, result.Amount0); err != nil {
		return nil, err
	}
	if err := p.refundShortfall(ctx, token1, req.Caller, req.Amount1Desired, result.Amount1); err != nil {
		return nil, err
	}

	if p.notifier != nil {
		p.notifier.LiquidityAdded(req.Caller, result.Amount0, result.Amount1)
	}
	p.logger.Info("liquidity added",
		zap.String("caller", req.Caller.Hex()),
		zap.String("position_id", result.PositionID.String()),
		zap.String("liquidity", result.Liquidity.String()),
		zap.String("amount0_used", result.Amount0.String()),
		zap.String("amount1_used", result.Amount1.String()),
	)

	return &model.ProvisionResult{
		PositionID:  result.PositionID,
		Liquidity:   result.Liquidity,
		Bounds:      bounds,
		Amount0Used: result.Amount0,
		Amount1Used: result.Amount1,
	}, nil
}

// mintEscrowed authorizes the position manager against the escrow and
// submits the mint. Min amounts are always zero: any nonzero fill the market
// offers is accepted, and the deadline is the time of submission.
func (p *Provisioner) mintEscrowed(ctx context.Context, req model.LiquidityRequest, token0, token1 common.Address, fee model.FeeTier, bounds model.TickBounds) (MintResult, error) {
	spender := p.positions.Address()
	if err := p.custody.Approve(ctx, token0, spender, req.Amount0Desired); err != nil {
		return MintResult{}, fmt.Errorf("%w: approve token0: %s", ErrProvisioningFailed, err)
	}
	if err := p.custody.Approve(ctx, token1, spender, req.Amount1Desired); err != nil {
		return MintResult{}, fmt.Errorf("%w: approve token1: %s", ErrProvisioningFailed, err)
	}

	result, err := p.positions.Mint(ctx, MintParams{
		Token0:         token0,
		Token1:         token1,
		Fee:            fee,
		TickLower:      bounds.Lower,
		TickUpper:      bounds.Upper,
		Amount0Desired: req.Amount0Desired,
		Amount1Desired: req.Amount1Desired,
		Amount0Min:     new(big.Int),
		Amount1Min:     new(big.Int),
		Recipient:      req.Caller,
		Deadline:       big.NewInt(p.now().Unix()),
	})
	if err != nil {
		return MintResult{}, fmt.Errorf("%w: %s", ErrProvisioningFailed, err)
	}
	if result.Liquidity == nil || result.Liquidity.Sign() == 0 {
		return MintResult{}, fmt.Errorf("%w: position manager minted zero liquidity", ErrProvisioningFailed)
	}
	if result.Amount0.Cmp(req.Amount0Desired) > 0 || result.Amount1.Cmp(req.Amount1Desired) > 0 {
		return MintResult{}, fmt.Errorf("%w: used amounts exceed desired amounts", ErrProvisioningFailed)
	}
	return result, nil
}

func (p *Provisioner) returnEscrow(ctx context.Context, req model.LiquidityRequest, token0, token1 common.Address) error {
	if err := p.custody.Transfer(ctx, token0, req.Caller, req.Amount0Desired); err != nil {
		return fmt.Errorf("token0: %w", err)
	}
	if err := p.custody.Transfer(ctx, token1, req.Caller, req.Amount1Desired); err != nil {
		return fmt.Errorf("token1: %w", err)
	}
	return nil
}

// refundShortfall returns desired-used to the caller. The system holds no
// balances across calls, so a refund failure is fatal for the call.
func (p *Provisioner) refundShortfall(ctx context.Context, token, caller common.Address, desired, used *big.Int) error {
	shortfall := new(big.Int).Sub(desired, used)
	if shortfall.Sign() <= 0 {
		return nil
	}
	if err := p.custody.Transfer(ctx, token, caller, shortfall); err != nil {
		return fmt.Errorf("%w: token %s: %s", ErrRefundFailed, token.Hex(), err)
	}
	return nil
}
