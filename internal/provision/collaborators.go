package provision

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"rangeProvisioner/internal/model"
)

var (
	ErrZeroAmount         = errors.New("desired amount must be greater than zero")
	ErrReentrantCall      = errors.New("provisioning call already in progress")
	ErrTransferInFailed   = errors.New("transfer in failed")
	ErrProvisioningFailed = errors.New("provisioning failed")
	ErrRefundFailed       = errors.New("refund failed")
)

// Market exposes the read-only pool surface the provisioner depends on,
// including the pool's canonical sqrt-price-to-tick primitive.
type Market interface {
	TokenAddresses(ctx context.Context) (common.Address, common.Address, error)
	FeeTier(ctx context.Context) (model.FeeTier, error)
	CurrentState(ctx context.Context) (sqrtPriceX96 *big.Int, tick int32, err error)
	TickAtSqrtPrice(sqrtPriceX96 *big.Int) (int32, error)
}

// MintParams is one mint instruction for the external position manager.
type MintParams struct {
	Token0         common.Address
	Token1         common.Address
	Fee            model.FeeTier
	TickLower      int32
	TickUpper      int32
	Amount0Desired *big.Int
	Amount1Desired *big.Int
	Amount0Min     *big.Int
	Amount1Min     *big.Int
	Recipient      common.Address
	Deadline       *big.Int
}

// MintResult is what the position manager reports back for one mint.
type MintResult struct {
	PositionID *big.Int
	Liquidity  *big.Int
	Amount0    *big.Int
	Amount1    *big.Int
}

// PositionManager is the external position-management service.
type PositionManager interface {
	Address() common.Address
	Mint(ctx context.Context, params MintParams) (MintResult, error)
}

// AssetCustody moves token value between the caller, this system's escrow,
// and the position manager. All transfers are all-or-nothing.
type AssetCustody interface {
	// TransferFrom pulls amount of token from owner into escrow.
	TransferFrom(ctx context.Context, token, owner common.Address, amount *big.Int) error
	// Transfer pays amount of token out of escrow to dest.
	Transfer(ctx context.Context, token, dest common.Address, amount *big.Int) error
	// Approve authorizes spender to pull up to amount of token from escrow.
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int) error
}

// Notifier receives one event per successful provisioning call.
type Notifier interface {
	LiquidityAdded(caller common.Address, amount0Used, amount1Used *big.Int)
}
