package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// LiquidityRequest is the caller's provisioning intent for one call.
type LiquidityRequest struct {
	Caller         common.Address
	Amount0Desired *big.Int
	Amount1Desired *big.Int
	WidthBps       uint64
}

// ProvisionResult is the outcome of one successful provisioning call.
type ProvisionResult struct {
	PositionID  *big.Int
	Liquidity   *big.Int
	Bounds      TickBounds
	Amount0Used *big.Int
	Amount1Used *big.Int
}

// ProvisionRecord is the journal row written after a successful call.
// Big values are string-encoded so the row survives JSON and Postgres intact.
type ProvisionRecord struct {
	ChainID     uint64 `json:"chain_id"`
	Pool        string `json:"pool"`
	Caller      string `json:"caller"`
	PositionID  string `json:"position_id"`
	Liquidity   string `json:"liquidity"`
	TickLower   int32  `json:"tick_lower"`
	TickUpper   int32  `json:"tick_upper"`
	Amount0Used string `json:"amount0_used"`
	Amount1Used string `json:"amount1_used"`
	CreatedAt   string `json:"created_at"`
}
