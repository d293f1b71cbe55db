package model

import "math/big"

// FeeTier is a pool fee tier in hundredths of a basis point (V3 convention).
type FeeTier uint32

const (
	FeeTier100   FeeTier = 100
	FeeTier500   FeeTier = 500
	FeeTier3000  FeeTier = 3000
	FeeTier10000 FeeTier = 10000
)

// MarketState is a snapshot of the pool read at call time.
type MarketState struct {
	SqrtPriceX96 *big.Int
	Tick         int32
	Fee          FeeTier
}

// TickBounds is a spacing-aligned, validated tick pair.
type TickBounds struct {
	Lower int32
	Upper int32
}
