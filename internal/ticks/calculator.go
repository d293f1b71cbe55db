// Package ticks derives spacing-aligned tick bounds for a symmetric
// basis-point price band around the current pool price. All arithmetic is
// exact big.Int math; the result must match the pool's own integer tick
// boundary arithmetic bit for bit, so no floating point is used anywhere.
package ticks

import (
	"errors"
	"fmt"
	"math/big"

	"rangeProvisioner/internal/model"
	"rangeProvisioner/internal/tickmath"
)

var (
	ErrUnsupportedFeeTier = errors.New("unsupported fee tier")
	ErrInvalidPriceBand   = errors.New("invalid price band")
	ErrTickRangeInvalid   = errors.New("tick range invalid")
)

// basis points in one whole; width 10000 means a +/-100% band.
var bpsDenominator = big.NewInt(10000)

// TickResolver is the market's canonical sqrt-price-to-tick primitive. It is
// monotonic and already correct; this package only calls it.
type TickResolver interface {
	TickAtSqrtPrice(sqrtPriceX96 *big.Int) (int32, error)
}

// Band is the intermediate symmetric price band, in the linear (squared)
// X96-derived scale produced by squaring a Q64.96 sqrt price and shifting
// right by 64.
type Band struct {
	LowerX96 *big.Int
	UpperX96 *big.Int
}

// ComputeBounds derives the validated tick pair for widthBps around the
// market's current price. It has no side effects beyond calls to resolver.
func ComputeBounds(state model.MarketState, widthBps uint64, resolver TickResolver) (model.TickBounds, error) {
	spacing, err := SpacingForFee(state.Fee)
	if err != nil {
		return model.TickBounds{}, err
	}

	band, err := priceBand(state.SqrtPriceX96, widthBps)
	if err != nil {
		return model.TickBounds{}, err
	}

	lowerTick, err := tickAtPrice(band.LowerX96, resolver)
	if err != nil {
		return model.TickBounds{}, fmt.Errorf("%w: lower bound: %s", ErrTickRangeInvalid, err)
	}
	upperTick, err := tickAtPrice(band.UpperX96, resolver)
	if err != nil {
		return model.TickBounds{}, fmt.Errorf("%w: upper bound: %s", ErrTickRangeInvalid, err)
	}

	bounds := model.TickBounds{
		Lower: alignToSpacing(lowerTick, spacing),
		Upper: alignToSpacing(upperTick, spacing),
	}
	if err := validateBounds(bounds); err != nil {
		return model.TickBounds{}, err
	}
	return bounds, nil
}

// priceBand computes the symmetric band around the current price. The scale
// here is deliberate: squaring the Q64.96 sqrt price and shifting right by 64
// leaves exactly the scale the sqrt recovery below undoes with a left shift
// by 64, so the round trip is lossless up to the integer floor.
func priceBand(sqrtPriceX96 *big.Int, widthBps uint64) (Band, error) {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return Band{}, fmt.Errorf("%w: sqrt price must be positive", ErrInvalidPriceBand)
	}

	priceX96 := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	priceX96.Rsh(priceX96, 64)

	deltaX96 := new(big.Int).Mul(priceX96, new(big.Int).SetUint64(widthBps))
	deltaX96.Div(deltaX96, bpsDenominator)

	lower := new(big.Int).Sub(priceX96, deltaX96)
	if lower.Sign() <= 0 {
		return Band{}, fmt.Errorf("%w: width %d bps collapses the lower price", ErrInvalidPriceBand, widthBps)
	}
	upper := new(big.Int).Add(priceX96, deltaX96)

	return Band{LowerX96: lower, UpperX96: upper}, nil
}

// tickAtPrice restores the Q64.96 sqrt-price scale from a band edge and maps
// it to a raw tick through the market primitive.
func tickAtPrice(priceX96 *big.Int, resolver TickResolver) (int32, error) {
	sqrtPriceX96 := Sqrt(new(big.Int).Lsh(priceX96, 64))
	return resolver.TickAtSqrtPrice(sqrtPriceX96)
}

// alignToSpacing rounds a raw tick to a multiple of spacing using truncating
// integer division. Negative ticks therefore round toward zero, not strictly
// downward; that asymmetry matches the reference behavior and is isolated
// here so a flooring variant can be swapped in.
func alignToSpacing(tick, spacing int32) int32 {
	return tick / spacing * spacing
}

func validateBounds(bounds model.TickBounds) error {
	if bounds.Lower < tickmath.MinTick {
		return fmt.Errorf("%w: lower tick %d below minimum %d", ErrTickRangeInvalid, bounds.Lower, tickmath.MinTick)
	}
	if bounds.Upper > tickmath.MaxTick {
		return fmt.Errorf("%w: upper tick %d above maximum %d", ErrTickRangeInvalid, bounds.Upper, tickmath.MaxTick)
	}
	if bounds.Lower >= bounds.Upper {
		return fmt.Errorf("%w: lower tick %d not below upper tick %d", ErrTickRangeInvalid, bounds.Lower, bounds.Upper)
	}
	return nil
}
