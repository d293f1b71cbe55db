// Package tickmath ports the V3 TickMath primitives: the sqrt-ratio table
// lookup and its inverse. All math is exact integer math so results match the
// on-chain library bit for bit.
package tickmath

import (
	"errors"
	"math/big"
)

const (
	// MinTick is the lowest tick usable as a position boundary.
	MinTick int32 = -887272
	// MaxTick is the highest tick usable as a position boundary.
	MaxTick int32 = 887272
)

var (
	// MinSqrtRatio is the sqrt price at MinTick.
	MinSqrtRatio = big.NewInt(4295128739)
	// MaxSqrtRatio is the sqrt price at MaxTick.
	MaxSqrtRatio = mustBig("1461446703485210103287273052203988822378723970342")

	ErrTickOutOfRange      = errors.New("tick out of range")
	ErrSqrtRatioOutOfRange = errors.New("sqrt ratio out of range")
)

func mustBig(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 0)
	if !ok {
		panic("tickmath: bad constant " + s)
	}
	return n
}

// sqrt(1.0001^(2^i)) * 2^128 for i = 0..19, as in TickMath.sol.
var ratioSteps = []*big.Int{
	mustBig("0xfffcb933bd6fad37aa2d162d1a594001"),
	mustBig("0xfff97272373d413259a46990580e213a"),
	mustBig("0xfff2e50f5f656932ef12357cf3c7fdcc"),
	mustBig("0xffe5caca7e10e4e61c3624eaa0941cd0"),
	mustBig("0xffcb9843d60f6159c9db58835c926644"),
	mustBig("0xff973b41fa98c081472e6896dfb254c0"),
	mustBig("0xff2ea16466c96a3843ec78b326b52861"),
	mustBig("0xfe5dee046a99a2a811c461f1969c3053"),
	mustBig("0xfcbe86c7900a88aedcffc83b479aa3a4"),
	mustBig("0xf987a7253ac413176f2b074cf7815e54"),
	mustBig("0xf3392b0822b70005940c7a398e4b70f3"),
	mustBig("0xe7159475a2c29b7443b29c7fa6e889d9"),
	mustBig("0xd097f3bdfd2022b8845ad8f792aa5825"),
	mustBig("0xa9f746462d870fdf8a65dc1f90e061e5"),
	mustBig("0x70d869a156d2a1b890bb3df62baf32f7"),
	mustBig("0x31be135f97d08fd981231505542fcfa6"),
	mustBig("0x9aa508b5b7a84e1c677de54f3e99bc9"),
	mustBig("0x5d6af8dedb81196699c329225ee604"),
	mustBig("0x2216e584f5fa1ea926041bedfe98"),
	mustBig("0x48a170391f7dc42444e8fa2"),
}

var (
	oneQ128    = mustBig("0x100000000000000000000000000000000")
	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	mask32     = new(big.Int).SetUint64(0xffffffff)
)

// SqrtRatioAtTick returns sqrt(1.0001^tick) * 2^96.
func SqrtRatioAtTick(tick int32) (*big.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, ErrTickOutOfRange
	}

	absTick := tick
	if absTick < 0 {
		absTick = -absTick
	}

	ratio := new(big.Int).Set(oneQ128)
	for i, step := range ratioSteps {
		if absTick&(1<<uint(i)) != 0 {
			ratio.Mul(ratio, step)
			ratio.Rsh(ratio, 128)
		}
	}

	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	// Q128.128 -> Q64.96, rounding up when any low bits are set so the
	// result agrees with the canonical boundary constants and the floor
	// inverse below.
	rem := new(big.Int).And(ratio, mask32)
	ratio.Rsh(ratio, 32)
	if rem.Sign() != 0 {
		ratio.Add(ratio, big.NewInt(1))
	}
	return ratio, nil
}

// TickAtSqrtRatio returns the greatest tick whose sqrt ratio is <= the input.
func TickAtSqrtRatio(sqrtPriceX96 *big.Int) (int32, error) {
	if sqrtPriceX96 == nil ||
		sqrtPriceX96.Cmp(MinSqrtRatio) < 0 ||
		sqrtPriceX96.Cmp(MaxSqrtRatio) >= 0 {
		return 0, ErrSqrtRatioOutOfRange
	}

	low, high := MinTick, MaxTick
	for low < high {
		mid := midpointUp(low, high)
		ratio, err := SqrtRatioAtTick(mid)
		if err != nil {
			return 0, err
		}
		if ratio.Cmp(sqrtPriceX96) <= 0 {
			low = mid
		} else {
			high = mid - 1
		}
	}
	return low, nil
}

// midpointUp biases toward high so the invariant low < mid always holds.
func midpointUp(low, high int32) int32 {
	return int32((int64(low) + int64(high) + 1) / 2)
}
