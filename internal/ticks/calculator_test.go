package ticks

import (
	"errors"
	"math/big"
	"testing"

	"rangeProvisioner/internal/model"
	"rangeProvisioner/internal/tickmath"
)

// mathResolver is the canonical primitive, used directly in tests.
type mathResolver struct{}

func (mathResolver) TickAtSqrtPrice(sqrtPriceX96 *big.Int) (int32, error) {
	return tickmath.TickAtSqrtRatio(sqrtPriceX96)
}

func marketAtTick(t *testing.T, tick int32, fee model.FeeTier) model.MarketState {
	t.Helper()
	sqrtPrice, err := tickmath.SqrtRatioAtTick(tick)
	if err != nil {
		t.Fatalf("sqrt ratio at tick %d: %v", tick, err)
	}
	return model.MarketState{SqrtPriceX96: sqrtPrice, Tick: tick, Fee: fee}
}

func TestSpacingForFee(t *testing.T) {
	cases := map[model.FeeTier]int32{
		model.FeeTier100:   1,
		model.FeeTier500:   10,
		model.FeeTier3000:  60,
		model.FeeTier10000: 200,
	}
	for fee, want := range cases {
		got, err := SpacingForFee(fee)
		if err != nil {
			t.Fatalf("unexpected error for fee %d: %v", fee, err)
		}
		if got != want {
			t.Fatalf("spacing for fee %d = %d, want %d", fee, got, want)
		}
	}
}

func TestSpacingForFeeUnknown(t *testing.T) {
	if _, err := SpacingForFee(model.FeeTier(1234)); !errors.Is(err, ErrUnsupportedFeeTier) {
		t.Fatalf("expected ErrUnsupportedFeeTier, got %v", err)
	}
}

func TestComputeBoundsUnsupportedFeeTier(t *testing.T) {
	state := marketAtTick(t, 76012, model.FeeTier(2500))
	if _, err := ComputeBounds(state, 100, mathResolver{}); !errors.Is(err, ErrUnsupportedFeeTier) {
		t.Fatalf("expected ErrUnsupportedFeeTier, got %v", err)
	}
}

// A sqrt price for a linear price of ~2000 token1 per token0 sits near tick
// 76012; a 1% band is roughly 100 ticks each side, aligned to spacing 60.
func TestComputeBoundsOnePercentBand(t *testing.T) {
	const currentTick = 76012
	state := marketAtTick(t, currentTick, model.FeeTier3000)

	bounds, err := ComputeBounds(state, 100, mathResolver{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bounds.Lower%60 != 0 || bounds.Upper%60 != 0 {
		t.Fatalf("bounds not aligned to spacing 60: %+v", bounds)
	}
	if !(bounds.Lower < currentTick && currentTick < bounds.Upper) {
		t.Fatalf("bounds do not bracket current tick %d: %+v", currentTick, bounds)
	}
	if bounds.Lower < currentTick-240 || bounds.Upper > currentTick+240 {
		t.Fatalf("bounds too far from a 1%% band: %+v", bounds)
	}
	if bounds.Upper-bounds.Lower < 120 {
		t.Fatalf("band unexpectedly narrow: %+v", bounds)
	}
}

func TestComputeBoundsWidthsAlignedAndOrdered(t *testing.T) {
	state := marketAtTick(t, 76012, model.FeeTier500)

	for _, width := range []uint64{20, 100, 2000, 9999} {
		bounds, err := ComputeBounds(state, width, mathResolver{})
		if err != nil {
			t.Fatalf("width %d: unexpected error: %v", width, err)
		}
		if bounds.Lower >= bounds.Upper {
			t.Fatalf("width %d: bounds not ordered: %+v", width, bounds)
		}
		if bounds.Lower%10 != 0 || bounds.Upper%10 != 0 {
			t.Fatalf("width %d: bounds not aligned to spacing 10: %+v", width, bounds)
		}
	}
}

func TestComputeBoundsWidthCollapsesBand(t *testing.T) {
	state := marketAtTick(t, 76012, model.FeeTier3000)

	for _, width := range []uint64{10000, 10001, 20000} {
		if _, err := ComputeBounds(state, width, mathResolver{}); !errors.Is(err, ErrInvalidPriceBand) {
			t.Fatalf("width %d: expected ErrInvalidPriceBand, got %v", width, err)
		}
	}
}

// A width past the signed 24-bit range must fail loudly, never wrap.
func TestComputeBoundsOversizedWidth(t *testing.T) {
	state := marketAtTick(t, 76012, model.FeeTier3000)

	const width = uint64(1<<23) + 1
	_, err := ComputeBounds(state, width, mathResolver{})
	if !errors.Is(err, ErrInvalidPriceBand) && !errors.Is(err, ErrTickRangeInvalid) {
		t.Fatalf("expected band or range failure, got %v", err)
	}
}

func TestComputeBoundsZeroWidthRejected(t *testing.T) {
	state := marketAtTick(t, 76012, model.FeeTier3000)

	// Zero width leaves both edges at the current price; after alignment the
	// ticks coincide and the ordering check must reject them.
	if _, err := ComputeBounds(state, 0, mathResolver{}); !errors.Is(err, ErrTickRangeInvalid) {
		t.Fatalf("expected ErrTickRangeInvalid, got %v", err)
	}
}

func TestComputeBoundsZeroSqrtPrice(t *testing.T) {
	state := model.MarketState{SqrtPriceX96: new(big.Int), Fee: model.FeeTier3000}
	if _, err := ComputeBounds(state, 100, mathResolver{}); !errors.Is(err, ErrInvalidPriceBand) {
		t.Fatalf("expected ErrInvalidPriceBand, got %v", err)
	}
}

type failingResolver struct{}

func (failingResolver) TickAtSqrtPrice(*big.Int) (int32, error) {
	return 0, errors.New("sqrt ratio out of range")
}

func TestComputeBoundsResolverFailure(t *testing.T) {
	state := marketAtTick(t, 76012, model.FeeTier3000)
	if _, err := ComputeBounds(state, 100, failingResolver{}); !errors.Is(err, ErrTickRangeInvalid) {
		t.Fatalf("expected ErrTickRangeInvalid, got %v", err)
	}
}

func TestAlignToSpacingTruncatesTowardZero(t *testing.T) {
	cases := []struct {
		tick, spacing, want int32
	}{
		{130, 60, 120},
		{-130, 60, -120},
		{59, 60, 0},
		{-59, 60, 0},
		{75911, 60, 75900},
		{-75911, 60, -75900},
		{200, 200, 200},
	}
	for _, c := range cases {
		if got := alignToSpacing(c.tick, c.spacing); got != c.want {
			t.Fatalf("alignToSpacing(%d, %d) = %d, want %d", c.tick, c.spacing, got, c.want)
		}
	}
}

// Truncation makes a negative-tick band asymmetric: alignment moves both raw
// ticks toward zero instead of strictly down. The behavior is intentional.
func TestComputeBoundsNegativeTickRegion(t *testing.T) {
	const currentTick = -76012
	state := marketAtTick(t, currentTick, model.FeeTier3000)

	bounds, err := ComputeBounds(state, 100, mathResolver{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bounds.Lower%60 != 0 || bounds.Upper%60 != 0 {
		t.Fatalf("bounds not aligned: %+v", bounds)
	}
	if bounds.Lower >= bounds.Upper {
		t.Fatalf("bounds not ordered: %+v", bounds)
	}
	if bounds.Lower < currentTick-240 || bounds.Upper > currentTick+240 {
		t.Fatalf("bounds too far from a 1%% band: %+v", bounds)
	}
}
