package ticks

import (
	"math/big"
	"testing"
)

func TestSqrtPerfectSquares(t *testing.T) {
	cases := []int64{0, 1, 4, 9, 144, 10000, 1 << 40}
	for _, c := range cases {
		x := big.NewInt(c)
		want := new(big.Int).Sqrt(x)
		got := Sqrt(x)
		if got.Cmp(want) != 0 {
			t.Fatalf("Sqrt(%d) = %s, want %s", c, got, want)
		}
	}
}

func TestSqrtFloorsBetweenSquares(t *testing.T) {
	if got := Sqrt(big.NewInt(10)); got.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("Sqrt(10) = %s, want 3", got)
	}
	if got := Sqrt(big.NewInt(15)); got.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("Sqrt(15) = %s, want 3", got)
	}
	if got := Sqrt(big.NewInt(16)); got.Cmp(big.NewInt(4)) != 0 {
		t.Fatalf("Sqrt(16) = %s, want 4", got)
	}
}

func TestSqrtLargeFixedPoint(t *testing.T) {
	// sqrt(2000 * 2^192) = sqrt(2000) * 2^96; check against big.Int's own sqrt.
	x := new(big.Int).Lsh(big.NewInt(2000), 192)
	want := new(big.Int).Sqrt(x)
	got := Sqrt(x)
	if got.Cmp(want) != 0 {
		t.Fatalf("large sqrt mismatch: %s != %s", got, want)
	}

	// floor property: got^2 <= x < (got+1)^2
	sq := new(big.Int).Mul(got, got)
	if sq.Cmp(x) > 0 {
		t.Fatalf("sqrt result too large")
	}
	next := new(big.Int).Add(got, big.NewInt(1))
	if new(big.Int).Mul(next, next).Cmp(x) <= 0 {
		t.Fatalf("sqrt result not the floor")
	}
}
