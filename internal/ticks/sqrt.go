package ticks

import "math/big"

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// Sqrt returns the integer floor of the square root of x using Babylonian
// (Newton) iteration. x must be non-negative; Sqrt(0) = 0.
//
// The iteration starts from a power-of-two upper bound on the root and is
// strictly decreasing until it crosses the root, so the first time a step
// fails to decrease the guess the previous guess is the floor.
func Sqrt(x *big.Int) *big.Int {
	if x.Sign() <= 0 {
		return new(big.Int)
	}
	if x.Cmp(one) == 0 {
		return big.NewInt(1)
	}

	// 2^ceil(bits/2) >= sqrt(x)
	guess := new(big.Int).Lsh(one, uint(x.BitLen()+1)/2)
	for {
		// next = (guess + x/guess) / 2
		next := new(big.Int).Div(x, guess)
		next.Add(next, guess)
		next.Div(next, two)
		if next.Cmp(guess) >= 0 {
			return guess
		}
		guess = next
	}
}
