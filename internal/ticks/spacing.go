package ticks

import (
	"fmt"

	"rangeProvisioner/internal/model"
)

// spacingByFee is the immutable fee tier -> tick spacing table. Built once;
// an unknown tier is an error, never a default.
var spacingByFee = map[model.FeeTier]int32{
	model.FeeTier100:   1,
	model.FeeTier500:   10,
	model.FeeTier3000:  60,
	model.FeeTier10000: 200,
}

// SpacingForFee returns the tick spacing for a supported fee tier.
func SpacingForFee(fee model.FeeTier) (int32, error) {
	spacing, ok := spacingByFee[fee]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedFeeTier, fee)
	}
	return spacing, nil
}
