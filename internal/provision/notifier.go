package provision

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// LogNotifier emits the per-call notification as a structured log line.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) LiquidityAdded(caller common.Address, amount0Used, amount1Used *big.Int) {
	if n == nil || n.Logger == nil {
		return
	}
	n.Logger.Info("liquidity added notification",
		zap.String("caller", caller.Hex()),
		zap.String("amount0_used", amount0Used.String()),
		zap.String("amount1_used", amount1Used.String()),
	)
}
