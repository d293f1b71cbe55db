package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rangeProvisioner/internal/chain"
	"rangeProvisioner/internal/config"
	"rangeProvisioner/internal/dex"
	"rangeProvisioner/internal/model"
	"rangeProvisioner/internal/ticks"
)

func runBounds(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if !common.IsHexAddress(cfg.Pool) {
		return fmt.Errorf("valid pool address is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	market := dex.NewMarket(chainClient, common.HexToAddress(cfg.Pool))

	fee, err := market.FeeTier(ctx)
	if err != nil {
		return err
	}
	sqrtPrice, tick, err := market.CurrentState(ctx)
	if err != nil {
		return err
	}

	state := model.MarketState{SqrtPriceX96: sqrtPrice, Tick: tick, Fee: fee}
	bounds, err := ticks.ComputeBounds(state, cfg.WidthBps, market)
	if err != nil {
		return err
	}

	logger.Info("tick bounds",
		zap.String("pool", cfg.Pool),
		zap.Uint64("width_bps", cfg.WidthBps),
		zap.Uint32("fee_tier", uint32(fee)),
		zap.Int32("current_tick", tick),
		zap.String("sqrt_price_x96", sqrtPrice.String()),
		zap.Int32("tick_lower", bounds.Lower),
		zap.Int32("tick_upper", bounds.Upper),
	)

	return nil
}
