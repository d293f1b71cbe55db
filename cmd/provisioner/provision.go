package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rangeProvisioner/internal/chain"
	"rangeProvisioner/internal/config"
	"rangeProvisioner/internal/dex"
	"rangeProvisioner/internal/journal"
	"rangeProvisioner/internal/journal/postgres"
	"rangeProvisioner/internal/model"
	"rangeProvisioner/internal/provision"
)

func runProvision(cmd *cobra.Command, _ []string) error {
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
	if !common.IsHexAddress(cfg.PositionManager) {
		return fmt.Errorf("valid position manager address is required")
	}
	if cfg.PrivateKey == "" {
		return fmt.Errorf("private key is required")
	}

	amount0, err := parseAmount(cfg.Amount0, "amount0")
	if err != nil {
		return err
	}
	amount1, err := parseAmount(cfg.Amount1, "amount1")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain id: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return fmt.Errorf("parse private key: %w", err)
	}
	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return fmt.Errorf("build transactor: %w", err)
	}

	custody, err := dex.NewCustody(chainClient, key, chainID, logger)
	if err != nil {
		return err
	}

	market := dex.NewMarket(chainClient, common.HexToAddress(cfg.Pool))
	positions := dex.NewPositions(chainClient, common.HexToAddress(cfg.PositionManager), auth, logger)

	provisioner := provision.NewProvisioner(market, positions, custody, &provision.LogNotifier{Logger: logger}, logger)

	caller := custody.Escrow()
	logger.Info("provision start",
		zap.String("pool", market.Pool().Hex()),
		zap.String("caller", caller.Hex()),
		zap.String("amount0_desired", amount0.String()),
		zap.String("amount1_desired", amount1.String()),
		zap.Uint64("width_bps", cfg.WidthBps),
	)

	result, err := provisioner.AddLiquidity(ctx, model.LiquidityRequest{
		Caller:         caller,
		Amount0Desired: amount0,
		Amount1Desired: amount1,
		WidthBps:       cfg.WidthBps,
	})
	if err != nil {
		return err
	}

	logger.Info("provision done",
		zap.String("position_id", result.PositionID.String()),
		zap.String("liquidity", result.Liquidity.String()),
		zap.Int32("tick_lower", result.Bounds.Lower),
		zap.Int32("tick_upper", result.Bounds.Upper),
		zap.String("amount0_used", result.Amount0Used.String()),
		zap.String("amount1_used", result.Amount1Used.String()),
	)

	record := model.ProvisionRecord{
		ChainID:     chainID.Uint64(),
		Pool:        market.Pool().Hex(),
		Caller:      caller.Hex(),
		PositionID:  result.PositionID.String(),
		Liquidity:   result.Liquidity.String(),
		TickLower:   result.Bounds.Lower,
		TickUpper:   result.Bounds.Upper,
		Amount0Used: result.Amount0Used.String(),
		Amount1Used: result.Amount1Used.String(),
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	writeJournal(ctx, cfg, record, logger)

	return nil
}

// writeJournal records the result in every configured sink. The mint already
// happened, so journal failures are logged and never fail the command.
func writeJournal(ctx context.Context, cfg config.Config, record model.ProvisionRecord, logger *zap.Logger) {
	if cfg.JournalPath != "" {
		sink := journal.NewJsonlJournal(cfg.JournalPath)
		if err := sink.RecordProvision(ctx, record); err != nil {
			logger.Warn("jsonl journal write failed", zap.Error(err))
		}
	}

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			logger.Warn("postgres journal connect failed", zap.Error(err))
			return
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Warn("postgres journal schema failed", zap.Error(err))
			return
		}
		if err := store.RecordProvision(ctx, record); err != nil {
			logger.Warn("postgres journal write failed", zap.Error(err))
		}
	}
}

func parseAmount(value, name string) (*big.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("%s is required", name)
	}
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("%s: invalid integer %q", name, value)
	}
	return amount, nil
}
