package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "provisioner",
		Short:        "Concentrated-liquidity band provisioner",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	provisionCmd := &cobra.Command{
		Use:   "provision",
		Short: "Provision one liquidity position around the current price",
		RunE:  runProvision,
	}

	provisionCmd.Flags().String("rpc", "", "RPC URL")
	provisionCmd.Flags().String("pool", "", "V3 pool address")
	provisionCmd.Flags().String("position-manager", "", "NonfungiblePositionManager address")
	provisionCmd.Flags().String("private-key", "", "hex private key of the provisioning account")
	provisionCmd.Flags().String("amount0", "", "desired amount of token0 (native units)")
	provisionCmd.Flags().String("amount1", "", "desired amount of token1 (native units)")
	provisionCmd.Flags().Uint64("width", 100, "band half-width in basis points (100 = 1%)")
	provisionCmd.Flags().String("journal", "./data/provisions.jsonl", "journal JSONL path")
	provisionCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the provision journal")
	provisionCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(provisionCmd)

	boundsCmd := &cobra.Command{
		Use:   "bounds",
		Short: "Compute tick bounds for a pool and width without provisioning",
		RunE:  runBounds,
	}

	boundsCmd.Flags().String("rpc", "", "RPC URL")
	boundsCmd.Flags().String("pool", "", "V3 pool address")
	boundsCmd.Flags().Uint64("width", 100, "band half-width in basis points (100 = 1%)")
	boundsCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(boundsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
