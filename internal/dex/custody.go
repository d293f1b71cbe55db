package dex

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"rangeProvisioner/internal/chain"
)

// Custody moves ERC-20 value through the escrow account (the signing key's
// address). Each operation is one transaction, mined and status-checked
// before it is reported as done.
type Custody struct {
	client *chain.Client
	auth   *bind.TransactOpts
	escrow common.Address
	logger *zap.Logger
}

// NewCustody builds an ERC-20 custody backed by the given signing key.
func NewCustody(client *chain.Client, key *ecdsa.PrivateKey, chainID *big.Int, logger *zap.Logger) (*Custody, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Custody{
		client: client,
		auth:   auth,
		escrow: crypto.PubkeyToAddress(key.PublicKey),
		logger: logger,
	}, nil
}

// Escrow returns the escrow account address.
func (c *Custody) Escrow() common.Address {
	return c.escrow
}

// TransferFrom pulls amount of token from owner into escrow. The owner must
// have approved the escrow beforehand.
func (c *Custody) TransferFrom(ctx context.Context, token, owner common.Address, amount *big.Int) error {
	return c.transact(ctx, token, "transferFrom", owner, c.escrow, amount)
}

// Transfer pays amount of token out of escrow to dest.
func (c *Custody) Transfer(ctx context.Context, token, dest common.Address, amount *big.Int) error {
	return c.transact(ctx, token, "transfer", dest, amount)
}

// Approve authorizes spender to pull up to amount of token from escrow.
func (c *Custody) Approve(ctx context.Context, token, spender common.Address, amount *big.Int) error {
	return c.transact(ctx, token, "approve", spender, amount)
}

func (c *Custody) transact(ctx context.Context, token common.Address, method string, args ...interface{}) error {
	parsed, err := erc20ABIInstance()
	if err != nil {
		return fmt.Errorf("parse erc20 abi: %w", err)
	}

	eth := c.client.Eth()
	bound := bind.NewBoundContract(token, parsed, eth, eth, eth)

	opts := *c.auth
	opts.Context = ctx

	tx, err := bound.Transact(&opts, method, args...)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, token.Hex(), err)
	}

	receipt, err := bind.WaitMined(ctx, eth, tx)
	if err != nil {
		return fmt.Errorf("%s %s: wait mined: %w", method, token.Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%s %s: transaction %s reverted", method, token.Hex(), tx.Hash().Hex())
	}

	c.logger.Debug("erc20 transaction mined",
		zap.String("method", method),
		zap.String("token", token.Hex()),
		zap.String("tx", tx.Hash().Hex()),
	)
	return nil
}
