package dex

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestMarketPool(t *testing.T) {
	pool := common.HexToAddress("0x1111111111111111111111111111111111111111")
	market := NewMarket(nil, pool)
	if market.Pool() != pool {
		t.Fatalf("pool = %s, want %s", market.Pool().Hex(), pool.Hex())
	}
}
