package wallet_test

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

func hash160(buf []byte) []byte {
	return btcutil.Hash160(buf)
}

func witnessProgram(t *testing.T, addr string) string {
	decoded, err := btcutil.DecodeAddress(addr, &chaincfg.MainNetParams)
	require.NoError(t, err)
	_, ok := decoded.(*btcutil.AddressWitnessPubKeyHash)
	require.True(t, ok)
	return hex.EncodeToString(decoded.ScriptAddress())
}
