package wallet_test

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/xpub-balance/pkg/wallet"
)

const (
	// BIP84 test vector, mnemonic "abandon abandon ... about", m/84'/0'/0'.
	bip84Zpub = "zpub6rFR7y4Q2AijBEqTUquhVz398htDFrtymD9xYYfG1m4wAcvPhXNfE3EfH1r1ADqtfSdVCToUG868RvUUkgDKf31mGDtKsAYz2oz2AGutZYs"
	// BIP49 test vector, same mnemonic, testnet m/49'/1'/0'.
	bip49Upub = "upub5EFU65HtV5TeiSHmZZm7FUffBGy8UKeqp7vw43jYbvZPpoVsgU93oac7Wk3u6moKegAEWtGNF8DehrnHtv21XXEMYRUocHqguyjknFHYfgY"
	// Same mnemonic, m/44'/0'/0'.
	bip44Xpub = "xpub6BosfCnifzxcFwrSzQiqu2DBVTshkCXacvNsWGYJVVhhawA7d4R5WSWGFNbi8Aw6ZRc1brxMyWMzG3DSSSSoekkudhUd9yLb6qx39T9nMdj"
)

var (
	xpubVersion, _ = hex.DecodeString("0488b21e")
	ypubVersion, _ = hex.DecodeString("049d7cb2")
	zpubVersion, _ = hex.DecodeString("04b24746")
	tpubVersion, _ = hex.DecodeString("043587cf")
	vpubVersion, _ = hex.DecodeString("045f1cf6")
)

func TestDecodeKnownVectors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		scheme  string
		receive []string
		change  []string
	}{
		{
			name:   "bip84 zpub",
			key:    bip84Zpub,
			scheme: "p2wpkh",
			receive: []string{
				"bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu",
				"bc1qnjg0jd8228aq7egyzacy8cys3knf9xvrerkf9g",
			},
			change: []string{
				"bc1q8c6fshw2dlwun7ekn9qwf37cu2rn755upcp6el",
			},
		},
		{
			name:    "bip49 upub",
			key:     bip49Upub,
			scheme:  "p2sh-p2wpkh",
			receive: []string{"2Mww8dCYPUpKHofjgcXcBCEGmniw9CoaiD2"},
		},
		{
			name:    "bip44 xpub",
			key:     bip44Xpub,
			scheme:  "p2pkh",
			receive: []string{"1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			account, err := wallet.Decode(tt.key)
			require.NoError(t, err)
			require.Equal(t, tt.scheme, account.Scheme().Name())
			require.Equal(t, uint8(3), account.Depth())

			for i, expected := range tt.receive {
				addr, err := account.External().Derive(uint32(i))
				require.NoError(t, err)
				require.Equal(t, expected, addr)
			}
			for i, expected := range tt.change {
				addr, err := account.Internal().Derive(uint32(i))
				require.NoError(t, err)
				require.Equal(t, expected, addr)
			}
		})
	}
}

func TestDecodeSchemes(t *testing.T) {
	account := newTestAccountKey(t)

	tests := []struct {
		version []byte
		scheme  string
		prefix  string
	}{
		{xpubVersion, "p2pkh", "1"},
		{ypubVersion, "p2sh-p2wpkh", "3"},
		{zpubVersion, "p2wpkh", "bc1q"},
		{vpubVersion, "p2wpkh", "tb1q"},
	}

	for _, tt := range tests {
		key := cloneWithVersion(t, account, tt.version)
		acc, err := wallet.Decode(key)
		require.NoError(t, err)
		require.Equal(t, tt.scheme, acc.Scheme().Name())

		addr, err := acc.External().Derive(0)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(addr, tt.prefix), addr)
	}

	testnet := cloneWithVersion(t, account, tpubVersion)
	acc, err := wallet.Decode(testnet)
	require.NoError(t, err)
	addr, err := acc.External().Derive(0)
	require.NoError(t, err)
	require.Contains(t, []byte{'m', 'n'}, addr[0])
}

func TestDecodeLiquid(t *testing.T) {
	account := newTestAccountKey(t)

	acc, err := wallet.DecodeAccount(wallet.DecodeAccountOpts{
		ExtendedKey: cloneWithVersion(t, account, zpubVersion),
		Network:     wallet.NetworkLiquid,
	})
	require.NoError(t, err)
	require.Equal(t, "liquid-p2wpkh", acc.Scheme().Name())

	addr, err := acc.External().Derive(0)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(addr, "ex1"), addr)

	_, err = wallet.DecodeAccount(wallet.DecodeAccountOpts{
		ExtendedKey: cloneWithVersion(t, account, ypubVersion),
		Network:     wallet.NetworkLiquid,
	})
	require.ErrorIs(t, err, wallet.ErrUnsupportedScheme)
}

func TestDecodeFailures(t *testing.T) {
	account := newTestAccountKey(t)
	master := newTestMasterKey(t)

	corrupted := []byte(bip84Zpub)
	last := len(corrupted) - 1
	if corrupted[last] == 's' {
		corrupted[last] = 't'
	} else {
		corrupted[last] = 's'
	}

	tests := []struct {
		name string
		opts wallet.DecodeAccountOpts
		err  error
	}{
		{"empty", wallet.DecodeAccountOpts{ExtendedKey: "  "}, wallet.ErrNullExtendedKey},
		{"bad network", wallet.DecodeAccountOpts{ExtendedKey: bip84Zpub, Network: "dogecoin"}, wallet.ErrInvalidNetwork},
		{"not base58", wallet.DecodeAccountOpts{ExtendedKey: "not-an-xpub"}, wallet.ErrInvalidEncoding},
		{"truncated", wallet.DecodeAccountOpts{ExtendedKey: bip84Zpub[:100]}, wallet.ErrInvalidEncoding},
		{"bad checksum", wallet.DecodeAccountOpts{ExtendedKey: string(corrupted)}, wallet.ErrInvalidEncoding},
		{"private key", wallet.DecodeAccountOpts{ExtendedKey: master.String()}, wallet.ErrUnsupportedScheme},
		{"unknown version", wallet.DecodeAccountOpts{ExtendedKey: cloneWithVersion(t, account, []byte{1, 2, 3, 4})}, wallet.ErrUnsupportedScheme},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			acc, err := wallet.DecodeAccount(tt.opts)
			require.ErrorIs(t, err, tt.err)
			require.Nil(t, acc)
		})
	}
}

func TestDeriveMatchesHDKeychain(t *testing.T) {
	account := newTestAccountKey(t)
	acc, err := wallet.Decode(cloneWithVersion(t, account, zpubVersion))
	require.NoError(t, err)

	for _, branch := range []wallet.Branch{wallet.External, wallet.Internal} {
		chainKey, err := account.Derive(uint32(branch))
		require.NoError(t, err)

		for _, index := range []uint32{0, 1, 19, 1000, wallet.MaxIndex} {
			child, err := chainKey.Derive(index)
			require.NoError(t, err)
			pubkey, err := child.ECPubKey()
			require.NoError(t, err)

			hash := hex.EncodeToString(hash160(pubkey.SerializeCompressed()))
			addr, err := acc.Chain(branch).Derive(index)
			require.NoError(t, err)
			require.Equal(t, hash, witnessProgram(t, addr))
		}
	}
}

func TestDeriveDeterminism(t *testing.T) {
	acc1, err := wallet.Decode(bip84Zpub)
	require.NoError(t, err)
	acc2, err := wallet.Decode(bip84Zpub)
	require.NoError(t, err)

	for i := uint32(0); i < 10; i++ {
		a1, err := acc1.External().Derive(i)
		require.NoError(t, err)
		a2, err := acc2.External().Derive(i)
		require.NoError(t, err)
		again, err := acc1.External().Derive(i)
		require.NoError(t, err)

		require.Equal(t, a1, a2)
		require.Equal(t, a1, again)
	}
}

func TestDeriveInjectivityAndChainIndependence(t *testing.T) {
	acc, err := wallet.Decode(bip84Zpub)
	require.NoError(t, err)

	const count = 100
	receive, err := acc.External().Addresses(0, count)
	require.NoError(t, err)
	change, err := acc.Internal().Addresses(0, count)
	require.NoError(t, err)
	require.Len(t, receive, count)
	require.Len(t, change, count)

	seen := make(map[string]struct{}, 2*count)
	for _, addr := range append(receive, change...) {
		_, ok := seen[addr]
		require.False(t, ok, "duplicated address %s", addr)
		seen[addr] = struct{}{}
	}
}

func TestDeriveOutOfRange(t *testing.T) {
	acc, err := wallet.Decode(bip84Zpub)
	require.NoError(t, err)

	_, err = acc.External().Derive(wallet.MaxIndex)
	require.NoError(t, err)

	_, err = acc.External().Derive(wallet.MaxIndex + 1)
	require.ErrorIs(t, err, wallet.ErrIndexOutOfRange)

	it := acc.External().DeriveRange(wallet.MaxIndex, 2)
	require.True(t, it.Next())
	require.Equal(t, wallet.MaxIndex, it.Index())
	require.False(t, it.Next())
	require.ErrorIs(t, it.Err(), wallet.ErrIndexOutOfRange)

	_, err = acc.Internal().Addresses(wallet.MaxIndex-1, 5)
	require.ErrorIs(t, err, wallet.ErrIndexOutOfRange)
}

func TestAddressesHugeCount(t *testing.T) {
	acc, err := wallet.Decode(bip84Zpub)
	require.NoError(t, err)

	// Only two indexes are derivable before running out of range.
	addresses, err := acc.External().Addresses(wallet.MaxIndex-1, wallet.MaxIndex)
	require.ErrorIs(t, err, wallet.ErrIndexOutOfRange)
	require.Nil(t, addresses)
}

func TestDeriveRangeRestartable(t *testing.T) {
	acc, err := wallet.Decode(bip84Zpub)
	require.NoError(t, err)
	handle := acc.External()

	collect := func(it *wallet.AddressIterator) ([]uint32, []string) {
		indexes := make([]uint32, 0)
		addresses := make([]string, 0)
		for it.Next() {
			indexes = append(indexes, it.Index())
			addresses = append(addresses, it.Address())
		}
		require.NoError(t, it.Err())
		return indexes, addresses
	}

	idx1, addrs1 := collect(handle.DeriveRange(5, 4))
	idx2, addrs2 := collect(handle.DeriveRange(5, 4))

	require.Equal(t, []uint32{5, 6, 7, 8}, idx1)
	require.Equal(t, idx1, idx2)
	require.Equal(t, addrs1, addrs2)

	addr5, err := handle.Derive(5)
	require.NoError(t, err)
	require.Equal(t, addr5, addrs1[0])

	_, empty := collect(handle.DeriveRange(0, 0))
	require.Empty(t, empty)
}

func newTestMasterKey(t *testing.T) *hdkeychain.ExtendedKey {
	seed := bytes.Repeat([]byte{0x2a}, hdkeychain.RecommendedSeedLen)
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	require.NoError(t, err)
	return master
}

// newTestAccountKey returns the neutered m/84'/0'/0' key of a fixed seed.
func newTestAccountKey(t *testing.T) *hdkeychain.ExtendedKey {
	key := newTestMasterKey(t)
	for _, step := range []uint32{84, 0, 0} {
		var err error
		key, err = key.Derive(hdkeychain.HardenedKeyStart + step)
		require.NoError(t, err)
	}
	pub, err := key.Neuter()
	require.NoError(t, err)
	return pub
}

func cloneWithVersion(
	t *testing.T, key *hdkeychain.ExtendedKey, version []byte,
) string {
	clone, err := key.CloneWithVersion(version)
	require.NoError(t, err)
	return clone.String()
}
