package wallet

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/vulpemventures/go-elements/network"
	"github.com/vulpemventures/go-elements/payment"
)

// Scheme encodes a derived public key into its textual address.
// Implementations must be deterministic and injective over public keys.
type Scheme interface {
	Name() string
	EncodeAddress(pubkey *btcec.PublicKey) (string, error)
}

type scriptType int

const (
	scriptP2PKH scriptType = iota
	scriptP2SHP2WPKH
	scriptP2WPKH
)

type keyVersion struct {
	script  scriptType
	testnet bool
}

// SLIP-0132 public key versions.
var publicKeyVersions = map[string]keyVersion{
	"0488b21e": {scriptP2PKH, false},      // xpub
	"049d7cb2": {scriptP2SHP2WPKH, false}, // ypub
	"04b24746": {scriptP2WPKH, false},     // zpub
	"043587cf": {scriptP2PKH, true},       // tpub
	"044a5262": {scriptP2SHP2WPKH, true},  // upub
	"045f1cf6": {scriptP2WPKH, true},      // vpub
}

func schemeForVersion(version []byte, net Network) (Scheme, error) {
	v, ok := publicKeyVersions[hex.EncodeToString(version)]
	if !ok {
		return nil, fmt.Errorf(
			"%w: unknown key version %x", ErrUnsupportedScheme, version,
		)
	}

	if net == NetworkLiquid {
		if v.script != scriptP2WPKH {
			return nil, fmt.Errorf(
				"%w: only native segwit keys (zpub, vpub) are supported on liquid",
				ErrUnsupportedScheme,
			)
		}
		if v.testnet {
			return liquidP2WPKH{&network.Testnet}, nil
		}
		return liquidP2WPKH{&network.Liquid}, nil
	}

	params := &chaincfg.MainNetParams
	if v.testnet {
		params = &chaincfg.TestNet3Params
	}
	switch v.script {
	case scriptP2SHP2WPKH:
		return p2shP2WPKH{params}, nil
	case scriptP2WPKH:
		return p2wpkh{params}, nil
	default:
		return p2pkh{params}, nil
	}
}

type p2pkh struct {
	params *chaincfg.Params
}

func (s p2pkh) Name() string {
	return "p2pkh"
}

func (s p2pkh) EncodeAddress(pubkey *btcec.PublicKey) (string, error) {
	addr, err := btcutil.NewAddressPubKeyHash(
		btcutil.Hash160(pubkey.SerializeCompressed()), s.params,
	)
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}

type p2wpkh struct {
	params *chaincfg.Params
}

func (s p2wpkh) Name() string {
	return "p2wpkh"
}

func (s p2wpkh) EncodeAddress(pubkey *btcec.PublicKey) (string, error) {
	addr, err := btcutil.NewAddressWitnessPubKeyHash(
		btcutil.Hash160(pubkey.SerializeCompressed()), s.params,
	)
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}

// p2shP2WPKH wraps the witness program of a p2wpkh output in a p2sh.
type p2shP2WPKH struct {
	params *chaincfg.Params
}

func (s p2shP2WPKH) Name() string {
	return "p2sh-p2wpkh"
}

func (s p2shP2WPKH) EncodeAddress(pubkey *btcec.PublicKey) (string, error) {
	witnessAddr, err := btcutil.NewAddressWitnessPubKeyHash(
		btcutil.Hash160(pubkey.SerializeCompressed()), s.params,
	)
	if err != nil {
		return "", err
	}
	redeemScript, err := txscript.PayToAddrScript(witnessAddr)
	if err != nil {
		return "", err
	}
	addr, err := btcutil.NewAddressScriptHash(redeemScript, s.params)
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}

type liquidP2WPKH struct {
	net *network.Network
}

func (s liquidP2WPKH) Name() string {
	return "liquid-p2wpkh"
}

func (s liquidP2WPKH) EncodeAddress(pubkey *btcec.PublicKey) (string, error) {
	return payment.FromPublicKey(pubkey, s.net, nil).WitnessPubKeyHash()
}
