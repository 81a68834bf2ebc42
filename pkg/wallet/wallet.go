package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

var (
	// ErrNullExtendedKey ...
	ErrNullExtendedKey = errors.New("extended public key must not be null")
	// ErrInvalidEncoding is returned for keys that are not a well formed
	// base58check serialized extended public key.
	ErrInvalidEncoding = errors.New("invalid extended key encoding")
	// ErrUnsupportedScheme is returned for keys whose version bytes do not map
	// to any supported address scheme for the selected network.
	ErrUnsupportedScheme = errors.New("unsupported extended key scheme")
	// ErrDerivationFailure is returned if a child key or its address cannot be
	// computed.
	ErrDerivationFailure = errors.New("key derivation failed")
	// ErrIndexOutOfRange ...
	ErrIndexOutOfRange = fmt.Errorf(
		"derivation index must be in range [0, %d]", MaxIndex,
	)
	// ErrInvalidNetwork ...
	ErrInvalidNetwork = errors.New("network must be either bitcoin or liquid")
)

// Network selects the address encoding family used for derived addresses.
type Network string

const (
	// NetworkBitcoin encodes addresses for the bitcoin main or test network,
	// depending on the key version.
	NetworkBitcoin Network = "bitcoin"
	// NetworkLiquid encodes unconfidential addresses for the Liquid network.
	NetworkLiquid Network = "liquid"
)

// Account is a watch-only view over an account level extended public key.
// It holds the two chain handles of the standard external/internal split.
type Account struct {
	key      *hdkeychain.ExtendedKey
	external *ChainHandle
	internal *ChainHandle
}

// DecodeAccountOpts is the struct given to DecodeAccount method
type DecodeAccountOpts struct {
	ExtendedKey string
	Network     Network
}

func (o DecodeAccountOpts) validate() error {
	if len(strings.TrimSpace(o.ExtendedKey)) <= 0 {
		return ErrNullExtendedKey
	}
	switch o.Network {
	case "", NetworkBitcoin, NetworkLiquid:
	default:
		return ErrInvalidNetwork
	}
	return nil
}

// Decode parses a bitcoin extended public key (xpub, ypub, zpub or their
// testnet counterparts) into an Account.
func Decode(extendedKey string) (*Account, error) {
	return DecodeAccount(DecodeAccountOpts{ExtendedKey: extendedKey})
}

// DecodeAccount validates the encoding and checksum of the given extended
// public key, resolves its address scheme from the version bytes and derives
// the external (0) and internal (1) chain handles.
func DecodeAccount(opts DecodeAccountOpts) (*Account, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	net := opts.Network
	if net == "" {
		net = NetworkBitcoin
	}

	key, err := hdkeychain.NewKeyFromString(strings.TrimSpace(opts.ExtendedKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEncoding, err)
	}
	if key.IsPrivate() {
		return nil, fmt.Errorf(
			"%w: private extended keys are not accepted", ErrUnsupportedScheme,
		)
	}

	scheme, err := schemeForVersion(key.Version(), net)
	if err != nil {
		return nil, err
	}

	external, err := newChainHandle(key, External, scheme)
	if err != nil {
		return nil, err
	}
	internal, err := newChainHandle(key, Internal, scheme)
	if err != nil {
		return nil, err
	}

	return &Account{
		key:      key,
		external: external,
		internal: internal,
	}, nil
}

// External returns the handle of the receive chain.
func (a *Account) External() *ChainHandle {
	return a.external
}

// Internal returns the handle of the change chain.
func (a *Account) Internal() *ChainHandle {
	return a.internal
}

// Chain returns the handle for the given branch.
func (a *Account) Chain(branch Branch) *ChainHandle {
	if branch == Internal {
		return a.internal
	}
	return a.external
}

// Scheme returns the address scheme shared by both chains.
func (a *Account) Scheme() Scheme {
	return a.external.scheme
}

// Depth returns the depth of the account key in its hierarchy, 3 for a
// standard BIP44/49/84 account.
func (a *Account) Depth() uint8 {
	return a.key.Depth()
}
