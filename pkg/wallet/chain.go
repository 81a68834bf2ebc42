package wallet

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// MaxIndex is the highest child index derivable from a public key.
const MaxIndex uint32 = hdkeychain.HardenedKeyStart - 1

const maxPreallocatedAddresses = 1024

// Branch identifies one of the two chains of an account.
type Branch uint32

const (
	// External is the receive chain.
	External Branch = 0
	// Internal is the change chain.
	Internal Branch = 1
)

func (b Branch) String() string {
	if b == Internal {
		return "change"
	}
	return "receive"
}

// ChainHandle derives the addresses of a single branch of an account.
// It is immutable and safe for concurrent use.
type ChainHandle struct {
	branch Branch
	key    *hdkeychain.ExtendedKey
	scheme Scheme
}

func newChainHandle(
	account *hdkeychain.ExtendedKey,
	branch Branch,
	scheme Scheme,
) (*ChainHandle, error) {
	key, err := account.Derive(uint32(branch))
	if err != nil {
		return nil, fmt.Errorf(
			"%w: %s chain: %s", ErrDerivationFailure, branch, err,
		)
	}
	return &ChainHandle{branch, key, scheme}, nil
}

// Branch returns the branch this handle derives.
func (c *ChainHandle) Branch() Branch {
	return c.branch
}

// Scheme returns the address scheme used by this handle.
func (c *ChainHandle) Scheme() Scheme {
	return c.scheme
}

// Derive returns the address at the given index of the chain.
func (c *ChainHandle) Derive(index uint32) (string, error) {
	if index > MaxIndex {
		return "", fmt.Errorf("%w: got %d", ErrIndexOutOfRange, index)
	}

	child, err := c.key.Derive(index)
	if err != nil {
		return "", c.derivationErr(index, err)
	}
	pubkey, err := child.ECPubKey()
	if err != nil {
		return "", c.derivationErr(index, err)
	}
	addr, err := c.scheme.EncodeAddress(pubkey)
	if err != nil {
		return "", c.derivationErr(index, err)
	}
	return addr, nil
}

// DeriveRange returns a lazy iterator over the addresses with index in
// [start, start+count). Every call returns a new iterator starting over from
// start.
func (c *ChainHandle) DeriveRange(start, count uint32) *AddressIterator {
	return &AddressIterator{
		handle: c,
		next:   uint64(start),
		end:    uint64(start) + uint64(count),
	}
}

// Addresses eagerly derives the addresses with index in [start, start+count).
func (c *ChainHandle) Addresses(start, count uint32) ([]string, error) {
	size := count
	if size > maxPreallocatedAddresses {
		size = maxPreallocatedAddresses
	}
	addresses := make([]string, 0, size)
	it := c.DeriveRange(start, count)
	for it.Next() {
		addresses = append(addresses, it.Address())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (c *ChainHandle) derivationErr(index uint32, err error) error {
	return fmt.Errorf(
		"%w: %s: %s", ErrDerivationFailure, NewDerivationPath(c.branch, index), err,
	)
}

// AddressIterator walks a finite range of a chain deriving one address per
// call to Next.
type AddressIterator struct {
	handle *ChainHandle
	next   uint64
	end    uint64

	index   uint32
	address string
	err     error
}

// Next derives the next address of the range. It returns false once the range
// is exhausted or a derivation error occurred.
func (it *AddressIterator) Next() bool {
	if it.err != nil || it.next >= it.end {
		return false
	}
	if it.next > uint64(MaxIndex) {
		it.err = fmt.Errorf("%w: got %d", ErrIndexOutOfRange, it.next)
		return false
	}

	index := uint32(it.next)
	addr, err := it.handle.Derive(index)
	if err != nil {
		it.err = err
		return false
	}

	it.index = index
	it.address = addr
	it.next++
	return true
}

// Index returns the index of the current address.
func (it *AddressIterator) Index() uint32 {
	return it.index
}

// Address returns the current address.
func (it *AddressIterator) Address() string {
	return it.address
}

// Err returns the error that stopped the iteration, if any.
func (it *AddressIterator) Err() error {
	return it.err
}
