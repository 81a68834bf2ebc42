package explorer

import (
	"context"
	"errors"
)

// AddressStats are the funding and spending counters of an address, either
// for confirmed or for mempool transactions.
type AddressStats struct {
	FundedTxoCount int64
	FundedTxoSum   int64
	SpentTxoCount  int64
	SpentTxoSum    int64
	TxCount        int64
}

// AddressInfo represents the history summary of an address.
type AddressInfo interface {
	Address() string
	ChainStats() AddressStats
	MempoolStats() AddressStats
}

// Service is representation of a read-only chain indexing service that
// allows to fetch address summaries from the blockchain.
type Service interface {
	// GetAddressInfo fetches the funding/spending summary of the given
	// address.
	GetAddressInfo(ctx context.Context, address string) (AddressInfo, error)
	// GetBlockHeight returns the the number of block of the blockchain.
	GetBlockHeight(ctx context.Context) (int, error)
}

// ErrMalformedResponse is returned when the response of the service cannot
// be interpreted.
var ErrMalformedResponse = errors.New("malformed explorer response")
