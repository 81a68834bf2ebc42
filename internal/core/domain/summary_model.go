package domain

import "github.com/tdex-network/xpub-balance/pkg/wallet"

// AddressSummary is the funding/spending summary of an address as reported
// by the chain indexing service. Amounts are expressed in the smallest unit of
// the currency (satoshis).
type AddressSummary struct {
	Address string
	Funded  int64
	Spent   int64
	TxCount int64
}

// Balance returns funded minus spent. It can be negative for transient
// states reported by the indexer.
func (s AddressSummary) Balance() int64 {
	return s.Funded - s.Spent
}

// AggregateResult holds the totals computed over every summary in scope.
type AggregateResult struct {
	Balance int64
	TxCount int64
}

// AddressDetail is a read-only display row for a single derived address.
type AddressDetail struct {
	Branch  wallet.Branch
	Index   uint32
	Address string
	Balance int64
	TxCount int64
}

// Path returns the branch/index label of the address.
func (d AddressDetail) Path() string {
	return wallet.NewDerivationPath(d.Branch, d.Index).String()
}
