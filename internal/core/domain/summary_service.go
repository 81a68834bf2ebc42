package domain

import "github.com/tdex-network/xpub-balance/pkg/wallet"

// Aggregate sums balances and transaction counts of both the receive and the
// change summaries.
func Aggregate(receive, change []AddressSummary) AggregateResult {
	var res AggregateResult
	for _, summaries := range [][]AddressSummary{receive, change} {
		for _, s := range summaries {
			res.Balance += s.Balance()
			res.TxCount += s.TxCount
		}
	}
	return res
}

// Details returns the display rows for indexes in [start, end] of the given
// branch, where summaries[i] belongs to index offset+i. Indexes not covered
// by the list are omitted.
func Details(
	summaries []AddressSummary,
	branch wallet.Branch,
	offset, start, end uint32,
) []AddressDetail {
	first := uint64(offset)
	last := first + uint64(len(summaries))
	from, to := uint64(start), uint64(end)+1
	if from < first {
		from = first
	}
	if to > last {
		to = last
	}
	if from >= to {
		return []AddressDetail{}
	}

	details := make([]AddressDetail, 0, to-from)
	for i := from; i < to; i++ {
		s := summaries[i-first]
		details = append(details, AddressDetail{
			Branch:  branch,
			Index:   uint32(i),
			Address: s.Address,
			Balance: s.Balance(),
			TxCount: s.TxCount,
		})
	}
	return details
}
