package esplora

import (
	"encoding/json"
	"fmt"

	"github.com/tdex-network/xpub-balance/pkg/explorer"
)

/**** ADDRESS ****/

// addressInfo is the implementation of the explorer's AddressInfo interface
type addressInfo struct {
	Addr    string       `json:"address"`
	Chain   addressStats `json:"chain_stats"`
	Mempool addressStats `json:"mempool_stats"`
}

type addressStats struct {
	FundedTxoCount int64 `json:"funded_txo_count"`
	FundedTxoSum   int64 `json:"funded_txo_sum"`
	SpentTxoCount  int64 `json:"spent_txo_count"`
	SpentTxoSum    int64 `json:"spent_txo_sum"`
	TxCount        int64 `json:"tx_count"`
}

// NewAddressInfoFromJSON is the factory for an AddressInfo given its JSON
// format.
func NewAddressInfoFromJSON(infoJSON string) (explorer.AddressInfo, error) {
	info := &addressInfo{}
	if err := json.Unmarshal([]byte(infoJSON), info); err != nil {
		return nil, fmt.Errorf("%w: %s", explorer.ErrMalformedResponse, err)
	}
	if info.Addr == "" {
		return nil, fmt.Errorf(
			"%w: missing address in response", explorer.ErrMalformedResponse,
		)
	}
	return info, nil
}

func (a *addressInfo) Address() string {
	return a.Addr
}

func (a *addressInfo) ChainStats() explorer.AddressStats {
	return a.Chain.toPortable()
}

func (a *addressInfo) MempoolStats() explorer.AddressStats {
	return a.Mempool.toPortable()
}

func (s addressStats) toPortable() explorer.AddressStats {
	return explorer.AddressStats{
		FundedTxoCount: s.FundedTxoCount,
		FundedTxoSum:   s.FundedTxoSum,
		SpentTxoCount:  s.SpentTxoCount,
		SpentTxoSum:    s.SpentTxoSum,
		TxCount:        s.TxCount,
	}
}
