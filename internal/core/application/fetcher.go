package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/xpub-balance/internal/core/domain"
	"github.com/tdex-network/xpub-balance/pkg/explorer"
	"golang.org/x/sync/errgroup"
)

// AddressQueryError is returned by FetchAll when the query for one of the
// addresses of the batch fails.
type AddressQueryError struct {
	Address string
	Err     error
}

func (e *AddressQueryError) Error() string {
	return fmt.Sprintf("query for address %s failed: %s", e.Address, e.Err)
}

func (e *AddressQueryError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves the summaries of many addresses concurrently.
type Fetcher struct {
	explorerSvc    explorer.Service
	concurrency    int
	includeMempool bool
}

// NewFetcher returns a Fetcher issuing at most concurrency queries at a time.
func NewFetcher(
	explorerSvc explorer.Service,
	concurrency int,
	includeMempool bool,
) *Fetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Fetcher{explorerSvc, concurrency, includeMempool}
}

// FetchAll returns the summaries of the given addresses in the same order.
// The first failing query cancels the others and its error, an
// *AddressQueryError, is returned with no partial result. If ctx is done
// before all queries complete, its error is returned as is.
func (f *Fetcher) FetchAll(
	ctx context.Context,
	addresses []string,
) ([]domain.AddressSummary, error) {
	summaries := make([]domain.AddressSummary, len(addresses))
	if len(addresses) <= 0 {
		return summaries, nil
	}

	start := time.Now()
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(f.concurrency)

	for i, addr := range addresses {
		if gctx.Err() != nil {
			break
		}

		i, addr := i, addr
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			summary, err := f.fetch(gctx, addr)
			if err != nil {
				return &AddressQueryError{addr, err}
			}
			summaries[i] = summary
			return nil
		})
	}

	err := eg.Wait()
	// A stop caused by the caller is not the failure of any address.
	if ctxErr := ctx.Err(); ctxErr != nil {
		if err == nil || errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"addresses": len(addresses),
		"elapsed":   time.Since(start).String(),
	}).Debug("fetched address summaries")

	return summaries, nil
}

func (f *Fetcher) fetch(
	ctx context.Context,
	addr string,
) (domain.AddressSummary, error) {
	info, err := f.explorerSvc.GetAddressInfo(ctx, addr)
	if err != nil {
		return domain.AddressSummary{}, err
	}

	stats := info.ChainStats()
	summary := domain.AddressSummary{
		Address: addr,
		Funded:  stats.FundedTxoSum,
		Spent:   stats.SpentTxoSum,
		TxCount: stats.TxCount,
	}
	if f.includeMempool {
		mempool := info.MempoolStats()
		summary.Funded += mempool.FundedTxoSum
		summary.Spent += mempool.SpentTxoSum
		summary.TxCount += mempool.TxCount
	}
	return summary, nil
}
