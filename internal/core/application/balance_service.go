package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/xpub-balance/internal/core/domain"
	"github.com/tdex-network/xpub-balance/pkg/explorer"
	"github.com/tdex-network/xpub-balance/pkg/wallet"
)

var (
	// ErrMissingExtendedKey ...
	ErrMissingExtendedKey = errors.New("extended public key is missing")
)

// QueryOpts are the parameters of a single balance or address query.
type QueryOpts struct {
	ExtendedKey string
	Network     wallet.Network
	// Start and End delimit the inclusive range of indexes to display.
	Start uint32
	End   uint32
	// N is the number of indexes per chain considered for the totals.
	N uint32
	// Change selects the internal chain for display.
	Change bool
}

// Normalize returns a copy of the options with End clamped to Start if
// smaller.
func (o QueryOpts) Normalize() QueryOpts {
	if o.End < o.Start {
		o.End = o.Start
	}
	return o
}

// Validate checks the options once normalized.
func (o QueryOpts) Validate() error {
	if len(strings.TrimSpace(o.ExtendedKey)) <= 0 {
		return ErrMissingExtendedKey
	}
	if o.End < o.Start {
		return fmt.Errorf("end index %d is lower than start %d", o.End, o.Start)
	}
	if o.End > wallet.MaxIndex {
		return fmt.Errorf("invalid end index: %w", wallet.ErrIndexOutOfRange)
	}
	if uint64(o.N) > uint64(wallet.MaxIndex)+1 {
		return fmt.Errorf("invalid number of indexes: %w", wallet.ErrIndexOutOfRange)
	}
	return nil
}

// Branch returns the chain selected for display.
func (o QueryOpts) Branch() wallet.Branch {
	if o.Change {
		return wallet.Internal
	}
	return wallet.External
}

// BalanceReport holds the display rows and the totals computed over the
// first N indexes of both chains.
type BalanceReport struct {
	Details []domain.AddressDetail
	Totals  domain.AggregateResult
}

type BalanceService interface {
	// ListAddresses derives the addresses of the display range one at a time
	// and passes them to visit, without querying the explorer. It stops at the
	// first error returned by visit.
	ListAddresses(
		ctx context.Context,
		opts QueryOpts,
		visit func(domain.AddressDetail) error,
	) error
	// GetBalance derives, fetches and aggregates the account balance.
	GetBalance(ctx context.Context, opts QueryOpts) (*BalanceReport, error)
}

type balanceService struct {
	explorerSvc    func(ctx context.Context) (explorer.Service, error)
	concurrency    int
	includeMempool bool
}

func NewBalanceService(
	explorerSvc func(ctx context.Context) (explorer.Service, error),
	concurrency int,
	includeMempool bool,
) BalanceService {
	return &balanceService{explorerSvc, concurrency, includeMempool}
}

func (s *balanceService) ListAddresses(
	ctx context.Context,
	opts QueryOpts,
	visit func(domain.AddressDetail) error,
) error {
	opts = opts.Normalize()
	if err := opts.Validate(); err != nil {
		return err
	}

	account, err := decodeAccount(opts)
	if err != nil {
		return err
	}

	branch := opts.Branch()
	it := account.Chain(branch).DeriveRange(opts.Start, opts.End-opts.Start+1)
	for it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := visit(domain.AddressDetail{
			Branch:  branch,
			Index:   it.Index(),
			Address: it.Address(),
		}); err != nil {
			return err
		}
	}
	return it.Err()
}

func (s *balanceService) GetBalance(
	ctx context.Context,
	opts QueryOpts,
) (*BalanceReport, error) {
	opts = opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	account, err := decodeAccount(opts)
	if err != nil {
		return nil, err
	}

	receive, err := account.External().Addresses(0, opts.N)
	if err != nil {
		return nil, err
	}
	change, err := account.Internal().Addresses(0, opts.N)
	if err != nil {
		return nil, err
	}

	// Displayed indexes beyond the aggregation scope are fetched in the same
	// batch but left out of the totals.
	branch := opts.Branch()
	extraStart := opts.Start
	if extraStart < opts.N {
		extraStart = opts.N
	}
	var extra []string
	if opts.End >= extraStart {
		extra, err = account.Chain(branch).Addresses(
			extraStart, opts.End-extraStart+1,
		)
		if err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"scheme":  account.Scheme().Name(),
		"receive": len(receive),
		"change":  len(change),
		"extra":   len(extra),
	}).Debug("derived addresses")

	explorerSvc, err := s.explorerSvc(ctx)
	if err != nil {
		return nil, err
	}

	batch := make([]string, 0, len(receive)+len(change)+len(extra))
	batch = append(batch, receive...)
	batch = append(batch, change...)
	batch = append(batch, extra...)

	fetcher := NewFetcher(explorerSvc, s.concurrency, s.includeMempool)
	summaries, err := fetcher.FetchAll(ctx, batch)
	if err != nil {
		return nil, err
	}

	n := len(receive)
	receiveSummaries := summaries[:n]
	changeSummaries := summaries[n : 2*n]
	extraSummaries := summaries[2*n:]

	displayed := receiveSummaries
	if branch == wallet.Internal {
		displayed = changeSummaries
	}
	details := domain.Details(displayed, branch, 0, opts.Start, opts.End)
	details = append(
		details,
		domain.Details(extraSummaries, branch, extraStart, opts.Start, opts.End)...,
	)

	return &BalanceReport{
		Details: details,
		Totals:  domain.Aggregate(receiveSummaries, changeSummaries),
	}, nil
}

func decodeAccount(opts QueryOpts) (*wallet.Account, error) {
	return wallet.DecodeAccount(wallet.DecodeAccountOpts{
		ExtendedKey: opts.ExtendedKey,
		Network:     opts.Network,
	})
}
