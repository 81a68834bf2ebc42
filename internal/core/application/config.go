package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tdex-network/xpub-balance/pkg/explorer"
	"github.com/tdex-network/xpub-balance/pkg/explorer/esplora"
)

var (
	// ErrMissingExplorerURL ...
	ErrMissingExplorerURL = errors.New("explorer url must not be null")
	// ErrInvalidConcurrency ...
	ErrInvalidConcurrency = errors.New("concurrency must be a positive number")
	// ErrInvalidRequestTimeout ...
	ErrInvalidRequestTimeout = errors.New("request timeout must not be negative")
	// ErrInvalidRequestsPerSecond ...
	ErrInvalidRequestsPerSecond = errors.New(
		"requests per second must not be negative",
	)
)

type Config struct {
	ExplorerURL       string
	RequestTimeout    time.Duration
	RequestsPerSecond int
	Concurrency       int
	IncludeMempool    bool

	// Explorer, if defined, is used in place of the esplora client.
	Explorer explorer.Service

	lock    sync.Mutex
	balance BalanceService
}

func (c *Config) Validate() error {
	if c.Explorer == nil && len(c.ExplorerURL) <= 0 {
		return ErrMissingExplorerURL
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.RequestTimeout < 0 {
		return ErrInvalidRequestTimeout
	}
	if c.RequestsPerSecond < 0 {
		return ErrInvalidRequestsPerSecond
	}
	return nil
}

func (c *Config) BalanceService() BalanceService {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.balance == nil {
		c.balance = NewBalanceService(
			c.explorerService, c.Concurrency, c.IncludeMempool,
		)
	}
	return c.balance
}

// explorerService creates the esplora client the first time it's required so
// that offline queries never reach the network.
func (c *Config) explorerService(ctx context.Context) (explorer.Service, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.Explorer == nil {
		svc, err := esplora.NewService(ctx, esplora.ServiceOpts{
			APIURL:            c.ExplorerURL,
			RequestTimeout:    c.RequestTimeout,
			RequestsPerSecond: c.RequestsPerSecond,
		})
		if err != nil {
			return nil, err
		}
		c.Explorer = svc
	}
	return c.Explorer, nil
}
