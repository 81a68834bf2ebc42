package application_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/xpub-balance/pkg/explorer"
)

// **** Explorer ****

type mockExplorer struct {
	mock.Mock
}

func (m *mockExplorer) GetAddressInfo(
	ctx context.Context,
	address string,
) (explorer.AddressInfo, error) {
	args := m.Called(ctx, address)

	var res explorer.AddressInfo
	if a := args.Get(0); a != nil {
		res = a.(explorer.AddressInfo)
	}
	return res, args.Error(1)
}

func (m *mockExplorer) GetBlockHeight(ctx context.Context) (int, error) {
	args := m.Called(ctx)

	var res int
	if a := args.Get(0); a != nil {
		res = a.(int)
	}
	return res, args.Error(1)
}

// **** AddressInfo ****

type mockAddressInfo struct {
	address string
	chain   explorer.AddressStats
	mempool explorer.AddressStats
}

func (i mockAddressInfo) Address() string {
	return i.address
}

func (i mockAddressInfo) ChainStats() explorer.AddressStats {
	return i.chain
}

func (i mockAddressInfo) MempoolStats() explorer.AddressStats {
	return i.mempool
}

// **** Fake explorer ****

// fakeExplorer serves address summaries from memory and keeps track of the
// number of queries in flight.
type fakeExplorer struct {
	lock    sync.Mutex
	chain   map[string]explorer.AddressStats
	mempool map[string]explorer.AddressStats
	failing map[string]error
	delay   func(address string) time.Duration

	calls       int32
	inflight    int32
	maxInflight int32
	queried     []string
}

func newFakeExplorer() *fakeExplorer {
	return &fakeExplorer{
		chain:   make(map[string]explorer.AddressStats),
		mempool: make(map[string]explorer.AddressStats),
		failing: make(map[string]error),
	}
}

func (f *fakeExplorer) GetAddressInfo(
	ctx context.Context,
	address string,
) (explorer.AddressInfo, error) {
	atomic.AddInt32(&f.calls, 1)
	current := atomic.AddInt32(&f.inflight, 1)
	defer atomic.AddInt32(&f.inflight, -1)
	for {
		max := atomic.LoadInt32(&f.maxInflight)
		if current <= max ||
			atomic.CompareAndSwapInt32(&f.maxInflight, max, current) {
			break
		}
	}

	f.lock.Lock()
	f.queried = append(f.queried, address)
	f.lock.Unlock()

	if f.delay != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay(address)):
		}
	}

	if err, ok := f.failing[address]; ok {
		return nil, err
	}
	return mockAddressInfo{
		address: address,
		chain:   f.chain[address],
		mempool: f.mempool[address],
	}, nil
}

func (f *fakeExplorer) GetBlockHeight(_ context.Context) (int, error) {
	return 1, nil
}

func (f *fakeExplorer) numOfCalls() int {
	return int(atomic.LoadInt32(&f.calls))
}
