package esplora

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tdex-network/xpub-balance/pkg/explorer"
)

func (e *esplora) GetAddressInfo(
	ctx context.Context,
	address string,
) (explorer.AddressInfo, error) {
	resp, err := e.get(ctx, fmt.Sprintf("/address/%s", url.PathEscape(address)))
	if err != nil {
		return nil, err
	}

	info, err := NewAddressInfoFromJSON(resp)
	if err != nil {
		return nil, err
	}
	if info.Address() != address {
		return nil, fmt.Errorf(
			"%w: expected info for address %s, got %s",
			explorer.ErrMalformedResponse, address, info.Address(),
		)
	}

	return info, nil
}
