package esplora

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tdex-network/xpub-balance/pkg/explorer"
	"github.com/tdex-network/xpub-balance/pkg/httputil"
	"go.uber.org/ratelimit"
)

const (
	// DefaultRequestTimeout ...
	DefaultRequestTimeout = 15 * time.Second
)

var (
	// ErrNullURL ...
	ErrNullURL = errors.New("esplora url must not be null")
	// ErrInvalidRateLimit ...
	ErrInvalidRateLimit = errors.New("requests per second must not be negative")
)

type esplora struct {
	apiURL  string
	client  *httputil.Client
	limiter ratelimit.Limiter
}

// ServiceOpts is the struct given to NewService method
type ServiceOpts struct {
	APIURL string
	// RequestTimeout defaults to DefaultRequestTimeout if not defined.
	RequestTimeout time.Duration
	// RequestsPerSecond caps the rate of outgoing requests, 0 means unlimited.
	RequestsPerSecond int
}

func (o ServiceOpts) validate() error {
	if len(strings.TrimSpace(o.APIURL)) <= 0 {
		return ErrNullURL
	}
	if o.RequestsPerSecond < 0 {
		return ErrInvalidRateLimit
	}
	return nil
}

// NewService returns a new esplora service as an explorer.Service interface.
// The service is health-checked before being returned.
func NewService(ctx context.Context, opts ServiceOpts) (explorer.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	reqTimeout := opts.RequestTimeout
	if reqTimeout <= 0 {
		reqTimeout = DefaultRequestTimeout
	}
	limiter := ratelimit.NewUnlimited()
	if opts.RequestsPerSecond > 0 {
		limiter = ratelimit.New(opts.RequestsPerSecond)
	}

	service := &esplora{
		apiURL:  strings.TrimRight(strings.TrimSpace(opts.APIURL), "/"),
		client:  httputil.NewClient(reqTimeout),
		limiter: limiter,
	}

	if err := service.healthCheck(ctx); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}

	return service, nil
}

func (e *esplora) healthCheck(ctx context.Context) error {
	_, err := e.GetBlockHeight(ctx)
	return err
}

// get sends a rate limited GET request for the given path and returns the
// response body.
func (e *esplora) get(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e.limiter.Take()

	url := fmt.Sprintf("%s%s", e.apiURL, path)
	status, resp, err := e.client.NewHTTPRequest(
		ctx, http.MethodGet, url, "", nil,
	)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf(
			"unexpected status %d: %s", status, strings.TrimSpace(resp),
		)
	}

	return resp, nil
}
