package httputil

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxResponseSize caps the body read from any response, 2MiB.
const maxResponseSize = 2 << 20

// Client is a thin wrapper of http.Client returning status code and body of
// every request.
type Client struct {
	*http.Client
}

// NewClient returns a client whose requests time out after requestTimeout.
func NewClient(requestTimeout time.Duration) *Client {
	return &Client{&http.Client{Timeout: requestTimeout}}
}

// NewHTTPRequest builds and sends a request bound to the given context.
// @param method <string>: http method
// @param url <string>: URL http to call
// @return <int>, <string>, error
func (c *Client) NewHTTPRequest(
	ctx context.Context,
	method, url, bodyString string,
	header map[string]string,
) (int, string, error) {
	var body io.Reader
	if bodyString != "" {
		body = strings.NewReader(bodyString)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, "", err
	}

	for key, value := range header {
		req.Header.Set(key, value)
	}

	return c.doRequest(req)
}

func (c *Client) doRequest(req *http.Request) (int, string, error) {
	rs, err := c.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer rs.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(rs.Body, maxResponseSize))
	if err != nil {
		return -1, "", err
	}
	return rs.StatusCode, string(bodyBytes), nil
}
