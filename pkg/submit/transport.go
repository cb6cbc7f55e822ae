package submit

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// Transport posts one JSON payload to one engine endpoint and reports the
// HTTP status. Errors are transport-level failures (connect, timeout);
// non-2xx statuses are returned, not wrapped into errors.
type Transport interface {
	Post(ctx context.Context, endpoint string, body []byte) (int, error)
}

type httpTransport struct {
	client  *fasthttp.Client
	timeout time.Duration
}

// NewTransport creates the fasthttp-backed transport used for real runs.
func NewTransport(timeout time.Duration) Transport {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &httpTransport{
		client: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxConnsPerHost:     100,
			MaxIdleConnDuration: 90 * time.Second,
		},
		timeout: timeout,
	}
}

func (t *httpTransport) Post(ctx context.Context, endpoint string, body []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json; charset=utf-8")
	req.SetBody(body)

	if err := t.client.DoTimeout(req, resp, t.timeout); err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}

	return resp.StatusCode(), nil
}
