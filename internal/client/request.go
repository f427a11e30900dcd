package client

import (
	"context"
	nethttp "net/http"
	"net/url"
	"time"

	"github.com/fivetwenty-io/zsubs-client/internal/http"
	"github.com/fivetwenty-io/zsubs-client/pkg/zsubs"
)

// send performs one exchange and updates the request metrics and the error
// slot. Every request of the client goes through here.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Response, error) {
	start := time.Now()

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method: method,
		Path:   path,
		Query:  query,
		Body:   body,
	})

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	c.metrics.ObserveRequest(method, status, time.Since(start))
	c.setErr(err)

	return resp, err
}

// request performs an exchange and checks the response envelope. A non-zero
// envelope code is returned as *zsubs.APIError and recorded in the error slot.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, body interface{}) (*zsubs.Envelope, []byte, error) {
	resp, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return nil, nil, err
	}

	env, err := zsubs.ParseEnvelope(resp.Body)
	if err != nil {
		c.setErr(err)

		return nil, nil, err
	}

	return env, resp.Body, nil
}

// Call implements zsubs.Client.Call. Path placeholders are filled from
// params.PathParams.
func (c *Client) Call(ctx context.Context, method, path string, params *zsubs.QueryParams, body *zsubs.Map) (*zsubs.Envelope, error) {
	var pathParams map[string]string
	if params != nil {
		pathParams = params.PathParams
	}

	resolved, err := resolvePath(path, "", nil, pathParams)
	if err != nil {
		return nil, err
	}

	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	env, _, err := c.request(ctx, method, resolved, query, body)
	if err != nil {
		return nil, err
	}

	if method != nethttp.MethodGet {
		c.invalidateCollection(ctx, resolved)
	}

	return env, nil
}

// action posts to an entity action endpoint such as invoices/{id}/void.
func (c *Client) action(ctx context.Context, path string, body interface{}) (*zsubs.Envelope, error) {
	env, _, err := c.request(ctx, nethttp.MethodPost, path, nil, body)

	return env, err
}
