/* Copyright 2025 NextRead Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package client provides interfaces for interacting with the NextRead
// server and the data structures for responses
package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nextread/nextread/pkg/cli/context"
	"github.com/nextread/nextread/pkg/cli/log"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// ErrAuthExpired is an error for a session that could not be refreshed. The
// session has been torn down by the time it is returned.
var ErrAuthExpired = errors.New("session expired")

// ErrMalformedResponse is an error for a response body that could not be
// parsed as the expected JSON
var ErrMalformedResponse = errors.New("malformed response")

// RequestError represents a non-2xx response from the server, carrying the
// status and a human-readable message
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf(`response %d "%s"`, e.StatusCode, e.Message)
}

// Session is the part of the session the client depends on: the bearer
// token and the refresh protocol.
type Session interface {
	AccessToken() string
	Refresh() error
	Clear() error
}

const (
	// clientRateLimitPerSecond is the max requests per second the client will make
	clientRateLimitPerSecond = 50
	// clientRateLimitBurst is the burst capacity for rate limiting
	clientRateLimitBurst = 100
)

// rateLimitedTransport wraps an http.RoundTripper with rate limiting
type rateLimitedTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// NewRateLimitedHTTPClient creates an HTTP client with rate limiting
func NewRateLimitedHTTPClient() *http.Client {
	interval := time.Second / time.Duration(clientRateLimitPerSecond)

	transport := &rateLimitedTransport{
		transport: http.DefaultTransport,
		limiter:   rate.NewLimiter(rate.Every(interval), clientRateLimitBurst),
	}
	return &http.Client{
		Transport: transport,
	}
}

// Client makes requests against the NextRead API
type Client struct {
	endpoint   string
	version    string
	clientID   string
	httpClient *http.Client
	session    Session
}

// New returns a client for the API endpoint configured in the given context
func New(ctx context.Ctx, sess Session) *Client {
	hc := ctx.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	return &Client{
		endpoint:   ctx.APIEndpoint,
		version:    ctx.Version,
		clientID:   ctx.ClientID,
		httpClient: hc,
		session:    sess,
	}
}

func (c *Client) newReq(method, path, body string) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s%s", c.endpoint, path)
	req, err := http.NewRequest(method, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "constructing http request")
	}

	req.Header.Set("CLI-Version", c.version)
	if c.clientID != "" {
		req.Header.Set("X-Client-ID", c.clientID)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if token := c.session.AccessToken(); token != "" {
		credential := fmt.Sprintf("Bearer %s", token)
		req.Header.Set("Authorization", credential)
	}

	return req, nil
}

// send performs a single http round trip without interpreting the status
func (c *Client) send(method, path, body string) (*http.Response, error) {
	req, err := c.newReq(method, path, body)
	if err != nil {
		return nil, errors.Wrap(err, "getting request")
	}

	log.Debug("HTTP %s %s\n", method, path)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "making http request")
	}

	log.Debug("HTTP %d %s\n", res.StatusCode, res.Status)

	return res, nil
}

// do performs an authorized request and decodes the response into out, if
// given. On a 401 it runs the refresh protocol: exactly one refresh and
// exactly one retry of the original request. If the refresh fails, or the
// retried request is still unauthorized, the session is torn down and
// ErrAuthExpired is returned. Only a 401 triggers the protocol.
func (c *Client) do(method, path, body string, out interface{}) error {
	res, err := c.send(method, path, body)
	if err != nil {
		return err
	}

	if res.StatusCode == http.StatusUnauthorized {
		drain(res)

		if err := c.session.Refresh(); err != nil {
			c.session.Clear()
			return ErrAuthExpired
		}

		res, err = c.send(method, path, body)
		if err != nil {
			return err
		}
		if res.StatusCode == http.StatusUnauthorized {
			drain(res)
			c.session.Clear()
			return ErrAuthExpired
		}
	}

	return readResponse(res, out)
}

// readResponse interprets a non-401 response: a structured error for non-2xx
// statuses, an empty result for 204, a JSON decode otherwise.
func readResponse(res *http.Response, out interface{}) error {
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return respError(res)
	}

	if res.StatusCode == http.StatusNoContent || out == nil {
		io.Copy(io.Discard, res.Body)
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.Wrapf(ErrMalformedResponse, "decoding response payload: %v", err)
	}

	return nil
}

// respError decodes the server's error payload. The server reports errors as
// {"detail": "..."}; if the body is absent or not of that shape, a generic
// message carrying the status is used.
func respError(res *http.Response) error {
	message := fmt.Sprintf("Error %d", res.StatusCode)

	body, err := io.ReadAll(res.Body)
	if err == nil && len(body) > 0 {
		var payload struct {
			Detail json.RawMessage `json:"detail"`
		}
		if jsonErr := json.Unmarshal(body, &payload); jsonErr == nil && len(payload.Detail) > 0 {
			var detail string
			if jsonErr := json.Unmarshal(payload.Detail, &detail); jsonErr == nil && detail != "" {
				message = detail
			}
		}
	}

	return &RequestError{
		StatusCode: res.StatusCode,
		Message:    message,
	}
}

func drain(res *http.Response) {
	io.Copy(io.Discard, res.Body)
	res.Body.Close()
}

func marshalPayload(payload interface{}) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "marshaling payload")
	}

	return string(b), nil
}
