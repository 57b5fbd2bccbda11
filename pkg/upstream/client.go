/*
 * stream-gen is a project to resolve playable IPTV stream URLs from a live schedule.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lucasduport/stream-gen/pkg/utils"
)

// maxBodySize caps how much of an upstream body is read
const maxBodySize = 10 * 1024 * 1024

var (
	// ErrNetwork covers transport failures, including timeouts
	ErrNetwork = errors.New("network error")
	// ErrStatus is returned for non-2xx responses
	ErrStatus = errors.New("unexpected HTTP status")
)

// Result is the outcome of a single upstream GET
type Result struct {
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

// OK reports whether the request succeeded with a 2xx status
func (r Result) OK() bool {
	return r.Err == nil
}

// Client performs single-attempt GET requests bounded by a timeout. It never
// retries: a failed attempt is reported to the caller immediately.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

// New creates a client whose requests give up after timeout
func New(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		timeout: timeout,
	}
}

// Timeout returns the per-request timeout
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Get fetches rawURL with the given headers. Failures are reported through
// Result.Err, wrapping ErrNetwork or ErrStatus.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) Result {
	res := Result{URL: rawURL}
	requestID := uuid.New().String()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		res.Err = fmt.Errorf("%w: build request: %v", ErrNetwork, err)
		return res
	}
	utils.MergeHeader(req.Header, header)
	if req.Header.Get("Connection") == "close" {
		req.Close = true
	}

	utils.DebugLog("[%s] GET %s", requestID, rawURL)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		utils.DebugLog("[%s] request failed after %s: %v", requestID, time.Since(start), err)
		res.Err = fmt.Errorf("%w: %v", ErrNetwork, err)
		return res
	}
	defer utils.DrainAndClose(resp.Body)

	res.StatusCode = resp.StatusCode
	utils.DebugLog("[%s] HTTP %d in %s", requestID, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		res.Err = fmt.Errorf("%w: %s", ErrStatus, resp.Status)
		return res
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		res.Err = fmt.Errorf("%w: read body: %v", ErrNetwork, err)
		return res
	}
	res.Body = body
	return res
}
