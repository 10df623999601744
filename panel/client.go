// Package panel talks to the ticket panel backend: agents, transfers, reopenings and
// ticket e-mails. Read-mostly lookups go through per-kind expiring caches.
package panel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/time/rate"

	"github.com/moyoez/ticketpanel-go/cache"
	"github.com/moyoez/ticketpanel-go/tool"
	"github.com/moyoez/ticketpanel-go/types"
)

const (
	agentsCacheKey = "agents"
	// maxResponseBody caps what is read from the backend for a single reply.
	maxResponseBody = 8 << 20
)

// Options configures a Client. Zero TTLs fall back to the panel defaults.
type Options struct {
	BaseURL           string
	HTTPClient        *http.Client
	RequestsPerSecond float64 // 0 disables rate limiting
	TTLs              tool.CacheTTLs
	ReopenDaysLimit   int
	Clock             cache.Clock
	Notifier          types.NotifyHub
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	ttls       tool.CacheTTLs
	reopenDays int
	notifier   types.NotifyHub

	agents    *cache.Cache[string, []types.Agent]
	transfers *cache.Cache[string, []types.Transfer]
	reopen    *cache.Cache[string, types.ReopenCheckResult]
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = tool.GetHttpClient()
	}
	ttls := opts.TTLs
	if ttls.Agents <= 0 {
		ttls.Agents = 30 * time.Second
	}
	if ttls.Transfers <= 0 {
		ttls.Transfers = time.Minute
	}
	if ttls.Reopen <= 0 {
		ttls.Reopen = 5 * time.Minute
	}
	if ttls.RefreshInterval <= 0 {
		ttls.RefreshInterval = 5 * time.Minute
	}
	reopenDays := opts.ReopenDaysLimit
	if reopenDays <= 0 {
		reopenDays = 7
	}

	var cacheOpts []cache.Option
	if opts.Clock != nil {
		cacheOpts = append(cacheOpts, cache.WithClock(opts.Clock))
	}

	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		ttls:       ttls,
		reopenDays: reopenDays,
		notifier:   opts.Notifier,
		agents:     cache.New[string, []types.Agent](cacheOpts...),
		transfers:  cache.New[string, []types.Transfer](cacheOpts...),
		reopen:     cache.New[string, types.ReopenCheckResult](cacheOpts...),
	}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond) + 5
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c
}

// ClearCaches drops every cached lookup.
func (c *Client) ClearCaches() {
	c.agents.Clear()
	c.transfers.Clear()
	c.reopen.Clear()
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// doJSON sends body (if any) as JSON and decodes the reply into out (if any).
func (c *Client) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	if err := c.wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// send executes req and decodes the reply. Non-2xx replies and replies whose
// status field is "error" become an *APIError.
func (c *Client) send(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return fmt.Errorf("%s %s cancelled: %w", req.Method, req.URL.Path, ctxErr)
		}
		return fmt.Errorf("%s %s failed: %w", req.Method, req.URL.Path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close response body: %v", err)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	tool.DefaultLogger.Debugf("[Panel] %s %s -> %d (%d bytes)", req.Method, req.URL.Path, resp.StatusCode, len(data))

	var envelope types.StatusEnvelope
	if len(data) > 0 {
		// error bodies are not always JSON; the envelope is best effort
		_ = sonic.Unmarshal(data, &envelope)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return newAPIError(resp.StatusCode, envelope, resp.Status)
	}
	if envelope.Status == "error" {
		return newAPIError(resp.StatusCode, envelope, "backend reported an error")
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", req.URL.Path, err)
	}
	return nil
}

func (c *Client) notify(n *types.Notification) {
	if c.notifier != nil {
		c.notifier.Broadcast(n)
	}
}
