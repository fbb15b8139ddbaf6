// Package client is a Go client for the BizHub REST API. It classifies
// every failure into an APIError, retries network failures, and keeps a
// best-effort response cache that is invalidated on every write.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bizhub/backend/internal/infrastructure/cache"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds one HTTP attempt
	DefaultTimeout = 15 * time.Second
	// DefaultMaxRetries is the number of retries after the first attempt
	DefaultMaxRetries = 2
	// DefaultRetryInterval is the first backoff wait
	DefaultRetryInterval = 500 * time.Millisecond

	maxResponseBytes = 8 << 20
)

// Client talks to one BizHub API. It is safe for concurrent use.
type Client struct {
	baseURL       string
	http          *http.Client
	cache         *ResponseCache
	store         cache.Store
	session       *Session
	logger        *zap.Logger
	maxRetries    uint64
	retryInterval time.Duration

	Customers *Resource[CustomerResponse, CustomerInput, CustomerInput]
	Products  *Resource[ProductResponse, ProductInput, ProductUpdate]
	Sales     *Resource[SaleResponse, SaleInput, SaleUpdate]
	Invoices  *Resource[InvoiceResponse, InvoiceInput, InvoiceInput]
	Expenses  *Resource[ExpenseResponse, ExpenseInput, ExpenseInput]
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-attempt timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithStore backs the response cache with store
func WithStore(store cache.Store) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithSession shares a session between clients
func WithSession(s *Session) Option {
	return func(c *Client) {
		if s != nil {
			c.session = s
		}
	}
}

// WithLogger sets the logger used for cache and retry diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRetry sets how many times a retryable failure is repeated and the
// first backoff wait
func WithRetry(maxRetries uint64, initial time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		if initial > 0 {
			c.retryInterval = initial
		}
	}
}

// New creates a client for the API mounted at baseURL, e.g.
// "http://localhost:8080/api/v1"
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		http:          &http.Client{Timeout: DefaultTimeout},
		session:       NewSession(),
		logger:        zap.NewNop(),
		maxRetries:    DefaultMaxRetries,
		retryInterval: DefaultRetryInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = NewResponseCache(c.store, c.logger)
	// A new or expired session must never see the previous user's data
	c.session.OnReset(func() {
		c.cache.Invalidate(context.Background(), "")
	})

	c.Customers = newResource[CustomerResponse, CustomerInput, CustomerInput](c, "/customers", cache.ClassCustomers, "")
	c.Products = newResource[ProductResponse, ProductInput, ProductUpdate](c, "/products", cache.ClassProducts, resourceProducts)
	c.Sales = newResource[SaleResponse, SaleInput, SaleUpdate](c, "/sales", ClassSales, resourceSales, cache.ClassProducts, cache.ClassCustomers)
	c.Invoices = newResource[InvoiceResponse, InvoiceInput, InvoiceInput](c, "/invoices", ClassInvoices, resourceInvoices)
	c.Expenses = newResource[ExpenseResponse, ExpenseInput, ExpenseInput](c, "/expenses", ClassExpenses, resourceExpenses)
	return c
}

// Session returns the client's session
func (c *Client) Session() *Session {
	return c.session
}

// Cache returns the client's response cache
func (c *Client) Cache() *ResponseCache {
	return c.cache
}

type reply struct {
	status int
	env    *Envelope
}

// cachedReply is what the response cache stores for a GET
type cachedReply struct {
	Data json.RawMessage `json:"data"`
	Meta *Meta           `json:"meta,omitempty"`
}

// get reads path through the response cache under key and decodes the
// payload into out
func (c *Client) get(ctx context.Context, key, path string, query url.Values, out any) (*Meta, error) {
	raw, err := c.cache.Fetch(ctx, key, 0, func(ctx context.Context) ([]byte, error) {
		r, err := c.do(ctx, http.MethodGet, path, query, nil)
		if err != nil {
			return nil, err
		}
		return json.Marshal(cachedReply{Data: r.env.Data, Meta: r.env.Meta})
	})
	if err != nil {
		return nil, err
	}
	var cached cachedReply
	if err := json.Unmarshal(raw, &cached); err != nil {
		// A corrupt entry is dropped and read live next time
		c.cache.Invalidate(ctx, key)
		return nil, protocolError(err)
	}
	if err := decodeData(cached.Data, out); err != nil {
		return nil, err
	}
	return cached.Meta, nil
}

// send performs an uncached call and decodes the payload into out when
// out is not nil
func (c *Client) send(ctx context.Context, method, path string, body, out any) (*reply, error) {
	r, err := c.do(ctx, method, path, nil, body)
	if err != nil {
		return nil, err
	}
	if out != nil {
		if err := decodeData(r.env.Data, out); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func decodeData(data json.RawMessage, out any) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return protocolError(err)
	}
	return nil
}

func protocolError(err error) *APIError {
	return &APIError{Kind: KindProtocol, Message: MsgProtocol, Err: err}
}

// do sends one request, retrying retryable failures with exponential
// backoff. The body is encoded once and replayed on every attempt. Every
// returned error is an *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*reply, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, &APIError{Kind: KindValidation, Message: MsgValidation, Err: err}
		}
	}
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)
	r, err := backoff.RetryNotifyWithData(func() (*reply, error) {
		r, apiErr := c.attempt(ctx, method, target, payload)
		if apiErr == nil {
			return r, nil
		}
		if apiErr.Retryable(method) {
			return nil, apiErr
		}
		return nil, backoff.Permanent(apiErr)
	}, policy, func(err error, wait time.Duration) {
		c.logger.Debug("Retrying API call",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
	if err != nil {
		apiErr := Classify(err)
		if apiErr.Kind == KindUnauthorized {
			c.session.Reset()
		}
		return nil, apiErr
	}
	return r, nil
}

func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func (c *Client) attempt(ctx context.Context, method, target string, payload []byte) (*reply, *APIError) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, protocolError(err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: MsgNetwork, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Status: resp.StatusCode, Message: MsgNetwork, Err: err}
	}
	env, decodeErr := DecodeEnvelope(raw)
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, statusError(resp.StatusCode, env, decodeErr)
	}
	if decodeErr != nil {
		apiErr := Classify(decodeErr)
		apiErr.Status = resp.StatusCode
		return nil, apiErr
	}
	if !env.Success {
		return nil, statusError(resp.StatusCode, env, nil)
	}
	return &reply{status: resp.StatusCode, env: env}, nil
}
