package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/klarbill-gateway/internal/errors"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Endpoint paths of the KlarBill backend.
const (
	PathValidateIdentifier = "/validate_identifier"
	PathCustomerName       = "/customer_name"
	PathChat               = "/chat"
	PathLogMessage         = "/log_message"
	PathHealth             = "/health"

	defaultTimeout = 30 * time.Second
	maxErrorBody   = 512
)

// Client calls the KlarBill backend over JSON/HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client (primarily for testing).
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// WithTimeout bounds every backend request.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.http.Timeout = timeout
	}
}

// WithClientCredentials authenticates every request with an OAuth2 client-credentials token.
// It wraps whatever HTTP client was configured before it.
func WithClientCredentials(tokenURL, clientID, clientSecret string) ClientOption {
	return func(c *Client) {
		if tokenURL == "" {
			return
		}
		cc := clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		}
		base := c.http
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		authed := cc.Client(ctx)
		authed.Timeout = base.Timeout
		c.http = authed
	}
}

// New builds a Client for baseURL, e.g. "http://localhost:8000".
func New(baseURL string, options ...ClientOption) (*Client, error) {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, pkgerrors.New("[backend.New] baseURL is required")
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// post sends body as JSON and decodes the response into out (when out is non-nil).
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrapf(err, "[backend %s] marshal request", path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrapf(err, "[backend %s] build request", path)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(req, path, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return pkgerrors.Wrapf(err, "[backend %s] build request", path)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(errors.ErrBackendUnavailable, "[backend %s] %v", path, err)
	}
	defer res.Body.Close()

	log.Debug().Str("path", path).Int("status", res.StatusCode).Dur("took", time.Since(start)).Msg("backend call")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return errors.Wrapf(errors.ErrBackendUnavailable, "[backend %s] status %d: %s", path, res.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.Wrapf(errors.ErrBackendResponse, "[backend %s] decode: %v", path, err)
	}
	return nil
}

func (c *Client) String() string {
	return fmt.Sprintf("backend(%s)", c.baseURL)
}
