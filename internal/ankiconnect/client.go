package ankiconnect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"golang.org/x/exp/slog"
)

// APIVersion - версия протокола AnkiConnect, с которой работает клиент.
const APIVersion = 6

// Config - параметры подключения к AnkiConnect.
type Config struct {
	// Address - host:port или полный URL, например localhost:8765.
	Address string
	// APIKey передается в поле key, если в AnkiConnect включен apiKey.
	APIKey string
	// Timeout 0 оставляет таймаут транспорта по умолчанию.
	Timeout time.Duration
}

type request struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params"`
	Key     string `json:"key,omitempty"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// Client is a synchronous AnkiConnect client. Every call is a single POST
// and nothing is retried.
type Client struct {
	client  *http.Client
	log     *slog.Logger
	baseURL string
	apiKey  string
}

func NewClient(cfg Config, log *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Address) == "" {
		return nil, ErrEmptyAddress
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 2,
		},
	}

	baseURL := cfg.Address
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}

	return &Client{
		client:  client,
		log:     log.With("component", "anki_connect"),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
	}, nil
}

// Address returns the endpoint the client talks to.
func (c *Client) Address() string {
	return c.baseURL
}

// Invoke calls action with params and decodes the result into result, which
// may be nil when the result is not needed.
func (c *Client) Invoke(ctx context.Context, action string, params any, result any) error {
	if params == nil {
		params = struct{}{}
	}

	body, err := json.Marshal(request{
		Action:  action,
		Version: APIVersion,
		Params:  params,
		Key:     c.apiKey,
	})
	if err != nil {
		return &RequestError{Action: action, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return &RequestError{Action: action, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug("invoking action", "action", action)

	resp, err := c.client.Do(req)
	if err != nil {
		if isDialError(err) {
			c.log.Error("failed to connect to AnkiConnect", "address", c.baseURL, "error", err)
			return &ConnectionError{Address: c.baseURL, Err: err}
		}
		c.log.Error("request to AnkiConnect failed", "action", action, "error", err)
		return &RequestError{Action: action, Err: err}
	}

	return c.parseResponse(action, resp, result)
}

func (c *Client) parseResponse(action string, resp *http.Response, result any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Action: action, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return &RequestError{Action: action, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var envelope response
	if err := json.Unmarshal(data, &envelope); err != nil {
		return &RequestError{Action: action, Err: fmt.Errorf("%w: %v", ErrMalformedResult, err)}
	}

	if envelope.Error != nil && *envelope.Error != "" {
		c.log.Error("action failed", "action", action, "error", *envelope.Error)
		return &RequestError{Action: action, Message: *envelope.Error}
	}

	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return &RequestError{Action: action, Err: fmt.Errorf("%w: %v", ErrMalformedResult, err)}
		}
	}

	c.log.Debug("action completed", "action", action)
	return nil
}

// isDialError separates "nothing listens there" from failures of an
// established exchange. Dial timeouts count as request errors.
func isDialError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
