package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client talks to claimd. It implements the wallet claimer and run-ticket
// interfaces: BeginRun fetches a ticket and Claim spends it.
type Client struct {
	baseURL string
	http    *http.Client

	mu     sync.Mutex
	ticket string
}

// NewClient returns a client for the claimd at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Ready reports whether a claim server is configured.
func (c *Client) Ready() bool {
	return c != nil && c.baseURL != ""
}

// BeginRun requests a new run ticket, replacing any previous one.
func (c *Client) BeginRun(ctx context.Context) error {
	c.mu.Lock()
	c.ticket = ""
	c.mu.Unlock()

	var out TicketResponse
	if err := c.do(ctx, http.MethodPost, "/api/runs", nil, &out); err != nil {
		return fmt.Errorf("requesting run ticket: %w", err)
	}

	c.mu.Lock()
	c.ticket = out.Ticket
	c.mu.Unlock()
	return nil
}

// Claim asks the server to pay the reward for coins to addr under the current
// run ticket. Repeating a claim for the same run returns the original signature.
func (c *Client) Claim(ctx context.Context, addr string, coins int) (string, error) {
	c.mu.Lock()
	ticket := c.ticket
	c.mu.Unlock()
	if ticket == "" {
		return "", fmt.Errorf("claim: %w", ErrInvalidTicket)
	}

	var rc Receipt
	req := ClaimRequest{Ticket: ticket, Wallet: addr, Coins: coins}
	if err := c.do(ctx, http.MethodPost, "/api/claims", req, &rc); err != nil {
		return "", fmt.Errorf("claim: %w", err)
	}
	if rc.Status != StatusConfirmed {
		return rc.Signature, fmt.Errorf("claim %s is %s", rc.Nonce, rc.Status)
	}
	return rc.Signature, nil
}

// Receipt fetches the stored receipt for nonce.
func (c *Client) Receipt(ctx context.Context, nonce string) (Receipt, error) {
	var rc Receipt
	err := c.do(ctx, http.MethodGet, "/api/claims/"+nonce, nil, &rc)
	return rc, err
}

// StatusError is a non-2xx reply from the server.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode/100 != 2 {
		se := &StatusError{Code: resp.StatusCode}
		var er ErrorResponse
		if json.Unmarshal(raw, &er) == nil && er.Errors != "" {
			se.Message = er.Errors
		} else {
			se.Message = strings.TrimSpace(string(raw))
		}
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.Join(ErrInvalidTicket, se)
		case http.StatusUnprocessableEntity:
			return errors.Join(ErrImplausibleClaim, se)
		case http.StatusNotFound:
			return errors.Join(ErrReceiptNotFound, se)
		}
		return se
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
