package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/callwork/backend/internal/config"
)

// Client talks to the call-control vendor API. The vendor is an opaque
// collaborator: the workflow only needs dial, status and hangup.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new telephony client
func NewClient(cfg config.TelephonyConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// DialRequest represents a request to initiate a call
type DialRequest struct {
	Phone     string `json:"phone"`
	Reference string `json:"reference"`
}

// CallState represents the vendor's view of a call
type CallState struct {
	CallID string `json:"call_id"`
	Status string `json:"status"`
}

// Dial initiates a call to the given phone number
func (c *Client) Dial(ctx context.Context, phone, reference string) (*CallState, error) {
	req := DialRequest{Phone: phone, Reference: reference}

	var state CallState
	if err := c.post(ctx, "/v1/calls", req, &state); err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}
	return &state, nil
}

// Status fetches the current state of a call
func (c *Client) Status(ctx context.Context, callID string) (*CallState, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/calls/"+callID, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	var state CallState
	if err := c.do(httpReq, &state); err != nil {
		return nil, fmt.Errorf("status failed: %w", err)
	}
	return &state, nil
}

// Hangup terminates a call
func (c *Client) Hangup(ctx context.Context, callID string) error {
	if err := c.post(ctx, "/v1/calls/"+callID+"/hangup", nil, nil); err != nil {
		return fmt.Errorf("hangup failed: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("vendor returned %d: %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
