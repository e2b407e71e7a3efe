// Package webapp pushes accepted records to the companion web dashboard.
// The push is best-effort: the bot never blocks a chat reply on it and the
// dashboard being down must never lose a record locally.
package webapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pandr/coldcallbot/internal/crm"
)

type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a push client for the dashboard at baseURL. Callers are
// expected to skip construction entirely when no URL is configured.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// PushProfile mirrors a newly accepted profile to the dashboard.
func (c *Client) PushProfile(p crm.Profile) error {
	return c.post("/api/profiles", p)
}

// PushCallResult mirrors a newly recorded call result to the dashboard.
func (c *Client) PushCallResult(r crm.CallResult) error {
	return c.post("/api/calls", r)
}

func (c *Client) post(path string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("webapp marshal failed: %w", err)
	}

	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webapp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webapp returned %s", resp.Status)
	}
	return nil
}
