package miner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client sends challenges to a remote miner service.
type Client struct {
	url    string
	client http.Client
}

// NewClient constructs a client for the miner service at the specified
// host, such as "http://localhost:4501".
func NewClient(host string, timeout time.Duration) *Client {
	return &Client{
		url:    strings.TrimRight(host, "/") + "/v1/mine",
		client: http.Client{Timeout: timeout},
	}
}

// Mine posts the challenge to the miner service and waits for the solution.
func (c *Client) Mine(ctx context.Context, ch Challenge) (Solution, error) {
	data, err := json.Marshal(ch)
	if err != nil {
		return Solution{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return Solution{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Solution{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return Solution{}, err
		}
		return Solution{}, fmt.Errorf("miner service: %s: %w", resp.Status, errors.New(string(msg)))
	}

	var sol Solution
	if err := json.NewDecoder(resp.Body).Decode(&sol); err != nil {
		return Solution{}, err
	}

	return sol, nil
}
