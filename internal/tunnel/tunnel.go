// Package tunnel discovers the bot's public address from a local ngrok agent.
package tunnel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// DefaultAPIURL is the local ngrok agent's inspection API.
const DefaultAPIURL = "http://127.0.0.1:4040/api/tunnels"

// ErrTunnelNotFound is returned when no tunnel with the requested name exists.
var ErrTunnelNotFound = errors.New("ngrok tunnel not found")

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type tunnelInfo struct {
	PublicURL string `json:"public_url"`
	Name      string `json:"name"`
}

type apiResponse struct {
	Tunnels []tunnelInfo `json:"tunnels"`
}

// FetchPublicURL asks the ngrok agent at apiURL for the public URL of the
// tunnel with the given name.
func FetchPublicURL(ctx context.Context, client HTTPClient, apiURL, name string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("query ngrok api: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode tunnels: %w", err)
	}

	for _, t := range parsed.Tunnels {
		if t.Name == name {
			return t.PublicURL, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrTunnelNotFound, name)
}
