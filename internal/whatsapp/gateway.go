package whatsapp

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Gateway talks to an HTTP WhatsApp bridge. The bridge owns the actual
// WhatsApp connection; we drive it over REST and it pushes lifecycle
// callbacks to our /webhooks/gateway endpoint.
type Gateway struct {
	client *resty.Client
}

// NewGatewayFromEnv builds a Gateway from WA_GATEWAY_URL / WA_GATEWAY_API_KEY
func NewGatewayFromEnv() (*Gateway, error) {
	baseURL := os.Getenv("WA_GATEWAY_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("WA_GATEWAY_URL must be set")
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json")

	if apiKey := os.Getenv("WA_GATEWAY_API_KEY"); apiKey != "" {
		client.SetHeader("X-Api-Key", apiKey)
	}

	return &Gateway{client: client}, nil
}

// NewClient implements Provider
func (g *Gateway) NewClient(ownerID string) Client {
	return &gatewayClient{gateway: g, ownerID: ownerID, state: StateDisconnected}
}

type gatewayClient struct {
	gateway *Gateway
	ownerID string

	mu    sync.RWMutex
	state State
}

type sendRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type profileResponse struct {
	Number    string `json:"number"`
	PushName  string `json:"push_name"`
	AvatarURL string `json:"avatar_url"`
}

func (c *gatewayClient) Connect(ctx context.Context) error {
	c.SetState(StateConnecting)

	resp, err := c.gateway.client.R().
		SetContext(ctx).
		Post(fmt.Sprintf("/api/sessions/%s/start", c.ownerID))
	if err != nil {
		c.SetState(StateDisconnected)
		return fmt.Errorf("gateway start failed: %w", err)
	}
	if resp.IsError() {
		c.SetState(StateDisconnected)
		return fmt.Errorf("gateway start failed: %s: %s", resp.Status(), resp.String())
	}
	return nil
}

func (c *gatewayClient) Send(ctx context.Context, destination, text string) error {
	if c.State() != StateConnected {
		return fmt.Errorf("session for %s is not connected", c.ownerID)
	}

	resp, err := c.gateway.client.R().
		SetContext(ctx).
		SetBody(sendRequest{To: destination, Text: text}).
		Post(fmt.Sprintf("/api/sessions/%s/send", c.ownerID))
	if err != nil {
		return fmt.Errorf("gateway send failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("gateway send failed: %s: %s", resp.Status(), resp.String())
	}
	return nil
}

func (c *gatewayClient) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *gatewayClient) SetState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *gatewayClient) Identity(ctx context.Context) (*Identity, error) {
	var profile profileResponse
	resp, err := c.gateway.client.R().
		SetContext(ctx).
		SetResult(&profile).
		Get(fmt.Sprintf("/api/sessions/%s/me", c.ownerID))
	if err != nil {
		return nil, fmt.Errorf("gateway profile fetch failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("gateway profile fetch failed: %s", resp.Status())
	}

	return &Identity{
		Number:      profile.Number,
		DisplayName: profile.PushName,
		AvatarURL:   profile.AvatarURL,
	}, nil
}

func (c *gatewayClient) Logout(ctx context.Context) error {
	resp, err := c.gateway.client.R().
		SetContext(ctx).
		Post(fmt.Sprintf("/api/sessions/%s/logout", c.ownerID))
	if err != nil {
		return fmt.Errorf("gateway logout failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("gateway logout failed: %s", resp.Status())
	}
	return nil
}

func (c *gatewayClient) Close() error {
	c.SetState(StateDisconnected)

	resp, err := c.gateway.client.R().
		Post(fmt.Sprintf("/api/sessions/%s/stop", c.ownerID))
	if err != nil {
		return fmt.Errorf("gateway stop failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("gateway stop failed: %s", resp.Status())
	}
	return nil
}
