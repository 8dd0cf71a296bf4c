// Package notify sends transactional email through the mail provider.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/peopleregistry/peopleregistry/internal/resilience"
)

const (
	// DefaultBaseURL is the base URL for the mail provider API.
	DefaultBaseURL = "https://api.mailprovider.io"

	// ProviderName identifies this provider.
	ProviderName = "mailer"
)

// ClientConfig holds configuration for the mail client.
type ClientConfig struct {
	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// APIKey authenticates requests to the mail provider.
	APIKey string

	// FromAddress is the sender address for outgoing mail.
	FromAddress string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client will be created and
	// registered with the provider registry.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a mail provider API client.
type Client struct {
	baseURL     string
	apiKey      string
	fromAddress string
	httpClient  HTTPDoer
}

// NewClient creates a new mail client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		resilient := resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         timeout,
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		})
		resilience.GlobalRegistry.Register(ProviderName, resilient)
		httpClient = resilient
	}

	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      cfg.APIKey,
		fromAddress: cfg.FromAddress,
		httpClient:  httpClient,
	}
}

// message is the mail provider's send payload.
type message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// SendDeletionConfirmed notifies a person that their record was deleted.
func (c *Client) SendDeletionConfirmed(ctx context.Context, email, name string) error {
	return c.send(ctx, message{
		From:    c.fromAddress,
		To:      email,
		Subject: "Your registration has been deleted",
		Text: fmt.Sprintf(
			"Hello %s,\n\nYour registration and personal data have been removed from the People Registry. "+
				"This action cannot be undone.\n\nIf you did not request this, contact support immediately.",
			name,
		),
	})
}

// SendDeletionInitiated warns a person that a deletion of their record
// was requested and will proceed once confirmed.
func (c *Client) SendDeletionInitiated(ctx context.Context, email, name string, expiresAt time.Time) error {
	return c.send(ctx, message{
		From:    c.fromAddress,
		To:      email,
		Subject: "Deletion of your registration was requested",
		Text: fmt.Sprintf(
			"Hello %s,\n\nA request to delete your registration was received. "+
				"The request expires at %s if not confirmed.\n\nIf you did not request this, contact support immediately.",
			name, expiresAt.Format(time.RFC3339),
		),
	})
}

func (c *Client) send(ctx context.Context, msg message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode mail message: %w", err)
	}

	url := c.baseURL + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}
	return nil
}
