// Package smsprovider — клиент REST API Twilio для отправки SMS.
package smsprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/magabrotheeeer/ereceipt/internal/config"
)

// Client отправляет SMS через Twilio Messages API.
type Client struct {
	accountSID string
	authToken  string
	fromNumber string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт клиент Twilio из конфига.
func NewClient(cfg config.Twilio) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		fromNumber: cfg.FromNumber,
		apiURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// From returns the sender number.
func (c *Client) From() string {
	return c.fromNumber
}

func (c *Client) newRequest(ctx context.Context, method, path string, form url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Send отправляет одно сообщение и возвращает SID, присвоенный Twilio.
func (c *Client) Send(ctx context.Context, to, body string) (string, error) {
	const op = "smsprovider.Send"

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.fromNumber)
	form.Set("Body", body)

	path := fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", url.PathEscape(c.accountSID))
	req, err := c.newRequest(ctx, http.MethodPost, path, form)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%s: read body: %w", op, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var apiErr ErrorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return "", fmt.Errorf("%s: twilio error %d: %s", op, apiErr.Code, apiErr.Message)
		}
		return "", fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var msg MessageResponse
	if err := json.Unmarshal(raw, &msg); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", op, err)
	}
	if msg.ErrorCode != nil {
		return "", fmt.Errorf("%s: twilio error %d: %s", op, *msg.ErrorCode, msg.ErrorMessage)
	}
	return msg.SID, nil
}
