// Package authapi talks to the hosted authentication service. The service
// owns identities and tokens; this adapter only verifies passwords for
// actions that require fresh proof of identity.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/finotbook/cashbook/internal/apperrors"
	portsrepo "github.com/finotbook/cashbook/internal/core/ports/repositories"
)

// Client verifies credentials against the auth service's password grant
// endpoint. A succeeding grant is discarded; only the verdict matters.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

var _ portsrepo.Reauthenticator = (*Client)(nil)

// NewClient creates an auth client for the given service base URL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) ReauthenticatePassword(ctx context.Context, email, password string) error {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("failed to encode reauthentication request: %w", err)
	}

	url := c.baseURL + "/auth/v1/token?grant_type=password"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build reauthentication request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: reauthentication: %v", apperrors.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: incorrect password", apperrors.ErrForbidden)
	default:
		return fmt.Errorf("%w: reauthentication: unexpected status %d", apperrors.ErrUnavailable, resp.StatusCode)
	}
}
