package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/acahill/ragchat/internal/chat"
)

// ErrNetworkUnavailable indicates a transport-level failure where no response
// was received. It is surfaced to the UI the same way as any other failure;
// there is no differentiated retry logic.
var ErrNetworkUnavailable = errors.New("network unavailable")

// StatusError is a non-2xx response from the server, carrying the detail
// message from the error body when one was present.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// Client talks to the remote answering service. Credential exchanges go
// through the plain client; everything else goes through the authed client,
// whose transport attaches the stored session token as a bearer credential.
type Client struct {
	baseURL string
	plain   *http.Client
	authed  *http.Client
}

func NewClient(baseURL string, plain *http.Client, authed *http.Client) *Client {
	if plain == nil {
		plain = http.DefaultClient
	}
	if authed == nil {
		authed = plain
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		plain:   plain,
		authed:  authed,
	}
}

// Login exchanges an email and password for a session identity.
func (c *Client) Login(ctx context.Context, email string, password string) (Identity, error) {
	return c.exchange(ctx, "/auth/login", credentialsRequest{Email: email, Password: password})
}

// Signup creates an account and exchanges the new credentials for a session
// identity.
func (c *Client) Signup(ctx context.Context, email string, password string) (Identity, error) {
	return c.exchange(ctx, "/auth/signup", credentialsRequest{Email: email, Password: password})
}

// LoginWithIDToken exchanges a federated ID token, obtained from the external
// identity provider, for a session identity.
func (c *Client) LoginWithIDToken(ctx context.Context, idToken string) (Identity, error) {
	return c.exchange(ctx, "/auth/google-login", idTokenRequest{IDToken: idToken})
}

func (c *Client) exchange(ctx context.Context, path string, body any) (Identity, error) {
	var tr tokenResponse
	if err := c.do(ctx, c.plain, http.MethodPost, path, body, &tr); err != nil {
		return Identity{}, err
	}
	if tr.Token == "" || tr.UserID == "" || tr.Email == "" {
		return Identity{}, fmt.Errorf("server response is missing identity fields")
	}
	return Identity{Token: tr.Token, UserID: tr.UserID, Email: tr.Email}, nil
}

// Logout asks the server to invalidate the current session. Older servers do
// not implement the endpoint; a 404 is treated as success.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, c.authed, http.MethodPost, "/auth/logout", nil, nil)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return nil
	}
	return err
}

// GetHistory fetches the canonical ordered message sequence.
func (c *Client) GetHistory(ctx context.Context) ([]chat.Message, error) {
	var hr historyResponse
	if err := c.do(ctx, c.authed, http.MethodGet, "/chat/history", nil, &hr); err != nil {
		return nil, err
	}
	return hr.Messages, nil
}

// SendMessage submits a user turn and returns the server's full canonical log,
// including the submitted turn and the generated answer.
func (c *Client) SendMessage(ctx context.Context, text string, useRAG bool) ([]chat.Message, error) {
	var sr sendResponse
	err := c.do(ctx, c.authed, http.MethodPost, "/chat/message", sendRequest{Message: text, UseRAG: useRAG}, &sr)
	if err != nil {
		return nil, err
	}
	return sr.ChatHistory, nil
}

func (c *Client) do(ctx context.Context, client *http.Client, method string, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetworkUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var er errorResponse
		if b, err := io.ReadAll(resp.Body); err == nil {
			if err := json.Unmarshal(b, &er); err == nil {
				statusErr.Detail = er.Detail
			}
		}
		return statusErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response body: %w", err)
		}
	}
	return nil
}
