package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stoik/emailapi/internal/models"
)

// APIError is returned for any non-2xx response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the email REST server
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client for the server at baseURL (e.g. "http://127.0.0.1:3001")
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Index(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}

func (c *Client) ListEmails(ctx context.Context) ([]models.Email, error) {
	var emails []models.Email
	if err := c.doJSON(ctx, http.MethodGet, "/email", nil, &emails); err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	return emails, nil
}

func (c *Client) GetEmail(ctx context.Context, id int64) (models.Email, error) {
	var email models.Email
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/email/%d", id), nil, &email); err != nil {
		return models.Email{}, fmt.Errorf("failed to get email %d: %w", id, err)
	}
	return email, nil
}

func (c *Client) CreateEmail(ctx context.Context, email models.NewEmail) (models.Email, error) {
	var created models.Email
	if err := c.doJSON(ctx, http.MethodPost, "/email/", email, &created); err != nil {
		return models.Email{}, fmt.Errorf("failed to create email: %w", err)
	}
	return created, nil
}

func (c *Client) UpdateEmail(ctx context.Context, id int64, patch models.EmailPatch) (models.Email, error) {
	body := map[string]string{}
	if patch.Subject != nil {
		body["subject"] = *patch.Subject
	}
	if patch.Message != nil {
		body["message"] = *patch.Message
	}

	var updated models.Email
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/email/%d", id), body, &updated); err != nil {
		return models.Email{}, fmt.Errorf("failed to update email %d: %w", id, err)
	}
	return updated, nil
}

func (c *Client) DeleteEmail(ctx context.Context, id int64) (string, error) {
	var out struct {
		Msg string `json:"msg"`
	}
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/email/%d", id), nil, &out); err != nil {
		return "", fmt.Errorf("failed to delete email %d: %w", id, err)
	}
	return out.Msg, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// do sends the request and turns non-2xx responses into *APIError
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)

		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
		}
		return nil, apiErr
	}

	return resp, nil
}
