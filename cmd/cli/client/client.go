// Package client is the CLI's HTTP client for the inventory API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/crucial707/it-inventory/cmd/cli/config"
)

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// New returns a client for the configured API URL. The stored token is attached when present.
func New() *Client {
	token, _ := config.LoadToken()
	return &Client{
		BaseURL: config.APIURL(),
		Token:   token,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Authenticated is like New but fails when no token is stored.
func Authenticated() (*Client, error) {
	c := New()
	if c.Token == "" {
		return nil, config.ErrNotLoggedIn
	}
	return c, nil
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("API error (%d): %s", e.Status, e.Message)
	for field, detail := range e.Fields {
		msg += fmt.Sprintf("\n  %s: %s", field, detail)
	}
	return msg
}

// Get sends a GET request and decodes the JSON response into out (if non-nil).
func (c *Client) Get(path string, out any) error {
	return c.JSON(http.MethodGet, path, nil, out)
}

// Post sends payload as JSON and decodes the JSON response into out (if non-nil).
func (c *Client) Post(path string, payload, out any) error {
	return c.JSON(http.MethodPost, path, payload, out)
}

func (c *Client) JSON(method, path string, payload, out any) error {
	body, _, err := c.do(method, path, payload)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(out)
}

// Download sends the request and returns the raw body plus the filename from Content-Disposition.
func (c *Client) Download(method, path string, payload any) ([]byte, string, error) {
	body, header, err := c.do(method, path, payload)
	if err != nil {
		return nil, "", err
	}
	filename := ""
	if _, params, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}
	return body, filename, nil
}

func (c *Client) do(method, path string, payload any) ([]byte, http.Header, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return nil, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, nil, decodeError(resp.StatusCode, body)
	}
	return body, resp.Header, nil
}

func decodeError(status int, body []byte) error {
	var out struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Error == "" {
		return &APIError{Status: status, Message: string(bytes.TrimSpace(body))}
	}
	return &APIError{Status: status, Message: out.Error, Fields: out.Fields}
}
