package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/codimo/promptdiff/internal/auth"
	"github.com/codimo/promptdiff/internal/prompts"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

type Client struct {
	baseURL string
	auth    auth.Authenticator
	client  *http.Client
}

// NewClient creates a client for the server at url. A nil auth sends no credentials.
func NewClient(url string, a auth.Authenticator) *Client {
	if a == nil {
		a = &auth.NoneAuth{}
	}
	return &Client{
		baseURL: strings.TrimRight(url, "/"),
		auth:    a,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// GetPrompt fetches the current prompt
func (c *Client) GetPrompt(ctx context.Context) (*PromptResponse, error) {
	var out PromptResponse
	if err := c.do(ctx, http.MethodGet, "/get-prompt", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetPrompt stores text as the next version on the server
func (c *Client) SetPrompt(ctx context.Context, text string, metadata map[string]string) (*prompts.Update, error) {
	var out prompts.Update
	req := SetPromptRequest{Prompt: text, Metadata: metadata}
	if err := c.do(ctx, http.MethodPost, "/prompt", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History lists the versions stored on the server
func (c *Client) History(ctx context.Context) ([]prompts.Version, error) {
	var out []prompts.Version
	if err := c.do(ctx, http.MethodGet, "/prompt-history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPromptDiff fetches the diff for a stored version pair. A zero version asks for the latest
// pair; an empty mode uses the server default.
func (c *Client) GetPromptDiff(ctx context.Context, version int, mode string) (*PromptDiffResponse, error) {
	q := url.Values{}
	if version != 0 {
		q.Set("version", strconv.Itoa(version))
	}
	if mode != "" {
		q.Set("mode", mode)
	}
	path := "/prompt-diff"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out PromptDiffResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Diff asks the server to compare two texts
func (c *Client) Diff(ctx context.Context, before, after string) (*DiffResponse, error) {
	var out DiffResponse
	if err := c.do(ctx, http.MethodPost, "/diff", DiffRequest{Before: before, After: after}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.auth.Authenticate(req); err != nil {
		return fmt.Errorf("failed to authenticate request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e ErrorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
