// client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"assetgraph/internal/api"
	apperrors "assetgraph/internal/errors"
)

// APIError is a failed call; Err carries the typed error the daemon sent.
type APIError struct {
	Status      int
	Err         *apperrors.Error
	Suggestions []string
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Err.Message
	}
	return fmt.Sprintf("unexpected status: %d", e.Status)
}

func (e *APIError) Unwrap() error {
	if e.Err == nil {
		return nil
	}
	return e.Err
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

func (c *Client) Health(ctx context.Context) error {
	var out map[string]string
	return c.do(ctx, http.MethodGet, "/health", nil, &out)
}

func (c *Client) ListLoaders(ctx context.Context) ([]api.LoaderView, error) {
	var views []api.LoaderView
	if err := c.do(ctx, http.MethodGet, "/api/loaders", nil, &views); err != nil {
		return nil, err
	}
	return views, nil
}

func (c *Client) GetLoader(ctx context.Context, id string) (*api.LoaderView, error) {
	var view api.LoaderView
	if err := c.do(ctx, http.MethodGet, "/api/loaders/"+url.PathEscape(id), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// SetLoadPath points target at p; an empty target edits the default.
func (c *Client) SetLoadPath(ctx context.Context, id, target, p string) (*api.LoaderView, error) {
	var view api.LoaderView
	req := api.SetPathRequest{Target: target, Path: p}
	if err := c.do(ctx, http.MethodPut, "/api/loaders/"+url.PathEscape(id)+"/path", req, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Evaluate forces an evaluation of one loader target.
func (c *Client) Evaluate(ctx context.Context, id, target string) (*api.EvaluateResponse, error) {
	path := "/api/loaders/" + url.PathEscape(id) + "/evaluate"
	if target != "" {
		path += "?target=" + url.QueryEscape(target)
	}
	var resp api.EvaluateResponse
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Err = payload.Error
			apiErr.Suggestions = payload.Suggestions
		}
		return apiErr
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
