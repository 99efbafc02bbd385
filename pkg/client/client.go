// Package client is a typed client of the blue/green orchestrator REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/beldeveloper/go-errors-context"
	"io"
	"net/http"
	"net/url"
	"time"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Kind       string
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Kind, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// New creates a new instance of the API client.
func New(baseURL, accessKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		accessKey: accessKey,
		http:      &http.Client{Timeout: 15 * time.Minute},
	}
}

// Client calls the orchestrator REST API.
type Client struct {
	baseURL   string
	accessKey string
	http      *http.Client
}

// Groups returns all deployment groups.
func (c *Client) Groups(ctx context.Context) ([]GroupStatus, error) {
	var res []GroupStatus
	err := c.do(ctx, http.MethodGet, "/groups", nil, nil, &res)
	return res, err
}

// Group returns one deployment group.
func (c *Client) Group(ctx context.Context, group GroupID) (GroupStatus, error) {
	var res GroupStatus
	err := c.do(ctx, http.MethodGet, "/groups/"+url.PathEscape(string(group)), nil, nil, &res)
	return res, err
}

// Weights returns the traffic weights of the group.
func (c *Client) Weights(ctx context.Context, group GroupID) (map[PoolID]int, error) {
	var res map[PoolID]int
	err := c.do(ctx, http.MethodGet, "/groups/"+url.PathEscape(string(group))+"/weights", nil, nil, &res)
	return res, err
}

// Deploy starts a deployment of the group.
func (c *Client) Deploy(ctx context.Context, group GroupID, f FormDeploy) (DeploymentHandle, error) {
	var res DeploymentHandle
	err := c.do(ctx, http.MethodPost, "/groups/"+url.PathEscape(string(group))+"/deployments", nil, f, &res)
	return res, err
}

// Status returns the status of the deployment.
func (c *Client) Status(ctx context.Context, h DeploymentHandle) (DeploymentStatus, error) {
	var res DeploymentStatus
	err := c.do(ctx, http.MethodGet, deploymentPath(h), nil, nil, &res)
	return res, err
}

// Await waits up to d for the deployment to end and returns its status.
func (c *Client) Await(ctx context.Context, h DeploymentHandle, d time.Duration) (DeploymentStatus, error) {
	var res DeploymentStatus
	err := c.do(ctx, http.MethodGet, deploymentPath(h), url.Values{"await": {d.String()}}, nil, &res)
	return res, err
}

// Cancel requests a rollback of the deployment.
func (c *Client) Cancel(ctx context.Context, h DeploymentHandle) (DeploymentStatus, error) {
	var res DeploymentStatus
	err := c.do(ctx, http.MethodDelete, deploymentPath(h), nil, nil, &res)
	return res, err
}

// Recover retries the stalled rollback of the group.
func (c *Client) Recover(ctx context.Context, group GroupID) (GroupStatus, error) {
	var res GroupStatus
	err := c.do(ctx, http.MethodPost, "/groups/"+url.PathEscape(string(group))+"/recover", nil, nil, &res)
	return res, err
}

func deploymentPath(h DeploymentHandle) string {
	return "/groups/" + url.PathEscape(string(h.GroupID)) + "/deployments/" + url.PathEscape(h.ID)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, res interface{}) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("accessKey", c.accessKey)
	u := c.baseURL + path + "?" + query.Encode()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.WrapContext(err, errors.Context{Path: "client.Client.do.Marshal"})
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return errors.WrapContext(err, errors.Context{Path: "client.Client.do.NewRequest"})
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WrapContext(err, errors.Context{Path: "client.Client.do.Do", Params: errors.Params{"method": method, "path": path}})
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var e struct {
			Error string `json:"error"`
			Kind  string `json:"kind"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			apiErr.Message = e.Error
			apiErr.Kind = e.Kind
		}
		return apiErr
	}
	if err = json.NewDecoder(resp.Body).Decode(res); err != nil {
		return errors.WrapContext(err, errors.Context{Path: "client.Client.do.Decode", Params: errors.Params{"path": path}})
	}
	return nil
}
