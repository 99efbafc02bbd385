package svc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/beldeveloper/go-errors-context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// NewProvisioner creates the HTTP provisioner for a configured service URL and the static one otherwise.
func NewProvisioner(u app.ProvisionerURL) app.Provisioner {
	if u == "" {
		return StaticProvisioner{}
	}
	return NewHTTPProvisioner(string(u))
}

// StaticProvisioner is used when the pools are provisioned by the infrastructure with a fixed capacity.
// Every pool is reported ready immediately.
type StaticProvisioner struct{}

// Provision returns a handle that is always ready.
func (StaticProvisioner) Provision(_ context.Context, group app.GroupID, pool app.PoolID, version string, _ app.Capacity) (app.ProvisionHandle, error) {
	return app.ProvisionHandle{ID: fmt.Sprintf("static/%s/%s/%s", group, pool, version)}, nil
}

// Status reports the pool as ready.
func (StaticProvisioner) Status(context.Context, app.ProvisionHandle) (app.ProvisionStatus, error) {
	return app.ProvisionStatus{Status: app.ProvisionReady}, nil
}

// NewHTTPProvisioner creates a new instance of the provisioning service client.
func NewHTTPProvisioner(baseURL string) *HTTPProvisioner {
	return &HTTPProvisioner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// HTTPProvisioner asks an external provisioning service to bring up a pool.
type HTTPProvisioner struct {
	baseURL string
	client  *http.Client
}

type provisionRequest struct {
	Group    app.GroupID  `json:"group"`
	Pool     app.PoolID   `json:"pool"`
	Version  string       `json:"version"`
	Capacity app.Capacity `json:"capacity"`
}

// Provision requests the pool with the given version and capacity.
func (p *HTTPProvisioner) Provision(ctx context.Context, group app.GroupID, pool app.PoolID, version string, c app.Capacity) (app.ProvisionHandle, error) {
	body, err := json.Marshal(provisionRequest{Group: group, Pool: pool, Version: version, Capacity: c})
	if err != nil {
		return app.ProvisionHandle{}, errors.WrapContext(err, errors.Context{Path: "svc.HTTPProvisioner.Provision.Marshal"})
	}
	var h app.ProvisionHandle
	err = p.do(ctx, http.MethodPost, p.baseURL+"/provisions", body, &h)
	if err != nil {
		return app.ProvisionHandle{}, errors.WrapContext(err, errors.Context{
			Path:   "svc.HTTPProvisioner.Provision.do",
			Params: errors.Params{"group": group, "pool": pool, "version": version},
		})
	}
	if h.ID == "" {
		return app.ProvisionHandle{}, errors.NewWithContext("provisioning service returned an empty id", errors.Context{
			Path:   "svc.HTTPProvisioner.Provision",
			Params: errors.Params{"group": group, "pool": pool},
		})
	}
	return h, nil
}

// Status returns the provisioning progress.
func (p *HTTPProvisioner) Status(ctx context.Context, h app.ProvisionHandle) (app.ProvisionStatus, error) {
	var s app.ProvisionStatus
	err := p.do(ctx, http.MethodGet, p.baseURL+"/provisions/"+url.PathEscape(h.ID), nil, &s)
	if err != nil {
		return s, errors.WrapContext(err, errors.Context{
			Path:   "svc.HTTPProvisioner.Status.do",
			Params: errors.Params{"provision": h.ID},
		})
	}
	switch s.Status {
	case app.ProvisionPending, app.ProvisionReady, app.ProvisionFailed:
		return s, nil
	}
	return s, errors.NewWithContext("unknown provisioning status", errors.Context{
		Path:   "svc.HTTPProvisioner.Status",
		Params: errors.Params{"provision": h.ID, "status": s.Status},
	})
}

func (p *HTTPProvisioner) do(ctx context.Context, method, u string, body []byte, res interface{}) error {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return errors.WrapContext(err, errors.Context{Path: "svc.HTTPProvisioner.do.NewRequest"})
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return errors.WrapContext(err, errors.Context{Path: "svc.HTTPProvisioner.do.Do", Params: errors.Params{"url": u}})
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.NewWithContext("unexpected status", errors.Context{
			Path:   "svc.HTTPProvisioner.do",
			Params: errors.Params{"url": u, "status": resp.StatusCode, "body": string(msg)},
		})
	}
	if err = json.NewDecoder(resp.Body).Decode(res); err != nil {
		return errors.WrapContext(err, errors.Context{Path: "svc.HTTPProvisioner.do.Decode", Params: errors.Params{"url": u}})
	}
	return nil
}
