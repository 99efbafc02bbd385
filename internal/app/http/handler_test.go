package http

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/beldeveloper/bluegreen/internal/app/errtype"
	"github.com/beldeveloper/bluegreen/internal/app/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const testKey = "secret"

type fakeOrchestrator struct {
	deployed  []app.DeploymentRequest
	deployErr error
	canceled  []app.DeploymentHandle
	recovered []app.GroupID
	awaited   bool
	status    app.DeploymentStatus
}

func (o *fakeOrchestrator) Deploy(_ context.Context, group app.GroupID, req app.DeploymentRequest) (app.DeploymentHandle, error) {
	if o.deployErr != nil {
		return app.DeploymentHandle{}, o.deployErr
	}
	if group != "web" {
		return app.DeploymentHandle{}, fmt.Errorf("group %s: %w", group, errtype.ErrNotFound)
	}
	o.deployed = append(o.deployed, req)
	return app.DeploymentHandle{ID: "d-1", GroupID: group}, nil
}

func (o *fakeOrchestrator) Cancel(_ context.Context, h app.DeploymentHandle) error {
	o.canceled = append(o.canceled, h)
	return nil
}

func (o *fakeOrchestrator) Status(_ context.Context, h app.DeploymentHandle) (app.DeploymentStatus, error) {
	if h.ID != o.status.Handle.ID || h.GroupID != o.status.Handle.GroupID {
		return app.DeploymentStatus{}, errtype.ErrNotFound
	}
	return o.status, nil
}

func (o *fakeOrchestrator) Await(ctx context.Context, h app.DeploymentHandle) (app.DeploymentStatus, error) {
	o.awaited = true
	s, err := o.Status(ctx, h)
	if err != nil {
		return s, err
	}
	s.State = app.StatePromoted
	return s, nil
}

func (o *fakeOrchestrator) Recover(_ context.Context, group app.GroupID) error {
	if group != "web" {
		return errtype.ErrNotFound
	}
	o.recovered = append(o.recovered, group)
	return nil
}

func (o *fakeOrchestrator) Groups(ctx context.Context) ([]app.GroupStatus, error) {
	g, _ := o.Group(ctx, "web")
	return []app.GroupStatus{g}, nil
}

func (o *fakeOrchestrator) Group(_ context.Context, group app.GroupID) (app.GroupStatus, error) {
	if group != "web" {
		return app.GroupStatus{}, errtype.ErrNotFound
	}
	return app.GroupStatus{ID: "web", State: app.StateIdle, Active: app.PoolBlue, Idle: app.PoolGreen}, nil
}

func (o *fakeOrchestrator) Weights(_ context.Context, group app.GroupID) (map[app.PoolID]int, error) {
	if group != "web" {
		return nil, errtype.ErrNotFound
	}
	return map[app.PoolID]int{app.PoolBlue: 70, app.PoolGreen: 30}, nil
}

func (o *fakeOrchestrator) ReportMetricsJob(context.Context) error {
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeOrchestrator) {
	t.Helper()
	o := &fakeOrchestrator{status: app.DeploymentStatus{
		Handle:         app.DeploymentHandle{ID: "d-1", GroupID: "web"},
		State:          app.StateBaking,
		CurrentWeights: map[app.PoolID]int{app.PoolBlue: 70, app.PoolGreen: 30},
		Step:           2,
		TotalSteps:     4,
	}}
	srv := httptest.NewServer(NewRouter(NewHandler(o, testKey)))
	t.Cleanup(srv.Close)
	return srv, o
}

func call(t *testing.T, srv *httptest.Server, method, path, body string, res interface{}) int {
	t.Helper()
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	req, err := http.NewRequest(method, srv.URL+path+sep+"accessKey="+testKey, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	if res != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(res))
	}
	return resp.StatusCode
}

func TestDeploy(t *testing.T) {
	srv, o := newTestServer(t)
	var h app.DeploymentHandle
	code := call(t, srv, http.MethodPost, "/groups/web/deployments",
		`{"version":"v2","strategy":"canary","steps":[10,30,60],"interval":"90s","thresholds":{"minHealthy":2}}`, &h)

	require.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, app.DeploymentHandle{ID: "d-1", GroupID: "web"}, h)
	require.Len(t, o.deployed, 1)
	assert.Equal(t, app.DeploymentRequest{
		Version: "v2",
		Strategy: app.Strategy{
			Type:     app.StrategyCanary,
			Steps:    []int{10, 30, 60},
			Interval: 90 * time.Second,
		},
		Thresholds: &app.HealthThresholds{MinHealthy: 2},
	}, o.deployed[0])
}

func TestDeployErrors(t *testing.T) {
	cases := []struct {
		name      string
		path      string
		body      string
		deployErr error
		code      int
	}{
		{name: "malformed body", path: "/groups/web/deployments", body: `{"version":`, code: http.StatusBadRequest},
		{name: "bad interval", path: "/groups/web/deployments", body: `{"version":"v2","strategy":"linear","interval":"soon"}`, code: http.StatusBadRequest},
		{name: "unknown group", path: "/groups/api/deployments", body: `{"version":"v2","strategy":"linear"}`, code: http.StatusNotFound},
		{
			name:      "busy group",
			path:      "/groups/web/deployments",
			body:      `{"version":"v2","strategy":"linear"}`,
			deployErr: fmt.Errorf("%w: group web is BAKING", errtype.ErrDeploymentInProgress),
			code:      http.StatusConflict,
		},
		{
			name:      "invalid strategy",
			path:      "/groups/web/deployments",
			body:      `{"version":"v2","strategy":"linear","stepPercent":500}`,
			deployErr: fmt.Errorf("%w: step 500 is out of range", errtype.ErrBadInput),
			code:      http.StatusBadRequest,
		},
		{
			name:      "internal",
			path:      "/groups/web/deployments",
			body:      `{"version":"v2","strategy":"linear"}`,
			deployErr: fmt.Errorf("database is down"),
			code:      http.StatusInternalServerError,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv, o := newTestServer(t)
			o.deployErr = c.deployErr
			assert.Equal(t, c.code, call(t, srv, http.MethodPost, c.path, c.body, nil))
		})
	}
}

func TestUnauthorized(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/groups?accessKey=wrong")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestReadEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	var groups []app.GroupStatus
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/groups", "", &groups))
	require.Len(t, groups, 1)
	assert.Equal(t, app.GroupID("web"), groups[0].ID)

	var g app.GroupStatus
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/groups/web", "", &g))
	assert.Equal(t, app.PoolBlue, g.Active)
	assert.Equal(t, http.StatusNotFound, call(t, srv, http.MethodGet, "/groups/api", "", nil))

	var w map[app.PoolID]int
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/groups/web/weights", "", &w))
	assert.Equal(t, map[app.PoolID]int{app.PoolBlue: 70, app.PoolGreen: 30}, w)

	var s app.DeploymentStatus
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/groups/web/deployments/d-1", "", &s))
	assert.Equal(t, app.StateBaking, s.State)
	assert.Equal(t, 2, s.Step)
	assert.Equal(t, http.StatusNotFound, call(t, srv, http.MethodGet, "/groups/web/deployments/d-2", "", nil))
}

func TestDeploymentAwait(t *testing.T) {
	srv, o := newTestServer(t)
	var s app.DeploymentStatus
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/groups/web/deployments/d-1?await=1m", "", &s))
	assert.True(t, o.awaited)
	assert.Equal(t, app.StatePromoted, s.State)

	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodGet, "/groups/web/deployments/d-1?await=never", "", nil))
}

func TestCancelAndRecover(t *testing.T) {
	srv, o := newTestServer(t)
	var s app.DeploymentStatus
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodDelete, "/groups/web/deployments/d-1", "", &s))
	assert.Equal(t, []app.DeploymentHandle{{ID: "d-1", GroupID: "web"}}, o.canceled)

	var g app.GroupStatus
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/groups/web/recover", "", &g))
	assert.Equal(t, []app.GroupID{"web"}, o.recovered)
	assert.Equal(t, http.StatusNotFound, call(t, srv, http.MethodPost, "/groups/api/recover", "", nil))
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.Register()
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
