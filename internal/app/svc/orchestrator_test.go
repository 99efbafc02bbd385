package svc

import (
	"context"
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/beldeveloper/bluegreen/internal/app/errtype"
	"github.com/beldeveloper/bluegreen/internal/app/sqlite"
	"github.com/beldeveloper/go-errors-context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/clock"
	"net/http"
	"testing"
	"time"
)

type orchestratorFixture struct {
	orchestrator *Orchestrator
	repo         app.StateRepo
	source       *scriptedSource
	provisioner  *fakeProvisioner
}

func newOrchestratorFixture(t *testing.T, groups ...app.GroupConfig) *orchestratorFixture {
	t.Helper()
	f := &orchestratorFixture{
		repo:        sqlite.NewState(sqlite.OpenTestDB(t)),
		source:      newScriptedSource(),
		provisioner: &fakeProvisioner{},
	}
	f.source.add(app.PoolBlue, 2, 0).add(app.PoolGreen, 2, 0)
	o, err := NewOrchestrator(app.Config{Groups: groups}, f.repo, f.source, f.provisioner, clock.RealClock{})
	require.NoError(t, err)
	t.Cleanup(o.Close)
	f.orchestrator = o
	return f
}

func awaitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestOrchestratorDeploy(t *testing.T) {
	f := newOrchestratorFixture(t, testGroupConfig())
	o := f.orchestrator
	h, err := o.Deploy(context.Background(), "web", app.DeploymentRequest{
		Version:  "v2",
		Strategy: app.Strategy{Type: app.StrategyLinear, StepPercent: 50},
	})
	require.NoError(t, err)
	assert.Equal(t, app.GroupID("web"), h.GroupID)
	assert.NotEmpty(t, h.ID)

	s, err := o.Await(awaitCtx(t), h)
	require.NoError(t, err)
	assert.Equal(t, app.StatePromoted, s.State)
	assert.Equal(t, weights(0, 100), s.CurrentWeights)
	assert.Empty(t, s.LastError)

	w, err := o.Weights(context.Background(), "web")
	require.NoError(t, err)
	assert.Equal(t, weights(0, 100), w)

	rec, err := f.repo.FindByGroup(context.Background(), "web")
	require.NoError(t, err)
	assert.Equal(t, app.StatePromoted, rec.State)
	assert.Equal(t, h.ID, rec.DeploymentID)
	assert.Equal(t, app.PoolGreen, rec.Active)
	assert.Equal(t, "v2", rec.Versions[app.PoolGreen])
	assert.GreaterOrEqual(t, f.source.callCount(app.PoolGreen), 2)
}

func TestOrchestratorRollbackOnUnhealthyPool(t *testing.T) {
	f := newOrchestratorFixture(t, testGroupConfig())
	f.source.add(app.PoolGreen, 2, 0).add(app.PoolGreen, 1, 1)
	o := f.orchestrator
	h, err := o.Deploy(context.Background(), "web", app.DeploymentRequest{
		Version:  "v2",
		Strategy: app.Strategy{Type: app.StrategyCanary, Steps: []int{10, 30, 30, 30, 100}},
	})
	require.NoError(t, err)

	s, err := o.Await(awaitCtx(t), h)
	require.NoError(t, err)
	assert.Equal(t, app.StateFailed, s.State)
	assert.Equal(t, weights(100, 0), s.CurrentWeights)
	assert.Contains(t, s.LastError, "HealthCheckFailure")

	g, err := o.Group(context.Background(), "web")
	require.NoError(t, err)
	assert.Equal(t, app.PoolBlue, g.Active)
	assert.Equal(t, app.StateFailed, g.State)
}

func TestOrchestratorRejectsConcurrentDeployment(t *testing.T) {
	cfg := testGroupConfig()
	cfg.Deployment.BakeTime = time.Hour
	f := newOrchestratorFixture(t, cfg)
	o := f.orchestrator
	req := app.DeploymentRequest{Version: "v2", Strategy: app.Strategy{Type: app.StrategyAllAtOnce}}
	h, err := o.Deploy(context.Background(), "web", req)
	require.NoError(t, err)

	_, err = o.Deploy(context.Background(), "web", req)
	assert.True(t, errors.Is(err, errtype.ErrDeploymentInProgress), err)

	require.NoError(t, o.Cancel(context.Background(), h))
	s, err := o.Await(awaitCtx(t), h)
	require.NoError(t, err)
	assert.Equal(t, app.StateFailed, s.State)
	assert.Contains(t, s.LastError, "Canceled")
	assert.Equal(t, weights(100, 0), s.CurrentWeights)

	require.NoError(t, o.Cancel(context.Background(), h))
	after, err := o.Status(context.Background(), h)
	require.NoError(t, err)
	assert.Equal(t, s.State, after.State)
}

func TestOrchestratorUnknownGroup(t *testing.T) {
	o := newOrchestratorFixture(t, testGroupConfig()).orchestrator
	ctx := context.Background()
	h := app.DeploymentHandle{ID: "d-1", GroupID: "api"}

	_, err := o.Deploy(ctx, "api", app.DeploymentRequest{Version: "v2", Strategy: app.Strategy{Type: app.StrategyAllAtOnce}})
	assert.True(t, errors.Is(err, errtype.ErrNotFound), err)
	_, err = o.Status(ctx, h)
	assert.True(t, errors.Is(err, errtype.ErrNotFound), err)
	_, err = o.Await(ctx, h)
	assert.True(t, errors.Is(err, errtype.ErrNotFound), err)
	_, err = o.Weights(ctx, "api")
	assert.True(t, errors.Is(err, errtype.ErrNotFound), err)
	err = o.Recover(ctx, "api")
	assert.True(t, errors.Is(err, errtype.ErrNotFound), err)

	_, err = o.Status(ctx, app.DeploymentHandle{ID: "d-1", GroupID: "web"})
	assert.True(t, errors.Is(err, errtype.ErrNotFound), err)
}

func TestOrchestratorGroups(t *testing.T) {
	api := testGroupConfig()
	api.ID = "api"
	api.Active = app.PoolGreen
	o := newOrchestratorFixture(t, testGroupConfig(), api).orchestrator

	groups, err := o.Groups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, app.GroupID("web"), groups[0].ID)
	assert.Equal(t, app.StateIdle, groups[0].State)
	assert.Nil(t, groups[0].Deployment)
	assert.Equal(t, app.GroupID("api"), groups[1].ID)
	assert.Equal(t, app.PoolGreen, groups[1].Active)
	assert.Equal(t, app.PoolBlue, groups[1].Idle)

	w, err := o.Weights(context.Background(), "api")
	require.NoError(t, err)
	assert.Equal(t, weights(0, 100), w)
	require.NoError(t, o.ReportMetricsJob(context.Background()))
}

func TestNewOrchestratorInvalidConfig(t *testing.T) {
	repo := sqlite.NewState(sqlite.OpenTestDB(t))
	single := testGroupConfig()
	single.Pools = single.Pools[:1]
	for name, groups := range map[string][]app.GroupConfig{
		"duplicate group": {testGroupConfig(), testGroupConfig()},
		"single pool":     {single},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewOrchestrator(app.Config{Groups: groups}, repo, newScriptedSource(), &fakeProvisioner{}, clock.RealClock{})
			assert.True(t, errors.Is(err, errtype.ErrBadInput), err)
		})
	}
}

func TestOrchestratorResume(t *testing.T) {
	f := newOrchestratorFixture(t, testGroupConfig())
	req := app.DeploymentRequest{Version: "v2", Strategy: app.Strategy{Type: app.StrategyCanary, StepPercent: 25}}
	require.NoError(t, f.repo.Save(context.Background(), app.StateRecord{
		GroupID:          "web",
		State:            app.StateShifting,
		Weights:          weights(50, 50),
		PreviousWeights:  weights(100, 0),
		RequestedVersion: "v2",
		Active:           app.PoolBlue,
		Idle:             app.PoolGreen,
		Versions:         map[app.PoolID]string{app.PoolBlue: "v1", app.PoolGreen: "v2"},
		DeploymentID:     "d-7",
		Request:          &req,
		Step:             2,
		ProvisionID:      "p-7",
		StartedAt:        testNow,
		UpdatedAt:        testNow,
	}))

	o := f.orchestrator
	require.NoError(t, o.Resume(context.Background()))
	s, err := o.Await(awaitCtx(t), app.DeploymentHandle{ID: "d-7", GroupID: "web"})
	require.NoError(t, err)
	assert.Equal(t, app.StatePromoted, s.State)
	assert.Equal(t, 4, s.Step)
	assert.Equal(t, weights(0, 100), s.CurrentWeights)
	assert.Empty(t, f.provisioner.requests)
}

func TestOrchestratorResumeSkipsUnknownGroups(t *testing.T) {
	f := newOrchestratorFixture(t, testGroupConfig())
	require.NoError(t, f.repo.Save(context.Background(), app.StateRecord{
		GroupID: "legacy",
		State:   app.StateIdle,
		Active:  app.PoolBlue,
		Idle:    app.PoolGreen,
	}))
	require.NoError(t, f.orchestrator.Resume(context.Background()))

	g, err := f.orchestrator.Group(context.Background(), "web")
	require.NoError(t, err)
	assert.Equal(t, app.StateIdle, g.State)
}

func TestOrchestratorRun(t *testing.T) {
	cfg := testGroupConfig()
	cfg.Health.Interval = time.Millisecond
	f := newOrchestratorFixture(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.orchestrator.Run(ctx)
	}()
	require.Eventually(t, func() bool {
		return f.source.callCount(app.PoolBlue) > 2 && f.source.callCount(app.PoolGreen) > 2
	}, 5*time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("orchestrator did not stop")
	}
}

func TestOrchestratorDeployWithProbedTargets(t *testing.T) {
	tests := []struct {
		name      string
		greenCode int
		want      app.State
		weights   map[app.PoolID]int
		lastError string
	}{
		{
			name:      "healthy pool is promoted",
			greenCode: http.StatusOK,
			want:      app.StatePromoted,
			weights:   weights(0, 100),
		},
		{
			name:      "unhealthy pool is rolled back",
			greenCode: http.StatusServiceUnavailable,
			want:      app.StateFailed,
			weights:   weights(100, 0),
			lastError: "HealthCheckFailure",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testGroupConfig()
			cfg.Pools[0].Targets = []string{statusServer(t, http.StatusOK)}
			cfg.Pools[1].Targets = []string{statusServer(t, tt.greenCode), statusServer(t, tt.greenCode)}
			cfg.Health = app.HealthConfig{Protocol: app.HealthProtocolHTTP, Path: "/healthz", Timeout: time.Second}
			appCfg := app.Config{Groups: []app.GroupConfig{cfg}}
			o, err := NewOrchestrator(appCfg, sqlite.NewState(sqlite.OpenTestDB(t)), NewHealthSource(appCfg), &fakeProvisioner{}, clock.RealClock{})
			require.NoError(t, err)
			t.Cleanup(o.Close)

			h, err := o.Deploy(context.Background(), "web", app.DeploymentRequest{
				Version:  "v2",
				Strategy: app.Strategy{Type: app.StrategyLinear, StepPercent: 50},
			})
			require.NoError(t, err)
			s, err := o.Await(awaitCtx(t), h)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.State)
			assert.Equal(t, tt.weights, s.CurrentWeights)
			if tt.lastError == "" {
				assert.Empty(t, s.LastError)
			} else {
				assert.Contains(t, s.LastError, tt.lastError)
			}
		})
	}
}
