package svc

import (
	"context"
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/beldeveloper/bluegreen/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"k8s.io/utils/clock"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func statusServer(t *testing.T, code int) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if code == http.StatusFound {
			http.Redirect(w, r, "/elsewhere", code)
			return
		}
		w.WriteHeader(code)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestProbeHealthSourceHTTP(t *testing.T) {
	ok := statusServer(t, http.StatusOK)
	redirect := statusServer(t, http.StatusFound)
	broken := statusServer(t, http.StatusInternalServerError)
	src := NewHealthSource(app.Config{Groups: []app.GroupConfig{{
		ID: "web",
		Pools: []app.PoolConfig{
			{ID: app.PoolBlue, Targets: []string{ok, redirect}},
			{ID: app.PoolGreen, Targets: []string{ok, broken, "127.0.0.1:1"}},
			{ID: "red"},
		},
		Health: app.HealthConfig{Protocol: app.HealthProtocolHTTP, Path: "/healthz"},
	}}})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := src.HealthCounts(ctx, "web", app.PoolBlue)
	require.NoError(t, err)
	assert.Equal(t, app.HealthCounts{Healthy: 2}, c)

	c, err = src.HealthCounts(ctx, "web", app.PoolGreen)
	require.NoError(t, err)
	assert.Equal(t, app.HealthCounts{Healthy: 1, Unhealthy: 2}, c)

	_, err = src.HealthCounts(ctx, "web", "red")
	assert.Error(t, err)

	_, err = src.HealthCounts(ctx, "api", app.PoolBlue)
	assert.True(t, errors.Is(err, errtype.ErrNotFound), err)
}

func TestProbeHealthSourceGRPC(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus("web", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	src := NewHealthSource(app.Config{Groups: []app.GroupConfig{{
		ID: "web",
		Pools: []app.PoolConfig{
			{ID: app.PoolBlue, Targets: []string{lis.Addr().String()}},
			{ID: app.PoolGreen, Targets: []string{lis.Addr().String()}},
		},
		Health: app.HealthConfig{Protocol: app.HealthProtocolGRPC, Path: "web"},
	}}})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := src.HealthCounts(ctx, "web", app.PoolBlue)
	require.NoError(t, err)
	assert.Equal(t, app.HealthCounts{Healthy: 1}, c)

	hs.SetServingStatus("web", healthpb.HealthCheckResponse_NOT_SERVING)
	c, err = src.HealthCounts(ctx, "web", app.PoolGreen)
	require.NoError(t, err)
	assert.Equal(t, app.HealthCounts{Unhealthy: 1}, c)
}

func TestHealthMonitorWithProbeHealthSource(t *testing.T) {
	cfg := app.Config{Groups: []app.GroupConfig{{
		ID: "web",
		Pools: []app.PoolConfig{
			{ID: app.PoolBlue, Targets: []string{statusServer(t, http.StatusOK)}},
			{ID: app.PoolGreen, Targets: []string{statusServer(t, http.StatusOK), statusServer(t, http.StatusOK)}},
		},
		Health: app.HealthConfig{Protocol: app.HealthProtocolHTTP, Path: "/healthz"},
	}}}
	src := NewHealthSource(cfg)
	m := NewHealthMonitor("web", []app.PoolID{app.PoolBlue, app.PoolGreen}, src, cfg.Groups[0].Health, clock.RealClock{})
	since := time.Now()

	s := m.Refresh(context.Background(), app.PoolGreen)
	assert.Equal(t, app.HealthHealthy, s.Status)
	assert.Equal(t, 2, s.HealthyCount)
	assert.True(t, m.IsHealthy(app.PoolGreen, app.HealthThresholds{}, since))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := src.HealthCounts(ctx, "web", app.PoolBlue)
	assert.True(t, errors.Is(err, context.Canceled), err)
}
