package svc

import (
	"context"
	"fmt"
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/beldeveloper/bluegreen/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"net/http"
	"strings"
	"sync"
)

// Probe checks a single target. A nil error means the target is healthy.
type Probe interface {
	Probe(ctx context.Context, target string) error
}

// NewHealthSource creates a health source that probes the configured targets of every pool.
func NewHealthSource(cfg app.Config) *ProbeHealthSource {
	s := &ProbeHealthSource{
		targets: make(map[app.GroupID]map[app.PoolID][]string, len(cfg.Groups)),
		probes:  make(map[app.GroupID]Probe, len(cfg.Groups)),
	}
	for _, g := range cfg.Groups {
		pools := make(map[app.PoolID][]string, len(g.Pools))
		for _, p := range g.Pools {
			pools[p.ID] = p.Targets
		}
		s.targets[g.ID] = pools
		if g.Health.Protocol == app.HealthProtocolGRPC {
			s.probes[g.ID] = GRPCProbe{Service: g.Health.Path}
		} else {
			s.probes[g.ID] = NewHTTPProbe(g.Health.Path)
		}
	}
	return s
}

// ProbeHealthSource counts the healthy targets of a pool by probing all of them concurrently.
type ProbeHealthSource struct {
	targets map[app.GroupID]map[app.PoolID][]string
	probes  map[app.GroupID]Probe
}

// HealthCounts probes every target of the pool. A failed probe counts the target as unhealthy.
func (s *ProbeHealthSource) HealthCounts(ctx context.Context, group app.GroupID, pool app.PoolID) (app.HealthCounts, error) {
	targets, exists := s.targets[group][pool]
	if !exists {
		return app.HealthCounts{}, errors.WrapContext(errtype.ErrNotFound, errors.Context{
			Path:   "svc.ProbeHealthSource.HealthCounts",
			Params: errors.Params{"group": group, "pool": pool},
		})
	}
	if len(targets) == 0 {
		return app.HealthCounts{}, errors.NewWithContext("pool has no health targets", errors.Context{
			Path:   "svc.ProbeHealthSource.HealthCounts",
			Params: errors.Params{"group": group, "pool": pool},
		})
	}
	probe := s.probes[group]
	var (
		mu     sync.Mutex
		counts app.HealthCounts
	)
	eg, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		t := t
		eg.Go(func() error {
			err := probe.Probe(gctx, t)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				counts.Unhealthy++
			} else {
				counts.Healthy++
			}
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return counts, errors.WrapContext(err, errors.Context{
			Path:   "svc.ProbeHealthSource.HealthCounts",
			Params: errors.Params{"group": group, "pool": pool},
		})
	}
	return counts, nil
}

// NewHTTPProbe creates a probe that requests the path on every target.
func NewHTTPProbe(path string) HTTPProbe {
	if path == "" {
		path = "/"
	}
	return HTTPProbe{
		Path: path,
		Client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// HTTPProbe treats 2xx and 3xx responses as healthy.
type HTTPProbe struct {
	Path   string
	Client *http.Client
}

// Probe requests the health path of the target.
func (p HTTPProbe) Probe(ctx context.Context, target string) error {
	url := target
	if !strings.Contains(url, "://") {
		url = "http://" + url
	}
	url = strings.TrimSuffix(url, "/") + "/" + strings.TrimPrefix(p.Path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.WrapContext(err, errors.Context{Path: "svc.HTTPProbe.Probe.NewRequest", Params: errors.Params{"url": url}})
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return errors.WrapContext(err, errors.Context{Path: "svc.HTTPProbe.Probe.Do", Params: errors.Params{"url": url}})
	}
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return errors.NewWithContext(fmt.Sprintf("unexpected status %d", resp.StatusCode), errors.Context{
			Path:   "svc.HTTPProbe.Probe",
			Params: errors.Params{"url": url},
		})
	}
	return nil
}

// GRPCProbe calls the standard gRPC health service. Only SERVING is healthy.
type GRPCProbe struct {
	Service string
}

// Probe checks the health of the target service.
func (p GRPCProbe) Probe(ctx context.Context, target string) error {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return errors.WrapContext(err, errors.Context{Path: "svc.GRPCProbe.Probe.NewClient", Params: errors.Params{"target": target}})
	}
	defer conn.Close()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: strings.TrimPrefix(p.Service, "/")})
	if err != nil {
		return errors.WrapContext(err, errors.Context{Path: "svc.GRPCProbe.Probe.Check", Params: errors.Params{"target": target}})
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return errors.NewWithContext("service is "+resp.GetStatus().String(), errors.Context{
			Path:   "svc.GRPCProbe.Probe",
			Params: errors.Params{"target": target},
		})
	}
	return nil
}
