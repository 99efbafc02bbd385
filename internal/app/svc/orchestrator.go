package svc

import (
	"context"
	"fmt"
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/beldeveloper/bluegreen/internal/app/errtype"
	"github.com/beldeveloper/bluegreen/internal/app/metrics"
	"github.com/beldeveloper/go-errors-context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"
	"sync"
)

// NewOrchestrator creates a new instance of the deployment orchestrator.
// Every configured group starts idle with the whole traffic on its active pool.
func NewOrchestrator(
	cfg app.Config,
	repo app.StateRepo,
	src app.HealthSource,
	provisioner app.Provisioner,
	clk clock.WithTicker,
) (*Orchestrator, error) {
	ctx, stop := context.WithCancel(context.Background())
	o := &Orchestrator{
		repo:    repo,
		groups:  make(map[app.GroupID]*Group, len(cfg.Groups)),
		ctx:     ctx,
		stop:    stop,
		running: make(map[app.GroupID]bool),
	}
	for _, gc := range cfg.Groups {
		if _, exists := o.groups[gc.ID]; exists {
			stop()
			return nil, errors.WrapContext(
				fmt.Errorf("%w: group %s is configured twice", errtype.ErrBadInput, gc.ID),
				errors.Context{Path: "svc.NewOrchestrator"},
			)
		}
		pools := make([]app.PoolID, 0, len(gc.Pools))
		var idle app.PoolID
		for _, p := range gc.Pools {
			pools = append(pools, p.ID)
			if p.ID != gc.Active {
				idle = p.ID
			}
		}
		if len(pools) != 2 || idle == "" || idle == gc.Active {
			stop()
			return nil, errors.WrapContext(
				fmt.Errorf("%w: group %s must have exactly two pools with one of them active", errtype.ErrBadInput, gc.ID),
				errors.Context{Path: "svc.NewOrchestrator", Params: errors.Params{"pools": pools, "active": gc.Active}},
			)
		}
		monitor := NewHealthMonitor(gc.ID, pools, src, gc.Health, clk)
		router := NewRouter(gc.ID, gc.Active, idle)
		o.groups[gc.ID] = NewGroup(gc, router, monitor, provisioner, clk, repo.Save)
		o.monitors = append(o.monitors, monitor)
		o.order = append(o.order, gc.ID)
		metrics.RecordGroupState(gc.ID, app.StateIdle)
	}
	return o, nil
}

// Orchestrator owns the deployment groups and drives every accepted deployment in the background.
type Orchestrator struct {
	repo     app.StateRepo
	groups   map[app.GroupID]*Group
	order    []app.GroupID
	monitors []app.HealthMonitor
	ctx      context.Context
	stop     context.CancelFunc
	wg       sync.WaitGroup

	mu      sync.Mutex
	running map[app.GroupID]bool
}

// Deploy accepts a deployment of the group and returns immediately.
func (o *Orchestrator) Deploy(ctx context.Context, group app.GroupID, req app.DeploymentRequest) (app.DeploymentHandle, error) {
	g, err := o.group(group)
	if err != nil {
		return app.DeploymentHandle{}, errors.WrapContext(err, errors.Context{Path: "svc.Orchestrator.Deploy.group"})
	}
	h := app.DeploymentHandle{ID: uuid.NewString(), GroupID: group}
	if err := g.Begin(ctx, h.ID, req); err != nil {
		return app.DeploymentHandle{}, errors.WrapContext(err, errors.Context{
			Path:   "svc.Orchestrator.Deploy.Begin",
			Params: errors.Params{"version": req.Version},
		})
	}
	o.start(g)
	return h, nil
}

// Cancel requests a rollback of the deployment.
func (o *Orchestrator) Cancel(_ context.Context, h app.DeploymentHandle) error {
	g, err := o.group(h.GroupID)
	if err != nil {
		return errors.WrapContext(err, errors.Context{Path: "svc.Orchestrator.Cancel.group"})
	}
	return g.Cancel(h.ID)
}

// Status returns the current status of the deployment.
func (o *Orchestrator) Status(_ context.Context, h app.DeploymentHandle) (app.DeploymentStatus, error) {
	g, err := o.group(h.GroupID)
	if err != nil {
		return app.DeploymentStatus{}, errors.WrapContext(err, errors.Context{Path: "svc.Orchestrator.Status.group"})
	}
	return g.Status(h.ID)
}

// Await blocks until the deployment ends or its rollback stalls.
func (o *Orchestrator) Await(ctx context.Context, h app.DeploymentHandle) (app.DeploymentStatus, error) {
	g, err := o.group(h.GroupID)
	if err != nil {
		return app.DeploymentStatus{}, errors.WrapContext(err, errors.Context{Path: "svc.Orchestrator.Await.group"})
	}
	done, err := g.Done(h.ID)
	if err != nil {
		return app.DeploymentStatus{}, err
	}
	select {
	case <-ctx.Done():
		return app.DeploymentStatus{}, errors.WrapContext(ctx.Err(), errors.Context{
			Path:   "svc.Orchestrator.Await",
			Params: errors.Params{"deployment": h.ID},
		})
	case <-done:
	}
	return g.Status(h.ID)
}

// Recover resumes a stalled rollback of the group.
func (o *Orchestrator) Recover(ctx context.Context, group app.GroupID) error {
	g, err := o.group(group)
	if err != nil {
		return errors.WrapContext(err, errors.Context{Path: "svc.Orchestrator.Recover.group"})
	}
	if err := g.Recover(ctx); err != nil {
		return err
	}
	o.start(g)
	return nil
}

// Groups returns all configured groups.
func (o *Orchestrator) Groups(_ context.Context) ([]app.GroupStatus, error) {
	res := make([]app.GroupStatus, 0, len(o.order))
	for _, id := range o.order {
		res = append(res, o.groups[id].GroupStatus())
	}
	return res, nil
}

// Group returns the group with its pools and the current deployment.
func (o *Orchestrator) Group(_ context.Context, group app.GroupID) (app.GroupStatus, error) {
	g, err := o.group(group)
	if err != nil {
		return app.GroupStatus{}, errors.WrapContext(err, errors.Context{Path: "svc.Orchestrator.Group.group"})
	}
	return g.GroupStatus(), nil
}

// Weights returns the current traffic weights of the group.
func (o *Orchestrator) Weights(_ context.Context, group app.GroupID) (map[app.PoolID]int, error) {
	g, err := o.group(group)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: "svc.Orchestrator.Weights.group"})
	}
	return g.Weights(), nil
}

// ReportMetricsJob refreshes the weight and state gauges of every group.
func (o *Orchestrator) ReportMetricsJob(_ context.Context) error {
	for _, id := range o.order {
		s := o.groups[id].GroupStatus()
		metrics.RecordGroupState(id, s.State)
		metrics.RecordPoolWeights(id, o.groups[id].Weights())
	}
	return nil
}

// Resume restores the persisted group states and continues the deployments that were in flight.
func (o *Orchestrator) Resume(ctx context.Context) error {
	records, err := o.repo.FindAll(ctx)
	if err != nil {
		return errors.WrapContext(err, errors.Context{Path: "svc.Orchestrator.Resume.FindAll"})
	}
	for _, r := range records {
		g, exists := o.groups[r.GroupID]
		if !exists {
			log.WithField("group", r.GroupID).Warn("Persisted group is not configured anymore, skipping")
			continue
		}
		if err := g.Restore(r); err != nil {
			log.Println(errors.WrapContext(err, errors.Context{
				Path:   "svc.Orchestrator.Resume.Restore",
				Params: errors.Params{"group": r.GroupID, "state": r.State},
			}))
			continue
		}
		log.WithFields(log.Fields{
			"group":      r.GroupID,
			"deployment": r.DeploymentID,
			"state":      r.State,
			"stalled":    r.Stalled,
		}).Info("Group state is restored")
		if g.Runnable() {
			o.start(g)
		}
	}
	return nil
}

// Run resumes the persisted deployments and polls the pool health until the context is done.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.Resume(ctx); err != nil {
		return err
	}
	eg, ctx := errgroup.WithContext(ctx)
	for _, m := range o.monitors {
		m := m
		eg.Go(func() error {
			return m.Run(ctx)
		})
	}
	return eg.Wait()
}

// Close stops the running deployments and waits for them.
// The groups keep their last persisted state so a new process can resume them.
func (o *Orchestrator) Close() {
	o.stop()
	o.wg.Wait()
}

func (o *Orchestrator) group(id app.GroupID) (*Group, error) {
	g, exists := o.groups[id]
	if !exists {
		return nil, errors.WrapContext(errtype.ErrNotFound, errors.Context{
			Path:   "svc.Orchestrator.group",
			Params: errors.Params{"group": id},
		})
	}
	return g, nil
}

// start runs the group loop unless it is already running.
// The loop re-checks the group before exiting so a deployment accepted meanwhile is not missed.
func (o *Orchestrator) start(g *Group) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running[g.ID()] || o.ctx.Err() != nil {
		return
	}
	o.running[g.ID()] = true
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for {
			if err := g.Run(o.ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Println(errors.WrapContext(err, errors.Context{
					Path:   "svc.Orchestrator.start.Run",
					Params: errors.Params{"group": g.ID()},
				}))
			}
			o.mu.Lock()
			if o.ctx.Err() != nil || !g.Runnable() {
				delete(o.running, g.ID())
				o.mu.Unlock()
				return
			}
			o.mu.Unlock()
		}
	}()
}
