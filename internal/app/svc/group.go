package svc

import (
	"context"
	"fmt"
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/beldeveloper/bluegreen/internal/app/errtype"
	"github.com/beldeveloper/bluegreen/internal/app/metrics"
	"github.com/beldeveloper/go-errors-context"
	log "github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
	"sync"
	"time"
)

const (
	// DefaultBakeTime is the wait between a traffic step and its health evaluation.
	DefaultBakeTime = time.Minute
	// DefaultHealthCheckTimeout bounds the health evaluation after a bake.
	DefaultHealthCheckTimeout = 30 * time.Second
	// DefaultProvisionTimeout bounds the wait for the idle pool to become ready.
	DefaultProvisionTimeout = 15 * time.Minute
	// DefaultProvisionPollInterval is the delay between provisioning status polls.
	DefaultProvisionPollInterval = 5 * time.Second
	// DefaultHoldTimeoutFactor sizes the default hold timeout in health check timeouts.
	DefaultHoldTimeoutFactor = 10
	// MaxFinishedDeployments is the number of ended deployments kept queryable per group.
	MaxFinishedDeployments = 100
)

// PersistFunc saves the group state after a transition.
type PersistFunc func(ctx context.Context, r app.StateRecord) error

// NewGroup creates a new instance of the deployment group with the whole traffic on the configured active pool.
func NewGroup(
	cfg app.GroupConfig,
	router app.TrafficRouter,
	monitor app.HealthMonitor,
	provisioner app.Provisioner,
	clk clock.WithTicker,
	persist PersistFunc,
) *Group {
	d := cfg.Deployment
	if d.StepSize <= 0 {
		d.StepSize = DefaultStepSize
	}
	if d.BakeTime <= 0 {
		d.BakeTime = DefaultBakeTime
	}
	if d.HealthCheckTimeout <= 0 {
		d.HealthCheckTimeout = DefaultHealthCheckTimeout
	}
	if d.ProvisionTimeout <= 0 {
		d.ProvisionTimeout = DefaultProvisionTimeout
	}
	if d.ProvisionPollInterval <= 0 {
		d.ProvisionPollInterval = DefaultProvisionPollInterval
	}
	if d.HoldTimeout <= 0 {
		d.HoldTimeout = DefaultHoldTimeoutFactor * d.HealthCheckTimeout
	}
	g := &Group{
		id:          cfg.ID,
		cfg:         d,
		thresholds:  cfg.Health.Thresholds,
		router:      router,
		monitor:     monitor,
		provisioner: provisioner,
		clk:         clk,
		persist:     persist,
		pools:       make(map[app.PoolID]*app.Pool, len(cfg.Pools)),
		active:      cfg.Active,
		state:       app.StateIdle,
		finished:    make(map[string]app.DeploymentStatus),
	}
	for _, pc := range cfg.Pools {
		p := &app.Pool{ID: pc.ID, Capacity: pc.Capacity, Health: app.HealthUnknown}
		if pc.Version != "" {
			v := pc.Version
			p.Version = &v
		}
		g.pools[pc.ID] = p
		g.order = append(g.order, pc.ID)
		if pc.ID != cfg.Active {
			g.idle = pc.ID
		}
	}
	g.syncWeightsLocked()
	return g
}

// Group is the deployment group state machine. It exclusively owns its two pools.
// Transitions are serialized by mu; waits happen outside of it so reads never block on a bake.
type Group struct {
	id          app.GroupID
	cfg         app.DeploymentConfig
	thresholds  app.HealthThresholds
	router      app.TrafficRouter
	monitor     app.HealthMonitor
	provisioner app.Provisioner
	clk         clock.WithTicker
	persist     PersistFunc
	order       []app.PoolID

	mu        sync.Mutex
	pools     map[app.PoolID]*app.Pool
	active    app.PoolID
	idle      app.PoolID
	state     app.State
	deployID  string
	request   *app.DeploymentRequest
	plan      []int
	step      int
	previous  map[app.PoolID]int
	provision app.ProvisionHandle
	reason    string
	stalled   bool
	startedAt time.Time
	updatedAt time.Time
	shiftedAt time.Time
	holdSince time.Time
	canceled  bool
	cancelCh  chan struct{}
	done      chan struct{}
	finished  map[string]app.DeploymentStatus
	// finishedOrder lists the keys of finished from the oldest.
	finishedOrder []string
}

// ID returns the group identifier.
func (g *Group) ID() app.GroupID {
	return g.id
}

// Begin accepts a new deployment and marks the idle pool with the new version.
// The traffic weights are not touched.
func (g *Group) Begin(ctx context.Context, id string, req app.DeploymentRequest) error {
	if req.Version == "" {
		return errors.WrapContext(
			fmt.Errorf("%w: version is required", errtype.ErrBadInput),
			errors.Context{Path: "svc.Group.Begin", Params: errors.Params{"group": g.id}},
		)
	}
	plan, err := PlanSteps(req.Strategy, g.cfg.StepSize)
	if err != nil {
		return errors.WrapContext(err, errors.Context{
			Path:   "svc.Group.Begin.PlanSteps",
			Params: errors.Params{"group": g.id, "strategy": req.Strategy.Type},
		})
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == app.StatePromoted || g.state == app.StateFailed {
		if g.deployID != "" {
			g.archiveLocked()
		}
		g.state = app.StateIdle
	}
	if g.state != app.StateIdle {
		return errors.WrapContext(
			fmt.Errorf("%w: group %s is %s", errtype.ErrDeploymentInProgress, g.id, g.state),
			errors.Context{Path: "svc.Group.Begin", Params: errors.Params{"group": g.id, "deployment": g.deployID}},
		)
	}
	prevVersion := g.pools[g.idle].Version
	version := req.Version
	g.deployID = id
	g.request = &req
	g.plan = plan
	g.step = 0
	g.previous = g.router.Weights()
	g.provision = app.ProvisionHandle{}
	g.shiftedAt = time.Time{}
	g.holdSince = time.Time{}
	g.reason = ""
	g.stalled = false
	g.canceled = false
	g.cancelCh = make(chan struct{})
	g.done = make(chan struct{})
	g.startedAt = g.clk.Now()
	g.pools[g.idle].Version = &version
	if err := g.transitionLocked(ctx, app.StateProvisioningIdlePool, nil); err != nil {
		g.state = app.StateIdle
		g.deployID = ""
		g.request = nil
		g.plan = nil
		g.done = nil
		g.pools[g.idle].Version = prevVersion
		return errors.WrapContext(err, errors.Context{
			Path:   "svc.Group.Begin.transition",
			Params: errors.Params{"group": g.id, "deployment": id},
		})
	}
	log.WithFields(log.Fields{
		"group":      g.id,
		"deployment": id,
		"version":    req.Version,
		"strategy":   req.Strategy.Type,
		"steps":      plan,
	}).Info("Deployment is accepted")
	return nil
}

// Run drives the current deployment until it reaches a terminal state, stalls, or the context is done.
func (g *Group) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if g.tick(ctx) {
			return nil
		}
	}
}

// Cancel requests a rollback of the deployment. It is observed at the next tick
// and is a no-op for deployments that already ended or are rolling back.
func (g *Group) Cancel(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id != g.deployID || id == "" {
		if _, exists := g.finished[id]; exists {
			return nil
		}
		return errors.WrapContext(errtype.ErrNotFound, errors.Context{
			Path:   "svc.Group.Cancel",
			Params: errors.Params{"group": g.id, "deployment": id},
		})
	}
	switch g.state {
	case app.StateProvisioningIdlePool, app.StateShifting, app.StateBaking:
		if !g.canceled {
			g.canceled = true
			close(g.cancelCh)
			log.WithFields(log.Fields{"group": g.id, "deployment": id}).Info("Deployment cancel is requested")
		}
	}
	return nil
}

// Recover clears a stalled rollback so that Run retries restoring the previous weights.
func (g *Group) Recover(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != app.StateRollingBack || !g.stalled {
		return errors.WrapContext(
			fmt.Errorf("%w: group %s has no stalled rollback", errtype.ErrBadInput, g.id),
			errors.Context{Path: "svc.Group.Recover", Params: errors.Params{"state": g.state}},
		)
	}
	g.stalled = false
	g.done = make(chan struct{})
	log.WithFields(log.Fields{"group": g.id, "deployment": g.deployID}).Info("Rollback is resumed")
	_ = g.persistLocked(ctx)
	return nil
}

// Runnable reports whether the group has a deployment that Run can drive.
func (g *Group) Runnable() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.state.Terminal() && !g.stalled
}

// Status returns the status of the deployment with the given ID.
func (g *Group) Status(id string) (app.DeploymentStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id != "" && id == g.deployID {
		return g.statusLocked(), nil
	}
	if s, exists := g.finished[id]; exists {
		return s, nil
	}
	return app.DeploymentStatus{}, errors.WrapContext(errtype.ErrNotFound, errors.Context{
		Path:   "svc.Group.Status",
		Params: errors.Params{"group": g.id, "deployment": id},
	})
}

// Done returns a channel closed once the deployment reaches a terminal state or its rollback stalls.
func (g *Group) Done(id string) (<-chan struct{}, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id != "" && id == g.deployID && g.done != nil {
		return g.done, nil
	}
	if _, exists := g.finished[id]; exists || (id != "" && id == g.deployID) {
		ch := make(chan struct{})
		close(ch)
		return ch, nil
	}
	return nil, errors.WrapContext(errtype.ErrNotFound, errors.Context{
		Path:   "svc.Group.Done",
		Params: errors.Params{"group": g.id, "deployment": id},
	})
}

// GroupStatus returns the group, its pools and the current deployment.
func (g *Group) GroupStatus() app.GroupStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	res := app.GroupStatus{
		ID:     g.id,
		State:  g.state,
		Active: g.active,
		Idle:   g.idle,
		Pools:  make([]app.Pool, 0, len(g.order)),
	}
	for _, id := range g.order {
		p := *g.pools[id]
		if p.Version != nil {
			v := *p.Version
			p.Version = &v
		}
		res.Pools = append(res.Pools, p)
	}
	if g.deployID != "" {
		s := g.statusLocked()
		res.Deployment = &s
	}
	return res
}

// Weights returns the current traffic weights of the group.
func (g *Group) Weights() map[app.PoolID]int {
	return g.router.Weights()
}

// Record returns the persisted form of the group state.
func (g *Group) Record() app.StateRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.recordLocked()
}

// Restore loads a persisted state. The recorded weights are applied to the router.
func (g *Group) Restore(r app.StateRecord) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, activeExists := g.pools[r.Active]
	_, idleExists := g.pools[r.Idle]
	if !activeExists || !idleExists || r.Active == r.Idle {
		return errors.WrapContext(
			fmt.Errorf("%w: recorded pools %q/%q don't match the group", errtype.ErrBadInput, r.Active, r.Idle),
			errors.Context{Path: "svc.Group.Restore", Params: errors.Params{"group": g.id}},
		)
	}
	var plan []int
	if r.Request != nil {
		var err error
		plan, err = PlanSteps(r.Request.Strategy, g.cfg.StepSize)
		if err != nil {
			return errors.WrapContext(err, errors.Context{
				Path:   "svc.Group.Restore.PlanSteps",
				Params: errors.Params{"group": g.id, "deployment": r.DeploymentID},
			})
		}
	} else if !r.State.Terminal() {
		return errors.WrapContext(
			fmt.Errorf("%w: recorded state %s has no request", errtype.ErrBadInput, r.State),
			errors.Context{Path: "svc.Group.Restore", Params: errors.Params{"group": g.id}},
		)
	}
	if len(r.Weights) > 0 {
		if err := g.router.SetWeights(r.Weights); err != nil {
			return errors.WrapContext(err, errors.Context{
				Path:   "svc.Group.Restore.SetWeights",
				Params: errors.Params{"group": g.id},
			})
		}
	}
	g.state = r.State
	g.active = r.Active
	g.idle = r.Idle
	g.deployID = r.DeploymentID
	g.request = r.Request
	g.plan = plan
	g.step = r.Step
	g.previous = r.PreviousWeights
	g.provision = app.ProvisionHandle{ID: r.ProvisionID}
	g.reason = r.Reason
	g.stalled = r.Stalled
	g.startedAt = r.StartedAt
	g.updatedAt = r.UpdatedAt
	g.shiftedAt = r.ShiftedAt
	g.holdSince = time.Time{}
	for id, v := range r.Versions {
		v := v
		if p, exists := g.pools[id]; exists {
			p.Version = &v
		}
	}
	g.canceled = false
	g.cancelCh = make(chan struct{})
	g.done = make(chan struct{})
	if g.state.Terminal() || g.stalled {
		close(g.done)
		g.done = nil
	}
	g.syncWeightsLocked()
	metrics.RecordGroupState(g.id, g.state)
	return nil
}

func (g *Group) tick(ctx context.Context) bool {
	g.mu.Lock()
	if g.canceled {
		switch g.state {
		case app.StateProvisioningIdlePool, app.StateShifting, app.StateBaking:
			_ = g.transitionLocked(ctx, app.StateRollingBack, fmt.Errorf("%w by the operator", errtype.ErrCanceled))
		}
	}
	state, stalled := g.state, g.stalled
	g.mu.Unlock()
	if stalled {
		return true
	}
	switch state {
	case app.StateProvisioningIdlePool:
		g.provisionIdlePool(ctx)
	case app.StateShifting:
		g.shift(ctx)
	case app.StateBaking:
		g.bake(ctx)
	case app.StateRollingBack:
		g.rollback(ctx)
	default:
		return true
	}
	return false
}

func (g *Group) provisionIdlePool(ctx context.Context) {
	g.mu.Lock()
	pool := *g.pools[g.idle]
	h := g.provision
	version := g.request.Version
	cancelCh := g.cancelCh
	g.mu.Unlock()
	if h.ID == "" {
		var err error
		h, err = g.provisioner.Provision(ctx, g.id, pool.ID, version, pool.Capacity)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			g.fail(ctx, fmt.Errorf("%w: %v", errtype.ErrProvisioningFailure, err))
			return
		}
		g.mu.Lock()
		g.provision = h
		_ = g.persistLocked(ctx)
		g.mu.Unlock()
	}
	err := g.waitProvisioned(ctx, h, cancelCh)
	switch {
	case ctx.Err() != nil, errors.Is(err, errtype.ErrCanceled):
		return
	case err != nil:
		g.fail(ctx, err)
	default:
		g.mu.Lock()
		_ = g.transitionLocked(ctx, app.StateShifting, nil)
		g.mu.Unlock()
	}
}

func (g *Group) waitProvisioned(ctx context.Context, h app.ProvisionHandle, cancelCh <-chan struct{}) error {
	deadline := g.clk.Now().Add(g.cfg.ProvisionTimeout)
	for {
		st, err := g.provisioner.Status(ctx, h)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Println(errors.WrapContext(err, errors.Context{
				Path:   "svc.Group.waitProvisioned.Status",
				Params: errors.Params{"group": g.id, "provision": h.ID},
			}))
		} else {
			switch st.Status {
			case app.ProvisionReady:
				return nil
			case app.ProvisionFailed:
				return fmt.Errorf("%w: %s", errtype.ErrProvisioningFailure, st.Message)
			}
		}
		if !g.clk.Now().Before(deadline) {
			return fmt.Errorf("%w: pool was not ready within %s", errtype.ErrTimeoutExceeded, g.cfg.ProvisionTimeout)
		}
		if err := g.wait(ctx, cancelCh, g.cfg.ProvisionPollInterval); err != nil {
			return err
		}
	}
}

func (g *Group) shift(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	next := g.step + 1
	if next > len(g.plan) {
		g.promoteLocked(ctx)
		return
	}
	w := g.plan[next-1]
	err := g.router.SetWeights(map[app.PoolID]int{g.idle: w, g.active: 100 - w})
	if err != nil {
		_ = g.transitionLocked(ctx, app.StateRollingBack, err)
		return
	}
	g.step = next
	g.shiftedAt = g.clk.Now()
	g.holdSince = time.Time{}
	g.syncWeightsLocked()
	log.WithFields(log.Fields{
		"group":      g.id,
		"deployment": g.deployID,
		"step":       fmt.Sprintf("%d/%d", next, len(g.plan)),
	}).Infof("Shifted %d%% of traffic to pool %s", w, g.idle)
	_ = g.transitionLocked(ctx, app.StateBaking, nil)
}

func (g *Group) bake(ctx context.Context) {
	g.mu.Lock()
	idle := g.idle
	wait := g.cfg.BakeTime
	if g.request.Strategy.Interval > 0 {
		wait = g.request.Strategy.Interval
	}
	if g.step == 1 {
		wait += g.cfg.HealthCheckGracePeriod
	}
	thresholds := g.thresholds
	if g.request.Thresholds != nil {
		thresholds = *g.request.Thresholds
	}
	cancelCh := g.cancelCh
	shiftedAt := g.shiftedAt
	g.mu.Unlock()

	if err := g.wait(ctx, cancelCh, wait); err != nil {
		return
	}
	hctx, cancel := context.WithTimeout(ctx, g.cfg.HealthCheckTimeout)
	snap := g.monitor.Refresh(hctx, idle)
	timedOut := hctx.Err() == context.DeadlineExceeded
	cancel()
	if ctx.Err() != nil {
		return
	}
	healthy := !timedOut && g.monitor.IsHealthy(idle, thresholds, shiftedAt)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.pools[idle].Health = snap.Status
	if !healthy && !timedOut && !g.cfg.RollbackOnAlarm && g.holdSince.IsZero() {
		g.holdSince = g.clk.Now()
	}
	switch {
	case timedOut:
		_ = g.transitionLocked(ctx, app.StateRollingBack, fmt.Errorf(
			"%w: health of pool %s was not observed within %s", errtype.ErrTimeoutExceeded, idle, g.cfg.HealthCheckTimeout,
		))
	case !healthy && g.cfg.RollbackOnAlarm:
		_ = g.transitionLocked(ctx, app.StateRollingBack, fmt.Errorf(
			"%w: pool %s is %s with %d healthy and %d unhealthy hosts",
			errtype.ErrHealthCheckFailure, idle, snap.Status, snap.HealthyCount, snap.UnhealthyCount,
		))
	case !healthy && !g.clk.Now().Before(g.holdSince.Add(g.cfg.HoldTimeout)):
		_ = g.transitionLocked(ctx, app.StateRollingBack, fmt.Errorf(
			"%w: pool %s stayed %s for %s", errtype.ErrTimeoutExceeded, idle, snap.Status, g.cfg.HoldTimeout,
		))
	case !healthy:
		log.WithFields(log.Fields{
			"group":      g.id,
			"deployment": g.deployID,
			"pool":       idle,
		}).Warn("Pool is unhealthy, holding the current step")
	case g.step >= len(g.plan):
		g.promoteLocked(ctx)
	default:
		_ = g.transitionLocked(ctx, app.StateShifting, nil)
	}
}

func (g *Group) rollback(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.router.SetWeights(g.previous); err != nil {
		err = fmt.Errorf("%w: %v", errtype.ErrRollbackFailure, err)
		if !g.stalled {
			g.reason = errtype.Reason(err) + " (rolling back after " + g.reason + ")"
		}
		g.stalled = true
		g.closeDoneLocked()
		log.WithFields(log.Fields{
			"group":      g.id,
			"deployment": g.deployID,
		}).Error(errors.WrapContext(err, errors.Context{Path: "svc.Group.rollback.SetWeights"}))
		_ = g.persistLocked(ctx)
		return
	}
	g.syncWeightsLocked()
	_ = g.transitionLocked(ctx, app.StateFailed, nil)
}

func (g *Group) promoteLocked(ctx context.Context) {
	g.active, g.idle = g.idle, g.active
	_ = g.transitionLocked(ctx, app.StatePromoted, nil)
}

func (g *Group) fail(ctx context.Context, cause error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_ = g.transitionLocked(ctx, app.StateFailed, cause)
}

func (g *Group) wait(ctx context.Context, cancelCh <-chan struct{}, d time.Duration) error {
	t := g.clk.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-cancelCh:
		return errtype.ErrCanceled
	case <-t.C():
		return nil
	}
}

func (g *Group) transitionLocked(ctx context.Context, to app.State, cause error) error {
	from := g.state
	g.state = to
	if cause != nil {
		g.reason = errtype.Reason(cause)
	}
	g.updatedAt = g.clk.Now()
	fields := log.Fields{"group": g.id, "deployment": g.deployID, "from": from, "to": to}
	if cause != nil {
		fields["reason"] = g.reason
	}
	log.WithFields(fields).Info("Deployment group transition")
	metrics.RecordTransition(g.id, from, to)
	metrics.RecordGroupState(g.id, to)
	if to == app.StatePromoted || to == app.StateFailed {
		metrics.RecordDeploymentOutcome(g.id, to)
		g.closeDoneLocked()
	}
	return g.persistLocked(ctx)
}

// archiveLocked keeps the status of the current deployment queryable after the next one begins.
func (g *Group) archiveLocked() {
	if _, exists := g.finished[g.deployID]; !exists {
		g.finishedOrder = append(g.finishedOrder, g.deployID)
	}
	g.finished[g.deployID] = g.statusLocked()
	for len(g.finishedOrder) > MaxFinishedDeployments {
		delete(g.finished, g.finishedOrder[0])
		g.finishedOrder = g.finishedOrder[1:]
	}
}

func (g *Group) closeDoneLocked() {
	if g.done != nil {
		close(g.done)
		g.done = nil
	}
}

func (g *Group) persistLocked(ctx context.Context) error {
	if g.persist == nil {
		return nil
	}
	err := g.persist(context.WithoutCancel(ctx), g.recordLocked())
	if err != nil {
		err = errors.WrapContext(err, errors.Context{
			Path:   "svc.Group.persist",
			Params: errors.Params{"group": g.id, "state": g.state},
		})
		log.Println(err)
	}
	return err
}

func (g *Group) statusLocked() app.DeploymentStatus {
	return app.DeploymentStatus{
		Handle:         app.DeploymentHandle{ID: g.deployID, GroupID: g.id},
		State:          g.state,
		CurrentWeights: g.router.Weights(),
		LastError:      g.reason,
		Step:           g.step,
		TotalSteps:     len(g.plan),
		Stalled:        g.stalled,
		UpdatedAt:      g.updatedAt,
	}
}

func (g *Group) recordLocked() app.StateRecord {
	r := app.StateRecord{
		GroupID:      g.id,
		State:        g.state,
		Weights:      g.router.Weights(),
		Active:       g.active,
		Idle:         g.idle,
		DeploymentID: g.deployID,
		Request:      g.request,
		Step:         g.step,
		ProvisionID:  g.provision.ID,
		Reason:       g.reason,
		Stalled:      g.stalled,
		StartedAt:    g.startedAt,
		UpdatedAt:    g.updatedAt,
		ShiftedAt:    g.shiftedAt,
	}
	if g.request != nil {
		r.RequestedVersion = g.request.Version
	}
	if g.previous != nil {
		r.PreviousWeights = make(map[app.PoolID]int, len(g.previous))
		for k, v := range g.previous {
			r.PreviousWeights[k] = v
		}
	}
	for id, p := range g.pools {
		if p.Version == nil {
			continue
		}
		if r.Versions == nil {
			r.Versions = make(map[app.PoolID]string, len(g.pools))
		}
		r.Versions[id] = *p.Version
	}
	return r
}

func (g *Group) syncWeightsLocked() {
	w := g.router.Weights()
	for id, p := range g.pools {
		p.Weight = w[id]
	}
}
