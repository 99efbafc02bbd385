// Package config loads the deployment group definitions.
package config

import (
	"fmt"
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/beldeveloper/bluegreen/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
	"gopkg.in/yaml.v3"
	"os"
	"time"
)

// Defaults of the group definitions.
const (
	DefaultStepSize              = 10
	DefaultBakeTime              = time.Minute
	DefaultHealthCheckTimeout    = 30 * time.Second
	DefaultProvisionTimeout      = 15 * time.Minute
	DefaultProvisionPollInterval = 5 * time.Second
	DefaultHealthPath            = "/"
	DefaultHealthInterval        = 30 * time.Second
	DefaultHealthTimeout         = 5 * time.Second
	DefaultCapacity              = 2
	DefaultHoldTimeoutFactor     = 10
)

type file struct {
	Groups []group `yaml:"groups"`
}

type group struct {
	ID         app.GroupID      `yaml:"id"`
	Pools      []app.PoolConfig `yaml:"pools"`
	Active     app.PoolID       `yaml:"active"`
	Deployment deployment       `yaml:"deployment"`
	Health     app.HealthConfig `yaml:"health"`
}

// deployment keeps rollbackOnAlarm optional so that it can default to true.
type deployment struct {
	StepSize               int           `yaml:"stepSize"`
	BakeTime               time.Duration `yaml:"bakeTime"`
	HealthCheckGracePeriod time.Duration `yaml:"healthCheckGracePeriod"`
	HealthCheckTimeout     time.Duration `yaml:"healthCheckTimeout"`
	RollbackOnAlarm        *bool         `yaml:"rollbackOnAlarm"`
	HoldTimeout            time.Duration `yaml:"holdTimeout"`
	ProvisionTimeout       time.Duration `yaml:"provisionTimeout"`
	ProvisionPollInterval  time.Duration `yaml:"provisionPollInterval"`
}

// Load reads the group definitions from the YAML file.
func Load(path string) (app.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return app.Config{}, errors.WrapContext(err, errors.Context{Path: "config.Load.ReadFile", Params: errors.Params{"path": path}})
	}
	cfg, err := Parse(data)
	if err != nil {
		return app.Config{}, errors.WrapContext(err, errors.Context{Path: "config.Load.Parse", Params: errors.Params{"path": path}})
	}
	return cfg, nil
}

// Parse decodes the group definitions, applies the defaults and validates the result.
func Parse(data []byte) (app.Config, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return app.Config{}, errors.WrapContext(
			fmt.Errorf("%w: %v", errtype.ErrBadInput, err),
			errors.Context{Path: "config.Parse.Unmarshal"},
		)
	}
	cfg := app.Config{Groups: make([]app.GroupConfig, 0, len(f.Groups))}
	for _, g := range f.Groups {
		cfg.Groups = append(cfg.Groups, withDefaults(g))
	}
	if err := Validate(cfg); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

func withDefaults(g group) app.GroupConfig {
	d := g.Deployment
	res := app.GroupConfig{
		ID:     g.ID,
		Pools:  g.Pools,
		Active: g.Active,
		Deployment: app.DeploymentConfig{
			StepSize:               d.StepSize,
			BakeTime:               d.BakeTime,
			HealthCheckGracePeriod: d.HealthCheckGracePeriod,
			HealthCheckTimeout:     d.HealthCheckTimeout,
			RollbackOnAlarm:        d.RollbackOnAlarm == nil || *d.RollbackOnAlarm,
			HoldTimeout:            d.HoldTimeout,
			ProvisionTimeout:       d.ProvisionTimeout,
			ProvisionPollInterval:  d.ProvisionPollInterval,
		},
		Health: g.Health,
	}
	if len(res.Pools) == 0 {
		res.Pools = []app.PoolConfig{{ID: app.PoolBlue}, {ID: app.PoolGreen}}
	}
	for i := range res.Pools {
		c := &res.Pools[i].Capacity
		if *c == (app.Capacity{}) {
			*c = app.Capacity{Desired: DefaultCapacity, Min: DefaultCapacity, Max: DefaultCapacity}
		}
	}
	if res.Active == "" {
		res.Active = res.Pools[0].ID
	}
	if res.Deployment.StepSize == 0 {
		res.Deployment.StepSize = DefaultStepSize
	}
	if res.Deployment.BakeTime == 0 {
		res.Deployment.BakeTime = DefaultBakeTime
	}
	if res.Deployment.HealthCheckTimeout == 0 {
		res.Deployment.HealthCheckTimeout = DefaultHealthCheckTimeout
	}
	if res.Deployment.HoldTimeout == 0 {
		res.Deployment.HoldTimeout = DefaultHoldTimeoutFactor * res.Deployment.HealthCheckTimeout
	}
	if res.Deployment.ProvisionTimeout == 0 {
		res.Deployment.ProvisionTimeout = DefaultProvisionTimeout
	}
	if res.Deployment.ProvisionPollInterval == 0 {
		res.Deployment.ProvisionPollInterval = DefaultProvisionPollInterval
	}
	h := &res.Health
	if h.Protocol == "" {
		h.Protocol = app.HealthProtocolHTTP
	}
	if h.Path == "" {
		h.Path = DefaultHealthPath
	}
	if h.Interval == 0 {
		h.Interval = DefaultHealthInterval
	}
	if h.Timeout == 0 {
		h.Timeout = DefaultHealthTimeout
	}
	if h.Thresholds.EvaluationWindow == 0 {
		h.Thresholds.EvaluationWindow = 1
	}
	if h.Thresholds.DatapointsToAlarm == 0 {
		h.Thresholds.DatapointsToAlarm = 1
	}
	return res
}

// Validate checks the group definitions.
func Validate(cfg app.Config) error {
	if len(cfg.Groups) == 0 {
		return invalid("", "no groups are defined")
	}
	seen := make(map[app.GroupID]bool, len(cfg.Groups))
	for _, g := range cfg.Groups {
		if g.ID == "" {
			return invalid(g.ID, "group id is required")
		}
		if seen[g.ID] {
			return invalid(g.ID, "group is defined twice")
		}
		seen[g.ID] = true
		if len(g.Pools) != 2 || g.Pools[0].ID == "" || g.Pools[1].ID == "" || g.Pools[0].ID == g.Pools[1].ID {
			return invalid(g.ID, "exactly two pools with distinct ids are required")
		}
		if g.Active != g.Pools[0].ID && g.Active != g.Pools[1].ID {
			return invalid(g.ID, fmt.Sprintf("active pool %q is not one of the group pools", g.Active))
		}
		for _, p := range g.Pools {
			c := p.Capacity
			if c.Min < 0 || c.Min > c.Desired || c.Desired > c.Max {
				return invalid(g.ID, fmt.Sprintf("pool %s capacity must satisfy 0 <= min <= desired <= max", p.ID))
			}
		}
		d := g.Deployment
		if d.StepSize < 1 || d.StepSize > 100 {
			return invalid(g.ID, "step size must be within 1..100")
		}
		if d.BakeTime < 0 || d.HealthCheckGracePeriod < 0 || d.HealthCheckTimeout < 0 ||
			d.HoldTimeout < 0 || d.ProvisionTimeout < 0 || d.ProvisionPollInterval < 0 {
			return invalid(g.ID, "deployment durations must not be negative")
		}
		h := g.Health
		if h.Protocol != app.HealthProtocolHTTP && h.Protocol != app.HealthProtocolGRPC {
			return invalid(g.ID, fmt.Sprintf("unknown health protocol %q", h.Protocol))
		}
		if h.Interval < 0 || h.Timeout < 0 {
			return invalid(g.ID, "health durations must not be negative")
		}
		t := h.Thresholds
		if t.MinHealthy < 0 || t.MaxUnhealthy < 0 || t.EvaluationWindow < 0 || t.DatapointsToAlarm < 0 ||
			t.DatapointsToAlarm > t.EvaluationWindow {
			return invalid(g.ID, "health thresholds must not be negative and datapoints must fit the window")
		}
	}
	return nil
}

func invalid(group app.GroupID, msg string) error {
	return errors.WrapContext(
		fmt.Errorf("%w: %s", errtype.ErrBadInput, msg),
		errors.Context{Path: "config.Validate", Params: errors.Params{"group": group}},
	)
}
