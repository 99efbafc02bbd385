// Package staterepotest provides contract tests for app.StateRepo implementations.
package staterepotest

import (
	"context"
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/beldeveloper/bluegreen/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

// Factory creates a fresh repository for each test invocation.
type Factory func(t *testing.T) app.StateRepo

// Run exercises the app.StateRepo contract.
func Run(t *testing.T, factory Factory) {
	t.Run("SaveAndFind", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		rec := bakingRecord("web")
		require.NoError(t, repo.Save(ctx, rec))

		got, err := repo.FindByGroup(ctx, "web")
		require.NoError(t, err)
		assertRecord(t, rec, got)
	})

	t.Run("SaveOverwrites", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		rec := bakingRecord("web")
		require.NoError(t, repo.Save(ctx, rec))

		rec.State = app.StateRollingBack
		rec.Reason = "HealthCheckFailure: pool green is unhealthy"
		rec.Stalled = true
		rec.UpdatedAt = rec.UpdatedAt.Add(time.Minute)
		require.NoError(t, repo.Save(ctx, rec))

		got, err := repo.FindByGroup(ctx, "web")
		require.NoError(t, err)
		assertRecord(t, rec, got)
		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("FindAll", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()
		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		require.NoError(t, repo.Save(ctx, bakingRecord("web")))
		require.NoError(t, repo.Save(ctx, idleRecord("api")))
		all, err = repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, app.GroupID("api"), all[0].GroupID)
		assert.Equal(t, app.StateIdle, all[0].State)
		assert.Nil(t, all[0].Request)
		assert.Equal(t, app.GroupID("web"), all[1].GroupID)
	})

	t.Run("FindByGroupNotFound", func(t *testing.T) {
		repo := factory(t)
		_, err := repo.FindByGroup(context.Background(), "missing")
		assert.True(t, errors.Is(err, errtype.ErrNotFound), err)
	})
}

func bakingRecord(group app.GroupID) app.StateRecord {
	return app.StateRecord{
		GroupID:          group,
		State:            app.StateBaking,
		Weights:          map[app.PoolID]int{app.PoolBlue: 70, app.PoolGreen: 30},
		PreviousWeights:  map[app.PoolID]int{app.PoolBlue: 100, app.PoolGreen: 0},
		RequestedVersion: "v2",
		Active:           app.PoolBlue,
		Idle:             app.PoolGreen,
		Versions:         map[app.PoolID]string{app.PoolBlue: "v1", app.PoolGreen: "v2"},
		DeploymentID:     "3f1c9a52-50b4-4d6e-9a3c-0f4f3b1f2d11",
		Request: &app.DeploymentRequest{
			Version: "v2",
			Strategy: app.Strategy{
				Type:     app.StrategyCanary,
				Steps:    []int{10, 20, 70},
				Interval: 90 * time.Second,
			},
			Thresholds: &app.HealthThresholds{MinHealthy: 2, EvaluationWindow: 3, DatapointsToAlarm: 2},
		},
		Step:        2,
		ProvisionID: "p-42",
		StartedAt:   time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 10, 19, 12, 4, 30, 0, time.UTC),
		ShiftedAt:   time.Date(2026, 10, 19, 12, 4, 0, 0, time.UTC),
	}
}

func idleRecord(group app.GroupID) app.StateRecord {
	return app.StateRecord{
		GroupID:   group,
		State:     app.StateIdle,
		Weights:   map[app.PoolID]int{app.PoolBlue: 100, app.PoolGreen: 0},
		Active:    app.PoolBlue,
		Idle:      app.PoolGreen,
		UpdatedAt: time.Date(2026, 10, 19, 11, 0, 0, 0, time.UTC),
	}
}

func assertRecord(t *testing.T, want, got app.StateRecord) {
	t.Helper()
	assert.True(t, want.StartedAt.Equal(got.StartedAt), "StartedAt = %s, want %s", got.StartedAt, want.StartedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "UpdatedAt = %s, want %s", got.UpdatedAt, want.UpdatedAt)
	assert.True(t, want.ShiftedAt.Equal(got.ShiftedAt), "ShiftedAt = %s, want %s", got.ShiftedAt, want.ShiftedAt)
	want.StartedAt, got.StartedAt = time.Time{}, time.Time{}
	want.UpdatedAt, got.UpdatedAt = time.Time{}, time.Time{}
	want.ShiftedAt, got.ShiftedAt = time.Time{}, time.Time{}
	assert.Equal(t, want, got)
}
