package svc

import (
	"errors"
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/beldeveloper/bluegreen/internal/app/errtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
)

func TestRouterInitialWeights(t *testing.T) {
	r := NewRouter("g", app.PoolBlue, app.PoolGreen)
	assert.Equal(t, map[app.PoolID]int{app.PoolBlue: 100, app.PoolGreen: 0}, r.Weights())
}

func TestRouterSetWeights(t *testing.T) {
	r := NewRouter("g", app.PoolBlue, app.PoolGreen)
	for green := 0; green <= 100; green++ {
		w := map[app.PoolID]int{app.PoolBlue: 100 - green, app.PoolGreen: green}
		require.NoError(t, r.SetWeights(w))
		got := r.Weights()
		assert.Equal(t, w, got)
		assert.Equal(t, 100, got[app.PoolBlue]+got[app.PoolGreen])
	}
}

func TestRouterSetWeightsInvalid(t *testing.T) {
	tests := []struct {
		name string
		w    map[app.PoolID]int
	}{
		{name: "sum below 100", w: map[app.PoolID]int{app.PoolBlue: 50, app.PoolGreen: 40}},
		{name: "sum above 100", w: map[app.PoolID]int{app.PoolBlue: 60, app.PoolGreen: 50}},
		{name: "negative", w: map[app.PoolID]int{app.PoolBlue: 110, app.PoolGreen: -10}},
		{name: "missing pool", w: map[app.PoolID]int{app.PoolBlue: 100}},
		{name: "unknown pool", w: map[app.PoolID]int{app.PoolBlue: 50, "red": 50}},
		{name: "extra pool", w: map[app.PoolID]int{app.PoolBlue: 50, app.PoolGreen: 50, "red": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter("g", app.PoolBlue, app.PoolGreen)
			require.NoError(t, r.SetWeights(map[app.PoolID]int{app.PoolBlue: 70, app.PoolGreen: 30}))
			err := r.SetWeights(tt.w)
			assert.True(t, errors.Is(err, errtype.ErrInvalidWeightDistribution), "got %v", err)
			assert.Equal(t, map[app.PoolID]int{app.PoolBlue: 70, app.PoolGreen: 30}, r.Weights())
		})
	}
}

func TestRouterWeightsIsACopy(t *testing.T) {
	r := NewRouter("g", app.PoolBlue, app.PoolGreen)
	w := r.Weights()
	w[app.PoolBlue] = 0
	assert.Equal(t, 100, r.Weights()[app.PoolBlue])

	in := map[app.PoolID]int{app.PoolBlue: 40, app.PoolGreen: 60}
	require.NoError(t, r.SetWeights(in))
	in[app.PoolBlue] = 100
	assert.Equal(t, 40, r.Weights()[app.PoolBlue])
}

func TestRouterConcurrentReadsSeeValidDistributions(t *testing.T) {
	r := NewRouter("g", app.PoolBlue, app.PoolGreen)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = r.SetWeights(map[app.PoolID]int{app.PoolBlue: 100 - i%101, app.PoolGreen: i % 101})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			w := r.Weights()
			assert.Equal(t, 100, w[app.PoolBlue]+w[app.PoolGreen])
		}
	}()
	wg.Wait()
}
