package metrics

import (
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecordGroupState(t *testing.T) {
	Register()
	RecordGroupState("metrics-state", app.StateBaking)
	assert.Equal(t, 1.0, testutil.ToFloat64(groupState.WithLabelValues("metrics-state", string(app.StateBaking))))
	assert.Equal(t, 0.0, testutil.ToFloat64(groupState.WithLabelValues("metrics-state", string(app.StateIdle))))

	RecordGroupState("metrics-state", app.StatePromoted)
	assert.Equal(t, 0.0, testutil.ToFloat64(groupState.WithLabelValues("metrics-state", string(app.StateBaking))))
	assert.Equal(t, 1.0, testutil.ToFloat64(groupState.WithLabelValues("metrics-state", string(app.StatePromoted))))
}

func TestRecordPoolWeights(t *testing.T) {
	Register()
	RecordPoolWeights("metrics-weights", map[app.PoolID]int{app.PoolBlue: 75, app.PoolGreen: 25})
	assert.Equal(t, 75.0, testutil.ToFloat64(poolWeight.WithLabelValues("metrics-weights", "blue")))
	assert.Equal(t, 25.0, testutil.ToFloat64(poolWeight.WithLabelValues("metrics-weights", "green")))
}

func TestHandler(t *testing.T) {
	Register()
	RecordHealthEvaluation("metrics-handler", app.PoolGreen, true)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `bluegreen_health_evaluations_total{group="metrics-handler",pool="green",result="healthy"} 1`))
}
