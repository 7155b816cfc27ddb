package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/limaJavier/judging/pkg/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ model.Recorder = (*Recorder)(nil)

func TestRecorder(t *testing.T) {
	//** Arrange
	recorder := NewRecorder("")

	//** Act
	recorder.ObserveModel(120, 480)
	recorder.ObserveSolve("sat", 20*time.Millisecond)
	recorder.ObserveSolve("unsat", 5*time.Millisecond)
	recorder.ObserveSolve("sat", 10*time.Millisecond)
	recorder.ObserveResult(model.StatusOptimal.String(), 1)

	//** Assert
	assert.Equal(t, 120.0, testutil.ToFloat64(recorder.variables))
	assert.Equal(t, 480.0, testutil.ToFloat64(recorder.clauses))
	assert.Equal(t, 2.0, testutil.ToFloat64(recorder.solves.WithLabelValues("sat")))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.solves.WithLabelValues("unsat")))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.status.WithLabelValues("OPTIMAL")))
	assert.Equal(t, 0.0, testutil.ToFloat64(recorder.status.WithLabelValues("FEASIBLE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.spread))

	expected := `
# HELP judging_load_spread Difference between the busiest and the idlest ordinary judge
# TYPE judging_load_spread gauge
judging_load_spread 1
`
	assert.NoError(t, testutil.GatherAndCompare(recorder.Registry(), strings.NewReader(expected), "judging_load_spread"))
}

func TestWriteToTextfile(t *testing.T) {
	//** Arrange
	recorder := NewRecorder("2f1d6c1e")
	recorder.ObserveModel(10, 20)
	recorder.ObserveResult(model.StatusInfeasible.String(), 0)
	path := filepath.Join(t.TempDir(), "judging.prom")

	//** Act
	err := recorder.WriteToTextfile(path)

	//** Assert
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `judging_model_variables{run_id="2f1d6c1e"} 10`)
	assert.Contains(t, string(content), `judging_result_status{run_id="2f1d6c1e",status="INFEASIBLE"} 1`)
}
