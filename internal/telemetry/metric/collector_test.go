// Package metric provides Prometheus metrics for the bil client.
package metric

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector(t *testing.T) {
	state := ContextState{ProjectID: 4, PayGroupID: 9, ReadOnly: true}
	c := NewCollector(func() ContextState { return state })

	expected := `
# HELP bil_session_active_paygroup Active pay group id, 0 when none is selected
# TYPE bil_session_active_paygroup gauge
bil_session_active_paygroup 9
# HELP bil_session_active_project Active project id, 0 when none is selected
# TYPE bil_session_active_project gauge
bil_session_active_project 4
# HELP bil_session_read_only 1 when the session views a historical snapshot
# TYPE bil_session_read_only gauge
bil_session_read_only 1
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected collector output: %v", err)
	}
}

func TestCollector_ReadsStateAtGather(t *testing.T) {
	var state ContextState
	r := NewRegistry()
	r.MustRegister(NewCollector(func() ContextState { return state }))

	state.ProjectID = 12

	samples, err := r.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	for _, s := range samples {
		if s.Name == "bil_session_active_project" {
			if s.Value != 12 {
				t.Errorf("active_project = %v, want 12", s.Value)
			}
			return
		}
	}
	t.Error("active_project missing from snapshot")
}
