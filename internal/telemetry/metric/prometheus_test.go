// Package metric provides Prometheus metrics for the bil client.
package metric

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.registry == nil {
		t.Error("registry field is nil")
	}
	if r.RequestsTotal == nil {
		t.Error("RequestsTotal is nil")
	}
	if r.RequestDuration == nil {
		t.Error("RequestDuration is nil")
	}
	if r.RequestsInFlight == nil {
		t.Error("RequestsInFlight is nil")
	}
	if r.SessionOperations == nil {
		t.Error("SessionOperations is nil")
	}
}

func TestInstrumentRoundTripper(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	r := NewRegistry()
	client := &http.Client{Transport: r.InstrumentRoundTripper(nil)}

	for i := 0; i < 2; i++ {
		resp, err := client.Get(server.URL)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		resp.Body.Close()
	}

	req, _ := http.NewRequest(http.MethodDelete, server.URL, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()

	if got := testutil.ToFloat64(r.RequestsTotal.WithLabelValues("200", "get")); got != 2 {
		t.Errorf("requests_total{code=200,method=get} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.RequestsTotal.WithLabelValues("404", "delete")); got != 1 {
		t.Errorf("requests_total{code=404,method=delete} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.RequestsInFlight); got != 0 {
		t.Errorf("requests_in_flight = %v, want 0", got)
	}
	if n := testutil.CollectAndCount(r.RequestDuration); n != 2 {
		t.Errorf("request_duration series = %d, want 2", n)
	}
}

func TestRecordOperation(t *testing.T) {
	r := NewRegistry()

	r.RecordOperation("add_payment", "ok")
	r.RecordOperation("add_payment", "ok")
	r.RecordOperation("delete_project", "read_only")

	if got := testutil.ToFloat64(r.SessionOperations.WithLabelValues("add_payment", "ok")); got != 2 {
		t.Errorf("add_payment ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.SessionOperations.WithLabelValues("delete_project", "read_only")); got != 1 {
		t.Errorf("delete_project read_only = %v, want 1", got)
	}
}

func TestSnapshot(t *testing.T) {
	r := NewRegistry()
	r.RecordOperation("list_projects", "ok")
	r.RequestDuration.WithLabelValues("get").Observe(0.25)

	samples, err := r.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	found := map[string]float64{}
	for _, s := range samples {
		if !strings.HasPrefix(s.Name, "bil_") {
			t.Errorf("snapshot contains foreign metric %q", s.Name)
		}
		found[s.Name+"{"+s.LabelString()+"}"] = s.Value
	}

	tests := map[string]float64{
		"bil_session_operations_total{operation=list_projects,result=ok}": 1,
		"bil_client_request_duration_seconds_count{method=get}":            1,
		"bil_client_request_duration_seconds_sum{method=get}":              0.25,
		"bil_client_requests_in_flight{}":                                  0,
	}
	for key, want := range tests {
		got, ok := found[key]
		if !ok {
			t.Errorf("snapshot missing %s", key)
			continue
		}
		if got != want {
			t.Errorf("%s = %v, want %v", key, got, want)
		}
	}
}

func TestSample_LabelString(t *testing.T) {
	s := Sample{Labels: map[string]string{"method": "get", "code": "200"}}
	if got := s.LabelString(); got != "code=200,method=get" {
		t.Errorf("LabelString() = %q", got)
	}
	if got := (Sample{}).LabelString(); got != "" {
		t.Errorf("empty LabelString() = %q", got)
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	r := NewRegistry()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				r.RecordOperation("list_projects", "ok")
				r.RequestDuration.WithLabelValues("get").Observe(0.001)
			}
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if got := testutil.ToFloat64(r.SessionOperations.WithLabelValues("list_projects", "ok")); got != 1000 {
		t.Errorf("list_projects ok = %v, want 1000", got)
	}
}
