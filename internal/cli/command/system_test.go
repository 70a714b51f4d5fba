package command

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/yndnr/bil-go/internal/infra/buildinfo"
)

func TestSystemCommand_Structure(t *testing.T) {
	cmd := SystemCommand()
	if cmd.Name != "system" {
		t.Errorf("Name = %q, want %q", cmd.Name, "system")
	}

	subNames := make(map[string]bool)
	for _, sub := range cmd.Subcommands {
		subNames[sub.Name] = true
	}
	for _, name := range []string{"version", "metrics", "ping", "context"} {
		if !subNames[name] {
			t.Errorf("missing subcommand: %s", name)
		}
	}
}

func TestSystemVersion(t *testing.T) {
	res := runApp(t, nil, "", "-o", "json", "system", "version")
	if res.err != nil {
		t.Fatalf("run: %v", res.err)
	}

	var info buildinfo.Info
	if err := json.Unmarshal([]byte(res.stdout), &info); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, res.stdout)
	}
	if info.Version != buildinfo.Version || info.GoVersion == "" {
		t.Errorf("info = %+v", info)
	}
}

func TestSystemPing(t *testing.T) {
	server := newMockServer(t)
	server.reply("GET /ping", http.StatusOK, "pong")

	res := runApp(t, server, "", "system", "ping")
	if res.err != nil {
		t.Fatalf("run: %v", res.err)
	}
	if !strings.HasPrefix(res.stdout, "pong (") {
		t.Errorf("stdout = %q", res.stdout)
	}
	if !strings.Contains(res.stderr, "API reachable") {
		t.Errorf("stderr = %q", res.stderr)
	}
}

func TestSystemPing_Unreachable(t *testing.T) {
	server := newMockServer(t)
	server.handle("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		errorResponse(w, http.StatusServiceUnavailable, "down")
	})

	res := runApp(t, server, "", "system", "ping")
	if res.err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(res.stderr, "API unreachable") {
		t.Errorf("stderr = %q", res.stderr)
	}
}

func TestSystemMetrics(t *testing.T) {
	server := newMockServer(t)
	server.reply("GET /projects", http.StatusOK, []any{})

	res := runApp(t, server, "", "project", "list")
	if res.err != nil {
		t.Fatalf("run: %v", res.err)
	}

	// Reuse the runtime so the metrics of the first command are visible.
	rt := res.runtime(t)
	samples, err := rt.Metrics.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	found := map[string]bool{}
	for _, s := range samples {
		if s.Name == "bil_client_requests_total" && s.Labels["code"] == "200" && s.Labels["method"] == "get" {
			found["requests"] = s.Value == 1
		}
		if s.Name == "bil_session_operations_total" && s.Labels["operation"] == "list_projects" && s.Labels["result"] == "ok" {
			found["operations"] = s.Value == 1
		}
	}
	if !found["requests"] || !found["operations"] {
		t.Errorf("samples = %+v", samples)
	}
}

func TestSystemMetrics_Table(t *testing.T) {
	res := runApp(t, nil, "", "system", "metrics")
	if res.err != nil {
		t.Fatalf("run: %v", res.err)
	}
	for _, want := range []string{"METRIC", "bil_session_active_project", "bil_client_requests_in_flight"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestSystemContext_Reset(t *testing.T) {
	res := runApp(t, nil, "", "-o", "json", "system", "context", "--reset")
	if res.err != nil {
		t.Fatalf("run: %v", res.err)
	}

	var view contextView
	if err := json.Unmarshal([]byte(res.stdout), &view); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	if view.Project != 0 || view.ReadOnly {
		t.Errorf("view = %+v", view)
	}
}
