package command

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/bil-go/internal/core/domain"
)

func TestProjectCommand_Structure(t *testing.T) {
	cmd := ProjectCommand()
	if cmd.Name != "project" {
		t.Errorf("Name = %q, want %q", cmd.Name, "project")
	}

	subNames := make(map[string]*cli.Command)
	for _, sub := range cmd.Subcommands {
		subNames[sub.Name] = sub
	}
	for _, name := range []string{"list", "get", "history", "add", "rename", "delete"} {
		if subNames[name] == nil {
			t.Errorf("missing subcommand: %s", name)
		}
	}

	if get := subNames["get"]; get != nil && get.Flags[0].Names()[0] != "history" {
		t.Error("get should have --history flag")
	}
}

func TestProjectList(t *testing.T) {
	server := newMockServer(t)
	server.handle("GET /projects", rawJSON(`[{"id":1,"name":"Trip"},{"id":2,"name":"Flat"}]`))

	t.Run("table", func(t *testing.T) {
		res := runApp(t, server, "", "project", "list")
		if res.err != nil {
			t.Fatalf("run: %v", res.err)
		}
		for _, want := range []string{"ID", "NAME", "Trip", "Flat"} {
			if !strings.Contains(res.stdout, want) {
				t.Errorf("stdout missing %q:\n%s", want, res.stdout)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		res := runApp(t, server, "", "--output", "json", "project", "list")
		if res.err != nil {
			t.Fatalf("run: %v", res.err)
		}
		var got []domain.Project
		if err := json.Unmarshal([]byte(res.stdout), &got); err != nil {
			t.Fatalf("stdout is not JSON: %v\n%s", err, res.stdout)
		}
		if len(got) != 2 || got[1].Name != "Flat" {
			t.Errorf("projects = %+v", got)
		}
	})
}

func TestProjectGet(t *testing.T) {
	server := newMockServer(t)
	server.handle("GET /projects/1", rawJSON(sampleProject))

	res := runApp(t, server, "", "project", "get", "1")
	if res.err != nil {
		t.Fatalf("run: %v", res.err)
	}

	for _, want := range []string{"Project 1: Trip", "Pay group 2: Food", "Dinner", "10.5", "3.25", "(no payments)"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, res.stdout)
		}
	}
	if strings.Contains(res.stdout, "1050000000") {
		t.Error("persisted amounts should only show with --wide")
	}

	ac := res.runtime(t).Session.Context()
	if ac.ProjectID != 1 || ac.ReadOnly {
		t.Errorf("context = %+v, want active project 1, writable", ac)
	}
}

func TestProjectGet_Wide(t *testing.T) {
	server := newMockServer(t)
	server.handle("GET /projects/1", rawJSON(sampleProject))

	res := runApp(t, server, "", "--wide", "project", "get", "1")
	if res.err != nil {
		t.Fatalf("run: %v", res.err)
	}
	if !strings.Contains(res.stdout, "1050000000") {
		t.Errorf("--wide should show asset:\n%s", res.stdout)
	}
}

func TestProjectGet_JSONDecimals(t *testing.T) {
	server := newMockServer(t)
	server.handle("GET /projects/1", rawJSON(sampleProject))

	res := runApp(t, server, "", "-o", "json", "project", "get", "1")
	if res.err != nil {
		t.Fatalf("run: %v", res.err)
	}

	var got domain.Project
	if err := json.Unmarshal([]byte(res.stdout), &got); err != nil {
		t.Fatalf("stdout is not JSON: %v", err)
	}
	pay := got.PayGroups[0].Payments[0]
	if pay.Paid.String() != "10.5" || pay.Owed.String() != "3.25" {
		t.Errorf("paid/owed = %s/%s, want 10.5/3.25", pay.Paid, pay.Owed)
	}
}

func TestProjectGet_History(t *testing.T) {
	server := newMockServer(t)
	server.handle("GET /projects/1/history/2024-05-01T10:00", rawJSON(sampleProject))

	res := runApp(t, server, "", "project", "get", "--history", "2024-05-01T10:00", "1")
	if res.err != nil {
		t.Fatalf("run: %v", res.err)
	}
	if !strings.Contains(res.stdout, "read-only") {
		t.Errorf("stdout should flag the snapshot:\n%s", res.stdout)
	}
	if !res.runtime(t).Session.IsReadOnly() {
		t.Error("session should be read-only after reading history")
	}
}

func TestProjectGet_NotFound(t *testing.T) {
	server := newMockServer(t)
	server.handle("GET /projects/9", func(w http.ResponseWriter, r *http.Request) {
		errorResponse(w, http.StatusNotFound, "Project not found")
	})

	res := runApp(t, server, "", "project", "get", "9")
	if res.err == nil || !strings.Contains(res.err.Error(), "Project not found") {
		t.Errorf("err = %v", res.err)
	}
	if res.runtime(t).Session.Context().ProjectID != 0 {
		t.Error("failed fetch should not change the active project")
	}
}

func TestProjectHistory(t *testing.T) {
	server := newMockServer(t)
	server.reply("GET /projects/1/history", 200, []string{"s1", "s2"})

	res := runApp(t, server, "", "project", "history", "1")
	if res.err != nil {
		t.Fatalf("run: %v", res.err)
	}
	if !strings.Contains(res.stdout, "STATE") || !strings.Contains(res.stdout, "2  s2") {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestProjectAdd(t *testing.T) {
	server := newMockServer(t)
	server.reply("POST /projects", 200, map[string]int{"id": 7})

	res := runApp(t, server, "", "project", "add", "Trip")
	if res.err != nil {
		t.Fatalf("run: %v", res.err)
	}
	if !strings.Contains(res.stdout, "Project created: 7") {
		t.Errorf("stdout = %q", res.stdout)
	}

	reqs := server.recorded()
	if len(reqs) != 1 || string(reqs[0].Body) != `{"name":"Trip"}` {
		t.Errorf("requests = %+v", reqs)
	}
	if reqs[0].Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", reqs[0].Header.Get("Content-Type"))
	}
}

func TestProjectAdd_EmptyName(t *testing.T) {
	server := newMockServer(t)

	res := runApp(t, server, "", "project", "add", "  ")
	if !errors.Is(res.err, domain.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", res.err)
	}
	if n := len(server.recorded()); n != 0 {
		t.Errorf("sent %d requests, want none", n)
	}
}

func TestProjectRename(t *testing.T) {
	server := newMockServer(t)
	server.reply("PUT /projects/1", 200, nil)

	res := runApp(t, server, "", "project", "rename", "1", "Holiday")
	if res.err != nil {
		t.Fatalf("run: %v", res.err)
	}
	reqs := server.recorded()
	if len(reqs) != 1 || reqs[0].Method != http.MethodPut || string(reqs[0].Body) != `{"name":"Holiday"}` {
		t.Errorf("requests = %+v", reqs)
	}
}

func TestProjectDelete(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		stdin    string
		wantSent bool
	}{
		{"force", []string{"project", "delete", "-f", "1"}, "", true},
		{"confirmed", []string{"project", "delete", "1"}, "y\n", true},
		{"declined", []string{"project", "delete", "1"}, "n\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newMockServer(t)

			res := runApp(t, server, tt.stdin, tt.args...)
			if res.err != nil {
				t.Fatalf("run: %v", res.err)
			}

			reqs := server.recorded()
			sent := len(reqs) == 1 && reqs[0].Method == http.MethodDelete && reqs[0].Path == "/projects/1"
			if sent != tt.wantSent {
				t.Errorf("delete sent = %v, want %v (requests %+v)", sent, tt.wantSent, reqs)
			}
		})
	}
}
