package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootRegistersSubcommands(t *testing.T) {
	root := NewRootCmd()
	want := map[string]bool{"run": false, "tree": false, "version": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRunRequiresCommandOrJobFile(t *testing.T) {
	if _, err := resolveJob("", nil, false); err == nil {
		t.Fatal("expected error with neither command nor job file")
	}
}

func TestRunRejectsCommandAndJobFile(t *testing.T) {
	if _, err := resolveJob("job.yaml", []string{"true"}, false); err == nil {
		t.Fatal("expected error with both command and job file")
	}
}

func TestResolveJobFromArgs(t *testing.T) {
	job, err := resolveJob("", []string{"sleep", "5"}, true)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !job.Orphan || len(job.Command) != 2 || job.Command[0] != "sleep" {
		t.Fatalf("unexpected job %+v", job)
	}
	if err := job.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestTreeShowsSelf(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"tree"})
	if err := root.Execute(); err != nil {
		t.Fatalf("tree: %v", err)
	}
	if !strings.Contains(out.String(), "PID") {
		t.Fatalf("missing header in output:\n%s", out.String())
	}
}

func TestTreeRejectsBadPid(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"tree", "not-a-pid"})
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	if err := root.Execute(); err == nil {
		t.Fatal("expected error for malformed pid")
	}
}
