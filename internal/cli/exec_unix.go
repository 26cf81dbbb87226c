//go:build !windows

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/Paintersrp/warden/internal/fork"
)

func init() {
	fork.Register(execRole, execChild)
}

// execChild runs in the supervised (or detached) child. It replaces the
// process image with the requested command, so the pid the guard watches is
// the command itself.
func execChild() {
	raw := os.Getenv(execSpecEnv)
	os.Unsetenv(execSpecEnv)

	var spec execSpec
	if err := json.Unmarshal([]byte(raw), &spec); err != nil || len(spec.Argv) == 0 {
		fmt.Fprintf(os.Stderr, "warden: malformed exec spec: %v\n", err)
		os.Exit(126)
	}
	path, err := exec.LookPath(spec.Argv[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "warden: %v\n", err)
		os.Exit(127)
	}
	if spec.Dir != "" {
		if err := os.Chdir(spec.Dir); err != nil {
			fmt.Fprintf(os.Stderr, "warden: %v\n", err)
			os.Exit(126)
		}
	}
	env := append(os.Environ(), spec.Env...)
	if err := syscall.Exec(path, spec.Argv, env); err != nil {
		fmt.Fprintf(os.Stderr, "warden: exec %s: %v\n", path, err)
		os.Exit(126)
	}
}
