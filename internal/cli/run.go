package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/warden/internal/config"
	"github.com/Paintersrp/warden/internal/fork"
	"github.com/Paintersrp/warden/internal/metrics"
)

// execRole is the re-exec role that turns a warden child into the
// supervised command via exec(2), keeping the pid the guard watches.
const execRole = "warden.exec"

// execSpecEnv carries the command spec from run to the re-executed child.
const execSpecEnv = "WARDEN_EXEC_SPEC"

type execSpec struct {
	Argv []string `json:"argv"`
	Dir  string   `json:"dir,omitempty"`
	Env  []string `json:"env,omitempty"`
}

func newRunCmd() *cobra.Command {
	var (
		orphan  bool
		jobFile string
	)
	cmd := &cobra.Command{
		Use:   "run [flags] -- command [args...]",
		Short: "Run a command under supervision",
		Long: "Run starts the command in its own guarded process group. If warden\n" +
			"exits, crashes, or is killed before the command finishes, the entire\n" +
			"command tree is killed with it. With --orphan the command is instead\n" +
			"detached to init and outlives warden.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := resolveJob(jobFile, args, orphan)
			if err != nil {
				return err
			}
			return runJob(cmd, job)
		},
	}
	cmd.Flags().BoolVar(&orphan, "orphan", false, "Detach the command to init instead of supervising it")
	cmd.Flags().StringVarP(&jobFile, "file", "f", "", "Path to a job file describing the command")
	return cmd
}

func resolveJob(jobFile string, args []string, orphan bool) (*config.Job, error) {
	if jobFile == "" {
		if len(args) == 0 {
			return nil, errors.New("run requires a command or a job file")
		}
		return &config.Job{Command: args, Orphan: orphan}, nil
	}
	if len(args) > 0 {
		return nil, errors.New("run takes either a job file or a command, not both")
	}
	job, err := config.Load(jobFile)
	if err != nil {
		return nil, err
	}
	if orphan {
		job.Orphan = true
	}
	return job, nil
}

func runJob(cmd *cobra.Command, job *config.Job) error {
	payload, err := json.Marshal(execSpec{Argv: job.Command, Dir: job.Dir, Env: job.Environ()})
	if err != nil {
		return fmt.Errorf("encode exec spec: %w", err)
	}
	os.Setenv(execSpecEnv, string(payload))
	defer os.Unsetenv(execSpecEnv)

	if job.Orphan {
		h, err := fork.Fork(execRole, true)
		if err != nil {
			return err
		}
		metrics.RecordFork("detached")
		fmt.Fprintf(cmd.OutOrStdout(), "detached %s (pid %d)\n", job.Command[0], h.Pid())
		return h.Close()
	}

	h, err := fork.Fork(execRole, false)
	if err != nil {
		return err
	}
	metrics.RecordFork("supervised")

	// Forward an interrupt to the child once; a second interrupt kills
	// warden itself and the guard sweeps the tree. The forwarder is joined
	// before Close so the handle never sees a Signal concurrent with its
	// release.
	waitDone := make(chan struct{})
	fwdDone := make(chan struct{})
	go func() {
		defer close(fwdDone)
		select {
		case <-cmd.Context().Done():
			_ = h.Signal(syscall.SIGTERM)
		case <-waitDone:
		}
	}()

	ws, err := h.Wait()
	close(waitDone)
	<-fwdDone
	if err != nil {
		_ = h.Close()
		metrics.RecordRelease()
		return fmt.Errorf("wait for %s: %w", job.Command[0], err)
	}
	if ws.Exited {
		metrics.RecordReap("exited")
	} else {
		metrics.RecordReap("signaled")
	}
	if err := h.Close(); err != nil {
		return err
	}
	metrics.RecordRelease()

	if !ws.Success() {
		return &exitError{status: ws}
	}
	return nil
}

// exitError carries the child's termination status to the process exit code.
type exitError struct {
	status fork.WaitStatus
}

func (e *exitError) Error() string {
	return fmt.Sprintf("command %s", e.status)
}

// ExitCode maps the child's status the way shells do: its exit code when it
// exited, 128+signal when it was killed.
func (e *exitError) ExitCode() int {
	if e.status.Exited {
		return e.status.Code
	}
	return 128 + int(e.status.Signal)
}
