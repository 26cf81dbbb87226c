package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Paintersrp/warden/internal/proctree"
)

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree [pid]",
		Short: "Show the process tree below a pid",
		Long: "Tree lists a process and all of its descendants. With no argument it\n" +
			"starts at warden itself. Connectors are drawn when writing to a\n" +
			"terminal; piped output is plain tab-separated columns.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid := os.Getpid()
			if len(args) == 1 {
				parsed, err := strconv.Atoi(args[0])
				if err != nil || parsed <= 0 {
					return fmt.Errorf("invalid pid %q", args[0])
				}
				pid = parsed
			}
			if !proctree.Alive(int32(pid)) {
				return fmt.Errorf("no process with pid %d", pid)
			}

			nodes, err := proctree.Descendants(int32(pid))
			if err != nil {
				return err
			}

			pretty := term.IsTerminal(int(os.Stdout.Fd()))
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PID\tPPID\tNAME")
			for _, n := range nodes {
				name := n.Name
				if name == "" {
					name = "?"
				}
				if pretty && n.Depth > 0 {
					name = strings.Repeat("  ", n.Depth-1) + "└─ " + name
				}
				fmt.Fprintf(w, "%d\t%d\t%s\n", n.Pid, n.Ppid, name)
			}
			return w.Flush()
		},
	}
	return cmd
}
