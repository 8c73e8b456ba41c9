package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

// exitError carries a process exit code out of a command without printing.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

type rootOptions struct {
	configPath string
	logLevel   string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "copilotmeter",
		Short: "GitHub Copilot usage meter",
		Long: "copilotmeter finds your GitHub token, asks GitHub for your Copilot quota " +
			"and shows how much of it you have used, in the terminal, a status bar or the system tray.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, opts, formatText)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Settings file (default $XDG_CONFIG_HOME/copilotmeter/config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	root.AddCommand(
		newStatusCmd(opts),
		newWatchCmd(opts),
		newTrayCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)

	root.Version = Version
	root.SetVersionTemplate(fmt.Sprintf("copilotmeter %s\n", Version))

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "copilotmeter %s\n", Version)
		},
	}
}

func Execute() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintf(os.Stderr, "copilotmeter: %v\n", err)
	return 1
}
