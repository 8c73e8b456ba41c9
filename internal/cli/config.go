package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tnunamak/copilotmeter/internal/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or change settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the settings file path",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), opts.settingsPath())
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective settings (token redacted)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load(opts.settingsPath())
				if err != nil {
					return err
				}
				cfg.Token = redact(cfg.Token)
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			},
		},
		&cobra.Command{
			Use:   "set-token [token]",
			Short: "Store a manual GitHub token (empty removes it)",
			Long: "Store a GitHub token used when no other source has one. " +
				"Without an argument, or with an empty one, the stored token is removed.",
			Args: cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var token string
				if len(args) == 1 {
					token = strings.TrimSpace(args[0])
				}
				var value any
				if token != "" {
					value = token
				}
				if err := config.SetKey(opts.settingsPath(), "token", value); err != nil {
					return err
				}
				if token == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "token removed")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "token saved")
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "set-interval <seconds>",
			Short: "Set the refresh interval in seconds (0 disables)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				sec, err := strconv.Atoi(args[0])
				if err != nil || sec < 0 {
					return fmt.Errorf("interval must be a whole number of seconds >= 0, got %q", args[0])
				}
				if err := config.SetKey(opts.settingsPath(), "refresh_interval_sec", sec); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "refresh interval set to %ds\n", sec)
				return nil
			},
		},
	)

	return cmd
}

// redact keeps a token's prefix so the user can tell which one is stored.
func redact(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "****"
}
