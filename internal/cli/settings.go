package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change whether spam blocking is enabled",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Run: func(cmd *cobra.Command, args []string) {
			f := openSettings()
			s, err := f.Load()
			if err != nil {
				exitErr("settings", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), `{"blocking_enabled":%t,"path":%q}`+"\n", s.BlockingEnabled, f.Path())
		},
	}

	enable := &cobra.Command{
		Use:   "enable",
		Short: "Turn spam blocking on",
		Run:   func(cmd *cobra.Command, args []string) { setBlocking(cmd, true) },
	}

	disable := &cobra.Command{
		Use:   "disable",
		Short: "Turn spam blocking off (calls are always allowed)",
		Run:   func(cmd *cobra.Command, args []string) { setBlocking(cmd, false) },
	}

	cmd.AddCommand(show, enable, disable)
	RootCmd.AddCommand(cmd)
}

func setBlocking(cmd *cobra.Command, enabled bool) {
	if err := openSettings().SetBlockingEnabled(enabled); err != nil {
		exitErr("settings", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"blocking_enabled":%t}`+"\n", enabled)
}
