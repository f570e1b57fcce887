package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/five82/loupe/internal/app"
)

// commandDeps lets tests replace the entry points the commands call.
type commandDeps struct {
	runTUI       func(ctx context.Context, opts app.Options) error
	showSession  func(w io.Writer, opts app.Options) error
	clearSession func(opts app.Options) error
	showLogs     func(w io.Writer, opts app.Options, lines int, match string) error
}

func (d commandDeps) withDefaults() commandDeps {
	if d.runTUI == nil {
		d.runTUI = app.Run
	}
	if d.showSession == nil {
		d.showSession = app.ShowSession
	}
	if d.clearSession == nil {
		d.clearSession = app.ClearSession
	}
	if d.showLogs == nil {
		d.showLogs = app.ShowLogs
	}
	return d
}

func newRootCmd(deps commandDeps) *cobra.Command {
	deps = deps.withDefaults()
	var opts app.Options

	cmd := &cobra.Command{
		Use:           "loupe",
		Short:         "Browse a photo server from the terminal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return deps.runTUI(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/loupe/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/loupe/prefs.toml)")
	cmd.PersistentFlags().StringVar(&opts.SessionID, "session", "", "navigation session id (default $LOUPE_SESSION or one per terminal)")
	cmd.PersistentFlags().BoolVar(&opts.Admin, "admin", false, "include hidden photos")
	cmd.PersistentFlags().IntVar(&opts.PollEvery, "poll", 0, "server check interval in seconds (default 15)")

	cmd.AddCommand(newOpenCmd(deps, &opts))
	cmd.AddCommand(newSessionCmd(deps, &opts))
	cmd.AddCommand(newLogsCmd(deps, &opts))
	return cmd
}

func newOpenCmd(deps commandDeps, opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "open <photo-id>",
		Short: "Open a photo directly, resuming this terminal's navigation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o := *opts
			o.OpenID = args[0]
			return deps.runTUI(cmd.Context(), o)
		},
	}
}

func newSessionCmd(deps commandDeps, opts *app.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or reset the stored navigation session",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored navigation state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return deps.showSession(cmd.OutOrStdout(), *opts)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the stored navigation state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := deps.clearSession(*opts); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "session cleared")
			return nil
		},
	})
	return cmd
}

func newLogsCmd(deps commandDeps, opts *app.Options) *cobra.Command {
	var lines int
	var match string
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the end of the log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return deps.showLogs(cmd.OutOrStdout(), *opts, lines, match)
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to show")
	cmd.Flags().StringVar(&match, "grep", "", "only lines containing this text")
	return cmd
}
