package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ironsheep/screenshot-mcp/internal/capture"
)

func newWindowsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "windows [filter]",
		Short: "List on-screen windows usable as window-mode targets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, opts)
			if err != nil {
				return err
			}

			windows, err := newService(cfg, logger).ListWindows(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 1 {
				windows = capture.FilterWindows(windows, args[0])
			}
			renderWindows(cmd.OutOrStdout(), windows)
			return nil
		},
	}
}

func renderWindows(out io.Writer, windows []capture.Window) {
	if len(windows) == 0 {
		fmt.Fprintln(out, "No matching windows")
		return
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Owner", "Title"})
	for _, w := range windows {
		title := w.Title
		if strings.TrimSpace(title) == "" {
			title = "-"
		}
		t.AppendRow(table.Row{w.ID, w.Owner, title})
	}
	fmt.Fprintln(out, t.Render())
}
