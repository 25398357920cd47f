package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/inaiurai/leaderboard/internal/loader"
	"github.com/inaiurai/leaderboard/internal/tui"
)

var (
	tuiQuery   queryFlags
	tuiNoColor bool
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the leaderboard in the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		// The terminal belongs to the UI, so logs go to a file or nowhere.
		var out io.Writer = io.Discard
		if cfg.TUILog != "" {
			f, err := os.OpenFile(cfg.TUILog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		log := newLogger(out)

		src, closeSource, err := openSource(ctx, log)
		if err != nil {
			return err
		}
		defer closeSource()

		return tui.Run(ctx, loader.New(src, log), tui.Options{
			NoColor: tuiNoColor,
			Query:   tuiQuery.query(),
		})
	},
}

func init() {
	addQueryFlags(tuiCmd, &tuiQuery)
	tuiCmd.Flags().BoolVar(&tuiNoColor, "no-color", false, "disable colors")
}
