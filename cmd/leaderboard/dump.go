package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/inaiurai/leaderboard/internal/leaderboard"
	"github.com/inaiurai/leaderboard/internal/loader"
	"github.com/inaiurai/leaderboard/internal/models"
	"github.com/inaiurai/leaderboard/internal/source"
)

var dumpQuery queryFlags

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print one leaderboard page as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := newLogger(os.Stderr)
		src, closeSource, err := openSource(cmd.Context(), log)
		if err != nil {
			return err
		}
		defer closeSource()

		q := dumpQuery.query()
		snap, err := loader.New(src, log).Fetch(cmd.Context(), source.Filter{MinReputation: q.MinReputation})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			leaderboard.Result
			Stats models.AggregateStats `json:"stats"`
		}{leaderboard.Apply(snap.Agents, q), snap.Stats})
	},
}

func init() {
	addQueryFlags(dumpCmd, &dumpQuery)
}
