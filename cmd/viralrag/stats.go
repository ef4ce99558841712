package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/creatorlab/viralrag/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-collection store statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, kind := range []store.Kind{store.KindPost, store.KindGuidance, store.KindPersona} {
		stats, err := a.store.Stats(ctx, kind)
		if err != nil {
			return fmt.Errorf("stats for %s: %w", kind, err)
		}
		cmd.Printf("%s: total=%d reference=%d generated=%d\n",
			kind, stats.Total, stats.ReferenceGradeCount, stats.GeneratedCount)
		if kind == store.KindPost && stats.Total > 0 {
			cmd.Printf("  likes=%d comments=%d avg_likes=%.1f avg_comments=%.1f\n",
				stats.TotalLikes, stats.TotalComments, stats.AvgLikes, stats.AvgComments)
		}
	}
	return nil
}
