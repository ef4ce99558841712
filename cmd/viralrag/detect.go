package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/creatorlab/viralrag/server/transcript"
)

var (
	detectTopK     int
	detectMinScore float64
)

var detectCmd = &cobra.Command{
	Use:   "detect [transcript-file]",
	Short: "Rank transcript segments by viral potential",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().IntVarP(&detectTopK, "top-k", "k", 3, "number of candidates to return")
	detectCmd.Flags().Float64Var(&detectMinScore, "min-score", 0.3, "minimum similarity score")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	ctx := cmd.Context()
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	segments := transcript.Process(string(content), args[0])
	if len(segments) == 0 {
		cmd.Println("No usable segments in transcript.")
		return nil
	}

	candidates, err := a.detector.Rank(ctx, segments, detectTopK, detectMinScore)
	if err != nil {
		return fmt.Errorf("rank segments: %w", err)
	}
	if len(candidates) == 0 {
		cmd.Printf("No candidates above score %.2f.\n", detectMinScore)
		return nil
	}

	for _, c := range candidates {
		cmd.Printf("#%d  score %.3f  (closest: %s)\n", c.Rank, c.Score, c.BestMatchID)
		cmd.Println(c.Text)
		cmd.Println()
	}
	return nil
}
