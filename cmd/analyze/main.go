package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/OFFIS-RIT/plotline/backend/internal/util"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"

	"github.com/spf13/cobra"
)

var opts options

var rootCmd = &cobra.Command{
	Use:   "analyze [flags] <novel.txt>...",
	Short: "Analyze plain text novels",
	Long:  "Extract characters, relations, events, locations, emotions and states from plain text novels and write one JSON file per novel.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		graphClient, err := util.NewGraphClient()
		if err != nil {
			return err
		}
		summaries, err := run(cmd.Context(), graphClient, opts, args)
		if err != nil {
			return err
		}
		for _, s := range summaries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d chapters\t%d characters\t%d events\n",
				s.NovelID, s.Title, s.ChapterCount, s.CharacterCount, s.EventCount)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&opts.OutDir, "out", "o", "analyses", "directory the JSON results are written to")
	rootCmd.Flags().BoolVar(&opts.KeepNames, "keep-names", false, "use the file name instead of a generated id as novel id")
	rootCmd.Flags().BoolVar(&opts.Compact, "compact", false, "write compact instead of indented JSON")
}

func main() {
	util.LoadEnv()
	util.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("[CLI] Analysis failed", "err", err)
		os.Exit(1)
	}
}
