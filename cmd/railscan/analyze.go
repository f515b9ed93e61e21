package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"railscan/internal/config"
	"railscan/internal/model"
	"railscan/internal/pipeline"
)

var (
	outputDir  string
	workers    int
	writeClips bool
	noStore    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <video|dir>...",
	Short: "Analyse train videos",
	Long: `Analyse one or more train videos. Directories are scanned for .mp4, .avi
and .mov files; the train id is the file name without extension.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd, args)
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory, overrides output.dir")
	analyzeCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Videos analysed in parallel, overrides pipeline.workers")
	analyzeCmd.Flags().BoolVar(&writeClips, "clips", false, "Write a video clip per coach")
	analyzeCmd.Flags().BoolVar(&noStore, "no-store", false, "Do not record results in the result store")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		return err
	}
	if outputDir != "" {
		conf.Output.Dir = outputDir
	}
	if workers > 0 {
		conf.Pipeline.Workers = workers
	}
	if cmd.Flags().Changed("clips") {
		conf.Output.WriteClips = writeClips
	}

	jobs, err := pipeline.Discover(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := newStack(ctx, conf, !noStore)
	if err != nil {
		return err
	}
	defer s.Close()

	results, runErr := s.runner.Run(ctx, jobs)
	reports := make([]*model.TrainReport, 0, len(results))
	for _, t := range results {
		reports = append(reports, model.NewTrainReport(t))
	}
	printSummary(os.Stdout, reports)
	return runErr
}

// printSummary writes one table row per train. Engine and wagon columns
// count per-keyframe detections, not distinct vehicles.
func printSummary(out io.Writer, reports []*model.TrainReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRAIN\tCOACHES\tFAILED\tINCOMPLETE\tDOORS OPEN\tDOORS CLOSED\tENGINE HITS\tWAGON HITS\tERROR")
	for _, report := range reports {
		incomplete := 0
		for _, c := range report.Coaches {
			if c.Status == model.CoachStatusIncomplete {
				incomplete++
			}
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			report.TrainId, report.Totals.Coaches, report.Totals.CoachesFailed, incomplete,
			report.Totals.DoorsOpen, report.Totals.DoorsClosed,
			report.Totals.EngineDetections, report.Totals.WagonDetections, report.Error)
	}
	w.Flush()
}
