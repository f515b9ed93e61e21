package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"railscan/internal/config"
	"railscan/internal/output"
	"railscan/internal/store"
)

var fromOutput bool

var showCmd = &cobra.Command{
	Use:   "show [train]",
	Short: "Print stored train reports",
	Long:  `Print the report of one train as JSON, or list every stored train when no train is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShow(args)
	},
}

func init() {
	showCmd.Flags().BoolVar(&fromOutput, "from-output", false, "Read the summary.json in the output directory instead of the store")
}

func runShow(args []string) error {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		return err
	}

	if fromOutput {
		if len(args) == 0 {
			return errors.New("--from-output needs a train id")
		}
		report, err := output.NewWriter(conf.Output).ReadSummary(args[0])
		if err != nil {
			return err
		}
		return printJSON(report)
	}

	st, err := store.Open(conf.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	if len(args) == 0 {
		reports, err := st.ListTrains()
		if err != nil {
			return err
		}
		printSummary(os.Stdout, reports)
		return nil
	}

	report, err := st.GetTrain(args[0])
	if err != nil {
		return err
	}
	return printJSON(report)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
