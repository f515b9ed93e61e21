package main

import (
	"os"

	"github.com/spf13/cobra"

	"railscan/internal/version"
	"railscan/pkg/log"
)

var (
	logLevel   string
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "railscan",
	Short: "railscan inspects coaches in train videos",
	Long: `railscan splits a video of a passing train into coaches, picks a few
distinct keyframes per coach and reports the doors, engines and wagons
visible in them.
Version: ` + version.VERSION + `/` + version.COMMIT,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.InitLog(logLevel)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file, built-in defaults when empty")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCommand)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	Execute()
}
