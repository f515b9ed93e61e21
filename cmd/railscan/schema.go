package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"railscan/internal/model"
	"railscan/internal/output"
	"railscan/internal/publish"
)

var schemaCmd = &cobra.Command{
	Use:       "schema [summary|components|message]",
	Short:     "Print the JSON schema of a result document",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"summary", "components", "message"},
	RunE: func(cmd *cobra.Command, args []string) error {
		doc := "summary"
		if len(args) == 1 {
			doc = args[0]
		}
		switch doc {
		case "summary":
			return printJSON(model.SchemaOf(&model.TrainReport{}))
		case "components":
			return printJSON(model.SchemaOf(&output.CoachFile{}))
		case "message":
			return printJSON(model.SchemaOf(&publish.CoachMessage{}))
		default:
			return fmt.Errorf("unknown document %q", doc)
		}
	},
}
