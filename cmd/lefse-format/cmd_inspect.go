package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lefseformat/internal/output"
)

// inspectCmd summarizes a JSON dataset written by a previous run
var inspectCmd = &cobra.Command{
	Use:   "inspect DATASET.json",
	Short: "Summarize a formatted JSON dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := output.ReadJSON(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderDocument(args[0], doc))
	return nil
}
