package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and finalize a signature set, reporting per-direction bounds",
	Long:  `validate registers the built-in pattern set plus any --sigset file, finalizes the context, and prints the resulting min_len/max_len/signature counts per direction.`,
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	ctx, err := buildContext(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validate failed: %v\n", err)
		os.Exit(1)
	}
	printSummary(ctx)
	return nil
}
