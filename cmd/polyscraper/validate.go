package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/polyratings-scraper/internal/store"
)

var validateCmd = &cobra.Command{
	Use:   "validate [artifact]",
	Short: "Validate an artifact against the professor schema",
	Long:  "Loads a professors artifact and re-validates every record against the full schema. Fails if the file or any single record is malformed.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.OutputPath = args[0]
		cfg.MetaPath = ""
	}

	logger := newLogger(cfg.Verbose)
	st := store.New(cfg, logger)

	records, err := st.Load()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%s: %d valid professor records\n", st.Path(), len(records))
	return nil
}
