package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdwise/internal/app"
	"github.com/doeshing/cmdwise/internal/infrastructure/config"
)

func newPatternsCommand(container *app.Container) *cobra.Command {
	patternsCmd := &cobra.Command{
		Use:   "patterns",
		Short: "Manage safety patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded patterns: %d\n", container.Validator.LoadedPatternCount())
			return nil
		},
	}

	var file string
	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Load custom patterns from a YAML file for this session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file required")
			}
			patterns, err := config.LoadCustomPatterns(file)
			if err != nil {
				return fmt.Errorf("read patterns: %w", err)
			}
			if len(patterns) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No patterns found in file.")
				return nil
			}
			if err := container.Validator.AddCustomPatterns(patterns); err != nil {
				return fmt.Errorf("register patterns: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d custom patterns (%d total).\n",
				len(patterns), container.Validator.LoadedPatternCount())
			return nil
		},
	}
	loadCmd.Flags().StringVar(&file, "file", "", "YAML file with a 'patterns' list of regular expressions")

	patternsCmd.AddCommand(loadCmd)
	return patternsCmd
}
