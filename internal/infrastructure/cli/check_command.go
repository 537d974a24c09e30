package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdwise/internal/app"
	"github.com/doeshing/cmdwise/internal/domain"
)

// newCheckCommand validates a command string directly, without any AI
// round trip. Useful for scripting and for inspecting what the safety
// engine thinks of a command before running it by hand.
func newCheckCommand(container *app.Container) *cobra.Command {
	var (
		dir    string
		asJSON bool
		window int
	)

	cmd := &cobra.Command{
		Use:   "check [command]",
		Short: "Validate a shell command against the safety engine",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := strings.Join(args, " ")
			if dir == "" {
				if wd, err := os.Getwd(); err == nil {
					dir = wd
				}
			}

			recent := recentWindow(cmd.Context(), container, window)
			verdict := container.Validator.Validate(command, dir, recent)

			if asJSON {
				return RenderVerdictJSON(cmd.OutOrStdout(), verdict)
			}
			RenderVerdict(cmd.OutOrStdout(), verdict)
			if verdict.RiskLevel.GuardrailAction() == domain.ActionBlock {
				return fmt.Errorf("command would be blocked")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Working directory context for the check (default: current directory)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the verdict as JSON")
	cmd.Flags().IntVar(&window, "window", 10, "Recent history commands to include in behavioral analysis")

	return cmd
}

func recentWindow(ctx context.Context, container *app.Container, window int) []string {
	if container.History == nil || window <= 0 {
		return nil
	}
	commands, err := container.History.RecentCommands(ctx, window)
	if err != nil {
		return nil
	}
	return commands
}
