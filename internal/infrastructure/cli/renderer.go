package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/doeshing/cmdwise/internal/domain"
)

// RenderResponse prints the query response in a friendly, ASCII-only
// format.
func RenderResponse(out io.Writer, resp domain.QueryResponse) {
	fmt.Fprintf(out, "Directory: %s\n", resp.ContextInformation.WorkingDir)
	if tools := strings.Join(resp.ContextInformation.AvailableTools, ", "); tools != "" {
		fmt.Fprintf(out, "Tools: %s\n", tools)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Generated Command:")
	fmt.Fprintf(out, "  %s\n", resp.Command)

	fmt.Fprintln(out)
	RenderVerdict(out, resp.Validation)

	if resp.ExecutionResult != nil {
		if resp.ExecutionResult.Ran {
			fmt.Fprintln(out, "\nCommand executed successfully.")
		} else if resp.ExecutionResult.Err != nil {
			fmt.Fprintf(out, "\nCommand failed: %v\n", resp.ExecutionResult.Err)
		}
		if resp.ExecutionResult.Stdout != "" {
			fmt.Fprintln(out, "\nstdout:")
			fmt.Fprintln(out, resp.ExecutionResult.Stdout)
		}
		if resp.ExecutionResult.Stderr != "" {
			fmt.Fprintln(out, "\nstderr:")
			fmt.Fprintln(out, resp.ExecutionResult.Stderr)
		}
	} else {
		fmt.Fprintln(out, "\nCommand was not executed (preview mode or confirmation pending).")
	}
}

// RenderVerdict prints a safety verdict.
func RenderVerdict(out io.Writer, verdict domain.ValidationResult) {
	fmt.Fprintf(out, "Risk: %s (%s, confidence %.2f)\n",
		strings.ToUpper(verdict.RiskLevel.String()),
		verdict.RiskLevel.GuardrailAction(),
		verdict.Confidence)
	fmt.Fprintf(out, "  %s\n", verdict.Explanation)
	if len(verdict.PatternsMatched) > 0 {
		fmt.Fprintf(out, "  Patterns: %s\n", strings.Join(verdict.PatternsMatched, ", "))
	}
	if len(verdict.BehavioralFlags) > 0 {
		fmt.Fprintf(out, "  Behavioral flags: %s\n", strings.Join(verdict.BehavioralFlags, ", "))
	}
	for _, confirmation := range verdict.RequiredConfirmations {
		fmt.Fprintf(out, "  ! %s\n", confirmation)
	}
	if len(verdict.SuggestedAlternatives) > 0 {
		fmt.Fprintln(out, "  Safer alternatives:")
		for _, alt := range verdict.SuggestedAlternatives {
			fmt.Fprintf(out, "    %s\n", alt)
		}
	}
}

// RenderVerdictJSON prints the verdict as indented JSON.
func RenderVerdictJSON(out io.Writer, verdict domain.ValidationResult) error {
	data, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}
