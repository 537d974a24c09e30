package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doeshing/cmdwise/internal/app"
)

func newDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose environment and safety engine readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctorDiagnostics(cmd, cmd.OutOrStdout(), container)
		},
	}
}

func runDoctorDiagnostics(cmd *cobra.Command, out io.Writer, container *app.Container) error {
	check := func(name string, ok bool, details string) {
		status := "OK"
		if !ok {
			status = "FAIL"
		}
		fmt.Fprintf(out, "[%s] %s - %s\n", status, name, details)
	}

	v := container.Validator
	check("pattern engine", v.HasPatternEngine(),
		fmt.Sprintf("%d patterns loaded", v.LoadedPatternCount()))
	check("context analyzer", v.HasContextAnalyzer(), "directory sensitivity table ready")
	check("behavioral analyzer", v.HasBehavioralAnalyzer(), "command sequence analysis ready")
	check("risk assessor", v.HasRiskAssessor(), "weighted scoring ready")

	cfg, err := container.ConfigLoader.Load(cmd.Context())
	if err != nil {
		check("configuration", false, err.Error())
		return fmt.Errorf("diagnostics completed with errors: %w", err)
	}
	check("configuration", true, fmt.Sprintf("%d models configured", len(cfg.Models)))
	check("security", cfg.Security.Enabled, "safety validation enabled in config")

	for _, model := range cfg.Models {
		if model.AuthEnvVar == "" {
			continue
		}
		_, present := os.LookupEnv(model.AuthEnvVar)
		check("credentials: "+model.Name, present, model.AuthEnvVar)
	}

	if pathed, ok := container.History.(interface{ Path() string }); ok {
		check("history store", true, pathed.Path())
	}
	return nil
}
