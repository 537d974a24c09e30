package safety

import (
	"strings"

	"github.com/doeshing/cmdwise/internal/domain"
	"github.com/doeshing/cmdwise/internal/ports"
)

// Validator is the facade over the validation pipeline. It is safe for
// concurrent use; AddCustomPatterns may run while Validate calls are in
// flight.
type Validator struct {
	patterns *PatternEngine
	context  *ContextAnalyzer
	behavior *BehavioralAnalyzer
	assessor *RiskAssessor
	logger   ports.Logger
}

var _ ports.SafetyValidator = (*Validator)(nil)

// New builds a validator with the builtin pattern library loaded.
func New(logger ports.Logger) *Validator {
	patterns := NewPatternEngine()
	context := NewContextAnalyzer()
	return &Validator{
		patterns: patterns,
		context:  context,
		behavior: NewBehavioralAnalyzer(),
		assessor: NewRiskAssessor(patterns, context),
		logger:   logger,
	}
}

// Validate evaluates a command in its working directory with the recent
// command window. It is total: any input, including an empty command,
// yields a verdict rather than an error.
func (v *Validator) Validate(command, workingDir string, recentCommands []string) domain.ValidationResult {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return domain.ValidationResult{
			IsSafe:      true,
			RiskLevel:   domain.RiskSafe,
			Confidence:  0.6,
			Explanation: "Empty command carries no risk but also no intent to evaluate",
		}
	}

	flags := v.behavior.Flags(trimmed, recentCommands)
	as := v.assessor.assess(trimmed, workingDir, flags)

	result := domain.ValidationResult{
		IsSafe:                as.level == domain.RiskSafe,
		RiskLevel:             as.level,
		Confidence:            as.confidence(),
		Explanation:           as.explanation(trimmed),
		PatternsMatched:       as.dangerousCategories(),
		BehavioralFlags:       flags,
		RequiredConfirmations: as.confirmations(),
		SuggestedAlternatives: v.alternatives(as, workingDir),
	}

	if v.logger != nil && as.level >= domain.RiskHigh {
		v.logger.Warn("dangerous command detected", map[string]interface{}{
			"risk":     as.level.String(),
			"patterns": strings.Join(result.PatternsMatched, ","),
		})
	}
	return result
}

// ValidateWithContext evaluates a command against a full environment
// snapshot, using its working directory and recent command window.
func (v *Validator) ValidateWithContext(command string, snapshot domain.ContextSnapshot) domain.ValidationResult {
	return v.Validate(command, snapshot.WorkingDir, snapshot.RecentCommands)
}

// alternatives collects safer substitutes from the matched patterns,
// then re-runs each candidate through the same assessment (minus the
// behavioral escalation, which belongs to the session, not the
// candidate) and keeps only those that land at or below the original
// tier, so a suggestion is never riskier than the command it replaces.
func (v *Validator) alternatives(as assessment, workingDir string) []string {
	var kept []string
	seen := map[string]bool{}
	for _, m := range as.matches {
		gen, ok := alternativeGenerators[m.ID]
		if !ok {
			continue
		}
		for _, candidate := range gen(as.features.Raw, as.features) {
			if seen[candidate] {
				continue
			}
			seen[candidate] = true
			check := v.assessor.assess(candidate, workingDir, nil)
			if check.level <= as.level {
				kept = append(kept, candidate)
			}
		}
	}
	return kept
}

// AddCustomPatterns registers operator-defined regex patterns. The call
// is atomic: one invalid expression rejects the whole batch.
func (v *Validator) AddCustomPatterns(patterns []string) error {
	return v.patterns.AddCustom(patterns)
}

// LoadedPatternCount reports how many patterns are active, builtin plus
// custom.
func (v *Validator) LoadedPatternCount() int {
	return v.patterns.Count()
}

// Readiness probes used by the doctor command to report which pipeline
// stages are wired.
func (v *Validator) HasPatternEngine() bool      { return v.patterns != nil }
func (v *Validator) HasContextAnalyzer() bool    { return v.context != nil }
func (v *Validator) HasBehavioralAnalyzer() bool { return v.behavior != nil }
func (v *Validator) HasRiskAssessor() bool       { return v.assessor != nil }
