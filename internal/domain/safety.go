package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RiskLevel ranks how dangerous a generated command is. Levels are
// ordered so that comparisons and escalation use plain integer math.
type RiskLevel int

const (
	RiskSafe RiskLevel = iota
	RiskModerate
	RiskHigh
	RiskCritical
)

var riskNames = map[RiskLevel]string{
	RiskSafe:     "safe",
	RiskModerate: "moderate",
	RiskHigh:     "high",
	RiskCritical: "critical",
}

func (r RiskLevel) String() string {
	if name, ok := riskNames[r]; ok {
		return name
	}
	return fmt.Sprintf("risk(%d)", int(r))
}

// ParseRiskLevel converts a serialized name back into a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "safe":
		return RiskSafe, nil
	case "moderate":
		return RiskModerate, nil
	case "high":
		return RiskHigh, nil
	case "critical":
		return RiskCritical, nil
	}
	return RiskSafe, fmt.Errorf("unknown risk level %q", s)
}

// MarshalJSON serializes the level as its lowercase name.
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON accepts the lowercase names produced by MarshalJSON.
func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	level, err := ParseRiskLevel(s)
	if err != nil {
		return err
	}
	*r = level
	return nil
}

// MaxRisk returns the more severe of two levels.
func MaxRisk(a, b RiskLevel) RiskLevel {
	if a > b {
		return a
	}
	return b
}

// GuardrailAction tells the CLI what gating a command requires before
// execution.
type GuardrailAction string

const (
	ActionAllow           GuardrailAction = "allow"
	ActionConfirm         GuardrailAction = "confirm"
	ActionExplicitConfirm GuardrailAction = "explicit_confirm"
	ActionBlock           GuardrailAction = "block"
)

// GuardrailAction maps a risk level onto the execution gate applied by
// the query pipeline.
func (r RiskLevel) GuardrailAction() GuardrailAction {
	switch {
	case r >= RiskCritical:
		return ActionBlock
	case r >= RiskHigh:
		return ActionExplicitConfirm
	case r >= RiskModerate:
		return ActionConfirm
	}
	return ActionAllow
}

// ValidationResult is the complete verdict produced for one command.
type ValidationResult struct {
	IsSafe                bool      `json:"is_safe"`
	RiskLevel             RiskLevel `json:"risk_level"`
	Confidence            float64   `json:"confidence"`
	Explanation           string    `json:"explanation"`
	PatternsMatched       []string  `json:"patterns_matched"`
	BehavioralFlags       []string  `json:"behavioral_flags"`
	RequiredConfirmations []string  `json:"required_confirmations"`
	SuggestedAlternatives []string  `json:"suggested_alternatives"`
}
