package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRiskLevelOrdering(t *testing.T) {
	if !(RiskSafe < RiskModerate && RiskModerate < RiskHigh && RiskHigh < RiskCritical) {
		t.Fatal("risk levels must be totally ordered")
	}
	if MaxRisk(RiskModerate, RiskHigh) != RiskHigh {
		t.Fatal("MaxRisk should keep the more severe level")
	}
	if MaxRisk(RiskCritical, RiskSafe) != RiskCritical {
		t.Fatal("MaxRisk must never downgrade")
	}
}

func TestRiskLevelJSONRoundTrip(t *testing.T) {
	for _, level := range []RiskLevel{RiskSafe, RiskModerate, RiskHigh, RiskCritical} {
		data, err := json.Marshal(level)
		if err != nil {
			t.Fatalf("marshal %v: %v", level, err)
		}
		var decoded RiskLevel
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if decoded != level {
			t.Fatalf("round trip changed %v to %v", level, decoded)
		}
	}
}

func TestValidationResultSerialization(t *testing.T) {
	result := ValidationResult{
		IsSafe:                false,
		RiskLevel:             RiskCritical,
		Confidence:            0.95,
		Explanation:           "command matches filesystem_destruction pattern",
		PatternsMatched:       []string{"filesystem_destruction"},
		BehavioralFlags:       []string{"information_gathering"},
		RequiredConfirmations: []string{"Confirm irreversible file deletion"},
		SuggestedAlternatives: []string{"rm -i *"},
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded ValidationResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(result, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestGuardrailActionMapping(t *testing.T) {
	tests := []struct {
		level  RiskLevel
		action GuardrailAction
	}{
		{RiskSafe, ActionAllow},
		{RiskModerate, ActionConfirm},
		{RiskHigh, ActionExplicitConfirm},
		{RiskCritical, ActionBlock},
	}
	for _, tt := range tests {
		if got := tt.level.GuardrailAction(); got != tt.action {
			t.Fatalf("action for %v = %v, want %v", tt.level, got, tt.action)
		}
	}
}
