package contextinfo

import (
	"context"
	"testing"

	"github.com/doeshing/cmdwise/internal/domain"
)

func TestCollectIncludesEnvWhenRequested(t *testing.T) {
	t.Setenv("PATH", "/usr/bin")
	collector := NewBasicCollector()
	req := domain.QueryRequest{WithEnv: true}

	snapshot, err := collector.Collect(context.Background(), domain.Config{}, req)
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if snapshot.EnvironmentVars["PATH"] == "" {
		t.Fatal("expected PATH to be present when WithEnv is true")
	}
}

func TestCollectSkipsEnvByDefault(t *testing.T) {
	collector := NewBasicCollector()
	snapshot, err := collector.Collect(context.Background(), domain.Config{}, domain.QueryRequest{})
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if len(snapshot.EnvironmentVars) != 0 {
		t.Fatalf("environment variables should be excluded by default, got %v", snapshot.EnvironmentVars)
	}
	if snapshot.WorkingDir == "" {
		t.Fatal("working directory should always be collected")
	}
}
