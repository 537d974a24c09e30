package query

import (
	"context"
	"testing"

	"github.com/doeshing/cmdwise/internal/domain"
	"github.com/doeshing/cmdwise/internal/pkg/logger"
	"github.com/doeshing/cmdwise/internal/ports"
	"github.com/doeshing/cmdwise/internal/safety"
)

func testConfig() domain.Config {
	return domain.Config{
		Preferences: domain.Preferences{DefaultModel: "claude"},
		Security:    domain.SecuritySettings{Enabled: true},
		Context:     domain.ContextSettings{HistoryWindow: 10},
		Models: []domain.ModelDefinition{
			{Name: "claude", ModelID: "claude", Endpoint: "anthropic"},
		},
	}
}

func newService(command string, executor *stubExecutor, history *stubHistory) *Service {
	return &Service{
		ConfigProvider:   stubConfigProvider{cfg: testConfig()},
		ContextCollector: stubContextCollector{snapshot: domain.ContextSnapshot{WorkingDir: "/tmp"}},
		ProviderFactory:  stubProviderFactory{provider: stubProvider{command: command}},
		Validator:        safety.New(nil),
		Executor:         executor,
		History:          history,
		Logger:           logger.NewStd(false),
	}
}

func TestRunExecutesSafeCommandWhenAutoExecute(t *testing.T) {
	executor := &stubExecutor{result: domain.ExecutionResult{Ran: true, Stdout: "ok"}}
	history := &stubHistory{}
	svc := newService("ls -la", executor, history)

	resp, err := svc.Run(domain.QueryRequest{
		Context:     context.Background(),
		Prompt:      "list files",
		AutoExecute: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if resp.Action != domain.ActionAllow {
		t.Fatalf("action = %v, want allow", resp.Action)
	}
	if resp.ExecutionResult == nil || !resp.ExecutionResult.Ran {
		t.Fatalf("expected command to execute, got %+v", resp.ExecutionResult)
	}
	if !executor.called {
		t.Fatal("executor was not called")
	}
	if len(history.saved) != 1 || !history.saved[0].Executed {
		t.Fatalf("history record missing or not marked executed: %+v", history.saved)
	}
}

func TestRunBlocksCriticalCommand(t *testing.T) {
	executor := &stubExecutor{}
	history := &stubHistory{}
	svc := newService("rm -rf /", executor, history)

	resp, err := svc.Run(domain.QueryRequest{
		Context:     context.Background(),
		Prompt:      "wipe everything",
		AutoExecute: true,
	})
	if err == nil {
		t.Fatal("expected error for blocked command")
	}
	if executor.called {
		t.Fatal("blocked command must not execute")
	}
	if resp.Action != domain.ActionBlock {
		t.Fatalf("action = %v, want block", resp.Action)
	}
	if len(history.saved) != 1 || history.saved[0].Executed {
		t.Fatalf("blocked command should still be recorded as unexecuted: %+v", history.saved)
	}
	if history.saved[0].Validation.RiskLevel != domain.RiskCritical {
		t.Fatalf("saved verdict risk = %v, want critical", history.saved[0].Validation.RiskLevel)
	}
}

func TestRunConfirmDeclinedSkipsExecution(t *testing.T) {
	executor := &stubExecutor{}
	svc := newService("rm *.log", executor, &stubHistory{})
	svc.Prompter = &stubPrompter{enabled: true, answer: false}

	resp, err := svc.Run(domain.QueryRequest{
		Context: context.Background(),
		Prompt:  "clean logs",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if resp.Action != domain.ActionConfirm {
		t.Fatalf("action = %v, want confirm", resp.Action)
	}
	if executor.called {
		t.Fatal("declined confirmation must not execute")
	}
}

func TestRunConfirmAcceptedExecutes(t *testing.T) {
	executor := &stubExecutor{result: domain.ExecutionResult{Ran: true}}
	prompter := &stubPrompter{enabled: true, answer: true}
	svc := newService("rm *.log", executor, &stubHistory{})
	svc.Prompter = prompter

	if _, err := svc.Run(domain.QueryRequest{
		Context: context.Background(),
		Prompt:  "clean logs",
	}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !prompter.asked {
		t.Fatal("prompter should have been consulted")
	}
	if !executor.called {
		t.Fatal("accepted confirmation should execute")
	}
}

func TestRunHistoryWindowFeedsValidator(t *testing.T) {
	executor := &stubExecutor{}
	history := &stubHistory{
		commands: []string{"ps aux | grep ssh", "netstat -tulpn", "cat /etc/passwd"},
	}
	svc := newService("find /home -name '*.key'", executor, history)

	resp, err := svc.Run(domain.QueryRequest{
		Context: context.Background(),
		Prompt:  "find key files",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(resp.Validation.BehavioralFlags) == 0 {
		t.Fatalf("expected behavioral flag from history window, got %+v", resp.Validation)
	}
}

func TestRunSecurityDisabledSkipsValidation(t *testing.T) {
	cfg := testConfig()
	cfg.Security.Enabled = false

	executor := &stubExecutor{result: domain.ExecutionResult{Ran: true}}
	svc := newService("rm -rf /", executor, &stubHistory{})
	svc.ConfigProvider = stubConfigProvider{cfg: cfg}

	resp, err := svc.Run(domain.QueryRequest{
		Context:     context.Background(),
		Prompt:      "wipe everything",
		AutoExecute: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if resp.Validation.RiskLevel != domain.RiskSafe {
		t.Fatalf("disabled security should default to safe, got %+v", resp.Validation)
	}
}

func TestRunPreviewOnlyNeverExecutes(t *testing.T) {
	executor := &stubExecutor{}
	svc := newService("ls -la", executor, &stubHistory{})

	if _, err := svc.Run(domain.QueryRequest{
		Context:     context.Background(),
		Prompt:      "list files",
		PreviewOnly: true,
		AutoExecute: true,
	}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if executor.called {
		t.Fatal("preview mode must not execute")
	}
}

type stubConfigProvider struct {
	cfg domain.Config
	err error
}

func (s stubConfigProvider) Load(context.Context) (domain.Config, error) {
	return s.cfg, s.err
}

type stubContextCollector struct {
	snapshot domain.ContextSnapshot
	err      error
}

func (s stubContextCollector) Collect(context.Context, domain.Config, domain.QueryRequest) (domain.ContextSnapshot, error) {
	return s.snapshot, s.err
}

type stubProviderFactory struct {
	provider ports.Provider
	err      error
}

func (s stubProviderFactory) ForModel(domain.ModelDefinition) (ports.Provider, error) {
	return s.provider, s.err
}

type stubProvider struct {
	command string
}

func (stubProvider) Name() string                  { return "stub" }
func (stubProvider) Model() domain.ModelDefinition { return domain.ModelDefinition{} }
func (s stubProvider) Generate(context.Context, ports.ProviderRequest) (ports.ProviderResponse, error) {
	return ports.ProviderResponse{Command: s.command}, nil
}

type stubExecutor struct {
	result domain.ExecutionResult
	err    error
	called bool
}

func (s *stubExecutor) Execute(context.Context, string) (domain.ExecutionResult, error) {
	s.called = true
	return s.result, s.err
}

type stubHistory struct {
	commands []string
	saved    []domain.HistoryRecord
}

func (s *stubHistory) Save(_ context.Context, record domain.HistoryRecord) error {
	s.saved = append(s.saved, record)
	return nil
}

func (s *stubHistory) Recent(context.Context, int) ([]domain.HistoryRecord, error) {
	return nil, nil
}

func (s *stubHistory) Search(context.Context, string, int) ([]domain.HistoryRecord, error) {
	return nil, nil
}

func (s *stubHistory) RecentCommands(context.Context, int) ([]string, error) {
	return s.commands, nil
}

func (s *stubHistory) Clear(context.Context) error { return nil }
func (s *stubHistory) Close() error                { return nil }

type stubPrompter struct {
	enabled bool
	answer  bool
	asked   bool
}

func (s *stubPrompter) Confirm(domain.GuardrailAction, domain.RiskLevel, string, []string) (bool, error) {
	s.asked = true
	return s.answer, nil
}

func (s *stubPrompter) Enabled() bool { return s.enabled }
