// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). Following the Ports and Adapters (Hexagonal) pattern,
// these interfaces allow the application to remain independent of specific
// implementations like databases, HTTP clients, or CLI frameworks.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., Provider, SafetyValidator)
//   - Adapters: Concrete implementations in the infrastructure and safety layers
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/cmdwise/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.cmdwise/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ContextCollector gathers environmental context (git, env, history) to
// enrich AI prompts and the safety validation call.
type ContextCollector interface {
	Collect(context.Context, domain.Config, domain.QueryRequest) (domain.ContextSnapshot, error)
}

// ProviderFactory builds AI provider instances based on model definitions.
// It abstracts the creation of different provider types (Anthropic, OpenAI, Ollama).
type ProviderFactory interface {
	ForModel(domain.ModelDefinition) (Provider, error)
}

// Provider defines the core AI generation capability for producing shell commands.
// Each provider implementation wraps a specific AI service API.
type Provider interface {
	Name() string
	Model() domain.ModelDefinition
	Generate(context.Context, ProviderRequest) (ProviderResponse, error)
}

// ProviderRequest contains all data needed to generate an AI response.
type ProviderRequest struct {
	Prompt  string
	Context domain.ContextSnapshot
	Model   domain.ModelDefinition
	Debug   bool
}

// ProviderResponse contains the AI's generated command and explanatory text.
// The Command field holds the executable shell command, while Reply provides context.
type ProviderResponse struct {
	Command   string
	Reply     string
	Reasoning string
}

// SafetyValidator evaluates a candidate command against the layered safety
// pipeline (patterns, context, behavior, risk scoring). Validate never
// fails: every command, however malformed, receives a verdict.
type SafetyValidator interface {
	Validate(command, workingDir string, recentCommands []string) domain.ValidationResult
	AddCustomPatterns(patterns []string) error
	LoadedPatternCount() int
}

// CommandExecutor runs shell commands in the configured shell environment.
type CommandExecutor interface {
	Execute(ctx context.Context, command string) (domain.ExecutionResult, error)
}

// HistoryRepository persists query records, including the full safety
// verdict, across sessions.
type HistoryRepository interface {
	Save(ctx context.Context, record domain.HistoryRecord) error
	Recent(ctx context.Context, limit int) ([]domain.HistoryRecord, error)
	Search(ctx context.Context, term string, limit int) ([]domain.HistoryRecord, error)
	RecentCommands(ctx context.Context, limit int) ([]string, error)
	Clear(ctx context.Context) error
	Close() error
}

// ConfirmationPrompter handles interactive user confirmations for risky operations.
// Used by the guardrail system to get user approval before executing dangerous commands.
type ConfirmationPrompter interface {
	Confirm(action domain.GuardrailAction, risk domain.RiskLevel, command string, reasons []string) (bool, error)
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
