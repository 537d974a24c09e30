package domain

import "context"

// QueryRequest captures user intent originating from the CLI.
type QueryRequest struct {
	Context       context.Context
	Prompt        string
	ModelOverride string
	PreviewOnly   bool
	AutoExecute   bool
	WithGitStatus bool
	WithEnv       bool
	Debug         bool
}

// QueryResponse is the canonical response propagated back to the CLI.
type QueryResponse struct {
	Command            string
	NaturalLanguage    string
	Reasoning          string
	Validation         ValidationResult
	Action             GuardrailAction
	ExecutionPlanned   bool
	ExecutionResult    *ExecutionResult
	ContextInformation ContextSnapshot
}

// ExecutionResult wraps details from the command executor.
type ExecutionResult struct {
	Ran         bool
	Stdout      string
	Stderr      string
	ExitCode    int
	DurationMS  int64
	Err         error
	DryRunNotes string
}
