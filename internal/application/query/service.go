// Package query orchestrates the natural-language-to-command pipeline:
// config, context, AI generation, safety validation, guardrail gating,
// execution and history persistence.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doeshing/cmdwise/internal/domain"
	"github.com/doeshing/cmdwise/internal/ports"
)

// Service orchestrates the query lifecycle end-to-end.
type Service struct {
	ConfigProvider   ports.ConfigProvider
	ContextCollector ports.ContextCollector
	ProviderFactory  ports.ProviderFactory
	Validator        ports.SafetyValidator
	Executor         ports.CommandExecutor
	History          ports.HistoryRepository
	Prompter         ports.ConfirmationPrompter
	Logger           ports.Logger
}

// Run processes a single natural-language query.
func (s *Service) Run(req domain.QueryRequest) (domain.QueryResponse, error) {
	if s.ConfigProvider == nil || s.ContextCollector == nil || s.ProviderFactory == nil ||
		s.Validator == nil || s.Executor == nil || s.Logger == nil {
		return domain.QueryResponse{}, errors.New("query.Service dependencies not satisfied")
	}

	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.QueryResponse{}, fmt.Errorf("load config: %w", err)
	}

	snapshot, err := s.ContextCollector.Collect(ctx, cfg, req)
	if err != nil {
		return domain.QueryResponse{}, fmt.Errorf("collect context: %w", err)
	}
	snapshot.RecentCommands = s.historyWindow(ctx, cfg)

	modelDef, err := pickModel(cfg, req.ModelOverride)
	if err != nil {
		return domain.QueryResponse{}, err
	}

	provider, err := s.ProviderFactory.ForModel(modelDef)
	if err != nil {
		return domain.QueryResponse{}, fmt.Errorf("provider init: %w", err)
	}

	s.Logger.Info("calling provider", map[string]interface{}{
		"provider": provider.Name(),
		"model":    modelDef.ModelID,
	})

	aiResp, err := provider.Generate(ctx, ports.ProviderRequest{
		Prompt:  req.Prompt,
		Context: snapshot,
		Model:   modelDef,
		Debug:   req.Debug,
	})
	if err != nil {
		return domain.QueryResponse{}, fmt.Errorf("provider generate: %w", err)
	}

	verdict := s.validate(cfg, aiResp.Command, snapshot)
	action := verdict.RiskLevel.GuardrailAction()

	resp := domain.QueryResponse{
		Command:            aiResp.Command,
		NaturalLanguage:    req.Prompt,
		Reasoning:          aiResp.Reasoning,
		Validation:         verdict,
		Action:             action,
		ContextInformation: snapshot,
	}

	shouldExecute, execErr := s.decideExecution(req, cfg, action, verdict, aiResp.Command)
	if execErr != nil {
		s.saveRecord(ctx, req, modelDef, resp, nil)
		return resp, execErr
	}
	if !shouldExecute {
		s.saveRecord(ctx, req, modelDef, resp, nil)
		return resp, nil
	}

	execResult, err := s.Executor.Execute(ctx, aiResp.Command)
	resp.ExecutionResult = &execResult
	resp.ExecutionPlanned = true
	s.saveRecord(ctx, req, modelDef, resp, &execResult)
	if err != nil {
		return resp, err
	}
	return resp, nil
}

// validate runs the safety pipeline. When security is disabled in the
// config the verdict defaults to safe with low confidence so downstream
// gating still has something to act on.
func (s *Service) validate(cfg domain.Config, command string, snapshot domain.ContextSnapshot) domain.ValidationResult {
	if !cfg.Security.Enabled {
		return domain.ValidationResult{
			IsSafe:      true,
			RiskLevel:   domain.RiskSafe,
			Confidence:  0.5,
			Explanation: "Safety validation disabled in configuration",
		}
	}
	return s.Validator.Validate(command, snapshot.WorkingDir, snapshot.RecentCommands)
}

func (s *Service) historyWindow(ctx context.Context, cfg domain.Config) []string {
	if s.History == nil {
		return nil
	}
	window := cfg.Context.HistoryWindow
	if window <= 0 {
		window = 10
	}
	commands, err := s.History.RecentCommands(ctx, window)
	if err != nil {
		s.Logger.Warn("history window unavailable", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return commands
}

func (s *Service) saveRecord(ctx context.Context, req domain.QueryRequest, model domain.ModelDefinition, resp domain.QueryResponse, exec *domain.ExecutionResult) {
	if s.History == nil {
		return
	}
	record := domain.HistoryRecord{
		Timestamp:  time.Now(),
		Prompt:     req.Prompt,
		Command:    resp.Command,
		Model:      model.Name,
		Validation: resp.Validation,
	}
	if exec != nil {
		record.Executed = true
		record.Success = exec.ExitCode == 0 && exec.Err == nil
		record.ExitCode = exec.ExitCode
		record.ExecutionTimeMS = exec.DurationMS
	}
	if err := s.History.Save(ctx, record); err != nil {
		s.Logger.Warn("history save failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Service) decideExecution(
	req domain.QueryRequest,
	cfg domain.Config,
	action domain.GuardrailAction,
	verdict domain.ValidationResult,
	command string,
) (bool, error) {
	if req.PreviewOnly {
		return false, nil
	}

	switch action {
	case domain.ActionBlock:
		return false, fmt.Errorf("command blocked by safety validation: %s", command)
	case domain.ActionAllow:
		return req.AutoExecute || cfg.Preferences.AutoExecuteSafe, nil
	case domain.ActionConfirm, domain.ActionExplicitConfirm:
		if s.Prompter == nil || !s.Prompter.Enabled() {
			return false, nil
		}
		reasons := append([]string{verdict.Explanation}, verdict.RequiredConfirmations...)
		return s.Prompter.Confirm(action, verdict.RiskLevel, command, reasons)
	default:
		return false, nil
	}
}

func pickModel(cfg domain.Config, override string) (domain.ModelDefinition, error) {
	name := override
	if name == "" {
		name = cfg.Preferences.DefaultModel
	}
	if name == "" && len(cfg.Models) > 0 {
		return cfg.Models[0], nil
	}
	for _, model := range cfg.Models {
		if model.Name == name {
			return model, nil
		}
	}
	return domain.ModelDefinition{}, fmt.Errorf("model %s not configured", name)
}
