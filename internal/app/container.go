// Package app wires application services with infrastructure adapters.
package app

import (
	"context"

	"github.com/doeshing/cmdwise/internal/application/query"
	"github.com/doeshing/cmdwise/internal/infrastructure/ai"
	"github.com/doeshing/cmdwise/internal/infrastructure/config"
	"github.com/doeshing/cmdwise/internal/infrastructure/contextinfo"
	"github.com/doeshing/cmdwise/internal/infrastructure/executor"
	"github.com/doeshing/cmdwise/internal/infrastructure/history"
	"github.com/doeshing/cmdwise/internal/pkg/logger"
	"github.com/doeshing/cmdwise/internal/ports"
	"github.com/doeshing/cmdwise/internal/safety"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	QueryService *query.Service
	ConfigLoader *config.FileLoader
	Validator    *safety.Validator
	History      ports.HistoryRepository
	Logger       ports.Logger
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)
	validator := safety.New(log)

	// A broken custom pattern file must not take the assistant down; the
	// builtin library keeps protecting on its own.
	if cfg.Security.PatternsFile != "" {
		patterns, err := config.LoadCustomPatterns(cfg.Security.PatternsFile)
		if err == nil && len(patterns) > 0 {
			err = validator.AddCustomPatterns(patterns)
		}
		if err != nil {
			log.Warn("custom patterns not loaded", map[string]interface{}{
				"file":  cfg.Security.PatternsFile,
				"error": err.Error(),
			})
		}
	}

	historyStore := history.NewSQLiteStore()

	queryService := &query.Service{
		ConfigProvider:   cfgLoader,
		ContextCollector: contextinfo.NewBasicCollector(),
		ProviderFactory:  ai.NewFactory(),
		Validator:        validator,
		Executor:         executor.NewLocalExecutor(cfg.Execution.Shell),
		History:          historyStore,
		Logger:           log,
	}

	return &Container{
		QueryService: queryService,
		ConfigLoader: cfgLoader,
		Validator:    validator,
		History:      historyStore,
		Logger:       log,
	}, nil
}
