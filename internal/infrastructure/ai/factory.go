package ai

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/doeshing/cmdwise/internal/domain"
	"github.com/doeshing/cmdwise/internal/ports"
)

type Factory struct {
	httpClient *http.Client
}

func NewFactory() *Factory {
	return &Factory{
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (f *Factory) ForModel(model domain.ModelDefinition) (ports.Provider, error) {
	providerKind := inferProviderKind(model.Endpoint, model.Name)

	switch providerKind {
	case domain.ProviderKindAnthropic:
		return newAPIProvider("anthropic", model, f.httpClient, anthropicFormat{}), nil
	case domain.ProviderKindOpenAI:
		return newAPIProvider("openai", model, f.httpClient, chatCompletionFormat{bearer: true}), nil
	case domain.ProviderKindOllama:
		return newAPIProvider("ollama", model, f.httpClient, chatCompletionFormat{}), nil
	case domain.ProviderKindUnknown:
		return newHeuristicProvider(model), nil
	default:
		return nil, fmt.Errorf("unsupported provider kind: %s", providerKind)
	}
}

func inferProviderKind(endpoint string, name string) domain.ProviderKind {
	nameLower := strings.ToLower(name)

	switch {
	case strings.Contains(endpoint, "anthropic.com"):
		return domain.ProviderKindAnthropic
	case strings.Contains(endpoint, "openai.com"):
		return domain.ProviderKindOpenAI
	case strings.Contains(nameLower, "ollama"), strings.Contains(endpoint, "11434"), strings.Contains(endpoint, "localhost"):
		return domain.ProviderKindOllama
	default:
		return domain.ProviderKindUnknown
	}
}

var _ ports.ProviderFactory = (*Factory)(nil)
