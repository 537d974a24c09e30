package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/doeshing/cmdwise/internal/domain"
	"github.com/doeshing/cmdwise/internal/ports"
)

func TestGenerateRoundTrip(t *testing.T) {
	var captured chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		reply := "Here you go:\n```sh\nls -la\n```\nThat lists everything."
		payload := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": reply}},
			},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	defer server.Close()

	model := domain.ModelDefinition{Name: "llama", ModelID: "llama3", Endpoint: server.URL}
	provider := newAPIProvider("ollama", model, server.Client(), chatCompletionFormat{})

	resp, err := provider.Generate(context.Background(), ports.ProviderRequest{
		Prompt:  "list files",
		Context: domain.ContextSnapshot{WorkingDir: "/home/alex", Shell: "bash"},
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if resp.Command != "ls -la" {
		t.Fatalf("command = %q, want %q", resp.Command, "ls -la")
	}
	if captured.Model != "llama3" {
		t.Fatalf("request model = %q, want llama3", captured.Model)
	}
	if len(captured.Messages) == 0 {
		t.Fatal("request carried no messages")
	}
}

func TestGenerateSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	model := domain.ModelDefinition{Name: "llama", Endpoint: server.URL}
	provider := newAPIProvider("ollama", model, server.Client(), chatCompletionFormat{})

	if _, err := provider.Generate(context.Background(), ports.ProviderRequest{Prompt: "hi"}); err == nil {
		t.Fatal("expected error for HTTP 503")
	}
}

func TestAnthropicEncodingHoistsSystemPrompt(t *testing.T) {
	payload, err := anthropicFormat{}.encode(domain.ModelDefinition{ModelID: "claude-3"}, []domain.PromptMessage{
		{Role: "system", Content: "be careful"},
		{Role: "user", Content: "list files"},
	})
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	var req anthropicRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if req.System != "be careful" {
		t.Fatalf("system = %q, want %q", req.System, "be careful")
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v, want single user message", req.Messages)
	}
	if req.MaxTokens != 1024 {
		t.Fatalf("max_tokens = %d, want default 1024", req.MaxTokens)
	}
}

func TestBearerAuthRequiresCredential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("TEST_MODEL_KEY", "")

	model := domain.ModelDefinition{AuthEnvVar: "TEST_MODEL_KEY"}
	header := http.Header{}
	if err := (chatCompletionFormat{bearer: true}).authorize(header, model); err == nil {
		t.Fatal("expected error when no API key is set")
	}

	t.Setenv("TEST_MODEL_KEY", "sk-test")
	if err := (chatCompletionFormat{bearer: true}).authorize(header, model); err != nil {
		t.Fatalf("authorize error: %v", err)
	}
	if got := header.Get("authorization"); got != "Bearer sk-test" {
		t.Fatalf("authorization header = %q", got)
	}
}

func TestExtractCommandFromCodeBlock(t *testing.T) {
	content := "Here you go:\n```sh\nls -la\n```\nThat lists everything."
	if got := ExtractCommand(content); got != "ls -la" {
		t.Fatalf("ExtractCommand = %q, want %q", got, "ls -la")
	}
}

func TestExtractCommandFromCommandLine(t *testing.T) {
	content := "Command: df -h\nThis shows disk usage."
	if got := ExtractCommand(content); got != "df -h" {
		t.Fatalf("ExtractCommand = %q, want %q", got, "df -h")
	}
}

func TestExtractCommandFallsBackToRawText(t *testing.T) {
	if got := ExtractCommand("  uptime  "); got != "uptime" {
		t.Fatalf("ExtractCommand = %q, want %q", got, "uptime")
	}
}

func TestInferProviderKind(t *testing.T) {
	tests := []struct {
		endpoint string
		name     string
		want     domain.ProviderKind
	}{
		{"https://api.anthropic.com/v1/messages", "claude", domain.ProviderKindAnthropic},
		{"https://api.openai.com/v1/chat/completions", "gpt", domain.ProviderKindOpenAI},
		{"http://localhost:11434/v1/chat/completions", "llama", domain.ProviderKindOllama},
		{"https://example.com/api", "mystery", domain.ProviderKindUnknown},
	}
	for _, tt := range tests {
		if got := inferProviderKind(tt.endpoint, tt.name); got != tt.want {
			t.Errorf("inferProviderKind(%q, %q) = %v, want %v", tt.endpoint, tt.name, got, tt.want)
		}
	}
}

func TestFactoryFallsBackToHeuristic(t *testing.T) {
	factory := NewFactory()
	provider, err := factory.ForModel(domain.ModelDefinition{Name: "mystery", Endpoint: "https://example.com"})
	if err != nil {
		t.Fatalf("ForModel error: %v", err)
	}
	if provider.Name() != "heuristic" {
		t.Fatalf("provider = %s, want heuristic", provider.Name())
	}
}
