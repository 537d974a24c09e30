package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/doeshing/cmdwise/internal/domain"
	"github.com/doeshing/cmdwise/internal/ports"
)

// wireFormat translates between rendered prompt messages and one chat
// API dialect. Implementations stay free of transport concerns; the
// apiProvider owns the HTTP round trip.
type wireFormat interface {
	encode(model domain.ModelDefinition, messages []domain.PromptMessage) ([]byte, error)
	decode(body []byte) (string, error)
	authorize(header http.Header, model domain.ModelDefinition) error
}

// apiProvider performs one chat completion round trip and distills the
// reply into a runnable command for the safety pipeline.
type apiProvider struct {
	name   string
	model  domain.ModelDefinition
	client *http.Client
	format wireFormat
}

func newAPIProvider(name string, model domain.ModelDefinition, client *http.Client, format wireFormat) ports.Provider {
	return &apiProvider{name: name, model: model, client: client, format: format}
}

func (p *apiProvider) Name() string { return p.name }

func (p *apiProvider) Model() domain.ModelDefinition { return p.model }

func (p *apiProvider) Generate(ctx context.Context, req ports.ProviderRequest) (ports.ProviderResponse, error) {
	messages, err := renderPromptMessages(p.model, req.Prompt, req.Context)
	if err != nil {
		return ports.ProviderResponse{}, err
	}

	payload, err := p.format.encode(p.model, messages)
	if err != nil {
		return ports.ProviderResponse{}, err
	}

	body, err := p.post(ctx, payload)
	if err != nil {
		return ports.ProviderResponse{}, err
	}

	reply, err := p.format.decode(body)
	if err != nil {
		return ports.ProviderResponse{}, fmt.Errorf("%s: decode response: %w", p.name, err)
	}

	return ports.ProviderResponse{
		Command:   ExtractCommand(reply),
		Reply:     reply,
		Reasoning: fmt.Sprintf("Generated via %s", p.name),
	}, nil
}

func (p *apiProvider) post(ctx context.Context, payload []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.model.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("content-type", "application/json")
	if err := p.format.authorize(httpReq.Header, p.model); err != nil {
		return nil, err
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s: %s", p.name, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// anthropicFormat speaks the Anthropic messages API: system messages
// are hoisted into a top-level field and content is a block list.
type anthropicFormat struct{}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (anthropicFormat) encode(model domain.ModelDefinition, messages []domain.PromptMessage) ([]byte, error) {
	req := anthropicRequest{
		Model:     model.ModelID,
		MaxTokens: model.MaxTokens,
	}
	if req.Model == "" {
		req.Model = "claude-3-5-sonnet-20240620"
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 1024
	}

	var system []string
	for _, msg := range messages {
		if strings.EqualFold(msg.Role, "system") {
			system = append(system, msg.Content)
			continue
		}
		req.Messages = append(req.Messages, anthropicMessage{
			Role:    strings.ToLower(msg.Role),
			Content: []anthropicBlock{{Type: "text", Text: msg.Content}},
		})
	}
	req.System = strings.TrimSpace(strings.Join(system, "\n"))

	return json.Marshal(req)
}

func (anthropicFormat) decode(body []byte) (string, error) {
	var resp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", nil
	}
	return resp.Content[0].Text, nil
}

func (anthropicFormat) authorize(header http.Header, model domain.ModelDefinition) error {
	key := envCredential(model.AuthEnvVar, "ANTHROPIC_API_KEY")
	if key == "" {
		return fmt.Errorf("missing API key: set %s or ANTHROPIC_API_KEY", model.AuthEnvVar)
	}
	header.Set("x-api-key", key)
	header.Set("anthropic-version", "2023-06-01")
	return nil
}

// chatCompletionFormat speaks the OpenAI chat completions dialect,
// which Ollama also accepts. bearer controls whether an Authorization
// header is required; Ollama runs without credentials.
type chatCompletionFormat struct {
	bearer bool
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (chatCompletionFormat) encode(model domain.ModelDefinition, messages []domain.PromptMessage) ([]byte, error) {
	req := chatCompletionRequest{
		Model:     model.ModelID,
		MaxTokens: model.MaxTokens,
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, chatMessage{
			Role:    strings.ToLower(msg.Role),
			Content: msg.Content,
		})
	}
	return json.Marshal(req)
}

func (chatCompletionFormat) decode(body []byte) (string, error) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (f chatCompletionFormat) authorize(header http.Header, model domain.ModelDefinition) error {
	if !f.bearer {
		return nil
	}
	key := envCredential(model.AuthEnvVar, "OPENAI_API_KEY")
	if key == "" {
		return fmt.Errorf("missing API key: set %s or OPENAI_API_KEY", model.AuthEnvVar)
	}
	header.Set("authorization", "Bearer "+key)
	if org := envCredential(model.OrgEnvVar, "OPENAI_ORG_ID"); org != "" {
		header.Set("OpenAI-Organization", org)
	}
	return nil
}

// ExtractCommand pulls the shell command out of a model reply,
// preferring fenced code blocks, then "command:" lines, then the raw
// text.
func ExtractCommand(content string) string {
	if code := extractCodeBlock(content); code != "" {
		return code
	}
	if cmd := extractCommandLine(content); cmd != "" {
		return cmd
	}
	return strings.TrimSpace(content)
}

func extractCodeBlock(content string) string {
	start := strings.Index(content, "```")
	if start == -1 {
		return ""
	}
	rest := content[start+3:]
	end := strings.Index(rest, "```")
	if end == -1 {
		return ""
	}

	lines := strings.Split(rest[:end], "\n")
	if len(lines) > 0 {
		switch strings.TrimSpace(lines[0]) {
		case "sh", "bash", "zsh", "shell", "console":
			lines = lines[1:]
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func extractCommandLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(line), "command:") {
			return strings.TrimSpace(line[len("command:"):])
		}
	}
	return ""
}

func envCredential(primary, fallback string) string {
	if primary != "" {
		if value := os.Getenv(primary); value != "" {
			return value
		}
	}
	if fallback == "" {
		return ""
	}
	return os.Getenv(fallback)
}
