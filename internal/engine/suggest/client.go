package suggest

import (
	"architect/internal/core/config"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	EnvURL       = "ARCHITECT_AI_URL"
	EnvKey       = "ARCHITECT_AI_KEY"
	EnvOpenAIKey = "OPENAI_API_KEY"
	EnvModel     = "ARCHITECT_AI_MODEL"
	EnvProvider  = "ARCHITECT_AI_PROVIDER"

	EnvAnthropicURL   = "ANTHROPIC_BASE_URL"
	EnvAnthropicToken = "ANTHROPIC_AUTH_TOKEN"
	EnvAnthropicKey   = "ANTHROPIC_API_KEY"
	EnvAnthropicModel = "ANTHROPIC_MODEL"

	defaultModel = "gpt-4o-mini"
	systemPrompt = "You are a senior software architect."
)

// Provider names an AI backend family.
type Provider string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderGroq     Provider = "groq"
	ProviderOllama   Provider = "ollama"
	ProviderKimi     Provider = "kimi"
	ProviderDeepSeek Provider = "deepseek"
	ProviderClaude   Provider = "claude"
	ProviderGemini   Provider = "gemini"
)

var defaultBaseURLs = map[Provider]string{
	ProviderGroq:     "https://api.groq.com/openai/v1",
	ProviderOllama:   "http://localhost:11434/v1",
	ProviderKimi:     "https://api.moonshot.ai/v1",
	ProviderDeepSeek: "https://api.deepseek.com",
	ProviderClaude:   "https://api.anthropic.com",
	ProviderGemini:   "https://generativelanguage.googleapis.com",
}

var defaultModels = map[Provider]string{
	ProviderOpenAI:   defaultModel,
	ProviderGroq:     "llama-3.3-70b-versatile",
	ProviderOllama:   "llama3",
	ProviderKimi:     "moonshot-v1-8k",
	ProviderDeepSeek: "deepseek-chat",
	ProviderClaude:   "claude-sonnet-4-5-20250929",
	ProviderGemini:   "gemini-2.0-flash",
}

// ParseProvider accepts provider names case-insensitively. An empty name is
// the OpenAI family.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case "":
		return ProviderOpenAI, nil
	case "anthropic":
		return ProviderClaude, nil
	case "google":
		return ProviderGemini, nil
	case ProviderOpenAI, ProviderGroq, ProviderOllama, ProviderKimi, ProviderDeepSeek, ProviderClaude, ProviderGemini:
		return p, nil
	default:
		return "", fmt.Errorf("unknown AI provider %q", s)
	}
}

// Completer sends a single prompt to a chat model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type ClientConfig struct {
	Name     string
	Provider Provider
	BaseURL  string
	APIKey   string
	Model    string
}

func (c ClientConfig) label() string {
	if c.Name != "" {
		return c.Name
	}
	return string(c.Provider)
}

// ConfigsFromEnv returns the providers configured through the environment:
// an OpenAI-compatible endpoint first, then Anthropic.
func ConfigsFromEnv() ([]ClientConfig, error) {
	var out []ClientConfig

	url := strings.TrimSpace(os.Getenv(EnvURL))
	key := strings.TrimSpace(os.Getenv(EnvKey))
	if key == "" {
		key = strings.TrimSpace(os.Getenv(EnvOpenAIKey))
	}
	// Local OpenAI-compatible servers often run without a key.
	if key != "" || url != "" {
		provider, err := ParseProvider(os.Getenv(EnvProvider))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvProvider, err)
		}
		out = append(out, ClientConfig{
			Name:     "env",
			Provider: provider,
			BaseURL:  url,
			APIKey:   key,
			Model:    strings.TrimSpace(os.Getenv(EnvModel)),
		})
	}

	token := strings.TrimSpace(os.Getenv(EnvAnthropicToken))
	if token == "" {
		token = strings.TrimSpace(os.Getenv(EnvAnthropicKey))
	}
	if token != "" {
		out = append(out, ClientConfig{
			Name:     "anthropic-env",
			Provider: ProviderClaude,
			BaseURL:  strings.TrimSpace(os.Getenv(EnvAnthropicURL)),
			APIKey:   token,
			Model:    strings.TrimSpace(os.Getenv(EnvAnthropicModel)),
		})
	}
	return out, nil
}

// ClientConfigs lists the providers to try, in order: those declared in the
// project configuration, then the environment. cfg may be nil.
func ClientConfigs(cfg *config.Config) ([]ClientConfig, error) {
	var out []ClientConfig
	if cfg != nil {
		for i, ac := range cfg.AIConfigs {
			provider, err := ParseProvider(ac.Provider)
			if err != nil {
				return nil, fmt.Errorf("ai_configs[%d]: %w", i, err)
			}
			out = append(out, ClientConfig{
				Name:     strings.TrimSpace(ac.Name),
				Provider: provider,
				BaseURL:  strings.TrimSpace(ac.APIURL),
				APIKey:   strings.TrimSpace(ac.APIKey),
				Model:    strings.TrimSpace(ac.Model),
			})
		}
	}
	env, err := ConfigsFromEnv()
	if err != nil {
		return nil, err
	}
	return append(out, env...), nil
}

// NewCompleter builds the client for cfg's provider, filling in the
// provider's default endpoint and model.
func NewCompleter(cfg ClientConfig) (Completer, error) {
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURLs[cfg.Provider]
	}
	if cfg.Model == "" {
		cfg.Model = defaultModels[cfg.Provider]
		slog.Debug("suggest: model not set, using default", "provider", cfg.Provider, "model", cfg.Model)
	}

	switch cfg.Provider {
	case ProviderClaude:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s: API key required", cfg.label())
		}
		return NewAnthropicClient(cfg), nil
	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s: API key required", cfg.label())
		}
		return NewGeminiClient(cfg), nil
	case ProviderOpenAI, ProviderGroq, ProviderOllama, ProviderKimi, ProviderDeepSeek:
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// Fallback tries each provider in order until one answers.
type Fallback struct {
	names      []string
	completers []Completer
}

// NewFallback builds a client per config. Configs that cannot produce a
// client are skipped with a warning; at least one must remain.
func NewFallback(cfgs []ClientConfig) (*Fallback, error) {
	f := &Fallback{}
	for _, cfg := range cfgs {
		c, err := NewCompleter(cfg)
		if err != nil {
			slog.Warn("suggest: skipping AI provider", "provider", cfg.label(), "error", err)
			continue
		}
		f.add(cfg.label(), c)
	}
	if len(f.completers) == 0 {
		return nil, fmt.Errorf("no AI provider configured: add ai_configs to the project configuration or set %s, %s or %s",
			EnvKey, EnvOpenAIKey, EnvAnthropicToken)
	}
	return f, nil
}

func (f *Fallback) add(name string, c Completer) {
	f.names = append(f.names, name)
	f.completers = append(f.completers, c)
}

// Complete returns the first successful reply. When every provider fails the
// last error is returned.
func (f *Fallback) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for i, c := range f.completers {
		reply, err := c.Complete(ctx, prompt)
		if err == nil {
			if i > 0 {
				slog.Info("suggest: fallback provider answered", "provider", f.names[i])
			}
			return reply, nil
		}
		slog.Warn("suggest: AI provider failed", "provider", f.names[i], "error", err)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("all AI providers failed, last error: %w", lastErr)
}

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(cfg ClientConfig) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(oc), model: model}
}

func (o *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	slog.Debug("suggest: requesting completion", "model", o.model)
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
