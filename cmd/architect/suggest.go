package main

import (
	"architect/internal/core/config"
	"architect/internal/core/errors"
	"architect/internal/engine/suggest"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newSuggestCmd(stdout, stderr io.Writer) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "suggest [path]",
		Short: "Ask an AI model to propose architecture rules for a project",
		Long: fmt.Sprintf(`suggest sends the project's framework, dependencies and folder outline to an
AI model and prints the proposed rules.

Providers are tried in order until one answers: first the ai_configs entries
of the project configuration (provider: openai, groq, ollama, kimi, deepseek,
claude or gemini), then the environment:
  %s       OpenAI-compatible base URL (optional)
  %s       API key (falls back to %s)
  %s     model name
  %s  provider family of that endpoint (default openai)
  %s   Anthropic token (or %s), with %s and %s`,
			suggest.EnvURL, suggest.EnvKey, suggest.EnvOpenAIKey, suggest.EnvModel, suggest.EnvProvider,
			suggest.EnvAnthropicToken, suggest.EnvAnthropicKey, suggest.EnvAnthropicURL, suggest.EnvAnthropicModel),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveRoot(args)
			if err != nil {
				return err
			}
			completer, err := newCompleter(root)
			if err != nil {
				return err
			}
			pc, err := suggest.BuildContext(root)
			if err != nil {
				return err
			}

			fmt.Fprintf(stderr, "Analyzing %s (%s)...\n", root, pc.Framework)
			s, err := suggest.NewSuggester(completer).Suggest(cmd.Context(), pc)
			if err != nil {
				return err
			}
			printSuggestion(stdout, s)

			if !write {
				return nil
			}
			return persistSuggestion(stdout, root, s)
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "Merge the suggestion into the project configuration")
	return cmd
}

// newCompleter chains the providers from the project configuration, when
// there is one, and the environment.
func newCompleter(root string) (suggest.Completer, error) {
	cfg, err := config.Load(root)
	if errors.IsCode(err, errors.CodeNotFound) {
		cfg, err = nil, nil
	}
	if err != nil {
		return nil, err
	}
	cfgs, err := suggest.ClientConfigs(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfiguration, "invalid AI provider configuration")
	}
	f, err := suggest.NewFallback(cfgs)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfiguration, "AI client is not configured")
	}
	return f, nil
}

func printSuggestion(out io.Writer, s *suggest.Suggestion) {
	fmt.Fprintf(out, "Suggested pattern:   %s\n", s.Pattern)
	fmt.Fprintf(out, "Suggested max lines: %d\n", s.SuggestedMaxLines)
	if len(s.Rules) == 0 {
		fmt.Fprintln(out, "No import rules suggested.")
		return
	}
	fmt.Fprintln(out, "Forbidden imports:")
	for _, r := range s.Rules {
		fmt.Fprintf(out, "  %s -> %s\n", r.From, r.To)
		if r.Reason != "" {
			fmt.Fprintf(out, "    └─ %s\n", r.Reason)
		}
	}
}

func persistSuggestion(out io.Writer, root string, s *suggest.Suggestion) error {
	cfg, err := config.Load(root)
	if errors.IsCode(err, errors.CodeNotFound) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return err
	}
	if cfg.Source != "" && filepath.Ext(cfg.Source) != ".json" {
		slog.Warn("writing architect.json next to an existing configuration; it takes precedence", "existing", cfg.Source)
	}

	s.Apply(cfg)
	path, err := config.Save(root, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✔ Configuration saved to %s\n", path)
	return nil
}
