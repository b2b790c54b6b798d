package cli

import (
	"architect/internal/core/config"
	"architect/internal/engine/framework"
	"architect/internal/engine/rules"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type wizardStep int

const (
	stepFramework wizardStep = iota
	stepPattern
	stepMaxLines
	stepDone
)

var frameworkChoices = []framework.Framework{
	framework.NestJS,
	framework.React,
	framework.Angular,
	framework.Express,
	framework.Unknown,
}

type wizardModel struct {
	step       wizardStep
	detected   framework.Framework
	frameworks list.Model
	patterns   list.Model
	maxLines   textinput.Model

	framework framework.Framework
	pattern   string
	lines     int
	cancelled bool
	err       string
}

func newWizardModel(detected framework.Framework) wizardModel {
	fwItems := make([]list.Item, 0, len(frameworkChoices))
	fwIndex := 0
	for i, fw := range frameworkChoices {
		fwItems = append(fwItems, item{
			title: string(fw),
			desc:  fmt.Sprintf("suggested method limit: %d lines", fw.SuggestedMaxLines()),
		})
		if fw == detected {
			fwIndex = i
		}
	}
	fwList := newSelectList(fmt.Sprintf("Confirm framework (detected: %s)", detected), fwItems)
	fwList.Select(fwIndex)

	patternItems := make([]list.Item, 0, len(config.Patterns))
	patternIndex := 0
	for i, p := range config.Patterns {
		patternItems = append(patternItems, item{title: p, desc: "architecture pattern"})
		if p == config.PatternMVC {
			patternIndex = i
		}
	}
	patternList := newSelectList("Which architecture pattern should be applied?", patternItems)
	patternList.Select(patternIndex)

	input := textinput.New()
	input.Prompt = "Max lines per method: "
	input.CharLimit = 6

	return wizardModel{
		step:       stepFramework,
		detected:   detected,
		frameworks: fwList,
		patterns:   patternList,
		maxLines:   input,
	}
}

func (m wizardModel) Init() tea.Cmd {
	return nil
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.frameworks.SetSize(msg.Width-h, msg.Height-v)
		m.patterns.SetSize(msg.Width-h, msg.Height-v)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.Type == tea.KeyEsc {
			m.cancelled = true
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			return m.advance()
		}
	}

	var cmd tea.Cmd
	switch m.step {
	case stepFramework:
		m.frameworks, cmd = m.frameworks.Update(msg)
	case stepPattern:
		m.patterns, cmd = m.patterns.Update(msg)
	case stepMaxLines:
		m.maxLines, cmd = m.maxLines.Update(msg)
	}
	return m, cmd
}

func (m wizardModel) advance() (tea.Model, tea.Cmd) {
	switch m.step {
	case stepFramework:
		m.framework = frameworkChoices[m.frameworks.Index()]
		m.step = stepPattern
		return m, nil
	case stepPattern:
		m.pattern = config.Patterns[m.patterns.Index()]
		m.step = stepMaxLines
		m.maxLines.Placeholder = strconv.Itoa(m.framework.SuggestedMaxLines())
		return m, m.maxLines.Focus()
	case stepMaxLines:
		raw := strings.TrimSpace(m.maxLines.Value())
		if raw == "" {
			m.lines = m.framework.SuggestedMaxLines()
		} else {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				m.err = "enter a positive number"
				return m, nil
			}
			m.lines = n
		}
		m.step = stepDone
		return m, tea.Quit
	}
	return m, nil
}

func (m wizardModel) View() string {
	switch m.step {
	case stepFramework:
		return docStyle.Render(m.frameworks.View())
	case stepPattern:
		return docStyle.Render(m.patterns.View())
	case stepMaxLines:
		var b strings.Builder
		b.WriteString(titleStyle("Method length limit") + "\n\n")
		b.WriteString(m.maxLines.View() + "\n")
		if m.err != "" {
			b.WriteString(errorStyle.Render(m.err) + "\n")
		}
		b.WriteString(statusStyle.Render("enter: accept (empty keeps the suggestion)"))
		return docStyle.Render(b.String())
	}
	return ""
}

// result returns the configuration collected by a finished wizard.
func (m wizardModel) result() *config.Config {
	return &config.Config{
		MaxLinesPerFunction: m.lines,
		ArchitecturePattern: m.pattern,
		ForbiddenImports:    []rules.ForbiddenRule{},
	}
}

// RunWizard interactively builds a configuration for the project at root.
// The caller persists it.
func RunWizard(root string) (*config.Config, error) {
	detected := framework.Detect(root)
	final, err := tea.NewProgram(newWizardModel(detected), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return nil, fmt.Errorf("configuration wizard: %w", err)
	}
	m, ok := final.(wizardModel)
	if !ok || m.cancelled || m.step != stepDone {
		return nil, ErrCancelled
	}
	return m.result(), nil
}
