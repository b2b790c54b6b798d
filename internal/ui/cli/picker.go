package cli

import (
	"architect/internal/engine/framework"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type pickerItem struct {
	item
	path   string
	manual bool
}

type pickerModel struct {
	list      list.Model
	input     textinput.Model
	manual    bool
	choice    string
	cancelled bool
	err       string
}

// FindProjects lists the directories directly under searchDir that contain
// a package.json, in name order.
func FindProjects(searchDir string) ([]string, error) {
	entries, err := os.ReadDir(searchDir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", searchDir, err)
	}
	var projects []string
	for _, entry := range entries {
		path := filepath.Join(searchDir, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		if framework.HasManifest(path) {
			projects = append(projects, path)
		}
	}
	return projects, nil
}

func newPickerModel(projects []string) pickerModel {
	items := make([]list.Item, 0, len(projects)+1)
	for _, p := range projects {
		items = append(items, pickerItem{
			item: item{title: filepath.Base(p), desc: p},
			path: p,
		})
	}
	items = append(items, pickerItem{
		item:   item{title: ">> Enter a path manually...", desc: "type the project root"},
		manual: true,
	})

	input := textinput.New()
	input.Placeholder = "/path/to/project"
	input.Prompt = "Project root: "
	input.CharLimit = 4096

	return pickerModel{
		list:  newSelectList("Select a project", items),
		input: input,
	}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			return m, tea.Quit
		}
		if m.manual {
			return m.updateManual(msg)
		}
		switch msg.String() {
		case "q", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			selected, ok := m.list.SelectedItem().(pickerItem)
			if !ok {
				return m, nil
			}
			if selected.manual {
				m.manual = true
				return m, m.input.Focus()
			}
			m.choice = selected.path
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	if m.manual {
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) updateManual(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.manual = false
		m.err = ""
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		path := strings.TrimSpace(m.input.Value())
		if path == "" {
			m.err = "path must not be empty"
			return m, nil
		}
		m.choice = path
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	if m.manual {
		var b strings.Builder
		b.WriteString(titleStyle("Project path") + "\n\n")
		b.WriteString(m.input.View() + "\n")
		if m.err != "" {
			b.WriteString(errorStyle.Render(m.err) + "\n")
		}
		b.WriteString(statusStyle.Render("enter: confirm • esc: back"))
		return docStyle.Render(b.String())
	}
	return docStyle.Render(m.list.View() + "\n" + statusStyle.Render("enter: select • q: quit"))
}

// PickProject asks the user to choose a project among the siblings of the
// working directory, or to type a path.
func PickProject() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	projects, err := FindProjects(filepath.Dir(cwd))
	if err != nil {
		return "", err
	}

	final, err := tea.NewProgram(newPickerModel(projects), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return "", fmt.Errorf("project picker: %w", err)
	}
	m, ok := final.(pickerModel)
	if !ok || m.cancelled || m.choice == "" {
		return "", ErrCancelled
	}
	return m.choice, nil
}
