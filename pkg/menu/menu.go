// Package menu is the interactive front end over the registry and the build
// orchestrator. It keeps no registry or build state of its own.
package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/toolbox/pkg/types"
)

// Registry is the subset of registry.Registry the menu calls.
type Registry interface {
	Create(name string) (string, error)
	Remove(name string) error
	List() ([]string, error)
}

// Builder is the subset of build.Builder the menu calls.
type Builder interface {
	Build(ctx context.Context) (*types.Artifact, error)
}

// Action identifies a menu entry.
type Action int

const (
	ActionCreate Action = iota
	ActionBuild
	ActionList
	ActionRemove
	ActionExit
)

// Item is one selectable menu entry.
type Item struct {
	Label  string
	Action Action
}

// Items is the fixed main menu.
var Items = []Item{
	{"Create tool", ActionCreate},
	{"Build", ActionBuild},
	{"List tools", ActionList},
	{"Remove tool", ActionRemove},
	{"Exit", ActionExit},
}

type mode int

const (
	modeSelect mode = iota
	modeInput
	modeBuilding
)

// buildDoneMsg carries the result of an asynchronous build.
type buildDoneMsg struct {
	artifact *types.Artifact
	err      error
}

// Model is the bubbletea model for the menu.
type Model struct {
	ctx      context.Context
	app      string
	version  string
	registry Registry
	builder  Builder

	cursor  int
	mode    mode
	pending Action
	input   textinput.Model

	status    string
	statusErr bool
	lines     []string
	quitting  bool
}

// New creates the menu model.
func New(ctx context.Context, app, version string, reg Registry, b Builder) *Model {
	ti := textinput.New()
	ti.Placeholder = "tool_name"
	ti.CharLimit = 64
	ti.Prompt = "> "

	return &Model{
		ctx:      ctx,
		app:      app,
		version:  version,
		registry: reg,
		builder:  b,
		input:    ti,
	}
}

// Run shows the menu on the terminal until the user exits or ctx is done.
func Run(ctx context.Context, m *Model, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run menu: %w", err)
	}
	return nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case buildDoneMsg:
		m.mode = modeSelect
		m.lines = nil
		if msg.err != nil {
			m.setError(msg.err)
			if be := (*types.BuildError)(nil); errors.As(msg.err, &be) && be.Output != "" {
				m.lines = strings.Split(strings.TrimRight(be.Output, "\n"), "\n")
			}
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Built %s with %d tools", msg.artifact.BinaryPath, len(msg.artifact.Tools)))
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modeInput:
			return m.updateInput(msg)
		case modeBuilding:
			return m, nil
		default:
			return m.updateSelect(msg)
		}
	}

	if m.mode == modeInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.cursor--
		if m.cursor < 0 {
			m.cursor = len(Items) - 1
		}
	case "down", "j":
		m.cursor = (m.cursor + 1) % len(Items)
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "enter":
		return m.activate(Items[m.cursor].Action)
	}
	return m, nil
}

func (m *Model) activate(action Action) (tea.Model, tea.Cmd) {
	m.lines = nil
	m.status = ""

	switch action {
	case ActionCreate, ActionRemove:
		m.mode = modeInput
		m.pending = action
		m.input.Reset()
		return m, m.input.Focus()

	case ActionBuild:
		m.mode = modeBuilding
		m.status = "Building..."
		m.statusErr = false
		return m, m.build()

	case ActionList:
		names, err := m.registry.List()
		if err != nil {
			m.setError(err)
			return m, nil
		}
		if len(names) == 0 {
			m.setStatus("No tools registered")
			return m, nil
		}
		m.lines = names
		m.setStatus(fmt.Sprintf("%d tools", len(names)))

	case ActionExit:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeSelect
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		name := strings.TrimSpace(m.input.Value())
		m.mode = modeSelect
		m.input.Blur()
		m.submit(name)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit(name string) {
	switch m.pending {
	case ActionCreate:
		path, err := m.registry.Create(name)
		if err != nil {
			m.setError(err)
			return
		}
		m.setStatus("Created " + path)

	case ActionRemove:
		if err := m.registry.Remove(name); err != nil {
			m.setError(err)
			return
		}
		m.setStatus("Removed " + name)
	}
}

func (m *Model) build() tea.Cmd {
	ctx := m.ctx
	b := m.builder
	return func() tea.Msg {
		artifact, err := b.Build(ctx)
		return buildDoneMsg{artifact: artifact, err: err}
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.app))
	sb.WriteString(" ")
	sb.WriteString(subtitleStyle.Render("v" + m.version))
	sb.WriteString("\n\n")

	for i, item := range Items {
		if i == m.cursor && m.mode == modeSelect {
			sb.WriteString(selectedStyle.Render("> " + item.Label))
		} else {
			sb.WriteString(itemStyle.Render("  " + item.Label))
		}
		sb.WriteString("\n")
	}

	if m.mode == modeInput {
		sb.WriteString("\n")
		sb.WriteString(subtitleStyle.Render("Tool name:"))
		sb.WriteString("\n")
		sb.WriteString(m.input.View())
		sb.WriteString("\n")
	}

	if m.status != "" {
		sb.WriteString("\n")
		if m.statusErr {
			sb.WriteString(errorStyle.Render("[!] " + m.status))
		} else {
			sb.WriteString(successStyle.Render("[+] " + m.status))
		}
		sb.WriteString("\n")
	}

	if len(m.lines) > 0 {
		sb.WriteString(boxStyle.Render(strings.Join(m.lines, "\n")))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render(m.helpText()))
	return sb.String()
}

func (m *Model) helpText() string {
	switch m.mode {
	case modeInput:
		return "enter: confirm • esc: cancel"
	case modeBuilding:
		return "building... • ctrl+c: quit"
	default:
		return "↑/↓: move • enter: select • q: quit"
	}
}
