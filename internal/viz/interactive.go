package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/cradle/internal/config"
	"github.com/san-kum/cradle/internal/session"
)

var presetInfo = map[string]string{
	"classic":   "five bobs, clean momentum transfer",
	"fused":     "no gap, the row moves as one",
	"heavy_end": "a triple-mass striker",
	"rainbow":   "nine colored bobs",
	"pair":      "two bobs trading places",
}

const (
	stateMenu = iota
	stateSim
)

// menu picks a preset and then hands over to the live Model.
type menu struct {
	state     int
	cursor    int
	presets   []string
	live      Model
	observers []session.Observer
	err       error
	width     int
	height    int
}

func NewInteractiveApp(observers ...session.Observer) *menu {
	return &menu{
		state:     stateMenu,
		presets:   config.ListPresets(),
		observers: observers,
	}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = size.Width, size.Height
	}
	if m.state == stateSim {
		live, cmd := m.live.Update(msg)
		m.live = live.(Model)
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		return m.start()
	}
	return m, nil
}

func (m menu) start() (tea.Model, tea.Cmd) {
	name := m.presets[m.cursor]
	s, err := session.New(config.GetPreset(name))
	if err != nil {
		m.err = err
		return m, nil
	}

	m.live = NewModel(s, name)
	for _, o := range m.observers {
		m.live = m.live.WithObserver(o)
	}
	if m.width > 0 {
		live, _ := m.live.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		m.live = live.(Model)
	}
	m.state = stateSim
	return m, m.live.Init()
}

func (m menu) View() string {
	if m.state == stateSim {
		return m.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + title("CRADLE") + "\n    " + muted("newton's cradle lab") + "\n    " + muted("───────────────────") + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n",
				title("▸"),
				lipgloss.NewStyle().Foreground(CurrentTheme.Text).Bold(true).Render(fmt.Sprintf("%-12s", name)),
				lipgloss.NewStyle().Foreground(CurrentTheme.Title).Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", muted(fmt.Sprintf("  %-12s", name)), muted(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + StatusRecording.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + KeyHint.Render("j/k navigate  enter select  q quit") + "\n")
	return b.String()
}

// RunInteractive shows the preset menu and then the chosen cradle.
func RunInteractive(observers ...session.Observer) error {
	_, err := tea.NewProgram(NewInteractiveApp(observers...), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
