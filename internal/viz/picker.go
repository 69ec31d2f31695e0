package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/ising/internal/config"
)

var presetInfo = map[string]string{
	"ordered":    "cold, one domain",
	"critical":   "onsager point",
	"disordered": "hot paramagnet",
	"field":      "biased by h",
	"quench":     "coarsening domains",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

type param struct {
	name string
	step float64
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

var params = []param{
	{"side_length", 4,
		func(c *config.Config) float64 { return float64(c.SideLength) },
		func(c *config.Config, v float64) { c.SideLength = int(v) }},
	{"coupling", 0.1,
		func(c *config.Config) float64 { return c.Coupling },
		func(c *config.Config, v float64) { c.Coupling = v }},
	{"beta", 0.01,
		func(c *config.Config) float64 { return c.Beta },
		func(c *config.Config, v float64) { c.Beta = v }},
	{"field", fieldStep,
		func(c *config.Config) float64 { return c.Field },
		func(c *config.Config, v float64) { c.Field = v }},
}

// Picker chooses a preset, lets the user tune it, then hands off to a live Model.
type Picker struct {
	state, cursor int
	presets       []string
	selected      string
	cfg           *config.Config
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	fps           int
	liveModel     Model
}

func NewPicker(fps int) Picker {
	return Picker{
		state:   stateMenu,
		presets: config.ListPresets(),
		fps:     fps,
	}
}

func (m Picker) Init() tea.Cmd { return nil }

func (m Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m Picker) handleKey(msg tea.KeyMsg) (Picker, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m Picker) menuKey(msg tea.KeyMsg) (Picker, tea.Cmd) {
	switch msg.String() {
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
		m.selected = m.presets[m.cursor]
		m.cfg = config.GetPreset(m.selected)
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m Picker) configKey(msg tea.KeyMsg) (Picker, tea.Cmd) {
	p := params[m.paramCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			if _, err := fmt.Sscanf(m.editBuf, "%f", &val); err == nil {
				p.set(m.cfg, val)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(params)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, fmt.Sprintf("%g", p.get(m.cfg))
	case "left", "h":
		p.set(m.cfg, roundTo(p.get(m.cfg)-p.step, p.step))
	case "right", "l":
		p.set(m.cfg, roundTo(p.get(m.cfg)+p.step, p.step))
	case "s":
		cmd := m.start()
		return m, cmd
	}
	return m, nil
}

func (m *Picker) start() tea.Cmd {
	if err := m.cfg.Validate(); err != nil {
		m.err = err
		return nil
	}
	lat, err := m.cfg.NewLattice()
	if err != nil {
		m.err = err
		return nil
	}
	m.liveModel = NewModel(lat, m.fps)
	m.state, m.err = stateSim, nil
	return m.liveModel.Init()
}

func (m Picker) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func (m Picker) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + headerStyle.Render("ISING") + "\n    " + dimStyle.Render("2d lattice monte carlo") + "\n    " + Separator(25) + "\n\n")
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), selectStyle.Render(fmt.Sprintf("%-12s", name)), highlightFg.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", dimStyle.Render(fmt.Sprintf("  %-12s", name)), dimmerStyle.Render(desc)))
		}
	}
	b.WriteString("\n    " + keyStyle.Render("j/k") + dimStyle.Render(" navigate  ") + keyStyle.Render("enter") + dimStyle.Render(" select  ") + keyStyle.Render("q") + dimStyle.Render(" quit") + "\n")
	return b.String()
}

func (m Picker) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + headerStyle.Render(strings.ToUpper(m.selected)) + "\n    " + dimStyle.Render(presetInfo[m.selected]) + "\n    " + Separator(25) + "\n\n")
	for i, p := range params {
		valStr := fmt.Sprintf("%8.3f", p.get(m.cfg))
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", cursorStyle.Render("▸"), selectStyle.Render(fmt.Sprintf("%-12s", p.name)), highlightFg.Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", dimStyle.Render(fmt.Sprintf("  %-12s", p.name)), dimmerStyle.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + errorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyStyle.Render("j/k") + dimStyle.Render(" select  ") + keyStyle.Render("h/l") + dimStyle.Render(" adjust  ") + keyStyle.Render("s") + dimStyle.Render(" start  ") + keyStyle.Render("esc") + dimStyle.Render(" back") + "\n")
	return b.String()
}

// RunPicker opens the preset menu and blocks until the user quits.
func RunPicker(fps int) error {
	_, err := tea.NewProgram(NewPicker(fps), tea.WithAltScreen()).Run()
	return err
}
