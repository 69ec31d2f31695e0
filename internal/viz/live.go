package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ising/internal/lattice"
)

const (
	historyCapacity = 600
	defaultFPS      = 60
	defaultMaxRows  = 40

	betaStep  = 0.001
	betaMax   = 2.0
	fieldStep = 0.1
	fieldMax  = 1.0

	MinSweepsPerFrame = 10
	MaxSweepsPerFrame = 50
)

type TickMsg time.Time

// Model runs one lattice in a terminal, a batch of sweeps per frame.
type Model struct {
	lat            *lattice.Lattice
	running        bool
	sweepsPerFrame int
	sweeps         int
	fps            int
	maxRows        int
	maxCols        int
	energyHistory  []float64
	magHistory     []float64
	acceptHistory  []float64
	showHelp       bool
}

func NewModel(l *lattice.Lattice, fps int) Model {
	if fps <= 0 {
		fps = defaultFPS
	}
	return Model{
		lat:            l,
		running:        true,
		sweepsPerFrame: MinSweepsPerFrame,
		fps:            fps,
		maxRows:        defaultMaxRows,
		maxCols:        defaultMaxRows,
		energyHistory:  make([]float64, 0, historyCapacity),
		magHistory:     make([]float64, 0, historyCapacity),
		acceptHistory:  make([]float64, 0, historyCapacity),
	}
}

// Run blocks until the user quits.
func Run(l *lattice.Lattice, fps int) error {
	_, err := tea.NewProgram(NewModel(l, fps), tea.WithAltScreen()).Run()
	return err
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Lattice() *lattice.Lattice { return m.lat }
func (m Model) Running() bool              { return m.running }
func (m Model) SweepsPerFrame() int        { return m.sweepsPerFrame }
func (m Model) Sweeps() int                { return m.sweeps }

// Update handles input events and advances the lattice on each tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s":
			m.step()
		case "r":
			m.lat.Randomize()
			m.resetHistory()
		case "up", "k":
			m.lat.SetInverseTemperature(clamp(roundTo(m.lat.InverseTemperature()+betaStep, betaStep), 0, betaMax))
		case "down", "j":
			m.lat.SetInverseTemperature(clamp(roundTo(m.lat.InverseTemperature()-betaStep, betaStep), 0, betaMax))
		case "right", "l":
			m.lat.SetField(clamp(roundTo(m.lat.Field()+fieldStep, fieldStep), -fieldMax, fieldMax))
		case "left", "h":
			m.lat.SetField(clamp(roundTo(m.lat.Field()-fieldStep, fieldStep), -fieldMax, fieldMax))
		case "+", "=":
			if m.sweepsPerFrame < MaxSweepsPerFrame {
				m.sweepsPerFrame++
			}
		case "-", "_":
			if m.sweepsPerFrame > MinSweepsPerFrame {
				m.sweepsPerFrame--
			}
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.maxRows = max(msg.Height-4, 1)
		m.maxCols = max((msg.Width-50)/2, 1)
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

// step performs one frame of sweeps and records the observables.
func (m *Model) step() {
	accepted := 0
	for i := 0; i < m.sweepsPerFrame; i++ {
		accepted += m.lat.Sweep()
	}
	m.sweeps += m.sweepsPerFrame

	m.energyHistory = push(m.energyHistory, m.lat.EnergyPerSite())
	m.magHistory = push(m.magHistory, m.lat.MagnetizationPerSite())
	m.acceptHistory = push(m.acceptHistory, float64(accepted)/float64(m.sweepsPerFrame*m.lat.Sites()))
}

func (m *Model) resetHistory() {
	m.sweeps = 0
	m.energyHistory = m.energyHistory[:0]
	m.magHistory = m.magHistory[:0]
	m.acceptHistory = m.acceptHistory[:0]
}

func push(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// Title is the one-line summary of the current parameters and observables.
func (m Model) Title() string {
	return fmt.Sprintf("beta = %f, h = %f, E = %f, m = %f",
		m.lat.InverseTemperature(), m.lat.Field(), m.lat.EnergyPerSite(), m.lat.MagnetizationPerSite())
}

// View renders the spin field next to the stats panel.
func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("ISING 2D") + "\n")

	status := StatusRunning.Render("RUNNING")
	if !m.running {
		status = StatusPaused.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("E / site"))
		s.WriteString(graphStyle.Render(chart) + "\n")
		chart = asciigraph.Plot(m.magHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("m"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	n := m.lat.SideLength()
	s.WriteString(labelStyle.Render("Lattice") + valueStyle.Render(fmt.Sprintf("%d x %d", n, n)) + "\n")
	s.WriteString(labelStyle.Render("Coupling") + valueStyle.Render(fmt.Sprintf("%.3f", m.lat.Coupling())) + "\n")
	s.WriteString(labelStyle.Render("Beta") + valueStyle.Render(fmt.Sprintf("%.3f", m.lat.InverseTemperature())) + "\n")
	s.WriteString(labelStyle.Render("Field") + valueStyle.Render(fmt.Sprintf("%.1f", m.lat.Field())) + "\n")
	s.WriteString(labelStyle.Render("Sweeps") + valueStyle.Render(fmt.Sprintf("%d", m.sweeps)) + "\n")

	frac := float64(m.sweepsPerFrame-MinSweepsPerFrame) / float64(MaxSweepsPerFrame-MinSweepsPerFrame)
	s.WriteString(labelStyle.Render("Per frame") + ProgressBar(frac, 10) + valueStyle.Render(fmt.Sprintf(" %d", m.sweepsPerFrame)) + "\n")
	s.WriteString(labelStyle.Render("Accepted") + SparklineChart(m.acceptHistory, 20) + "\n")
	s.WriteString(labelStyle.Render("Theme") + valueStyle.Render(CurrentTheme.Name) + "\n")

	s.WriteString(helpStyle.Render("\n" + Separator(21) + "\nSP:Pause S:Step R:Random\n↑↓:Beta ←→:Field +-:Speed\nT:Theme ?:Help Q:Quit"))

	field := canvasStyle.Render(titleStyle.Render(m.Title()) + "\n\n" + m.renderSpins())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, field, statsStyle.Render(s.String()))

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume sweeping    ║
║  S        - Run one frame of sweeps  ║
║  R        - Random spin state        ║
║  Up/K     - Beta + 0.001             ║
║  Down/J   - Beta - 0.001             ║
║  Right/L  - Field + 0.1              ║
║  Left/H   - Field - 0.1              ║
║  + / -    - Sweeps per frame         ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// renderSpins draws the lattice, coarse-graining into blocks when it does
// not fit. A block shows the sign of its spin sum.
func (m Model) renderSpins() string {
	n := m.lat.SideLength()
	limit := min(m.maxRows, m.maxCols)
	block := 1
	if n > limit {
		block = (n + limit - 1) / limit
	}

	up, down, mixed := spinCells()
	var b strings.Builder
	for bi := 0; bi < n; bi += block {
		for bj := 0; bj < n; bj += block {
			sum := 0
			for i := bi; i < min(bi+block, n); i++ {
				for j := bj; j < min(bj+block, n); j++ {
					sum += m.lat.Spin(i, j)
				}
			}
			switch {
			case sum > 0:
				b.WriteString(up)
			case sum < 0:
				b.WriteString(down)
			default:
				b.WriteString(mixed)
			}
		}
		if bi+block < n {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// roundTo snaps v to the nearest multiple of step.
func roundTo(v, step float64) float64 {
	return math.Round(v/step) * step
}
