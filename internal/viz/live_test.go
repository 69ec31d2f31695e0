package viz

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/ising/internal/lattice"
)

func newTestModel(t *testing.T, n int) Model {
	t.Helper()
	l, err := lattice.New(1, n, 0, lattice.WithSource(rand.New(rand.NewSource(1))))
	if err != nil {
		t.Fatalf("new lattice: %v", err)
	}
	return NewModel(l, 0)
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func TestNewModel(t *testing.T) {
	m := newTestModel(t, 4)
	if !m.Running() {
		t.Error("expected model to start running")
	}
	if m.SweepsPerFrame() != MinSweepsPerFrame {
		t.Errorf("expected %d sweeps per frame, got %d", MinSweepsPerFrame, m.SweepsPerFrame())
	}
	if m.fps != defaultFPS {
		t.Errorf("expected default fps %d, got %d", defaultFPS, m.fps)
	}
	if m.Init() == nil {
		t.Error("expected tick command from Init")
	}
}

func TestPauseToggle(t *testing.T) {
	m := press(newTestModel(t, 4), " ")
	if m.Running() {
		t.Error("expected paused after space")
	}
	m = press(m, " ")
	if !m.Running() {
		t.Error("expected running after second space")
	}
}

func TestBetaKeys(t *testing.T) {
	m := newTestModel(t, 4)
	m = press(m, "up", "up")
	if got := m.Lattice().InverseTemperature(); math.Abs(got-0.004) > 1e-12 {
		t.Errorf("expected beta 0.004, got %f", got)
	}

	m = press(m, "down", "down", "down", "down", "down")
	if got := m.Lattice().InverseTemperature(); got != 0 {
		t.Errorf("expected beta clamped at 0, got %f", got)
	}

	m.Lattice().SetInverseTemperature(2)
	m = press(m, "up")
	if got := m.Lattice().InverseTemperature(); got != 2 {
		t.Errorf("expected beta clamped at 2, got %f", got)
	}
}

func TestFieldKeys(t *testing.T) {
	m := newTestModel(t, 4)
	m = press(m, "right")
	if got := m.Lattice().Field(); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("expected field 0.1, got %f", got)
	}

	for i := 0; i < 15; i++ {
		m = press(m, "right")
	}
	if got := m.Lattice().Field(); got != 1 {
		t.Errorf("expected field clamped at 1, got %f", got)
	}

	for i := 0; i < 25; i++ {
		m = press(m, "left")
	}
	if got := m.Lattice().Field(); got != -1 {
		t.Errorf("expected field clamped at -1, got %f", got)
	}

	if got, want := m.Lattice().Energy(), m.Lattice().ComputeEnergy(); math.Abs(got-want) > 1e-9 {
		t.Errorf("expected energy %f after field changes, got %f", want, got)
	}
}

func TestSweepsPerFrameKeys(t *testing.T) {
	m := newTestModel(t, 4)
	m = press(m, "-")
	if m.SweepsPerFrame() != MinSweepsPerFrame {
		t.Errorf("expected floor %d, got %d", MinSweepsPerFrame, m.SweepsPerFrame())
	}

	for i := 0; i < 100; i++ {
		m = press(m, "+")
	}
	if m.SweepsPerFrame() != MaxSweepsPerFrame {
		t.Errorf("expected ceiling %d, got %d", MaxSweepsPerFrame, m.SweepsPerFrame())
	}
}

func TestTick(t *testing.T) {
	m := newTestModel(t, 4)

	next, cmd := m.Update(TickMsg{})
	m = next.(Model)
	if cmd == nil {
		t.Error("expected next tick to be scheduled")
	}
	if m.Sweeps() != MinSweepsPerFrame {
		t.Errorf("expected %d sweeps, got %d", MinSweepsPerFrame, m.Sweeps())
	}
	if len(m.energyHistory) != 1 || len(m.magHistory) != 1 || len(m.acceptHistory) != 1 {
		t.Errorf("expected one history entry, got %d", len(m.energyHistory))
	}

	m = press(m, " ")
	next, _ = m.Update(TickMsg{})
	m = next.(Model)
	if m.Sweeps() != MinSweepsPerFrame {
		t.Errorf("expected paused model to stay at %d sweeps, got %d", MinSweepsPerFrame, m.Sweeps())
	}

	m = press(m, "s")
	if m.Sweeps() != 2*MinSweepsPerFrame {
		t.Errorf("expected step to sweep while paused, got %d", m.Sweeps())
	}

	m = press(m, "r")
	if m.Sweeps() != 0 || len(m.energyHistory) != 0 {
		t.Error("expected randomize to clear history")
	}
}

func TestHistoryCapacity(t *testing.T) {
	h := make([]float64, 0)
	for i := 0; i < historyCapacity+10; i++ {
		h = push(h, float64(i))
	}
	if len(h) != historyCapacity {
		t.Fatalf("expected %d entries, got %d", historyCapacity, len(h))
	}
	if h[0] != 10 {
		t.Errorf("expected oldest entries dropped, got first %f", h[0])
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, 4)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestView(t *testing.T) {
	m := newTestModel(t, 4)
	if err := m.Lattice().Fill(1); err != nil {
		t.Fatal(err)
	}
	m = press(m, " ")

	view := m.View()
	if !strings.Contains(view, "beta = 0.002000, h = 0.000000, E = -2.000000, m = 1.000000") {
		t.Errorf("expected title in view, got %q", m.Title())
	}
	if !strings.Contains(view, "PAUSED") {
		t.Error("expected paused status")
	}
	if got := strings.Count(view, cellUp); got != 16 {
		t.Errorf("expected 16 up cells, got %d", got)
	}

	m = press(m, "?")
	if !strings.Contains(m.View(), "KEYBOARD SHORTCUTS") {
		t.Error("expected help overlay")
	}
}

func TestViewCoarseGrains(t *testing.T) {
	m := newTestModel(t, 8)
	if err := m.Lattice().Fill(-1); err != nil {
		t.Fatal(err)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 58, Height: 8})
	m = next.(Model)

	spins := m.renderSpins()
	if got := strings.Count(spins, cellDown); got != 16 {
		t.Errorf("expected 4x4 blocks, got %d cells", got)
	}
	if got := strings.Count(spins, "\n"); got != 3 {
		t.Errorf("expected 4 rows, got %d newlines", got+1)
	}
}

func TestThemeCycle(t *testing.T) {
	defer SetTheme(ThemeRdBu.Name)

	m := newTestModel(t, 4)
	press(m, "t")
	if CurrentTheme.Name != ThemeMono.Name {
		t.Errorf("expected theme %s, got %s", ThemeMono.Name, CurrentTheme.Name)
	}

	if GetTheme("nonexistent").Name != ThemeRdBu.Name {
		t.Error("expected fallback to rdbu")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Errorf("expected %d names, got %d", len(Themes), len(ThemeNames()))
	}
}

func TestSparklineChart(t *testing.T) {
	if got := SparklineChart(nil, 5); got != "─────" {
		t.Errorf("expected flat line, got %q", got)
	}
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(i)
	}
	if got := []rune(stripped(SparklineChart(values, 10))); len(got) != 10 {
		t.Errorf("expected 10 glyphs, got %d", len(got))
	}
}

// stripped removes ANSI escape sequences.
func stripped(s string) string {
	var b strings.Builder
	esc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			esc = true
		case esc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			esc = false
		case !esc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
