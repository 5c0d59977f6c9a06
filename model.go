package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// mode selects the page shown.
type mode int

const (
	modeExplorer mode = iota // single-qubit Bloch explorer
	modeCircuit              // two-qubit board with dual spheres
)

// focus represents which panel has keyboard input.
type focus int

const (
	focusBoard focus = iota
	focusMenu
	focusStateForm
)

// simulateMsg carries a finished round trip back into Update.
type simulateMsg Outcome

var errInvalidPolar = errors.New("invalid polar inputs")

// Model represents the TUI application state. Update is the only writer of
// the held states and the board.
type Model struct {
	cfg    *Config
	logger *slog.Logger
	coord  *Coordinator

	mode      mode
	focus     focus
	width     int
	height    int
	statusMsg string // transient status message (e.g. save confirmation)
	statusErr bool

	single Statevector // explorer state
	dual   Statevector // circuit state

	grid       *CircuitGrid
	probs      map[string]float64
	highlights map[string]bool
	steps      []HumanStep
	stateText  string

	cursorRow int
	cursorCol int
	selected  int // qubit targeted by sphere actions
	menuItem  int

	polar   bool
	input   textinput.Model
	spinner spinner.Model
}

// NewModel builds the controller around a simulator client.
func NewModel(cfg *Config, sim Simulator, logger *slog.Logger) Model {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 160
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = activeGateStyle

	m := Model{
		cfg:     cfg,
		logger:  logger,
		coord:   NewCoordinator(sim, logger),
		mode:    modeCircuit,
		focus:   focusBoard,
		single:  Ground(1),
		grid:    NewCircuitGrid(cfg.Columns),
		polar:   true,
		input:   ti,
		spinner: sp,
	}
	m.setDual(Ground(2))
	return m
}

// setDual replaces the circuit state and derives the chart from it.
func (m *Model) setDual(v Statevector) {
	m.dual = v
	m.stateText = Encode(v)
	m.probs = v.Probabilities()
	m.highlights = NormalizeHighlights(termLabels(m.stateText))
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.statusErr = false
}

func (m *Model) setError(msg string) {
	m.statusMsg = msg
	m.statusErr = true
}

// qubits returns the qubit count of the active page.
func (m Model) qubits() int {
	if m.mode == modeExplorer {
		return 1
	}
	return 2
}

// active returns the statevector of the active page.
func (m Model) active() Statevector {
	if m.mode == modeExplorer {
		return m.single
	}
	return m.dual
}

func (m *Model) setActive(v Statevector) {
	if m.mode == modeExplorer {
		m.single = v
		return
	}
	m.setDual(v)
}

// sphereQubit returns the single-qubit view of qubit i for its sphere.
func (m Model) sphereQubit(i int) Qubit {
	q, err := MarginalQubitState(m.active(), i)
	if err != nil {
		return groundQubit()
	}
	return q
}

// placeGate places the selected palette gate at the cursor.
func (m *Model) placeGate(kind GateKind) bool {
	if err := m.grid.Place(kind, m.cursorRow, m.cursorCol); err != nil {
		m.setError(err.Error())
		return false
	}
	m.logger.Debug("gate placed", "gate", kind, "row", m.cursorRow, "col", m.cursorCol)
	if kind.IsTwoQubit() {
		m.setStatus(fmt.Sprintf("Placed %s: control q%d, target q%d", kind, m.cursorRow, 1-m.cursorRow))
	} else {
		m.setStatus(fmt.Sprintf("Placed %s on q%d", kind, m.cursorRow))
	}
	if m.cursorCol < m.grid.Columns()-1 {
		m.cursorCol++
	}
	return true
}

// applyPauli applies a local Pauli to the selected qubit.
func (m *Model) applyPauli(kind GateKind) {
	v, err := ApplyPauliTo(m.active(), m.selected, kind)
	if err != nil {
		m.setError(err.Error())
		return
	}
	m.setActive(v)
}

// resetSelected puts the selected qubit back to |0⟩.
func (m *Model) resetSelected() {
	if m.mode == modeExplorer {
		m.single = Ground(1)
		return
	}
	if err := m.setSelectedQubit(groundQubit()); err != nil {
		m.setError(err.Error())
	}
}

// setSelectedQubit replaces the selected qubit of the circuit state with q,
// keeping the other qubit's marginal. The result is a product state.
func (m *Model) setSelectedQubit(q Qubit) error {
	other := m.sphereQubit(1 - m.selected)
	pair := [2]Qubit{}
	pair[m.selected] = q
	pair[1-m.selected] = other
	v, err := Tensor(pair[0], pair[1])
	if err != nil {
		return err
	}
	m.setDual(v)
	return nil
}

// openStateForm opens the set-state form prefilled from the current state.
func (m *Model) openStateForm() tea.Cmd {
	m.focus = focusStateForm
	m.input.SetValue(m.formValue())
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m Model) formValue() string {
	if m.polar {
		p := m.sphereQubit(m.selected).Bloch()
		return fmt.Sprintf("%.2f, %.2f", p.ThetaDeg(), p.PhiDeg())
	}
	amps := m.active().Amplitudes()
	parts := make([]string, len(amps))
	for i, a := range amps {
		parts[i] = EncodeLiteral(a, m.cfg.Precision)
	}
	return strings.Join(parts, ", ")
}

// submitState applies the form input. The held state is left unchanged on
// any error.
func (m *Model) submitState(input string) error {
	if m.polar {
		angles := parseAngles(input)
		if len(angles) != 2 {
			return errInvalidPolar
		}
		q := PolarToAmplitude(angles[0], angles[1])
		if m.mode == modeExplorer {
			v, err := q.State()
			if err != nil {
				return err
			}
			m.single = v
			return nil
		}
		return m.setSelectedQubit(q)
	}

	amps, err := parseAmplitudes(input)
	if err != nil {
		return err
	}
	want := 1 << m.qubits()
	if len(amps) != want {
		return fmt.Errorf("want %d amplitudes, got %d", want, len(amps))
	}
	v, err := Normalize(amps...)
	if err != nil {
		return err
	}
	m.setActive(v)
	return nil
}

// startSimulation issues a request for the current board.
func (m *Model) startSimulation() tea.Cmd {
	t, ok := m.coord.Begin(context.Background())
	if !ok {
		m.setStatus("Simulation already running")
		return nil
	}
	ops := m.grid.Encode()
	coord := m.coord
	m.logger.Info("simulation started", "seq", t.Seq, "columns", len(ops))
	m.setStatus("Simulating…")
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return simulateMsg(coord.Run(t, ops))
	})
}

// applyOutcome publishes a finished simulation as one update.
func (m *Model) applyOutcome(o Outcome) {
	res, err := m.coord.Finish(o)
	switch {
	case errors.Is(err, ErrSuperseded):
		return
	case err != nil:
		m.setError("Simulation failed: " + err.Error())
		return
	case res.State.Qubits() != 2:
		m.setError(fmt.Sprintf("Simulation failed: expected 2 qubits, got %d", res.State.Qubits()))
		return
	}

	m.dual = res.State
	m.stateText = res.StatevectorText
	m.probs = res.Probabilities
	m.highlights = res.Highlights
	m.steps = res.Steps
	m.setStatus("Simulation complete")
}

// clearBoard empties the board, resets the circuit state and drops any
// in-flight request.
func (m *Model) clearBoard() {
	m.coord.Invalidate()
	m.grid.Clear()
	m.steps = nil
	m.setDual(Ground(2))
	m.cursorCol = 0
	m.setStatus("Cleared")
}

func (m *Model) saveQASM() {
	if err := os.WriteFile("circuit.qasm", []byte(m.grid.ToQASM()), 0644); err != nil {
		m.setError(fmt.Sprintf("Save error: %v", err))
		return
	}
	m.setStatus("Saved circuit.qasm")
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.coord.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case simulateMsg:
		m.applyOutcome(Outcome(msg))
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusBoard:
			m.statusMsg = ""
			return m.updateBoard(key)
		case focusMenu:
			m.updateMenu(key)
			return m, nil
		case focusStateForm:
			return m.updateForm(msg)
		}
	}

	return m, nil
}

func (m Model) updateBoard(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "m":
		if m.mode == modeExplorer {
			m.mode = modeCircuit
		} else {
			m.mode = modeExplorer
		}
		m.selected = 0
	case "tab":
		m.selected = (m.selected + 1) % m.qubits()
	case "x", "y", "z":
		m.applyPauli(GateKind(strings.ToUpper(key)))
	case "0":
		m.resetSelected()
	case "e":
		return m, m.openStateForm()
	case "ctrl+r":
		if m.mode == modeExplorer {
			m.single = Ground(1)
			break
		}
		m.clearBoard()
	}

	if m.mode != modeCircuit {
		return m, nil
	}

	switch key {
	case "up", "k":
		if m.cursorRow > 0 {
			m.cursorRow--
		}
	case "down", "j":
		if m.cursorRow < m.grid.Rows()-1 {
			m.cursorRow++
		}
	case "left", "h":
		if m.cursorCol > 0 {
			m.cursorCol--
		}
	case "right", "l":
		if m.cursorCol < m.grid.Columns()-1 {
			m.cursorCol++
		}
	case "a":
		m.focus = focusMenu
	case "backspace", "delete":
		m.grid.RemoveAt(m.cursorRow, m.cursorCol)
	case "s":
		return m, m.startSimulation()
	case "ctrl+s":
		m.saveQASM()
	}
	return m, nil
}

func (m *Model) updateMenu(key string) {
	switch key {
	case "esc":
		m.focus = focusBoard
	case "up", "k":
		if m.menuItem > 0 {
			m.menuItem--
		}
	case "down", "j":
		if m.menuItem < len(gateMenu)-1 {
			m.menuItem++
		}
	case "enter":
		if m.placeGate(gateMenu[m.menuItem].spec.Kind) {
			m.focus = focusBoard
		}
	}
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focus = focusBoard
		m.input.Blur()
		return m, nil
	case "ctrl+t":
		m.polar = !m.polar
		m.input.SetValue(m.formValue())
		m.input.CursorEnd()
		return m, nil
	case "enter":
		err := m.submitState(m.input.Value())
		switch {
		case errors.Is(err, ErrZeroVector):
			m.setError("State vector cannot be zero.")
			return m, nil
		case errors.Is(err, errInvalidPolar):
			m.setError("Invalid polar inputs.")
			return m, nil
		case err != nil:
			m.setError("Failed to set state: " + err.Error())
			return m, nil
		}
		m.setStatus("State updated")
		m.focus = focusBoard
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var frame string
	if m.mode == modeExplorer {
		frame = m.viewExplorer()
	} else {
		frame = m.viewCircuit()
	}

	switch m.focus {
	case focusMenu:
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	case focusStateForm:
		frame = overlayAt(frame, m.renderStateForm(), 2, 2)
	}
	return frame
}

func (m Model) viewExplorer() string {
	sphere := renderSpherePanel("Qubit", m.sphereQubit(0), qubitColors[0], true, m.cfg.Precision)
	info := m.renderInfoPanel(max(m.width-lipgloss.Width(sphere)-4, 20))
	top := lipgloss.JoinHorizontal(lipgloss.Top, sphere, info)
	return lipgloss.JoinVertical(lipgloss.Left, top, m.renderControlsPanel(m.width-4))
}

func (m Model) viewCircuit() string {
	board := m.renderBoardPanel(m.width - 4)

	s0 := renderSpherePanel("q0", m.sphereQubit(0), qubitColors[0], m.selected == 0, m.cfg.Precision)
	s1 := renderSpherePanel("q1", m.sphereQubit(1), qubitColors[1], m.selected == 1, m.cfg.Precision)
	chartW := max(m.width-lipgloss.Width(s0)-lipgloss.Width(s1)-4, 30)
	chart := chartStyle.Width(chartW).Render(renderChart(m.probs, m.highlights, chartW-2) +
		"\n\n" + dimStyle.Render(m.stateText))
	middle := lipgloss.JoinHorizontal(lipgloss.Top, s0, s1, chart)

	log := chartStyle.Width(m.width - 4).Render(renderStepLog(m.steps, m.width-8))

	return lipgloss.JoinVertical(lipgloss.Left, board, middle, log, m.renderControlsPanel(m.width-4))
}
