package main

import (
	"errors"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/smartystreets/goconvey/convey"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(Model)
	}
	return m, cmd
}

// simulateResult runs the command returned by the simulate key and returns
// the outcome message it produces.
func simulateResult(cmd tea.Cmd) (simulateMsg, bool) {
	if cmd == nil {
		return simulateMsg{}, false
	}
	msg := cmd()
	if sm, ok := msg.(simulateMsg); ok {
		return sm, true
	}
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return simulateMsg{}, false
	}
	for _, c := range batch {
		if c == nil {
			continue
		}
		if sm, ok := c().(simulateMsg); ok {
			return sm, true
		}
	}
	return simulateMsg{}, false
}

func menuIndex(kind GateKind) int {
	for i, item := range gateMenu {
		if item.spec.Kind == kind {
			return i
		}
	}
	return -1
}

func pickGate(m Model, kind GateKind) Model {
	m, _ = press(m, runeKey("a"))
	for i, n := 0, menuIndex(kind); i < n; i++ {
		m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	return m
}

func newTestModel(sim Simulator) Model {
	return NewModel(DefaultConfig(), sim, discardLogger())
}

func TestModelSimulation(t *testing.T) {
	Convey("Given a circuit with H then CNOT", t, func() {
		sim := &fakeSimulator{resp: bellReply()}
		m := newTestModel(sim)
		m = pickGate(m, GateH)
		m = pickGate(m, GateCNOT)
		So(m.grid.Cell(0, 0).Gate, ShouldEqual, GateH)
		So(m.grid.Cell(0, 1).Role, ShouldEqual, RoleControl)

		Convey("Pressing s starts one request", func() {
			m, cmd := press(m, runeKey("s"))
			So(cmd, ShouldNotBeNil)
			So(m.coord.Pending(), ShouldBeTrue)

			Convey("A second s while pending is ignored", func() {
				m, cmd2 := press(m, runeKey("s"))
				So(cmd2, ShouldBeNil)
				So(m.statusMsg, ShouldEqual, "Simulation already running")
			})

			Convey("The reply updates the state, chart and step log together", func() {
				msg, ok := simulateResult(cmd)
				So(ok, ShouldBeTrue)
				next, _ := m.Update(msg)
				m = next.(Model)

				So(m.coord.Pending(), ShouldBeFalse)
				So(m.statusMsg, ShouldEqual, "Simulation complete")
				So(m.steps, ShouldHaveLength, 2)
				So(m.stateText, ShouldEqual, "(0.707)|00⟩(0.707)|11⟩")
				So(m.highlights["11"], ShouldBeTrue)
				So(sim.calls[0].Circuit[0], ShouldResemble, ColumnOp{Q0: "H"})
				So(sim.calls[0].Circuit[1], ShouldResemble, ColumnOp{Q0: "CNOT_control"})
			})

			Convey("Clearing before the reply discards it", func() {
				m, _ := press(m, tea.KeyMsg{Type: tea.KeyCtrlR})
				So(m.grid.IsEmpty(), ShouldBeTrue)

				msg, _ := simulateResult(cmd)
				next, _ := m.Update(msg)
				m = next.(Model)

				So(m.steps, ShouldBeEmpty)
				So(m.stateText, ShouldEqual, "(1.000)|00⟩")
				So(m.statusMsg, ShouldEqual, "Cleared")
			})
		})
	})

	Convey("Given a simulator that fails", t, func() {
		m := newTestModel(&fakeSimulator{err: errors.New("connection refused")})

		Convey("The error is shown and the state is kept", func() {
			m, cmd := press(m, runeKey("s"))
			msg, _ := simulateResult(cmd)
			next, _ := m.Update(msg)
			m = next.(Model)

			So(m.statusErr, ShouldBeTrue)
			So(m.statusMsg, ShouldStartWith, "Simulation failed:")
			So(m.stateText, ShouldEqual, "(1.000)|00⟩")
			So(m.coord.Pending(), ShouldBeFalse)
		})
	})
}

func TestModelPlacement(t *testing.T) {
	Convey("Given a CNOT at column 0", t, func() {
		m := newTestModel(&fakeSimulator{})
		m = pickGate(m, GateCNOT)
		So(m.cursorCol, ShouldEqual, 1)
		So(m.grid.Cell(1, 0).Role, ShouldEqual, RoleTarget)

		Convey("Placing H over its control removes the target", func() {
			m, _ := press(m, tea.KeyMsg{Type: tea.KeyLeft})
			m = pickGate(m, GateH)
			So(m.grid.Cell(0, 0).Gate, ShouldEqual, GateH)
			So(m.grid.Cell(1, 0).Empty(), ShouldBeTrue)
		})

		Convey("Deleting the target removes the pair", func() {
			m, _ := press(m, tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyBackspace})
			So(m.grid.IsEmpty(), ShouldBeTrue)
		})
	})

	Convey("Given the gate menu is open", t, func() {
		m := newTestModel(&fakeSimulator{})
		m, _ = press(m, runeKey("a"))
		So(m.focus, ShouldEqual, focusMenu)

		Convey("Esc closes it without placing", func() {
			m, _ := press(m, tea.KeyMsg{Type: tea.KeyEsc})
			So(m.focus, ShouldEqual, focusBoard)
			So(m.grid.IsEmpty(), ShouldBeTrue)
		})
	})
}

func TestModelPauli(t *testing.T) {
	Convey("Given the explorer page", t, func() {
		m := newTestModel(&fakeSimulator{})
		m, _ = press(m, runeKey("m"))
		So(m.mode, ShouldEqual, modeExplorer)

		Convey("x flips the qubit to |1⟩", func() {
			m, _ := press(m, runeKey("x"))
			So(Encode(m.single), ShouldEqual, "(1.000)|1⟩")

			Convey("and 0 resets it", func() {
				m, _ := press(m, runeKey("0"))
				So(Encode(m.single), ShouldEqual, "(1.000)|0⟩")
			})
		})

		Convey("m returns to the circuit page", func() {
			m, _ := press(m, runeKey("m"))
			So(m.mode, ShouldEqual, modeCircuit)
		})
	})

	Convey("Given the circuit page", t, func() {
		m := newTestModel(&fakeSimulator{})

		Convey("tab then x flips qubit 1 only", func() {
			m, _ := press(m, tea.KeyMsg{Type: tea.KeyTab}, runeKey("x"))
			So(m.selected, ShouldEqual, 1)
			So(Encode(m.dual), ShouldEqual, "(1.000)|01⟩")
			So(m.probs["01"], ShouldAlmostEqual, 100, 1e-9)
		})

		Convey("z on |00⟩ leaves the probabilities unchanged", func() {
			m, _ := press(m, runeKey("z"))
			So(Encode(m.dual), ShouldEqual, "(1.000)|00⟩")
		})
	})
}

func TestModelStateForm(t *testing.T) {
	Convey("Given the explorer with the polar form open", t, func() {
		m := newTestModel(&fakeSimulator{})
		m, _ = press(m, runeKey("m"), runeKey("e"))
		So(m.focus, ShouldEqual, focusStateForm)
		So(m.input.Value(), ShouldEqual, "0.00, 0.00")

		Convey("90, 0 sets |+⟩", func() {
			m.input.SetValue("90, 0")
			m, _ := press(m, tea.KeyMsg{Type: tea.KeyEnter})
			So(m.focus, ShouldEqual, focusBoard)
			So(m.statusMsg, ShouldEqual, "State updated")
			p := m.sphereQubit(0).Bloch()
			So(p.X, ShouldAlmostEqual, 1, 1e-9)
			So(p.Z, ShouldAlmostEqual, 0, 1e-9)
		})

		Convey("A single angle is rejected", func() {
			m.input.SetValue("90")
			m, _ := press(m, tea.KeyMsg{Type: tea.KeyEnter})
			So(m.focus, ShouldEqual, focusStateForm)
			So(m.statusMsg, ShouldEqual, "Invalid polar inputs.")
			So(Encode(m.single), ShouldEqual, "(1.000)|0⟩")
		})

		Convey("Esc closes it", func() {
			m, _ := press(m, tea.KeyMsg{Type: tea.KeyEsc})
			So(m.focus, ShouldEqual, focusBoard)
		})
	})

	Convey("Given the circuit page with the amplitude form open", t, func() {
		m := newTestModel(&fakeSimulator{})
		m, _ = press(m, runeKey("e"), tea.KeyMsg{Type: tea.KeyCtrlT})
		So(m.polar, ShouldBeFalse)
		So(m.input.Value(), ShouldEqual, "1.000, 0.000, 0.000, 0.000")

		Convey("A zero vector is rejected and the state kept", func() {
			m.input.SetValue("0, 0, 0, 0")
			m, _ := press(m, tea.KeyMsg{Type: tea.KeyEnter})
			So(m.statusErr, ShouldBeTrue)
			So(m.statusMsg, ShouldEqual, "State vector cannot be zero.")
			So(Encode(m.dual), ShouldEqual, "(1.000)|00⟩")
		})

		Convey("Four amplitudes set a normalized state", func() {
			m.input.SetValue("1, 0, 0, 1")
			m, _ := press(m, tea.KeyMsg{Type: tea.KeyEnter})
			So(m.statusMsg, ShouldEqual, "State updated")
			So(m.dual.IsNormalized(), ShouldBeTrue)
			So(m.probs["11"], ShouldAlmostEqual, 50, 1e-9)
		})

		Convey("The wrong number of amplitudes is rejected", func() {
			m.input.SetValue("1, 0")
			m, _ := press(m, tea.KeyMsg{Type: tea.KeyEnter})
			So(m.statusMsg, ShouldStartWith, "Failed to set state:")
		})
	})

	Convey("Given the circuit page with q1 in superposition", t, func() {
		m := newTestModel(&fakeSimulator{})
		m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab}, runeKey("e"))
		m.input.SetValue("pi/2, 0")
		m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})

		Convey("q0 keeps |0⟩ and the state is |0⟩⊗|+⟩", func() {
			So(m.probs["00"], ShouldAlmostEqual, 50, 1e-9)
			So(m.probs["01"], ShouldAlmostEqual, 50, 1e-9)
			p := m.sphereQubit(0).Bloch()
			So(p.Y, ShouldAlmostEqual, 1, 1e-9)
			So(p.Z, ShouldAlmostEqual, 0, 1e-9)
			So(m.sphereQubit(1).Bloch().X, ShouldAlmostEqual, 1, 1e-9)
		})
	})
}

func TestModelView(t *testing.T) {
	Convey("Given a sized window", t, func() {
		m := newTestModel(&fakeSimulator{})
		next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 50})
		m = next.(Model)

		Convey("The circuit page shows both spheres and the chart", func() {
			out := m.View()
			So(out, ShouldContainSubstring, "q0")
			So(out, ShouldContainSubstring, "q1")
			So(out, ShouldContainSubstring, "Probabilities")
		})

		Convey("The explorer page shows the state readout", func() {
			m, _ := press(m, runeKey("m"))
			So(m.View(), ShouldContainSubstring, "Bloch Explorer")
		})

		Convey("The menu overlays the board", func() {
			m, _ := press(m, runeKey("a"))
			So(strings.Contains(m.View(), "Hadamard"), ShouldBeTrue)
		})
	})

	Convey("Before the first size message", t, func() {
		So(newTestModel(&fakeSimulator{}).View(), ShouldEqual, "Loading...")
	})
}

func TestSpherePanelAngles(t *testing.T) {
	Convey("Given |+⟩", t, func() {
		q := PolarToAmplitude(math.Pi/2, 0)
		out := renderSpherePanel("q0", q, qubitColors[0], true, 3)

		Convey("The panel lists θ in degrees with its pi form", func() {
			So(out, ShouldContainSubstring, "90.0°")
		})
	})
}
