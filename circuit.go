package main

import (
	"fmt"
	"strings"
)

// gridRows is the fixed number of qubit wires on the board.
const gridRows = 2

// DefaultColumns is the number of time steps on a fresh board.
const DefaultColumns = 12

// Role marks a cell's part in a two-qubit gate.
type Role int

const (
	RoleNone Role = iota
	RoleControl
	RoleTarget
)

// Cell is one slot of the board. A target cell carries only a display
// symbol; its gate is implied by the control in the same column.
type Cell struct {
	Gate   GateKind
	Role   Role
	Symbol string
}

// Empty reports whether nothing occupies the cell.
func (c Cell) Empty() bool {
	return c.Gate == "" && c.Role == RoleNone && c.Symbol == ""
}

// CircuitGrid is the 2×N gate board. Each column holds at most one
// placement: a single-qubit gate on one row or a control/target pair.
type CircuitGrid struct {
	cells [gridRows][]Cell
}

// NewCircuitGrid returns an empty board with the given number of columns.
func NewCircuitGrid(cols int) *CircuitGrid {
	if cols <= 0 {
		cols = DefaultColumns
	}
	g := &CircuitGrid{}
	for r, n := 0, gridRows; r < n; r++ {
		g.cells[r] = make([]Cell, cols)
	}
	return g
}

// Rows returns the number of qubit wires.
func (g *CircuitGrid) Rows() int { return gridRows }

// Columns returns the number of time steps.
func (g *CircuitGrid) Columns() int { return len(g.cells[0]) }

// Cell returns the cell at (row, col), or an empty cell when out of range.
func (g *CircuitGrid) Cell(row, col int) Cell {
	if !g.inRange(row, col) {
		return Cell{}
	}
	return g.cells[row][col]
}

func (g *CircuitGrid) inRange(row, col int) bool {
	return row >= 0 && row < gridRows && col >= 0 && col < g.Columns()
}

// Place puts a gate at (row, col). Both cells of the column are cleared
// first, so a stale control or target never survives a new placement.
// Two-qubit gates put the control on row and the target on the other row.
func (g *CircuitGrid) Place(kind GateKind, row, col int) error {
	if _, ok := LookupGate(kind); !ok {
		return fmt.Errorf("place: unknown gate %q", kind)
	}
	if !g.inRange(row, col) {
		return fmt.Errorf("place %s: cell (%d,%d) outside %dx%d board", kind, row, col, gridRows, g.Columns())
	}

	g.ClearColumn(col)
	if kind.IsTwoQubit() {
		g.cells[row][col] = Cell{Gate: kind, Role: RoleControl}
		g.cells[1-row][col] = Cell{Role: RoleTarget, Symbol: targetSymbol(kind)}
		return nil
	}
	g.cells[row][col] = Cell{Gate: kind}
	return nil
}

// ClearColumn empties both cells of col.
func (g *CircuitGrid) ClearColumn(col int) {
	if col < 0 || col >= g.Columns() {
		return
	}
	for r, n := 0, gridRows; r < n; r++ {
		g.cells[r][col] = Cell{}
	}
}

// RemoveAt removes whatever occupies (row, col). Removing either half of a
// two-qubit gate removes the whole pair.
func (g *CircuitGrid) RemoveAt(row, col int) {
	if !g.inRange(row, col) {
		return
	}
	if g.cells[row][col].Role != RoleNone {
		g.ClearColumn(col)
		return
	}
	g.cells[row][col] = Cell{}
}

// Clear empties the whole board.
func (g *CircuitGrid) Clear() {
	for c, n := 0, g.Columns(); c < n; c++ {
		g.ClearColumn(c)
	}
}

// IsEmpty reports whether no gate is placed.
func (g *CircuitGrid) IsEmpty() bool {
	for r, n := 0, gridRows; r < n; r++ {
		for _, c := range g.cells[r] {
			if !c.Empty() {
				return false
			}
		}
	}
	return true
}

// Clone returns an independent copy of the board.
func (g *CircuitGrid) Clone() *CircuitGrid {
	out := &CircuitGrid{}
	for r, n := 0, gridRows; r < n; r++ {
		out.cells[r] = make([]Cell, len(g.cells[r]))
		copy(out.cells[r], g.cells[r])
	}
	return out
}

// ColumnOp is one time step of the simulate request.
type ColumnOp struct {
	Q0 string `json:"q0,omitempty"`
	Q1 string `json:"q1,omitempty"`
}

func (op *ColumnOp) set(row int, token string) {
	if row == 0 {
		op.Q0 = token
	} else {
		op.Q1 = token
	}
}

// Encode converts the board into the simulate payload, one ColumnOp per
// column. Target cells emit nothing: the simulator applies a two-qubit gate
// from the control row to the other row of the same column.
func (g *CircuitGrid) Encode() []ColumnOp {
	ops := make([]ColumnOp, g.Columns())
	for col := range ops {
		for row, n := 0, gridRows; row < n; row++ {
			cell := g.cells[row][col]
			if cell.Gate == "" {
				continue
			}
			token := string(cell.Gate)
			if cell.Role == RoleControl {
				token += "_control"
			}
			ops[col].set(row, token)
		}
	}
	return ops
}

// ToQASM generates QASM 2.0 output from the board.
func (g *CircuitGrid) ToQASM() string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", gridRows)
	fmt.Fprintf(&sb, "creg c[%d];\n\n", gridRows)

	for col, n := 0, g.Columns(); col < n; col++ {
		for row, n := 0, gridRows; row < n; row++ {
			cell := g.cells[row][col]
			if cell.Gate == "" {
				continue
			}
			switch {
			case cell.Role == RoleControl && cell.Gate == GateCNOT:
				fmt.Fprintf(&sb, "cx q[%d], q[%d];\n", row, 1-row)
			case cell.Role == RoleControl && cell.Gate == GateCZ:
				fmt.Fprintf(&sb, "cz q[%d], q[%d];\n", row, 1-row)
			default:
				fmt.Fprintf(&sb, "%s q[%d];\n", strings.ToLower(string(cell.Gate)), row)
			}
		}
	}

	return sb.String()
}

// targetSymbol returns the wire symbol for the target qubit of a two-qubit gate.
func targetSymbol(kind GateKind) string {
	if kind == GateCZ {
		return "●"
	}
	return "⊕"
}
