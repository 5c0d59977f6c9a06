package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	n := ansi.StringWidth(s)
	if n >= width {
		return ansi.Truncate(s, width, "")
	}
	total := width - n
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// ──────────────────────────── Cell rendering ────────────────────────────

// renderCell returns 3 lines (top, mid, bot) for one board cell, each
// exactly cellW visual characters wide. Row 0 links down to row 1 for a
// two-qubit gate and row 1 links up.
func renderCell(cell Cell, row int, cursor bool) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + gateStyle.Render("│") + strings.Repeat(" ", cellW-halfW-1)
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1

	linked := cell.Role != RoleNone
	top, bot = emptyRow, emptyRow
	if linked && row == 1 {
		top = vertRow
	}
	if linked && row == 0 {
		bot = vertRow
	}

	switch {
	case cell.Role == RoleControl:
		mid = strings.Repeat("─", dashL) + gateStyle.Render("●") + strings.Repeat("─", dashR)
	case cell.Role == RoleTarget:
		mid = strings.Repeat("─", dashL) + gateStyle.Render(cell.Symbol) + strings.Repeat("─", dashR)
	case cell.Gate != "":
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		name := padCenter(string(cell.Gate), gateNameW)
		top = strings.Repeat(" ", margin) + gateStyle.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+name+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + gateStyle.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)
	default:
		mid = strings.Repeat("─", cellW)
	}

	if cursor {
		mid = cursorBoxStyle.Render("[") + ansi.Cut(mid, 1, cellW-1) + cursorBoxStyle.Render("]")
	}
	return
}

// ──────────────────────────── Panel rendering ────────────────────────────

// renderBoardPanel renders the 2×N circuit board.
func (m Model) renderBoardPanel(width int) string {
	var sb strings.Builder

	title := "Quantum Circuit"
	if m.coord.Pending() {
		title += " " + m.spinner.View()
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")

	header := strings.Repeat(" ", labelVisualW)
	for col, n := 0, m.grid.Columns(); col < n; col++ {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", col), cellW))
	}
	sb.WriteString(header + "\n")

	for row, n := 0, m.grid.Rows(); row < n; row++ {
		topLine := strings.Repeat(" ", labelVisualW)
		midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", fmt.Sprintf("q%d", row))) + "──"
		botLine := strings.Repeat(" ", labelVisualW)

		for col, n := 0, m.grid.Columns(); col < n; col++ {
			cursor := row == m.cursorRow && col == m.cursorCol && m.focus != focusStateForm
			top, mid, bot := renderCell(m.grid.Cell(row, col), row, cursor)
			topLine += top
			midLine += mid
			botLine += bot
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}

	fmt.Fprintf(&sb, "\n  Position: Step %d, Qubit %d", m.cursorCol, m.cursorRow)
	if m.statusMsg != "" {
		fmt.Fprintf(&sb, "  │  %s", m.renderStatus())
	}

	return circuitStyle.Width(width).Render(sb.String())
}

func (m Model) renderStatus() string {
	if m.statusErr {
		return errorStyle.Render(m.statusMsg)
	}
	return activeGateStyle.Render(m.statusMsg)
}

// renderInfoPanel renders the explorer's state readout.
func (m Model) renderInfoPanel(width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Bloch Explorer"))
	sb.WriteString("\n\n")
	sb.WriteString(Encode(m.single))
	sb.WriteString("\n\n")
	probs := m.single.Probabilities()
	for _, label := range BasisLabels(1) {
		fmt.Fprintf(&sb, "%s %6.2f%%\n", qubitLabelStyle.Render("P(|"+label+"⟩)"), probs[label])
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("Form: " + m.formModeName()))
	if m.statusMsg != "" {
		sb.WriteString("\n\n")
		sb.WriteString(m.renderStatus())
	}
	return chartStyle.Width(width).Render(sb.String())
}

func (m Model) formModeName() string {
	if m.polar {
		return "polar (θ, φ)"
	}
	return "amplitudes"
}

// renderStateForm renders the set-state overlay.
func (m Model) renderStateForm() string {
	var sb strings.Builder
	title := "Set State"
	if m.mode == modeCircuit {
		title += fmt.Sprintf(" · q%d", m.selected)
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("Mode: " + m.formModeName() + "  (^T toggle)"))
	sb.WriteString("\n\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n\n")
	switch {
	case m.polar:
		sb.WriteString(dimStyle.Render("Degrees, or radians with pi: 90, 45  ·  pi/2, pi/4"))
	case m.mode == modeCircuit:
		sb.WriteString(dimStyle.Render("Four amplitudes: 0.707, 0, 0, 0.707j"))
	default:
		sb.WriteString(dimStyle.Render("Two amplitudes: 0.6, 0.8j"))
	}
	if m.statusErr && m.statusMsg != "" {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render(m.statusMsg))
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("⏎ Set  Esc ✕"))
	return menuBorderStyle.Render(sb.String())
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width int) string {
	var sb strings.Builder

	if m.mode == modeCircuit {
		sb.WriteString(activeGateStyle.Render("Board:  "))
		sb.WriteString("↑↓←→/hjkl Move  ")
		sb.WriteString(activeGateStyle.Render("a"))
		sb.WriteString(" Add gate  Bksp Delete  ")
		sb.WriteString(activeGateStyle.Render("s"))
		sb.WriteString(" Simulate  ^R Clear  ^S Save QASM\n")
	}

	sb.WriteString(activeGateStyle.Render("Sphere: "))
	sb.WriteString("Tab Qubit  x/y/z Pauli  0 Reset  e Set state    ")
	sb.WriteString(activeGateStyle.Render("m"))
	sb.WriteString(" Mode  q/^C Quit")

	return controlsStyle.Width(width).Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at
// visible column x, line y. ANSI sequences on either side are preserved.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces the visible columns [x, x+width(overlay)) of bgLine.
func spliceLineAt(bgLine, overlay string, x int) string {
	prefix := ansi.Truncate(bgLine, x, "")
	if pad := x - ansi.StringWidth(prefix); pad > 0 {
		prefix += strings.Repeat(" ", pad)
	}
	suffix := ansi.TruncateLeft(bgLine, x+ansi.StringWidth(overlay), "")
	return prefix + overlay + suffix
}
