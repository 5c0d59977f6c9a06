package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// drawSphere renders a Bloch point as a sphereW×sphereH character drawing.
// |0⟩ is at the top, |1⟩ at the bottom; the tip is filled when the vector
// points toward the viewer (z ≥ 0) and hollow otherwise.
func drawSphere(p BlochPoint, color lipgloss.Color) string {
	grid := make([][]rune, sphereH)
	vec := make([][]bool, sphereH)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", sphereW))
		vec[r] = make([]bool, sphereW)
	}

	cx, cy := sphereW/2, sphereH/2
	ry := float64(cy - 1)
	rx := 2 * ry

	put := func(col, row int, ch rune, isVec bool) {
		if row < 0 || row >= sphereH || col < 0 || col >= sphereW {
			return
		}
		grid[row][col] = ch
		vec[row][col] = isVec
	}

	for t := 0.0; t < 2*math.Pi; t += math.Pi / 48 {
		put(cx+int(math.Round(rx*math.Cos(t))), cy+int(math.Round(ry*math.Sin(t))), '·', false)
		// Equator seen slightly from above.
		put(cx+int(math.Round(rx*math.Cos(t))), cy+int(math.Round(0.3*ry*math.Sin(t))), '┄', false)
	}
	for row := 1; row < sphereH-1; row++ {
		put(cx, row, '┆', false)
	}
	put(cx, cy, '┼', false)

	for i, ch := range "|0⟩" {
		put(cx-1+i, 0, ch, false)
	}
	for i, ch := range "|1⟩" {
		put(cx-1+i, sphereH-1, ch, false)
	}

	tipCol := cx + int(math.Round(p.X*rx))
	tipRow := cy - int(math.Round(p.Y*ry))
	const steps = 12
	for s := 1; s < steps; s++ {
		f := float64(s) / steps
		put(cx+int(math.Round(p.X*rx*f)), cy-int(math.Round(p.Y*ry*f)), '•', true)
	}
	tip := '●'
	if p.Z < 0 {
		tip = '○'
	}
	put(tipCol, tipRow, tip, true)

	vecStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	lines := make([]string, sphereH)
	for r := range grid {
		var sb strings.Builder
		for c, ch := range grid[r] {
			switch {
			case vec[r][c]:
				sb.WriteString(vecStyle.Render(string(ch)))
			case ch == ' ':
				sb.WriteRune(ch)
			default:
				sb.WriteString(dimStyle.Render(string(ch)))
			}
		}
		lines[r] = sb.String()
	}
	return strings.Join(lines, "\n")
}

// renderSpherePanel renders one qubit's sphere with its coordinates and
// amplitudes.
func renderSpherePanel(title string, q Qubit, color lipgloss.Color, selected bool, precision int) string {
	p := q.Bloch()

	var sb strings.Builder
	head := title
	if selected {
		head = "▸ " + head
	}
	sb.WriteString(titleStyle.Render(head))
	sb.WriteString("\n")
	sb.WriteString(drawSphere(p, color))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "θ %s\n", formatAngle(p.Theta))
	fmt.Fprintf(&sb, "φ %s\n", formatAngle(p.Phi))
	fmt.Fprintf(&sb, "%s\n", dimStyle.Render(fmt.Sprintf("x %.3f  y %.3f  z %.3f", p.X, p.Y, p.Z)))
	fmt.Fprintf(&sb, "α %s\n", q.Alpha.Format(precision))
	fmt.Fprintf(&sb, "β %s", q.Beta.Format(precision))

	style := sphereStyle
	if selected {
		style = style.BorderForeground(color)
	}
	return style.Render(sb.String())
}
