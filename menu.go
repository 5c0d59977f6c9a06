package main

import (
	"fmt"
	"strings"
)

// menuItem represents a single gate choice in the palette.
type menuItem struct {
	spec        GateSpec
	symbol      string
	needsTarget bool
}

// gateMenu is the palette, in catalog order.
var gateMenu = buildMenu()

func buildMenu() []menuItem {
	var items []menuItem
	for _, g := range Catalog() {
		item := menuItem{spec: g, symbol: string(g.Kind)}
		if g.Kind.IsTwoQubit() {
			item.needsTarget = true
			item.symbol = "●─" + targetSymbol(g.Kind)
		}
		items = append(items, item)
	}
	return items
}

// renderMenu renders the floating gate palette with a tooltip for the
// highlighted gate.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Add Gate"))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 34)))
	sb.WriteString("\n")

	for i, item := range gateMenu {
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-22s", item.spec.Name)))
			sb.WriteString(gateStyle.Render(item.symbol))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-22s", item.spec.Name)))
			sb.WriteString(dimStyle.Render(item.symbol))
		}
		if item.needsTarget {
			sb.WriteString(dimStyle.Render(" →q" + fmt.Sprint(1-m.cursorRow)))
		}
		sb.WriteString("\n")
	}

	sel := gateMenu[m.menuItem].spec
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 34)))
	sb.WriteString("\n")
	sb.WriteString(activeGateStyle.Render(sel.Description))
	sb.WriteString("\n")
	sb.WriteString(renderMatrix(sel.Matrix))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ⏎ Place  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}

// renderMatrix lays out a display matrix in bracketed, right-aligned columns.
func renderMatrix(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for c, v := range row {
			if c < len(widths) {
				widths[c] = max(widths[c], len([]rune(v)))
			}
		}
	}

	lines := make([]string, len(rows))
	for r, row := range rows {
		cells := make([]string, len(row))
		for c, v := range row {
			cells[c] = strings.Repeat(" ", widths[c]-len([]rune(v))) + v
		}
		open, closing := "│", "│"
		switch {
		case len(rows) == 1:
			open, closing = "[", "]"
		case r == 0:
			open, closing = "┌", "┐"
		case r == len(rows)-1:
			open, closing = "└", "┘"
		}
		lines[r] = gateStyle.Render(open+" "+strings.Join(cells, "  ")+" "+closing)
	}
	return strings.Join(lines, "\n")
}
