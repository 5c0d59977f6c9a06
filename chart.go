package main

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/guptarohit/asciigraph"
)

// chartLabels are the fixed two-qubit basis labels, in display order.
var chartLabels = BasisLabels(2)

var binaryRegex = regexp.MustCompile(`[01]+`)

// NormalizeProbabilities maps a simulator probability table onto the four
// chart bars, in percent. Keys may be labels ("01") or decimal indices
// ("1"). The table is read as fractions when its values sum to at most 1.
func NormalizeProbabilities(probs map[string]float64) [4]float64 {
	var out [4]float64
	var sum float64
	for i, label := range chartLabels {
		val, ok := probs[label]
		if !ok {
			val, ok = probs[strconv.Itoa(i)]
		}
		if !ok || math.IsNaN(val) || math.IsInf(val, 0) {
			continue
		}
		out[i] = val
		sum += val
	}
	if sum <= 1+fractionSlack {
		for i := range out {
			out[i] *= 100
		}
	}
	return out
}

// fractionSlack absorbs rounding in a fractional table that sums to 1.
const fractionSlack = 1e-6

// NormalizeHighlights turns highlight keys into two-bit labels. Numbers are
// basis indices; strings contribute their first binary run ("|10⟩" → "10")
// or, failing that, an integer index.
func NormalizeHighlights(keys []any) map[string]bool {
	out := make(map[string]bool)
	for _, k := range keys {
		switch v := k.(type) {
		case nil:
		case int:
			addIndex(out, int64(v))
		case int64:
			addIndex(out, v)
		case float64:
			if v == math.Trunc(v) && !math.IsInf(v, 0) {
				addIndex(out, int64(v))
			}
		case json.Number:
			if n, err := v.Int64(); err == nil {
				addIndex(out, n)
			}
		case string:
			s := strings.TrimSpace(v)
			if bits := binaryRegex.FindString(s); bits != "" {
				out[padBits(bits)] = true
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				addIndex(out, n)
			}
		default:
			s := fmt.Sprint(v)
			if bits := binaryRegex.FindString(s); bits != "" {
				out[padBits(bits)] = true
			}
		}
	}
	return out
}

func addIndex(set map[string]bool, n int64) {
	if n < 0 {
		return
	}
	set[padBits(strconv.FormatInt(n, 2))] = true
}

func padBits(bits string) string {
	for len(bits) < 2 {
		bits = "0" + bits
	}
	return bits
}

// termLabels lists the basis labels that appear in wire text.
func termLabels(text string) []any {
	var out []any
	for _, m := range ketRegex.FindAllStringSubmatch(text, -1) {
		out = append(out, m[2])
	}
	return out
}

// renderChart draws the four probability bars.
func renderChart(probs map[string]float64, highlights map[string]bool, width int) string {
	values := NormalizeProbabilities(probs)
	barMax := max(width-18, 4)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Probabilities"))
	sb.WriteString("\n\n")
	for i, label := range chartLabels {
		v := values[i]
		n := int(math.Round(math.Min(v, 100) / 100 * float64(barMax)))
		style := barStyle
		if highlights[label] {
			style = barHighlightStyle
		}
		bar := style.Render(strings.Repeat("█", n)) + dimStyle.Render(strings.Repeat("·", barMax-n))
		fmt.Fprintf(&sb, "%s %s %6.2f%%\n", qubitLabelStyle.Render("|"+label+"⟩"), bar, v)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderStepLog lists the narrated steps and, when at least two of them
// carry probabilities, plots each basis probability across the steps.
func renderStepLog(steps []HumanStep, width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Step Log"))
	sb.WriteString("\n\n")
	if len(steps) == 0 {
		sb.WriteString(dimStyle.Render("No steps yet. Press s to simulate."))
		return sb.String()
	}
	for _, s := range steps {
		fmt.Fprintf(&sb, "%s %s\n", dimStyle.Render("Step "+s.Label()+":"), stepTextStyle.Render(s.Text))
	}

	if trace := stepTrace(steps, width); trace != "" {
		sb.WriteString("\n")
		sb.WriteString(trace)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// stepTrace plots the per-label probability series, or returns "" when
// fewer than two steps report probabilities.
func stepTrace(steps []HumanStep, width int) string {
	series := make([][]float64, len(chartLabels))
	for _, s := range steps {
		if len(s.Probabilities) == 0 {
			continue
		}
		vals := NormalizeProbabilities(s.Probabilities)
		for i := range series {
			series[i] = append(series[i], vals[i])
		}
	}
	if len(series[0]) < 2 {
		return ""
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(6),
		asciigraph.Width(max(width-12, 10)),
		asciigraph.Caption("P(|00⟩…|11⟩) per step, %"))
}
