package main

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultPrecision is the number of decimals used on the wire.
const DefaultPrecision = 3

// ketRegex matches one "(<literal>)|<bits>⟩" basis term. The simulator joins
// terms with " + ", so anything between matches is ignored.
var ketRegex = regexp.MustCompile(`\(([^()]*)\)\s*\|([01]+)⟩`)

// ParseError reports wire text that holds no usable basis terms.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse statevector %q: %s", truncate(e.Input, 64), e.Reason)
}

// Encode renders v in wire form with DefaultPrecision, e.g. "(1.000)|00⟩".
func Encode(v Statevector) string {
	return EncodePrecision(v, DefaultPrecision)
}

// EncodePrecision renders every non-negligible basis term of v in ascending
// order. Omitted terms decode as zero.
func EncodePrecision(v Statevector, precision int) string {
	if !v.Valid() {
		return ""
	}
	var sb strings.Builder
	labels := BasisLabels(v.Qubits())
	for i, label := range labels {
		a := v.amps[i]
		if a.IsZero() {
			continue
		}
		fmt.Fprintf(&sb, "(%s)|%s⟩", EncodeLiteral(a, precision), label)
	}
	if sb.Len() == 0 {
		// Keep the width recoverable even for an all-zero payload.
		fmt.Fprintf(&sb, "(%s)|%s⟩", EncodeLiteral(0, precision), labels[0])
	}
	return sb.String()
}

// EncodeLiteral renders a single amplitude as "R", "Rj", "R+Rj" or "R-Rj".
func EncodeLiteral(c Complex, precision int) string {
	re, im := real(c), imag(c)
	hasRe := math.Abs(re) >= negligible
	hasIm := math.Abs(im) >= negligible
	switch {
	case hasRe && hasIm:
		sign := "+"
		if im < 0 {
			sign = "-"
		}
		return fixed(re, precision) + sign + fixed(math.Abs(im), precision) + "j"
	case hasIm:
		return fixed(im, precision) + "j"
	default:
		return fixed(re, precision)
	}
}

// Decode parses wire text back into a Statevector. The amplitudes are taken
// as-is: the simulator already normalizes them.
func Decode(text string) (Statevector, error) {
	matches := ketRegex.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return Statevector{}, &ParseError{Input: text, Reason: "no basis terms found"}
	}

	width := len(matches[0][2])
	kind := kindForQubits(width)
	if kind == 0 {
		return Statevector{}, &ParseError{Input: text, Reason: fmt.Sprintf("unsupported qubit count %d", width)}
	}

	amps := make([]Complex, kind.size())
	for _, m := range matches {
		bits := m[2]
		if len(bits) != width {
			return Statevector{}, &ParseError{Input: text, Reason: fmt.Sprintf("mixed basis widths %d and %d", width, len(bits))}
		}
		idx, err := strconv.ParseUint(bits, 2, 8)
		if err != nil {
			return Statevector{}, &ParseError{Input: text, Reason: err.Error()}
		}
		amps[idx], _ = ParseLiteral(m[1])
	}
	return newStatevector(kind, amps), nil
}

// ParseLiteral parses a complex literal such as "0.707", "-0.5j",
// "0.707+0.707j" or "0.500 - 0.500j". Whitespace is ignored. A component that
// does not parse is returned as 0 with ok=false.
func ParseLiteral(s string) (Complex, bool) {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return 0, false
	}

	if !strings.HasSuffix(s, "j") && !strings.HasSuffix(s, "i") {
		re, ok := parseComponent(s)
		return cplx(re, 0), ok
	}

	core := s[:len(s)-1]
	split := -1
	for i := len(core) - 1; i > 0; i-- {
		if core[i] != '+' && core[i] != '-' {
			continue
		}
		// A sign right after an exponent marker belongs to the number.
		if prev := core[i-1]; prev == 'e' || prev == 'E' {
			continue
		}
		split = i
		break
	}

	if split == -1 {
		if core == "" || core == "+" || core == "-" {
			// "j", "+j", "-j" mean a unit imaginary part.
			unit := 1.0
			if core == "-" {
				unit = -1
			}
			return cplx(0, unit), true
		}
		im, ok := parseComponent(core)
		return cplx(0, im), ok
	}

	re, okRe := parseComponent(core[:split])
	imStr := core[split:]
	var im float64
	okIm := true
	if imStr == "+" || imStr == "-" {
		im = 1
		if imStr == "-" {
			im = -1
		}
	} else {
		im, okIm = parseComponent(imStr)
	}
	return cplx(re, im), okRe && okIm
}

// parseComponent parses one real number, clamping failures and NaN to 0.
func parseComponent(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
