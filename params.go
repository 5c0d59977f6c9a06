package main

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Units for bare numbers in angle input. Pi expressions are always radians.
const (
	radians = 1.0
	degrees = math.Pi / 180
)

// piExprRegex matches expressions like: pi, 2pi, 2*pi, pi/2, 3pi/4, -3*pi/4
var piExprRegex = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*pi(?:\s*/\s*(\d+\.?\d*))?$`)

// parseAngleExpr reads one angle and returns it in radians. A bare number is
// multiplied by unit; an expression written with pi is already in radians.
//
// Accepted forms:
//   - Bare numbers: "90", "-45.5", "1.5707"
//   - Pi fractions: "pi", "pi/2", "3pi/4", "3*pi/4", "-pi/2"
func parseAngleExpr(s string, unit float64) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v * unit, true
	}

	m := piExprRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	rad := math.Pi
	if m[2] != "" {
		coeff, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return 0, false
		}
		rad *= coeff
	}
	if m[3] != "" {
		denom, err := strconv.ParseFloat(m[3], 64)
		if err != nil || denom == 0 {
			return 0, false
		}
		rad /= denom
	}
	if m[1] == "-" {
		rad = -rad
	}
	return rad, true
}

// parseAngle reads a form angle: degrees, or radians when written with pi.
func parseAngle(s string) (float64, bool) {
	return parseAngleExpr(s, degrees)
}

// parseAngles parses a comma-separated angle list.
// Returns nil if any part fails or the list is empty.
func parseAngles(input string) []float64 {
	var angles []float64
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		rad, ok := parseAngle(part)
		if !ok {
			return nil
		}
		angles = append(angles, rad)
	}
	return angles
}

// piFractions are the angles the sphere readout names in pi form.
var piFractions = []struct {
	rad  float64
	text string
}{
	{2 * math.Pi, "2pi"},
	{3 * math.Pi / 2, "3pi/2"},
	{math.Pi, "pi"},
	{3 * math.Pi / 4, "3pi/4"},
	{2 * math.Pi / 3, "2pi/3"},
	{math.Pi / 2, "pi/2"},
	{math.Pi / 3, "pi/3"},
	{math.Pi / 4, "pi/4"},
	{math.Pi / 6, "pi/6"},
	{math.Pi / 8, "pi/8"},
}

// piForm returns the pi notation for rad, or "" when it is not a listed fraction.
func piForm(rad float64) string {
	for _, f := range piFractions {
		switch {
		case math.Abs(rad-f.rad) < 1e-10:
			return f.text
		case math.Abs(rad+f.rad) < 1e-10:
			return "-" + f.text
		}
	}
	return ""
}

// formatAngle renders an angle for the sphere panel, e.g. "90.0° (pi/2)".
func formatAngle(rad float64) string {
	deg := fmt.Sprintf("%.1f°", rad/degrees)
	if p := piForm(rad); p != "" {
		return deg + " (" + p + ")"
	}
	return deg
}

// parseAmplitudes parses a comma-separated list of complex literals.
func parseAmplitudes(input string) ([]Complex, error) {
	var amps []Complex
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, ok := ParseLiteral(part)
		if !ok {
			return nil, fmt.Errorf("invalid amplitude %q", part)
		}
		amps = append(amps, c)
	}
	return amps, nil
}
