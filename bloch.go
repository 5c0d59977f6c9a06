package main

import (
	"fmt"
	"math"
)

// BlochPoint is the position of a single-qubit state on the Bloch sphere.
// The population axis is Y (|0⟩ at y=+1, |1⟩ at y=-1); the sphere panel
// draws it vertically.
type BlochPoint struct {
	Theta float64 // polar angle in [0, π]
	Phi   float64 // azimuth in [0, 2π)
	X     float64
	Y     float64
	Z     float64
}

// ThetaDeg returns Theta in degrees.
func (p BlochPoint) ThetaDeg() float64 { return p.Theta * 180 / math.Pi }

// PhiDeg returns Phi in degrees.
func (p BlochPoint) PhiDeg() float64 { return p.Phi * 180 / math.Pi }

// SingleQubitCoords projects alpha|0⟩ + beta|1⟩ onto the Bloch sphere.
func SingleQubitCoords(alpha, beta Complex) BlochPoint {
	cosHalf := math.Max(-1, math.Min(1, alpha.Abs()))
	theta := 2 * math.Acos(cosHalf)

	phi := beta.Arg() - alpha.Arg()
	if beta.Abs() < negligible {
		// Phase is undefined at the poles.
		phi = 0
	}
	phi = wrapAngle(phi)

	return BlochPoint{
		Theta: theta,
		Phi:   phi,
		X:     math.Sin(theta) * math.Cos(phi),
		Y:     math.Cos(theta),
		Z:     math.Sin(theta) * math.Sin(phi),
	}
}

// wrapAngle maps an angle into [0, 2π).
func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// MarginalQubitState approximates the reduced state of one qubit of v.
// Qubit 0 is the leftmost bit of a basis label. Only the probabilities of
// the other qubit are summed out; relative phases between basis terms are
// dropped, so the result matches the true partial trace only for product
// states. A Single state is returned unchanged for qubit 0.
func MarginalQubitState(v Statevector, qubit int) (Qubit, error) {
	if qubit < 0 || qubit >= v.Qubits() {
		return Qubit{}, fmt.Errorf("marginal: qubit %d out of range for %d-qubit state", qubit, v.Qubits())
	}
	if v.kind == Single {
		q, _ := v.Qubit()
		return q, nil
	}

	a00, a01, a10, a11 := v.amps[0], v.amps[1], v.amps[2], v.amps[3]
	var p0, p1 float64
	if qubit == 0 {
		p0 = a00.AbsSq() + a01.AbsSq()
		p1 = a10.AbsSq() + a11.AbsSq()
	} else {
		p0 = a00.AbsSq() + a10.AbsSq()
		p1 = a01.AbsSq() + a11.AbsSq()
	}

	norm := math.Sqrt(p0 + p1)
	if norm < negligible {
		return groundQubit(), nil
	}
	return Qubit{
		Alpha: cplx(math.Sqrt(p0)/norm, 0),
		Beta:  cplx(math.Sqrt(p1)/norm, 0),
	}, nil
}

// Project returns one BlochPoint per qubit of v, ready for the sphere panel.
func Project(v Statevector) []BlochPoint {
	points := make([]BlochPoint, 0, v.Qubits())
	for q := 0; q < v.Qubits(); q++ {
		m, err := MarginalQubitState(v, q)
		if err != nil {
			continue
		}
		points = append(points, m.Bloch())
	}
	return points
}
