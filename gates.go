package main

import (
	"errors"
	"fmt"
	"math"
)

// ErrNotExecutable is returned for gates that only the simulator runs.
var ErrNotExecutable = errors.New("gate is executed by the simulator only")

// GateKind names a gate from the palette.
type GateKind string

const (
	GateH    GateKind = "H"
	GateX    GateKind = "X"
	GateY    GateKind = "Y"
	GateZ    GateKind = "Z"
	GateS    GateKind = "S"
	GateT    GateKind = "T"
	GateCNOT GateKind = "CNOT"
	GateCZ   GateKind = "CZ"
)

// IsTwoQubit reports whether the gate spans both rows of a column.
func (k GateKind) IsTwoQubit() bool {
	return k == GateCNOT || k == GateCZ
}

// IsPauli reports whether the gate can be applied locally.
func (k GateKind) IsPauli() bool {
	return k == GateX || k == GateY || k == GateZ
}

// GateSpec is static reference data for a palette gate.
type GateSpec struct {
	Kind        GateKind
	Name        string
	Matrix      [][]string
	Description string
}

// gateCatalog lists the palette in display order.
var gateCatalog = []GateSpec{
	{Kind: GateH, Name: "Hadamard Gate", Description: "Creates a superposition",
		Matrix: [][]string{{"1/√2", "1/√2"}, {"1/√2", "-1/√2"}}},
	{Kind: GateX, Name: "Pauli-X Gate", Description: "Bit flip (NOT gate)",
		Matrix: [][]string{{"0", "1"}, {"1", "0"}}},
	{Kind: GateY, Name: "Pauli-Y Gate", Description: "Bit and phase flip",
		Matrix: [][]string{{"0", "-i"}, {"i", "0"}}},
	{Kind: GateZ, Name: "Pauli-Z Gate", Description: "Phase flip",
		Matrix: [][]string{{"1", "0"}, {"0", "-1"}}},
	{Kind: GateS, Name: "Phase Gate", Description: "π/2 phase rotation",
		Matrix: [][]string{{"1", "0"}, {"0", "i"}}},
	{Kind: GateT, Name: "T Gate", Description: "π/4 phase rotation",
		Matrix: [][]string{{"1", "0"}, {"0", "e^(iπ/4)"}}},
	{Kind: GateCNOT, Name: "Controlled-NOT Gate", Description: "Conditional bit flip",
		Matrix: [][]string{
			{"1", "0", "0", "0"},
			{"0", "1", "0", "0"},
			{"0", "0", "0", "1"},
			{"0", "0", "1", "0"},
		}},
	{Kind: GateCZ, Name: "Controlled-Z Gate", Description: "Conditional phase flip",
		Matrix: [][]string{
			{"1", "0", "0", "0"},
			{"0", "1", "0", "0"},
			{"0", "0", "1", "0"},
			{"0", "0", "0", "-1"},
		}},
}

// Catalog returns the palette gates in display order.
func Catalog() []GateSpec {
	out := make([]GateSpec, len(gateCatalog))
	copy(out, gateCatalog)
	return out
}

// LookupGate returns the catalog entry for kind.
func LookupGate(kind GateKind) (GateSpec, bool) {
	for _, g := range gateCatalog {
		if g.Kind == kind {
			return g, true
		}
	}
	return GateSpec{}, false
}

// Qubit is a single-qubit amplitude pair alpha|0⟩ + beta|1⟩.
type Qubit struct {
	Alpha Complex
	Beta  Complex
}

func groundQubit() Qubit {
	return Qubit{Alpha: 1}
}

// Bloch projects the pair onto the sphere.
func (q Qubit) Bloch() BlochPoint {
	return SingleQubitCoords(q.Alpha, q.Beta)
}

// State normalizes the pair into a Single Statevector.
func (q Qubit) State() (Statevector, error) {
	return Normalize(q.Alpha, q.Beta)
}

// ApplyPauli applies X, Y or Z to a single qubit.
func ApplyPauli(kind GateKind, q Qubit) (Qubit, error) {
	switch kind {
	case GateX:
		return Qubit{Alpha: q.Beta, Beta: q.Alpha}, nil
	case GateY:
		return Qubit{Alpha: cplx(0, -1).Mul(q.Beta), Beta: cplx(0, 1).Mul(q.Alpha)}, nil
	case GateZ:
		return Qubit{Alpha: q.Alpha, Beta: q.Beta.Neg()}, nil
	default:
		return q, fmt.Errorf("apply %s: %w", kind, ErrNotExecutable)
	}
}

// ApplyPauliTo applies a Pauli gate to one qubit of v. Qubit 0 is the
// leftmost bit of the basis label. Paulis are unitary, so the result needs
// no renormalization.
func ApplyPauliTo(v Statevector, qubit int, kind GateKind) (Statevector, error) {
	if !kind.IsPauli() {
		return v, fmt.Errorf("apply %s: %w", kind, ErrNotExecutable)
	}
	n := v.Qubits()
	if qubit < 0 || qubit >= n {
		return v, fmt.Errorf("apply %s: qubit %d out of range for %d-qubit state", kind, qubit, n)
	}

	amps := v.Amplitudes()
	bit := 1 << (n - 1 - qubit)
	for i := range amps {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		q, _ := ApplyPauli(kind, Qubit{Alpha: amps[i], Beta: amps[j]})
		amps[i], amps[j] = q.Alpha, q.Beta
	}
	return newStatevector(v.kind, amps), nil
}

// PolarToAmplitude returns cos(θ/2)|0⟩ + e^{iφ}·sin(θ/2)|1⟩.
func PolarToAmplitude(theta, phi float64) Qubit {
	half := theta / 2
	alpha := cplx(math.Cos(half), 0)
	beta := cplx(math.Cos(phi), math.Sin(phi)).Scale(math.Sin(half))

	norm := math.Sqrt(alpha.AbsSq() + beta.AbsSq())
	if norm < negligible || math.IsNaN(norm) {
		return groundQubit()
	}
	return Qubit{Alpha: alpha.Scale(1 / norm), Beta: beta.Scale(1 / norm)}
}
