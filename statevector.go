package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// ErrZeroVector is returned when a raw amplitude tuple cannot be normalized.
var ErrZeroVector = errors.New("state vector cannot be zero")

// normTolerance bounds how far Σ|a|² may drift from 1 for a valid state.
const normTolerance = 1e-6

// Kind tags a Statevector as a one- or two-qubit state.
type Kind int

const (
	Single Kind = iota + 1 // alpha|0⟩ + beta|1⟩
	Dual                   // alpha|00⟩ + beta|01⟩ + gamma|10⟩ + delta|11⟩
)

func (k Kind) String() string {
	switch k {
	case Single:
		return "single"
	case Dual:
		return "dual"
	default:
		return "invalid"
	}
}

// Qubits returns the number of qubits of the kind.
func (k Kind) Qubits() int {
	switch k {
	case Single:
		return 1
	case Dual:
		return 2
	default:
		return 0
	}
}

// kindForQubits maps a qubit count to its Kind, or 0 when unsupported.
func kindForQubits(n int) Kind {
	switch n {
	case 1:
		return Single
	case 2:
		return Dual
	default:
		return 0
	}
}

// Statevector is a normalized one- or two-qubit pure state. Values are
// immutable: every transformation returns a new Statevector.
type Statevector struct {
	kind Kind
	amps [4]Complex
}

// Ground returns |0…0⟩ for the given number of qubits (1 or 2).
func Ground(qubits int) Statevector {
	k := kindForQubits(qubits)
	if k == 0 {
		k = Single
	}
	v := Statevector{kind: k}
	v.amps[0] = 1
	return v
}

// Normalize builds a Statevector from raw amplitudes: two values give a
// Single state, four a Dual one. NaN components count as zero.
func Normalize(raw ...Complex) (Statevector, error) {
	var k Kind
	switch len(raw) {
	case 2:
		k = Single
	case 4:
		k = Dual
	default:
		return Statevector{}, fmt.Errorf("normalize: want 2 or 4 amplitudes, got %d", len(raw))
	}

	comps := make([]float64, 0, 2*len(raw))
	clean := make([]Complex, len(raw))
	for i, a := range raw {
		clean[i] = sanitize(a)
		comps = append(comps, real(clean[i]), imag(clean[i]))
	}
	norm := floats.Norm(comps, 2)
	if norm < negligible {
		return Statevector{}, ErrZeroVector
	}

	v := Statevector{kind: k}
	for i, a := range clean {
		v.amps[i] = a.Scale(1 / norm)
	}
	return v, nil
}

// Tensor returns the product state q0 ⊗ q1, with q0 as the left label bit.
func Tensor(q0, q1 Qubit) (Statevector, error) {
	return Normalize(
		q0.Alpha.Mul(q1.Alpha),
		q0.Alpha.Mul(q1.Beta),
		q0.Beta.Mul(q1.Alpha),
		q0.Beta.Mul(q1.Beta),
	)
}

// newStatevector wraps amplitudes that are already unit norm, such as the
// output of a unitary gate or a trusted decoded payload.
func newStatevector(k Kind, amps []Complex) Statevector {
	v := Statevector{kind: k}
	for i := 0; i < k.size() && i < len(amps); i++ {
		v.amps[i] = sanitize(amps[i])
	}
	return v
}

func (k Kind) size() int {
	return 1 << k.Qubits()
}

// Kind reports whether the state is Single or Dual.
func (v Statevector) Kind() Kind { return v.kind }

// Qubits returns 1 or 2, or 0 for the zero Statevector value.
func (v Statevector) Qubits() int { return v.kind.Qubits() }

// Valid reports whether v was produced by a constructor.
func (v Statevector) Valid() bool { return v.kind == Single || v.kind == Dual }

// Len returns the number of basis states.
func (v Statevector) Len() int {
	if !v.Valid() {
		return 0
	}
	return v.kind.size()
}

// Amplitude returns the amplitude of basis index i, or 0 when out of range.
func (v Statevector) Amplitude(i int) Complex {
	if i < 0 || i >= v.Len() {
		return 0
	}
	return v.amps[i]
}

// AmplitudeOf returns the amplitude for a basis label such as "01".
func (v Statevector) AmplitudeOf(label string) (Complex, bool) {
	if len(label) != v.Qubits() {
		return 0, false
	}
	i, err := strconv.ParseUint(label, 2, 8)
	if err != nil {
		return 0, false
	}
	return v.amps[i], true
}

// Amplitudes returns a copy of the amplitudes in ascending basis order.
func (v Statevector) Amplitudes() []Complex {
	out := make([]Complex, v.Len())
	copy(out, v.amps[:v.Len()])
	return out
}

// Norm returns sqrt(Σ|a|²).
func (v Statevector) Norm() float64 {
	sum := 0.0
	for _, a := range v.amps[:v.Len()] {
		sum += a.AbsSq()
	}
	return math.Sqrt(sum)
}

// IsNormalized reports whether Σ|a|² is within tolerance of 1.
func (v Statevector) IsNormalized() bool {
	n := v.Norm()
	return math.Abs(n*n-1) <= normTolerance
}

// Probabilities returns the percentage weight of each basis label.
func (v Statevector) Probabilities() map[string]float64 {
	labels := BasisLabels(v.Qubits())
	probs := make(map[string]float64, len(labels))
	for i, l := range labels {
		probs[l] = v.amps[i].AbsSq() * 100
	}
	return probs
}

// ApproxEqual compares amplitudes component-wise within tol.
func (v Statevector) ApproxEqual(o Statevector, tol float64) bool {
	if v.kind != o.kind {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		if math.Abs(real(v.amps[i])-real(o.amps[i])) > tol ||
			math.Abs(imag(v.amps[i])-imag(o.amps[i])) > tol {
			return false
		}
	}
	return true
}

// Qubit returns the (alpha, beta) pair of a Single state.
func (v Statevector) Qubit() (Qubit, bool) {
	if v.kind != Single {
		return Qubit{}, false
	}
	return Qubit{Alpha: v.amps[0], Beta: v.amps[1]}, true
}

func (v Statevector) String() string {
	return Encode(v)
}

// BasisLabels returns the fixed-width binary labels for n qubits in
// ascending order, e.g. ["00", "01", "10", "11"].
func BasisLabels(n int) []string {
	if n <= 0 {
		return nil
	}
	labels := make([]string, 1<<n)
	for i := range labels {
		labels[i] = basisLabel(i, n)
	}
	return labels
}

func basisLabel(i, n int) string {
	s := strconv.FormatInt(int64(i), 2)
	for len(s) < n {
		s = "0" + s
	}
	return s
}
