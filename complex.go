package main

import (
	"fmt"
	"math"
	"math/cmplx"
	"strconv"
)

// negligible is the magnitude below which a component is treated as zero.
const negligible = 1e-9

// Complex is an immutable complex amplitude.
type Complex complex128

// cplx builds a Complex from its real and imaginary parts.
func cplx(re, im float64) Complex {
	return Complex(complex(re, im))
}

func (c Complex) Real() float64 { return real(c) }
func (c Complex) Imag() float64 { return imag(c) }

func (c Complex) Add(o Complex) Complex { return c + o }
func (c Complex) Mul(o Complex) Complex { return c * o }
func (c Complex) Neg() Complex          { return -c }
func (c Complex) Conj() Complex         { return Complex(cmplx.Conj(complex128(c))) }

// Scale multiplies both components by a real factor.
func (c Complex) Scale(f float64) Complex {
	return cplx(real(c)*f, imag(c)*f)
}

// Abs returns sqrt(re²+im²).
func (c Complex) Abs() float64 {
	return math.Hypot(real(c), imag(c))
}

// AbsSq returns re²+im², the probability weight of an amplitude.
func (c Complex) AbsSq() float64 {
	return real(c)*real(c) + imag(c)*imag(c)
}

// Arg returns atan2(im, re).
func (c Complex) Arg() float64 {
	return math.Atan2(imag(c), real(c))
}

// IsZero reports whether both components are negligible.
func (c Complex) IsZero() bool {
	return math.Abs(real(c)) < negligible && math.Abs(imag(c)) < negligible
}

// Format renders the amplitude for display, e.g. "0.71", "0.50i" or
// "0.50 - 0.50i". Each component is dropped on its own when negligible.
func (c Complex) Format(precision int) string {
	if c.IsZero() {
		return "0.00"
	}
	re, im := real(c), imag(c)
	hasRe := math.Abs(re) >= negligible
	hasIm := math.Abs(im) >= negligible

	switch {
	case hasRe && hasIm:
		sign := "+"
		if im < 0 {
			sign = "-"
		}
		return fmt.Sprintf("%s %s %si", fixed(re, precision), sign, fixed(math.Abs(im), precision))
	case hasRe:
		return fixed(re, precision)
	default:
		return fixed(im, precision) + "i"
	}
}

func (c Complex) String() string {
	return c.Format(3)
}

// sanitize clamps NaN and infinite components to 0.
func sanitize(c Complex) Complex {
	return cplx(finite(real(c)), finite(imag(c)))
}

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

// fixed formats x with a fixed number of decimals and never emits "-0.000".
func fixed(x float64, precision int) string {
	s := strconv.FormatFloat(x, 'f', precision, 64)
	if s[0] == '-' {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v == 0 {
			return s[1:]
		}
	}
	return s
}
