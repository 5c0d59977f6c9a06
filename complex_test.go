package main

import (
	"math"
	"testing"
)

func TestComplexFormat(t *testing.T) {
	tests := []struct {
		in        Complex
		precision int
		want      string
	}{
		{cplx(0, 0), 3, "0.00"},
		{cplx(1e-12, -1e-12), 3, "0.00"},
		{cplx(0.70710678, 0), 3, "0.707"},
		{cplx(0.70710678, 0), 2, "0.71"},
		{cplx(0, 0.5), 3, "0.500i"},
		{cplx(0, -0.5), 3, "-0.500i"},
		{cplx(0.5, -0.5), 3, "0.500 - 0.500i"},
		{cplx(0.5, 0.25), 2, "0.50 + 0.25i"},
		{cplx(1e-12, 0.5), 3, "0.500i"},
		{cplx(0.5, 1e-12), 3, "0.500"},
		{cplx(-0.0001, 0), 3, "0.000"},
	}

	for _, tt := range tests {
		got := tt.in.Format(tt.precision)
		if got != tt.want {
			t.Errorf("%v.Format(%d) = %q, want %q", complex128(tt.in), tt.precision, got, tt.want)
		}
	}
}

func TestComplexArithmetic(t *testing.T) {
	if got := cplx(3, 4).Abs(); got != 5 {
		t.Errorf("|3+4i| = %g, want 5", got)
	}
	if got := cplx(3, 4).AbsSq(); got != 25 {
		t.Errorf("|3+4i|² = %g, want 25", got)
	}
	if got := cplx(0, 1).Arg(); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("arg(i) = %g, want π/2", got)
	}
	if got := cplx(0, 1).Mul(cplx(0, 1)); got != cplx(-1, 0) {
		t.Errorf("i·i = %v, want -1", complex128(got))
	}
	if got := cplx(1, 2).Add(cplx(3, -4)); got != cplx(4, -2) {
		t.Errorf("(1+2i)+(3-4i) = %v, want 4-2i", complex128(got))
	}
	if got := cplx(1, 2).Neg(); got != cplx(-1, -2) {
		t.Errorf("-(1+2i) = %v", complex128(got))
	}
	if got := cplx(1, 2).Conj(); got != cplx(1, -2) {
		t.Errorf("conj(1+2i) = %v", complex128(got))
	}
	if got := cplx(1, -2).Scale(0.5); got != cplx(0.5, -1) {
		t.Errorf("(1-2i)·0.5 = %v", complex128(got))
	}
}

func TestSanitize(t *testing.T) {
	got := sanitize(cplx(math.NaN(), math.Inf(1)))
	if got != 0 {
		t.Errorf("sanitize(NaN, +Inf) = %v, want 0", complex128(got))
	}
	if got := sanitize(cplx(0.25, -1)); got != cplx(0.25, -1) {
		t.Errorf("sanitize changed a finite value: %v", complex128(got))
	}
}
