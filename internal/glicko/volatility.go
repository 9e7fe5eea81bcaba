package glicko

import (
	"fmt"
	"math"
)

// volatility solves f(x) = 0 for the new volatility of one side using the
// Illinois variant of regula falsi, see step 5 of Glickman's paper.
func (p Params) volatility(sigma, phi, v, delta float64) (float64, error) {
	a := math.Log(sigma * sigma)
	phi2, delta2, tau2 := phi*phi, delta*delta, p.Tau*p.Tau

	f := func(x float64) float64 {
		ex := math.Exp(x)
		den := phi2 + v + ex
		return (ex*(delta2-phi2-v-ex))/(2*den*den) - (x-a)/tau2
	}

	A := a
	var B float64
	if delta2 > phi2+v {
		B = math.Log(delta2 - phi2 - v)
	} else {
		k := 1
		for f(a-float64(k)*p.Tau) < 0 {
			k++
			if k > p.MaxIterations {
				return 0, fmt.Errorf("%w: no bracket found after %d steps", ErrNonConvergence, p.MaxIterations)
			}
		}
		B = a - float64(k)*p.Tau
	}

	fA, fB := f(A), f(B)
	for i := 0; math.Abs(B-A) > p.Epsilon; i++ {
		if i >= p.MaxIterations {
			return 0, fmt.Errorf(
				"%w: |B-A| = %g after %d iterations",
				ErrNonConvergence, math.Abs(B-A), p.MaxIterations,
			)
		}

		C := A + (A-B)*fA/(fB-fA)
		fC := f(C)
		if math.IsNaN(fC) || math.IsInf(fC, 0) {
			return 0, fmt.Errorf("%w: f(%g) is %v", ErrNonConvergence, C, fC)
		}

		if fC*fB <= 0 {
			A, fA = B, fB
		} else {
			fA /= 2
		}

		B, fB = C, fC
	}

	return math.Exp(A / 2), nil
}
