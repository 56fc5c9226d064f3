package formulation

import (
	"math"

	"github.com/cloud-lever/roap/types"
)

/* Compute the greatest common divisor of all workload and performance
values of a problem, used to shrink the integer coefficients submitted to
the solver. Rescaling only makes sense when every value is an integer
multiple of a common divisor greater than one; zero values do not
constrain the divisor.
	in:
		@problem
	out:
		@int	the common divisor, 1 when rescaling is not applicable
*/
func GcdMultiplier(problem *types.Problem) int {
	divisor := 0
	for _, workload := range problem.Workloads {
		for _, value := range workload.Values {
			divisor = gcd(divisor, value)
			if divisor == 1 {
				return 1
			}
		}
	}
	for _, perApp := range problem.Performances.Values {
		for _, value := range perApp {
			if value != math.Trunc(value) {
				// Non-integer performances cannot be rescaled
				return 1
			}
			divisor = gcd(divisor, int(value))
			if divisor == 1 {
				return 1
			}
		}
	}
	if divisor == 0 {
		return 1
	}
	return divisor
}

func gcd(a int, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
