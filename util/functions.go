package util

import (
	"math"
)

/* Round a float to n decimals
	in:
		@value  value to be rounded
		@decimals  number of decimals after coma
	out:
		@float	new value rounded
*/
func RoundN(value float64, decimals float64) float64 {
	factor := math.Pow(10, decimals)
	return math.Round(value*factor) / factor
}
