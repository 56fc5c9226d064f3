package types

import "fmt"

//Number of seconds of each known time unit
var conversionFactors = map[string]float64{
	"s": 1,
	"m": 60,
	"h": 60 * 60,
	"d": 24 * 60 * 60,
	"y": 365 * 24 * 60 * 60,
}

//ValidTimeUnit tells whether the unit is one of "s", "m", "h", "d" or "y"
func ValidTimeUnit(unit string) bool {
	_, ok := conversionFactors[unit]
	return ok
}

/* Convert between time units
	in:
		@fromUnit	unit to convert from, e.g. "h"
		@toUnit	unit to convert to, e.g. "s"
	out:
		@float64	how many toUnit are contained in one fromUnit, e.g. 3600
*/
func TimeUnitsIn(fromUnit string, toUnit string) (float64, error) {
	from, ok := conversionFactors[fromUnit]
	if !ok {
		return 0, fmt.Errorf("unit %q is not valid", fromUnit)
	}
	to, ok := conversionFactors[toUnit]
	if !ok {
		return 0, fmt.Errorf("unit %q is not valid", toUnit)
	}
	return from / to, nil
}
