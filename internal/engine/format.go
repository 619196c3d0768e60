package engine

import (
	"math"
	"strconv"
)

// FormatNumber renders v as the shortest decimal string that parses back to
// v. Integral values have no decimal point; exponent notation is never used.
// Negative zero renders as "0".
func FormatNumber(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseDisplay converts display text to a number. Anything
// strconv.ParseFloat rejects, including the error marker and out-of-range
// literals, yields 0.
func ParseDisplay(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatExpression renders one completed calculation as "A op B = R".
func FormatExpression(a float64, op Operation, b, result float64) string {
	return FormatNumber(a) + " " + op.Symbol() + " " + FormatNumber(b) + " = " + FormatNumber(result)
}

// parseFinite parses s and rejects infinities and NaN.
func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
