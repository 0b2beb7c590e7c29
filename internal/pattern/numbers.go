package pattern

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const numberRe = `\d+(?:[.,]\d+)?`

var thousandsRe = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})+$`)

// parseDecimal accepts a decimal comma or a decimal point.
func parseDecimal(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseGrouped treats separators followed by exactly three digits as
// thousands separators ("3.500" is 3500).
func parseGrouped(s string) (float64, bool) {
	if thousandsRe.MatchString(s) {
		return parseDecimal(strings.NewReplacer(".", "", ",", "").Replace(s))
	}
	return parseDecimal(s)
}

func round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}

func capConfidence(c float64) float64 {
	return math.Min(c, 0.95)
}
