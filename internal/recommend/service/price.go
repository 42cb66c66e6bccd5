package service

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"recommend-service/internal/recommend/model"
)

// PriceValue turns an original price into a float. Numbers pass through;
// strings are read up to the first character that can't continue a number,
// so "20/kg" is 20 and "₹20" or "" is NaN.
func PriceValue(p model.PriceValue) float64 {
	if p.IsNumber {
		return p.Number
	}
	return parseLeadingFloat(p.Text)
}

func parseLeadingFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if s == "" {
		return math.NaN()
	}

	i := 0
	if s[i] == '+' || s[i] == '-' {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return math.NaN()
	}

	// экспонента берётся только если за ней есть цифры
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}

	num := strings.TrimSuffix(s[:end], ".")
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		// out-of-range exponents come back as ±Inf with ErrRange
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
