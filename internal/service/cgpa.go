package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultSGPA   = 0.0
	DefaultCredit = 1
)

// ComputeCGPA returns the credit-weighted mean of two SGPAs. Credits below
// 1 count as 1, so the divisor is never zero.
func ComputeCGPA(sgpa1 float64, credit1 int, sgpa2 float64, credit2 int) float64 {
	if credit1 <= 0 {
		credit1 = DefaultCredit
	}
	if credit2 <= 0 {
		credit2 = DefaultCredit
	}
	totalPoints := sgpa1*float64(credit1) + sgpa2*float64(credit2)
	totalCredits := float64(credit1) + float64(credit2)
	return totalPoints / totalCredits
}

// FormatCGPA renders a CGPA with two decimals.
func FormatCGPA(cgpa float64) string {
	return fmt.Sprintf("%.2f", cgpa)
}

// ParseFloatField coerces a form or JSON value. Blank input yields def.
func ParseFloatField(raw string, def float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	return f, nil
}

// ParseIntField coerces an integer value, truncating fractional input.
// Blank input yields def.
func ParseIntField(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := ParseFloatField(raw, 0)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", raw)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%q is out of range", raw)
	}
	return int(f), nil
}
