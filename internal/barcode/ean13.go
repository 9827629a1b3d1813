// Package barcode validates, formats and encodes EAN-13 retail barcodes.
package barcode

import (
	"fmt"
	"strings"
)

// EAN13Length is the number of digits in an EAN-13 value
const EAN13Length = 13

// ModuleCount is the width of an encoded EAN-13 symbol in modules
const ModuleCount = 95

// Clean strips whitespace and hyphens from a barcode value
func Clean(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch r {
		case ' ', '\t', '\n', '\r', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isDigits reports whether s consists only of ASCII digits
func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// CheckDigit computes the EAN-13 check digit for the first 12 digits of a value.
// Digits at even (0-indexed) positions have weight 1, odd positions weight 3.
func CheckDigit(first12 string) (int, error) {
	if len(first12) != EAN13Length-1 || !isDigits(first12) {
		return 0, fmt.Errorf("expected %d digits, got %q", EAN13Length-1, first12)
	}

	sum := 0
	for i := 0; i < len(first12); i++ {
		d := int(first12[i] - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += 3 * d
		}
	}
	return (10 - sum%10) % 10, nil
}

// ValidateEAN13 reports whether value is a well-formed EAN-13 with a correct check digit.
// Whitespace and hyphens are ignored. It never panics; malformed input is simply invalid.
func ValidateEAN13(value string) bool {
	cleaned := Clean(value)
	if len(cleaned) != EAN13Length || !isDigits(cleaned) {
		return false
	}

	check, err := CheckDigit(cleaned[:EAN13Length-1])
	if err != nil {
		return false
	}
	return check == int(cleaned[EAN13Length-1]-'0')
}

// FormatForDisplay groups a 13 digit value as "400 6381 3339 31".
// Anything else is returned unchanged so malformed data stays visible.
func FormatForDisplay(value string) string {
	cleaned := Clean(value)
	if len(cleaned) != EAN13Length || !isDigits(cleaned) {
		return value
	}
	return strings.Join([]string{cleaned[0:3], cleaned[3:7], cleaned[7:11], cleaned[11:13]}, " ")
}
