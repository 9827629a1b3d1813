package barcode

import "fmt"

// Left-hand odd parity (L) patterns, one per digit
var lPatterns = [10]string{
	"0001101", "0011001", "0010011", "0111101", "0100011",
	"0110001", "0101111", "0111011", "0110111", "0001011",
}

// Right-hand (R) patterns are the bitwise complement of L
var rPatterns = [10]string{
	"1110010", "1100110", "1101100", "1000010", "1011100",
	"1001110", "1010000", "1000100", "1001000", "1110100",
}

// Parity of the six left-hand digits, selected by the leading digit.
// 'L' is odd parity, 'G' is even parity (mirrored R).
var leftParity = [10]string{
	"LLLLLL", "LLGLGG", "LLGGLG", "LLGGGL", "LGLLGG",
	"LGGLLG", "LGGGLL", "LGLGLG", "LGLGGL", "LGGLGL",
}

const (
	startGuard  = "101"
	centerGuard = "01010"
	endGuard    = "101"
)

// Encode turns a 13 digit value into its 95 module bar pattern (true = bar).
// The check digit is not verified: legacy catalogs hold codes with bad checksums
// and they are still printed as-is. Use ValidateEAN13 to flag them.
func Encode(value string) ([]bool, error) {
	digits := Clean(value)
	if len(digits) != EAN13Length || !isDigits(digits) {
		return nil, fmt.Errorf("invalid EAN-13 value %q: expected %d digits", value, EAN13Length)
	}

	modules := make([]bool, 0, ModuleCount)
	appendPattern := func(p string) {
		for i := 0; i < len(p); i++ {
			modules = append(modules, p[i] == '1')
		}
	}

	parity := leftParity[digits[0]-'0']

	appendPattern(startGuard)
	for i := 1; i <= 6; i++ {
		d := digits[i] - '0'
		if parity[i-1] == 'G' {
			appendPattern(reverse(rPatterns[d]))
		} else {
			appendPattern(lPatterns[d])
		}
	}
	appendPattern(centerGuard)
	for i := 7; i < EAN13Length; i++ {
		appendPattern(rPatterns[digits[i]-'0'])
	}
	appendPattern(endGuard)

	return modules, nil
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
