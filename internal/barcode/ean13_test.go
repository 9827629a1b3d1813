package barcode

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
)

func TestValidateEAN13(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "known valid vector", value: "4006381333931", want: true},
		{name: "wrong check digit", value: "4006381333932", want: false},
		{name: "valid with spaces", value: "400 6381 3339 31", want: true},
		{name: "valid with hyphens", value: "400-6381-3339-31", want: true},
		{name: "valid with check digit zero", value: "5901234123457", want: true},
		{name: "too short", value: "400638133393", want: false},
		{name: "too long", value: "40063813339310", want: false},
		{name: "letters", value: "40063813339A1", want: false},
		{name: "unicode digits", value: "４００６３８１３３３９３１", want: false},
		{name: "empty", value: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateEAN13(tt.value); got != tt.want {
				t.Errorf("ValidateEAN13(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestCheckDigit(t *testing.T) {
	got, err := CheckDigit("400638133393")
	if err != nil {
		t.Fatalf("CheckDigit() error = %v", err)
	}
	if got != 1 {
		t.Errorf("CheckDigit() = %d, want 1", got)
	}

	if _, err := CheckDigit("12345"); err == nil {
		t.Error("CheckDigit() expected error for short input")
	}
}

func TestValidateEAN13_MatchesCheckDigit(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		var b strings.Builder
		for j := 0; j < EAN13Length; j++ {
			b.WriteByte(byte('0' + rng.Intn(10)))
		}
		value := b.String()

		check, err := CheckDigit(value[:12])
		if err != nil {
			t.Fatalf("CheckDigit(%q) error = %v", value[:12], err)
		}
		want := check == int(value[12]-'0')

		if got := ValidateEAN13(value); got != want {
			t.Fatalf("ValidateEAN13(%q) = %v, want %v", value, got, want)
		}

		// Formatting must never change the validation outcome.
		formatted := FormatForDisplay(value)
		if got := ValidateEAN13(strings.ReplaceAll(formatted, " ", "")); got != want {
			t.Fatalf("ValidateEAN13(FormatForDisplay(%q)) = %v, want %v", value, got, want)
		}
	}
}

func TestFormatForDisplay(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{value: "4006381333931", want: "400 6381 3339 31"},
		{value: "400-6381-3339-31", want: "400 6381 3339 31"},
		{value: "12345", want: "12345"},
		{value: "ABCDEFGHIJKLM", want: "ABCDEFGHIJKLM"},
		{value: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("format %q", tt.value), func(t *testing.T) {
			if got := FormatForDisplay(tt.value); got != tt.want {
				t.Errorf("FormatForDisplay(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestClean(t *testing.T) {
	if got := Clean(" 400-6381\t3339 31\n"); got != "4006381333931" {
		t.Errorf("Clean() = %q, want %q", got, "4006381333931")
	}
}
