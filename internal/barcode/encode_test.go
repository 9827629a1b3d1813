package barcode

import "testing"

func modulesString(modules []bool) string {
	b := make([]byte, len(modules))
	for i, m := range modules {
		if m {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

func TestEncode(t *testing.T) {
	modules, err := Encode("4006381333931")
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(modules) != ModuleCount {
		t.Fatalf("Encode() returned %d modules, want %d", len(modules), ModuleCount)
	}

	s := modulesString(modules)
	if s[:3] != "101" {
		t.Errorf("start guard = %s, want 101", s[:3])
	}
	if s[45:50] != "01010" {
		t.Errorf("center guard = %s, want 01010", s[45:50])
	}
	if s[92:] != "101" {
		t.Errorf("end guard = %s, want 101", s[92:])
	}

	// Leading 4 selects LGLLGG, so the second digit (0) uses L and the third (0) uses G.
	if got := s[3:10]; got != lPatterns[0] {
		t.Errorf("digit 1 = %s, want L pattern %s", got, lPatterns[0])
	}
	if got := s[10:17]; got != "0100111" {
		t.Errorf("digit 2 = %s, want G pattern 0100111", got)
	}
	// Last digit (1) uses the R pattern.
	if got := s[85:92]; got != rPatterns[1] {
		t.Errorf("check digit = %s, want R pattern %s", got, rPatterns[1])
	}
}

func TestEncode_InvalidChecksumStillEncodes(t *testing.T) {
	modules, err := Encode("4006381333932")
	if err != nil {
		t.Fatalf("Encode() error = %v, want nil for bad checksum", err)
	}
	if len(modules) != ModuleCount {
		t.Errorf("Encode() returned %d modules, want %d", len(modules), ModuleCount)
	}
}

func TestEncode_Malformed(t *testing.T) {
	for _, value := range []string{"", "123", "40063813339X1"} {
		if _, err := Encode(value); err == nil {
			t.Errorf("Encode(%q) expected error", value)
		}
	}
}
