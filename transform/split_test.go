package transform

import "testing"

func TestSplitResponsible(t *testing.T) {
	cases := []struct {
		in       string
		wantName string
		wantRM   string
	}{
		{"Dr. Juan Perez RM: 12.345", "Dr. Juan Perez", "12345"},
		{"Dra. Maria Gomez rm 9876", "Dra. Maria Gomez", "9876"},
		{"Dr. Lopez - RM:55,123", "Dr. Lopez", "55123"},
		{"Dr. Sin Registro", "Dr. Sin Registro", NoRM},
		{"RM: 111", NoResponsible, "111"},
		{"", NoResponsible, NoRM},
		{"   ", NoResponsible, NoRM},
	}
	for _, c := range cases {
		name, rm := SplitResponsible(c.in)
		if name != c.wantName || rm != c.wantRM {
			t.Errorf("SplitResponsible(%q) = (%q, %q), want (%q, %q)",
				c.in, name, rm, c.wantName, c.wantRM)
		}
	}
}

func TestSplitResponsibleDoesNotEatWords(t *testing.T) {
	// "RM" inside a word must not match; the token boundary matters.
	name, rm := SplitResponsible("Dr. Armando Paz")
	if name != "Dr. Armando Paz" || rm != NoRM {
		t.Errorf("got (%q, %q)", name, rm)
	}
}
