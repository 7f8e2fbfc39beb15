package regmap

import (
	"testing"

	"github.com/vicaller/icm20948"
)

func TestParseAddr(t *testing.T) {
	cases := []struct {
		in      string
		want    byte
		wantErr bool
	}{
		{"0x00", 0x00, false},
		{"0x7F", 0x7F, false},
		{"0x2d", 0x2D, false},
		{"6", 6, false},
		{"0x80", 0, true},
		{"256", 0, true},
		{"zz", 0, true},
		{"", 0, true},
	}

	for _, c := range cases {
		got, err := ParseAddr(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseAddr(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAddr(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseAddr(%q) = 0x%02X, want 0x%02X", c.in, got, c.want)
		}
	}
}

func TestParseBank(t *testing.T) {
	for n, want := range map[int]icm20948.Bank{
		0: icm20948.UserBank0,
		1: icm20948.UserBank1,
		2: icm20948.UserBank2,
		3: icm20948.UserBank3,
	} {
		got, err := ParseBank(n)
		if err != nil {
			t.Errorf("ParseBank(%d): %v", n, err)
		}
		if got != want {
			t.Errorf("ParseBank(%d) = 0x%02X, want 0x%02X", n, got, want)
		}
	}

	if _, err := ParseBank(4); err == nil {
		t.Error("ParseBank(4): expected error")
	}
}

func TestByBankAddressesParse(t *testing.T) {
	// Every address in the table must round-trip through ParseAddr or
	// the debug tool's read_all would silently skip it.
	for _, bank := range []int{0, 2} {
		regs := ByBank(bank)
		if len(regs) == 0 {
			t.Errorf("bank %d: no metadata entries", bank)
		}
		for _, r := range regs {
			if _, err := ParseAddr(r.Address); err != nil {
				t.Errorf("bank %d %s: bad address %q: %v", bank, r.Name, r.Address, err)
			}
		}
	}
}
