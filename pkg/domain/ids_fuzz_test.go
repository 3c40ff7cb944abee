//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseRecordID checks that parsing never panics and that accepted input round-trips.
func FuzzParseRecordID(f *testing.F) {
	f.Add("")
	f.Add("0190f5c2-6a8e-7c41-9d2b-1f7a3e5b9c00")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseRecordID(input)
		if err == nil {
			again, err2 := ParseRecordID(id.String())
			if err2 != nil || again != id {
				t.Errorf("accepted id failed round-trip: %q", input)
			}
			if id.IsNil() {
				t.Error("nil id accepted")
			}
		}
		if !utf8.ValidString(input) && err == nil {
			t.Error("non-UTF8 input accepted")
		}
	})
}

// FuzzParseDate checks that any accepted date renders back to the same value.
func FuzzParseDate(f *testing.F) {
	f.Add("2026-02-01")
	f.Add("2026-02-30")
	f.Add("")
	f.Fuzz(func(t *testing.T, input string) {
		d, err := ParseDate(input)
		if err != nil {
			return
		}
		again, err := ParseDate(d.String())
		if err != nil || again != d {
			t.Errorf("date %q failed round-trip", input)
		}
	})
}
