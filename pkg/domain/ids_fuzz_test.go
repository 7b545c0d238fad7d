package domain

import (
	"testing"
)

// FuzzParsePublicID checks that parsing never panics on arbitrary input and
// that every accepted value round-trips through String.
func FuzzParsePublicID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE invoices;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		parsed, err := ParsePublicID(input)
		if err != nil {
			return
		}
		if parsed.IsNil() {
			t.Error("accepted value must not be the nil UUID")
		}
		roundTrip, err := ParsePublicID(parsed.String())
		if err != nil {
			t.Errorf("accepted value failed round-trip: %v", err)
		}
		if roundTrip != parsed {
			t.Error("round-trip changed the value")
		}
	})
}
