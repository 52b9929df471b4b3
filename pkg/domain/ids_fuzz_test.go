package domain

import (
	"testing"
)

// FuzzParseConversationID checks parsing never panics and valid ids round-trip.
func FuzzParseConversationID(f *testing.F) {
	f.Add("")
	f.Add("42")
	f.Add("0")
	f.Add("-1")
	f.Add("9223372036854775807")
	f.Add("9223372036854775808")
	f.Add("'; DROP TABLE conversations;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseConversationID(input)
		if err != nil {
			return
		}
		if id.IsNil() {
			t.Errorf("accepted non-positive id %d", id)
		}
		roundTrip, err := ParseConversationID(id.String())
		if err != nil {
			t.Errorf("valid id failed round-trip: %v", err)
		}
		if roundTrip != id {
			t.Error("round-trip changed id value")
		}
	})
}
