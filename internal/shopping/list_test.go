package shopping

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeWireFormat(t *testing.T) {
	raw := `[{"category":"Dairy","items":[{"name":"Milk","quantity":"1 l"}]}]`
	var got List
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	want := List{{Name: "Dairy", Items: []Entry{{Name: "Milk", Quantity: "1 l"}}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decoded list mismatch (-want +got):\n%s", diff)
	}
}

func TestClean(t *testing.T) {
	in := List{
		{Name: " Veg ", Items: []Entry{{Name: " Onion ", Quantity: " 2 "}, {Name: "  "}}},
		{Name: "Empty", Items: nil},
		{Name: "", Items: []Entry{{Name: "Salt"}}},
	}
	want := List{
		{Name: "Veg", Items: []Entry{{Name: "Onion", Quantity: "2"}}},
		{Name: "Other", Items: []Entry{{Name: "Salt"}}},
	}
	got := in.Clean()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Clean mismatch (-want +got):\n%s", diff)
	}
	if got.Count() != 2 {
		t.Errorf("Expected 2 entries, got %d", got.Count())
	}
}

func TestFormat(t *testing.T) {
	if got := Format(nil); got != "Nothing to buy." {
		t.Errorf("Unexpected empty rendering %q", got)
	}

	l := List{
		{Name: "Dairy", Items: []Entry{{Name: "Milk", Quantity: "1 l"}}},
		{Name: "Spices", Items: []Entry{{Name: "Pepper"}}},
	}
	want := "DAIRY\n  - Milk (1 l)\n\nSPICES\n  - Pepper\n"
	if got := Format(l); got != want {
		t.Errorf("Format mismatch:\nwant %q\ngot  %q", want, got)
	}
}
