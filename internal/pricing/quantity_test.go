package pricing

import (
	"encoding/json"
	"testing"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want int
		ok   bool
	}{
		{"float whole", float64(2), 2, true},
		{"float with zero fraction", 3.0, 3, true},
		{"numeric string", "4", 4, true},
		{"padded string", " 5 ", 5, true},
		{"json number", json.Number("6"), 6, true},
		{"int", 7, 7, true},
		{"fractional", 2.5, 0, false},
		{"zero", float64(0), 0, false},
		{"negative", float64(-1), 0, false},
		{"non numeric string", "abc", 0, false},
		{"empty string", "", 0, false},
		{"bool", true, 0, false},
		{"missing", nil, 0, false},
		{"too large", float64(5_000_000), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseQuantity(tt.raw)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("ParseQuantity(%v) = %d, %v; want %d, %v", tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}
}
