package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"500", 50000, false},
		{"12.344", 1234, false},
		{"12.345", 1235, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"+5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecimalToCents(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMoneyFromFloat(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want int64
	}{
		{"whole rubles", 500, 50000},
		{"kopecks", 12.34, 1234},
		{"rounding", 0.005, 1},
		{"zero", 0, 0},
		{"negative", -10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MoneyFromFloat(tt.in).Cents; got != tt.want {
				t.Errorf("MoneyFromFloat(%v) = %d cents, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMoneyString(t *testing.T) {
	if got := (Money{Cents: 50000}).String(); got != "500" {
		t.Errorf("String() = %q, want %q", got, "500")
	}
	if got := (Money{Cents: 1250}).String(); got != "12.50" {
		t.Errorf("String() = %q, want %q", got, "12.50")
	}
}
