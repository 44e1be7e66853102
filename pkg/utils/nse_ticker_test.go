package utils

import "testing"

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"RELIANCE", "RELIANCE"},
		{"reliance", "RELIANCE"},
		{" reliance ", "RELIANCE"},
		{"RIL", "RELIANCE"},
		{"$TCS", "TCS"},
		{"tcs.ns", "TCS"},
		{"RELIANCE.BO", "RELIANCE"},
		{"INFOSYS", "INFY"},
		{"HUL", "HINDUNILVR"},
		{"SBI", "SBIN"},
		{"AIRTEL", "BHARTIARTL"},
		{"NIFTY", "NIFTY 50"},
		{"BANKNIFTY", "NIFTY BANK"},
		{"UNKNOWNSTOCK", "UNKNOWNSTOCK"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizeTicker(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsIndex(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"NIFTY", true},
		{"NIFTY 50", true},
		{"BANKNIFTY", true},
		{"SENSEX", true},
		{"RELIANCE", false},
		{"TCS", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := IsIndex(tt.input)
			if result != tt.expected {
				t.Errorf("IsIndex(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"RELIANCE", true},
		{"M&M", true},
		{"BAJAJ-AUTO", true},
		{"NIFTY 50", false},
		{"", false},
		{"rel iance", false},
		{"DROP TABLE", false},
	}

	for _, tt := range tests {
		if got := ValidSymbol(tt.input); got != tt.expected {
			t.Errorf("ValidSymbol(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
