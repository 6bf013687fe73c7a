package utils

import (
	"testing"
	"time"
)

func TestIsEVMAddress(t *testing.T) {
	tests := []struct {
		address string
		valid   bool
	}{
		{"0x742d35Cc6e56A0e24C1D887FC9b50f08a2B6F4bC", true},
		{"0x0000000000000000000000000000000000000000", true},
		{"742d35Cc6e56A0e24C1D887FC9b50f08a2B6F4bC", false},    // No 0x prefix
		{"0x742d35Cc6e56A0e24C1D887FC9b50f08a2B6F4b", false},   // Too short
		{"0x742d35Cc6e56A0e24C1D887FC9b50f08a2B6F4bCC", false}, // Too long
		{"0xGGGd35Cc6e56A0e24C1D887FC9b50f08a2B6F4bC", false},  // Invalid hex
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			result := IsEVMAddress(tt.address)
			if result != tt.valid {
				t.Errorf("IsEVMAddress(%s) = %v, want %v", tt.address, result, tt.valid)
			}
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase evm", "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"},
		{"checksummed evm", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"},
		{"padded evm", "  0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed ", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"},
		{"iban", "GB82WEST12345698765432", "GB82WEST12345698765432"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeAddress(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeAddress(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeAddressPtr(t *testing.T) {
	if NormalizeAddressPtr(nil) != nil {
		t.Error("expected nil for nil input")
	}
	if NormalizeAddressPtr(StringPtr("   ")) != nil {
		t.Error("expected nil for blank input")
	}
	got := NormalizeAddressPtr(StringPtr("alice@xflow"))
	if got == nil || *got != "alice@xflow" {
		t.Errorf("unexpected normalized value %v", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{30 * time.Second, "30.0s"},
		{90 * time.Second, "1.5m"},
		{3 * time.Hour, "3.0h"},
		{25 * time.Hour, "1.0d"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := FormatDuration(tt.duration)
			if result != tt.expected {
				t.Errorf("FormatDuration(%v) = %s, want %s", tt.duration, result, tt.expected)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("abcdef", 3); got != "abc..." {
		t.Errorf("TruncateString = %s", got)
	}
	if got := TruncateString("ab", 3); got != "ab" {
		t.Errorf("TruncateString = %s", got)
	}
}
