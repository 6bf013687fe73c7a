package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// FormatDuration formats duration in human readable format
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	} else if d < 24*time.Hour {
		return fmt.Sprintf("%.1fh", d.Hours())
	} else {
		return fmt.Sprintf("%.1fd", d.Hours()/24)
	}
}

// IsEVMAddress validates 0x-prefixed EVM address format
func IsEVMAddress(address string) bool {
	return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
}

// NormalizeAddress returns the EIP-55 checksum form of EVM addresses and the
// trimmed input for anything else (bank references, wallet handles).
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if IsEVMAddress(address) {
		return common.HexToAddress(address).Hex()
	}
	return address
}

// NormalizeAddressPtr normalizes an optional address, keeping nil and mapping blank to nil
func NormalizeAddressPtr(address *string) *string {
	if address == nil {
		return nil
	}
	normalized := NormalizeAddress(*address)
	if normalized == "" {
		return nil
	}
	return &normalized
}

// TruncateString truncates string to specified length
func TruncateString(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length] + "..."
}

// Int64Ptr returns a pointer to v
func Int64Ptr(v int64) *int64 {
	return &v
}

// StringPtr returns a pointer to v
func StringPtr(v string) *string {
	return &v
}
