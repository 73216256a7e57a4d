package utils

import "strings"

// NormalizePlate strips spaces and dashes and upper-cases a plate number so
// "ab-12 cd" and "AB12CD" are the same vehicle.
func NormalizePlate(raw string) string {
	normalized := strings.TrimSpace(raw)
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ToUpper(normalized)
	return normalized
}
