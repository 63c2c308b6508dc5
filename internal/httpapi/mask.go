package httpapi

import "strings"

// MaskPhone redacts a phone number for display: up to four characters pass
// through, the rest become asterisks. Purely presentational; stored data is
// never altered.
func MaskPhone(phone string) string {
	if phone == "" {
		return "N/A"
	}
	runes := []rune(phone)
	if len(runes) <= 4 {
		return phone
	}
	return string(runes[:4]) + strings.Repeat("*", len(runes)-4)
}
