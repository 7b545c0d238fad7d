// Package email derives presentable names from email addresses, for owner
// records coming from account systems that carry no display name.
package email

import (
	"strings"
	"unicode"
)

// DeriveDisplayName turns the local part of an address into a readable name:
// "jane.doe@example.com" becomes "Jane Doe". It is a fallback only; a real
// display name from the account system always wins.
func DeriveDisplayName(address string) string {
	localPart := address
	if at := strings.IndexByte(address, '@'); at >= 0 {
		localPart = address[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "Unknown Issuer"
	}

	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
