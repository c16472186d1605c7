package utils

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	scriptRegex   = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	nonPhoneRegex = regexp.MustCompile(`[^\d+]`)
)

// SanitizeInput sanitizes user input to prevent XSS and injection attacks
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)

	// Strip script blocks before escaping, afterwards they no longer match
	input = scriptRegex.ReplaceAllString(input, "")
	input = html.EscapeString(input)

	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)
}

// SanitizePhone normalizes a phone / WhatsApp number to +digits
func SanitizePhone(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", errors.New("phone number is required")
	}

	phone = nonPhoneRegex.ReplaceAllString(phone, "")
	phone = "+" + strings.TrimLeft(phone, "+")

	if len(phone) < 8 || len(phone) > 16 {
		return "", errors.New("invalid phone number length")
	}
	return phone, nil
}

// SanitizeStringArray sanitizes an array of strings, dropping empty entries
func SanitizeStringArray(inputs []string) []string {
	sanitized := make([]string, 0, len(inputs))
	for _, input := range inputs {
		if s := SanitizeInput(input); s != "" {
			sanitized = append(sanitized, s)
		}
	}
	return sanitized
}
