package utils

import (
	"regexp"
	"strings"
)

var (
	phoneRegex    = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)
	phoneStripper = regexp.MustCompile(`[^\d+]`)
)

func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(phoneStripper.ReplaceAllString(phone, ""))
}

// ToE164 prefixes the country code to local numbers for SMS delivery.
func ToE164(phone, countryCode string) string {
	cleaned := phoneStripper.ReplaceAllString(phone, "")
	if strings.HasPrefix(cleaned, "+") {
		return cleaned
	}
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	return "+" + strings.TrimPrefix(countryCode, "+") + cleaned
}

func MaskPhone(phone string) string {
	if len(phone) < 4 {
		return phone
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
