package services

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ValidCardNumber runs the Luhn check over 13 to 19 digits. Whitespace is ignored.
func ValidCardNumber(value string) bool {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return false
		}
		digit := int(c - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	return sum%10 == 0
}

// ValidExpireDate accepts YYMM not earlier than the month of now.
func ValidExpireDate(value string, now time.Time) bool {
	if len(value) != 4 {
		return false
	}
	for _, c := range value {
		if c < '0' || c > '9' {
			return false
		}
	}
	year, _ := strconv.Atoi(value[:2])
	month, _ := strconv.Atoi(value[2:])
	if month < 1 || month > 12 {
		return false
	}
	currentYear := now.Year() % 100
	currentMonth := int(now.Month())
	if year < currentYear {
		return false
	}
	return year > currentYear || month >= currentMonth
}
