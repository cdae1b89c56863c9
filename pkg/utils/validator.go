package utils

import (
	"fmt"
	"regexp"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// NUPs look like "TJ/2025/000123": an organ prefix, the year and a
	// sequential part.
	processNumberRegex = regexp.MustCompile(`^[A-Z]{2,10}/\d{4}/[0-9A-Za-z\-]{1,16}$`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateProcessNumber validates a NUP
func ValidateProcessNumber(nup string) error {
	if !processNumberRegex.MatchString(nup) {
		return fmt.Errorf("invalid process number format: %s", nup)
	}
	return nil
}
