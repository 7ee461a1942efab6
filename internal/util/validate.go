package util

import (
	"regexp"
	"strings"

	"folioterm/internal/model"
)

var (
	// Word characters, optionally dot separated, then a domain ending in a
	// 2+ letter TLD.
	emailRe = regexp.MustCompile(`^\w+(?:\.\w+)*@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	// Ten digit mobile number starting with 6-9.
	phoneRe = regexp.MustCompile(`^[6-9][0-9]{9}$`)
)

// ValidateEmail reports whether s looks like a deliverable email address.
func ValidateEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidatePhoneNumber reports whether s is a 10 digit mobile number whose
// first digit is 6, 7, 8 or 9.
func ValidatePhoneNumber(s string) bool {
	return phoneRe.MatchString(s)
}

const (
	MsgInvalidEmail = "Invalid email format"
	MsgInvalidPhone = "Invalid phone number format"
)

// ValidateSubmission returns the message for the first rule sub breaks, or ""
// when it may be sent. Email, Name, Phone and Subject are required; Message
// is not.
func ValidateSubmission(sub model.ContactSubmission) string {
	var missing []string
	if sub.Email == "" {
		missing = append(missing, "Email")
	}
	if sub.Name == "" {
		missing = append(missing, "Name")
	}
	if sub.Phone == "" {
		missing = append(missing, "Phone")
	}
	if sub.Subject == "" {
		missing = append(missing, "Subject")
	}
	switch {
	case len(missing) > 0:
		return strings.Join(missing, ", ") + " cannot be empty"
	case !ValidateEmail(sub.Email):
		return MsgInvalidEmail
	case !ValidatePhoneNumber(sub.Phone):
		return MsgInvalidPhone
	}
	return ""
}
