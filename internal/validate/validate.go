// Package validate implements the form-level checks that run before any
// request leaves the console. A non-empty result blocks submission.
package validate

import (
	"regexp"
	"strings"
	"unicode"
)

// Errors maps a form field to its validation message. The "general" key is
// reserved for the banner above the form.
type Errors map[string]string

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Login checks the login form.
func Login(email, password string) Errors {
	errs := Errors{}
	checkEmail(errs, email)
	if password == "" {
		errs["password"] = "Password is required"
	}
	return errs
}

// Signup checks the registration form.
func Signup(fullName, email, password, confirmPassword string) Errors {
	errs := Errors{}
	checkFullName(errs, fullName)
	checkEmail(errs, email)
	checkPassword(errs, "password", password)
	if confirmPassword == "" {
		errs["confirmPassword"] = "Please confirm your password"
	} else if password != confirmPassword {
		errs["confirmPassword"] = "Passwords do not match"
	}
	return errs
}

// Profile checks the profile editor form.
func Profile(fullName, email string) Errors {
	errs := Errors{}
	checkFullName(errs, fullName)
	checkEmail(errs, email)
	return errs
}

// ChangePassword checks the password-change form.
func ChangePassword(currentPassword, newPassword, confirmNewPassword string) Errors {
	errs := Errors{}
	if currentPassword == "" {
		errs["currentPassword"] = "Current password is required"
	}
	if newPassword == "" {
		errs["newPassword"] = "New password is required"
	} else {
		checkPassword(errs, "newPassword", newPassword)
	}
	if confirmNewPassword == "" {
		errs["confirmNewPassword"] = "Please confirm new password"
	} else if newPassword != confirmNewPassword {
		errs["confirmNewPassword"] = "Passwords do not match"
	}
	return errs
}

func checkFullName(errs Errors, fullName string) {
	trimmed := strings.TrimSpace(fullName)
	if trimmed == "" {
		errs["fullName"] = "Full name is required"
	} else if len(trimmed) < 2 {
		errs["fullName"] = "Full name must be at least 2 characters"
	}
}

func checkEmail(errs Errors, email string) {
	if email == "" {
		errs["email"] = "Email is required"
	} else if !emailPattern.MatchString(email) {
		errs["email"] = "Email is invalid"
	}
}

func checkPassword(errs Errors, field, password string) {
	if password == "" {
		errs[field] = "Password is required"
	} else if len(password) < 6 {
		errs[field] = "Password must be at least 6 characters"
	} else if !hasUpperLowerDigit(password) {
		errs[field] = "Password must contain uppercase, lowercase, and number"
	}
}

func hasUpperLowerDigit(s string) bool {
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}
